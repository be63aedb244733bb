package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quantum-receipt-gateway/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

const keyRingPrefix = "qrg:keys:"

// keyRecord is the stored form of a key pair. domain.KeyPair keeps its key
// material out of JSON, so it is copied here explicitly.
type keyRecord struct {
	PublicKey  []byte            `json:"publicKey"`
	PrivateKey []byte            `json:"privateKey"`
	Algorithm  string            `json:"algorithm"`
	Provenance domain.Provenance `json:"provenance"`
}

// KeyRing implements ports.KeyRing next to the WalletStore, so a wallet
// mapping and its signing keys survive restarts and are shared between
// gateway instances. Entries never expire.
type KeyRing struct {
	client goredis.UniversalClient
}

func NewKeyRing(client goredis.UniversalClient) *KeyRing {
	return &KeyRing{client: client}
}

func (k *KeyRing) Put(ctx context.Context, walletID string, keys *domain.KeyPair) error {
	if keys == nil {
		return errors.New("keyring: nil key pair")
	}
	raw, err := json.Marshal(keyRecord{
		PublicKey:  keys.PublicKey,
		PrivateKey: keys.PrivateKey,
		Algorithm:  keys.Algorithm,
		Provenance: keys.Provenance,
	})
	if err != nil {
		return fmt.Errorf("encode keys of %s: %w", walletID, err)
	}
	if err := k.client.Set(ctx, keyRingPrefix+walletID, raw, 0).Err(); err != nil {
		return fmt.Errorf("store keys of %s: %w", walletID, err)
	}
	return nil
}

// Get returns nil, nil when no keys are held for walletID.
func (k *KeyRing) Get(ctx context.Context, walletID string) (*domain.KeyPair, error) {
	raw, err := k.client.Get(ctx, keyRingPrefix+walletID).Bytes()
	switch {
	case errors.Is(err, goredis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("read keys of %s: %w", walletID, err)
	}

	var rec keyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode keys of %s: %w", walletID, err)
	}
	return &domain.KeyPair{
		PublicKey:  rec.PublicKey,
		PrivateKey: rec.PrivateKey,
		Algorithm:  rec.Algorithm,
		Provenance: rec.Provenance,
	}, nil
}
