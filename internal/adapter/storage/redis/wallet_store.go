package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quantum-receipt-gateway/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// WalletStore implements ports.WalletStore. Mappings never expire.
type WalletStore struct {
	client goredis.UniversalClient
	prefix string
}

// NewWalletStore creates a new Redis-backed owner to wallet map.
func NewWalletStore(client goredis.UniversalClient) *WalletStore {
	return &WalletStore{
		client: client,
		prefix: "qrg:wallet:",
	}
}

// Get returns nil, nil for an unknown owner.
func (s *WalletStore) Get(ctx context.Context, ownerID string) (*domain.Wallet, error) {
	raw, err := s.client.Get(ctx, s.prefix+ownerID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis wallet get: %w", err)
	}

	var w domain.Wallet
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode wallet: %w", err)
	}
	return &w, nil
}

// PutIfAbsent writes w with SETNX and returns the stored wallet.
func (s *WalletStore) PutIfAbsent(ctx context.Context, w *domain.Wallet) (*domain.Wallet, bool, error) {
	raw, err := json.Marshal(w)
	if err != nil {
		return nil, false, fmt.Errorf("encode wallet: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.prefix+w.OwnerID, raw, 0).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis wallet setnx: %w", err)
	}
	if ok {
		return w, true, nil
	}

	existing, err := s.Get(ctx, w.OwnerID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("wallet for %s vanished after setnx", w.OwnerID)
	}
	return existing, false, nil
}
