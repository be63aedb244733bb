package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const noncePrefix = "ledger:nonce:"

// NonceStore is ledgerd's submission guard. A claim is a key per
// (wallet, nonce) holding the unix time it was taken.
type NonceStore struct {
	client goredis.UniversalClient
	now    func() time.Time
}

func NewNonceStore(client goredis.UniversalClient) *NonceStore {
	return &NonceStore{client: client, now: time.Now}
}

func nonceKey(walletID string, nonce uint64) string {
	return noncePrefix + walletID + ":" + strconv.FormatUint(nonce, 10)
}

// CheckAndSet claims (walletID, nonce) and reports false when it was already
// claimed. A zero ttl keeps the claim forever.
func (s *NonceStore) CheckAndSet(ctx context.Context, walletID string, nonce uint64, ttl time.Duration) (bool, error) {
	res, err := s.client.SetArgs(ctx, nonceKey(walletID, nonce), s.now().Unix(), goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	switch {
	case errors.Is(err, goredis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("claim nonce %d of %s: %w", nonce, walletID, err)
	}
	return res == "OK", nil
}

// Release deletes the claim. Releasing an unclaimed nonce is a no-op.
func (s *NonceStore) Release(ctx context.Context, walletID string, nonce uint64) error {
	if err := s.client.Del(ctx, nonceKey(walletID, nonce)).Err(); err != nil {
		return fmt.Errorf("release nonce %d of %s: %w", nonce, walletID, err)
	}
	return nil
}
