package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const preparePrefix = "ledger:prepare:"

// IdempotencyCache keeps the payloads ledgerd issued, keyed by client
// request id. The first payload stored under a key stays until it expires.
type IdempotencyCache struct {
	client goredis.UniversalClient
}

func NewIdempotencyCache(client goredis.UniversalClient) *IdempotencyCache {
	return &IdempotencyCache{client: client}
}

// Get returns nil, nil for an unknown or expired key.
func (c *IdempotencyCache) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := c.client.Get(ctx, preparePrefix+key).Bytes()
	switch {
	case errors.Is(err, goredis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("get prepared payload %s: %w", key, err)
	}
	return raw, nil
}

// Set stores value unless key already holds a payload.
func (c *IdempotencyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("prepared payload %s: ttl must be positive", key)
	}
	err := c.client.SetArgs(ctx, preparePrefix+key, value, goredis.SetArgs{Mode: "NX", TTL: ttl}).Err()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("store prepared payload %s: %w", key, err)
	}
	return nil
}
