package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyCache_SetAndGet(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewIdempotencyCache(client)
	ctx := context.Background()

	got, err := cache.Get(ctx, "bank-7")
	require.NoError(t, err)
	assert.Nil(t, got, "missing key returns nil")

	body := []byte(`{"payload":{"nonce":1},"nonce":1}`)
	require.NoError(t, cache.Set(ctx, "bank-7", body, time.Hour))
	assert.True(t, mr.Exists("ledger:prepare:bank-7"))

	got, err = cache.Get(ctx, "bank-7")
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestIdempotencyCache_TTLExpiry(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewIdempotencyCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "bank-7", []byte("{}"), time.Second))
	mr.FastForward(2 * time.Second)

	got, err := cache.Get(ctx, "bank-7")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIdempotencyCache_FirstPayloadWins(t *testing.T) {
	_, client := setupRedis(t)
	cache := NewIdempotencyCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "bank-7", []byte(`{"nonce":1}`), time.Hour))
	require.NoError(t, cache.Set(ctx, "bank-7", []byte(`{"nonce":2}`), time.Hour))

	got, err := cache.Get(ctx, "bank-7")
	require.NoError(t, err)
	assert.JSONEq(t, `{"nonce":1}`, string(got))
}

func TestIdempotencyCache_RejectsZeroTTL(t *testing.T) {
	_, client := setupRedis(t)
	assert.Error(t, NewIdempotencyCache(client).Set(context.Background(), "bank-7", []byte("{}"), 0))
}
