package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonceStore_CheckAndSet(t *testing.T) {
	_, client := setupRedis(t)
	store := NewNonceStore(client)
	ctx := context.Background()

	ok, err := store.CheckAndSet(ctx, "w-1", 1, 0)
	require.NoError(t, err)
	assert.True(t, ok, "first claim wins")

	ok, err = store.CheckAndSet(ctx, "w-1", 1, 0)
	require.NoError(t, err)
	assert.False(t, ok, "replayed nonce is refused")

	ok, err = store.CheckAndSet(ctx, "w-1", 2, 0)
	require.NoError(t, err)
	assert.True(t, ok, "next nonce is free")

	ok, err = store.CheckAndSet(ctx, "w-2", 1, 0)
	require.NoError(t, err)
	assert.True(t, ok, "nonces are scoped per wallet")
}

func TestNonceStore_CheckAndSet_Expiry(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewNonceStore(client)
	ctx := context.Background()

	ok, err := store.CheckAndSet(ctx, "w-1", 7, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("ledger:nonce:w-1:7"))

	mr.FastForward(2 * time.Second)

	ok, err = store.CheckAndSet(ctx, "w-1", 7, time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "expired claim can be taken again")
}

func TestNonceStore_CheckAndSet_Unavailable(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewNonceStore(client)
	mr.Close()

	_, err := store.CheckAndSet(context.Background(), "w-1", 1, 0)
	assert.ErrorContains(t, err, "claim nonce 1 of w-1")
}

func TestNonceStore_Release(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewNonceStore(client)
	ctx := context.Background()

	ok, err := store.CheckAndSet(ctx, "w-1", 3, 0)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.Release(ctx, "w-1", 3))
	assert.False(t, mr.Exists("ledger:nonce:w-1:3"))

	ok, err = store.CheckAndSet(ctx, "w-1", 3, 0)
	require.NoError(t, err)
	assert.True(t, ok, "a released nonce can be claimed again")

	assert.NoError(t, store.Release(ctx, "w-9", 1), "unknown claims release cleanly")
}
