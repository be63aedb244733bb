package memory

import (
	"context"
	"testing"

	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingTx(id string, nonce uint64) *domain.LedgerTransaction {
	return &domain.LedgerTransaction{
		ID:     id,
		Signed: domain.SignedTransaction{Payload: domain.TransactionPayload{FromWallet: "w-1", To: "w-2", Amount: 1, Currency: "USD", Nonce: nonce}},
		Status: domain.TxStatusPending,
	}
}

func TestAccountRepo(t *testing.T) {
	store := NewLedgerStore()
	accounts := store.Accounts()
	ctx := context.Background()

	require.NoError(t, accounts.Create(ctx, &domain.Account{ID: "w-1", OwnerID: "acct-1", Balance: 100}))
	assert.ErrorIs(t, accounts.Create(ctx, &domain.Account{ID: "w-9", OwnerID: "acct-1"}), ports.ErrDuplicate)
	assert.ErrorIs(t, accounts.Create(ctx, &domain.Account{ID: "w-1", OwnerID: "acct-9"}), ports.ErrDuplicate)

	a, err := accounts.GetByOwner(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, "w-1", a.ID)
	a, err = accounts.GetByID(ctx, "w-missing")
	require.NoError(t, err)
	assert.Nil(t, a)

	for want := uint64(1); want <= 3; want++ {
		n, err := accounts.AllocateNonce(ctx, "w-1")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	_, err = accounts.AllocateNonce(ctx, "w-missing")
	assert.Error(t, err)

	ok, err := accounts.Debit(ctx, "w-1", 60)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = accounts.Debit(ctx, "w-1", 60)
	require.NoError(t, err)
	assert.False(t, ok, "balance never goes negative")

	require.NoError(t, accounts.Credit(ctx, "w-1", 20))
	a, _ = accounts.GetByID(ctx, "w-1")
	assert.Equal(t, int64(60), a.Balance)
	assert.Error(t, accounts.Credit(ctx, "w-missing", 1))
}

func TestTransactionRepo(t *testing.T) {
	store := NewLedgerStore()
	txs := store.Transactions()
	ctx := context.Background()

	require.NoError(t, txs.Create(ctx, pendingTx("tx-1", 1)))
	require.NoError(t, txs.Create(ctx, pendingTx("tx-2", 2)))
	assert.ErrorIs(t, txs.Create(ctx, pendingTx("tx-3", 2)), ports.ErrDuplicate, "(wallet, nonce) is unique")

	n, err := txs.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := txs.ListPending(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "tx-1", list[0].ID)

	got, err := txs.GetByID(ctx, "tx-missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBlockRepo_Seal(t *testing.T) {
	store := NewLedgerStore()
	txs, blocks := store.Transactions(), store.Blocks()
	ctx := context.Background()

	require.NoError(t, txs.Create(ctx, pendingTx("tx-1", 1)))
	require.NoError(t, txs.Create(ctx, pendingTx("tx-2", 2)))
	require.NoError(t, txs.Create(ctx, pendingTx("tx-3", 3)))

	latest, err := blocks.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	b := &domain.Block{
		Header: domain.BlockHeader{Index: 1, MerkleRoot: "root"},
		TxIDs:  []string{"tx-1", "tx-2"},
		Proofs: map[string][]domain.ProofItem{
			"tx-1": {{Direction: domain.DirectionRight, SiblingHash: "h2"}},
			"tx-2": {{Direction: domain.DirectionLeft, SiblingHash: "h1"}},
		},
	}
	require.NoError(t, blocks.Seal(ctx, b))

	got, _ := txs.GetByID(ctx, "tx-1")
	assert.True(t, got.IsSealed())
	assert.Equal(t, uint64(1), got.BlockIndex)

	pending, _ := txs.ListPending(ctx, 0)
	require.Len(t, pending, 1)
	assert.Equal(t, "tx-3", pending[0].ID)

	proof, err := blocks.GetProof(ctx, "tx-2")
	require.NoError(t, err)
	assert.Equal(t, b.Proofs["tx-2"], proof)

	latest, _ = blocks.Latest(ctx)
	assert.Equal(t, "root", latest.MerkleRoot)
	h, _ := blocks.GetByIndex(ctx, 1)
	assert.Equal(t, b.Header, *h)

	assert.ErrorIs(t, blocks.Seal(ctx, &domain.Block{Header: domain.BlockHeader{Index: 1}}), ports.ErrDuplicate)
}

func TestBlockRepo_Seal_AllOrNothing(t *testing.T) {
	store := NewLedgerStore()
	txs, blocks := store.Transactions(), store.Blocks()
	ctx := context.Background()

	require.NoError(t, txs.Create(ctx, pendingTx("tx-1", 1)))

	err := blocks.Seal(ctx, &domain.Block{
		Header: domain.BlockHeader{Index: 1},
		TxIDs:  []string{"tx-1", "tx-unknown"},
	})
	require.Error(t, err)

	got, _ := txs.GetByID(ctx, "tx-1")
	assert.False(t, got.IsSealed())
	h, _ := blocks.GetByIndex(ctx, 1)
	assert.Nil(t, h)
	n, _ := txs.CountPending(ctx)
	assert.Equal(t, 1, n)
}
