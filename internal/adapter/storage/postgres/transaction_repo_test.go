package postgres

import (
	"context"
	"testing"
	"time"

	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/internal/core/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedgerTx(id string, nonce uint64) *domain.LedgerTransaction {
	return &domain.LedgerTransaction{
		ID: id,
		Signed: domain.SignedTransaction{
			Payload: domain.TransactionPayload{
				FromWallet: "w-1", To: "w-2", Amount: 250, Currency: "USD",
				Nonce: nonce, Timestamp: 1700000000,
			},
			Signature:  "c2ln",
			PublicKey:  "cGs=",
			Algorithm:  "ML-DSA-44",
			Provenance: domain.ProvenanceAuthoritative,
		},
		PayloadHash: "abcd",
		Status:      domain.TxStatusPending,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func txColumnNames() []string {
	return []string{"id", "from_wallet", "to_wallet", "amount", "currency", "nonce", "payload_ts",
		"signature", "public_key", "algorithm", "provenance", "payload_hash", "status",
		"block_index", "created_at"}
}

func addTxRow(rows *pgxmock.Rows, t *domain.LedgerTransaction) *pgxmock.Rows {
	p := t.Signed.Payload
	return rows.AddRow(
		t.ID, p.FromWallet, p.To, p.Amount, p.Currency, p.Nonce, p.Timestamp,
		t.Signed.Signature, t.Signed.PublicKey, t.Signed.Algorithm, string(t.Signed.Provenance),
		t.PayloadHash, string(t.Status), t.BlockIndex, t.CreatedAt,
	)
}

func TestTransactionRepo_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepo(mock)
	txn := newTestLedgerTx("tx-1", 1)
	p := txn.Signed.Payload

	mock.ExpectExec("INSERT INTO ledger_transactions").
		WithArgs(txn.ID, p.FromWallet, p.To, p.Amount, p.Currency, p.Nonce, p.Timestamp,
			"c2ln", "cGs=", "ML-DSA-44", "authoritative", "abcd", "PENDING", txn.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), txn))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Create_DuplicateNonce(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepo(mock)

	mock.ExpectExec("INSERT INTO ledger_transactions").
		WithArgs(anyArgs(14)...).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "ledger_transactions_from_wallet_nonce_key"})

	err := repo.Create(context.Background(), newTestLedgerTx("tx-2", 1))
	assert.ErrorIs(t, err, ports.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepo(mock)
	txn := newTestLedgerTx("tx-1", 1)
	txn.Status = domain.TxStatusSealed
	txn.BlockIndex = 4

	mock.ExpectQuery("SELECT .+ FROM ledger_transactions WHERE id").
		WithArgs("tx-1").
		WillReturnRows(addTxRow(pgxmock.NewRows(txColumnNames()), txn))
	mock.ExpectQuery("SELECT .+ FROM ledger_transactions WHERE id").
		WithArgs("tx-missing").
		WillReturnRows(pgxmock.NewRows(txColumnNames()))

	got, err := repo.GetByID(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, txn, got)
	assert.True(t, got.IsSealed())

	got, err = repo.GetByID(context.Background(), "tx-missing")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListPending(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepo(mock)
	a, b := newTestLedgerTx("tx-1", 1), newTestLedgerTx("tx-2", 2)

	rows := addTxRow(addTxRow(pgxmock.NewRows(txColumnNames()), a), b)
	mock.ExpectQuery("SELECT .+ FROM ledger_transactions WHERE status = .+ ORDER BY seq LIMIT").
		WithArgs("PENDING", 10).
		WillReturnRows(rows)

	got, err := repo.ListPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "tx-1", got[0].ID)
	assert.Equal(t, "tx-2", got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListPending_NoLimit(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("ORDER BY seq$").
		WithArgs("PENDING").
		WillReturnRows(pgxmock.NewRows(txColumnNames()))

	got, err := repo.ListPending(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_CountPending(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("PENDING").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
