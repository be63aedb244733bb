package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/internal/core/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccount() *domain.Account {
	return &domain.Account{
		ID:        "w-1",
		OwnerID:   "acct-1",
		PublicKey: "cGs=",
		Balance:   1000,
		LastNonce: 2,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func accountColumnNames() []string {
	return []string{"id", "owner_id", "public_key", "balance", "last_nonce", "created_at"}
}

func accountRow(a *domain.Account) *pgxmock.Rows {
	return pgxmock.NewRows(accountColumnNames()).AddRow(
		a.ID, a.OwnerID, a.PublicKey, a.Balance, a.LastNonce, a.CreatedAt,
	)
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

// anyArgs matches an Exec by arity only. pgxmock treats a missing WithArgs as
// an expectation of zero arguments.
func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestAccountRepo_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepo(mock)
	a := newTestAccount()

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(a.ID, a.OwnerID, a.PublicKey, a.Balance, a.LastNonce, a.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_Create_Duplicate(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepo(mock)

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(anyArgs(6)...).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_owner_id_key"})

	err := repo.Create(context.Background(), newTestAccount())
	assert.ErrorIs(t, err, ports.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByOwner(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepo(mock)
	a := newTestAccount()

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE owner_id").
		WithArgs("acct-1").
		WillReturnRows(accountRow(a))

	got, err := repo.GetByOwner(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Equal(t, a, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByID_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE id").
		WithArgs("w-missing").
		WillReturnRows(pgxmock.NewRows(accountColumnNames()))

	got, err := repo.GetByID(context.Background(), "w-missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAccountRepo_AllocateNonce(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepo(mock)

	mock.ExpectQuery("UPDATE accounts SET last_nonce = last_nonce \\+ 1").
		WithArgs("w-1").
		WillReturnRows(pgxmock.NewRows([]string{"last_nonce"}).AddRow(uint64(3)))
	mock.ExpectQuery("UPDATE accounts SET last_nonce").
		WithArgs("w-missing").
		WillReturnRows(pgxmock.NewRows([]string{"last_nonce"}))

	n, err := repo.AllocateNonce(context.Background(), "w-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	_, err = repo.AllocateNonce(context.Background(), "w-missing")
	assert.ErrorContains(t, err, "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_Debit(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "covered", affected: 1, want: true},
		{name: "insufficient", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			repo := NewAccountRepo(mock)

			mock.ExpectExec("UPDATE accounts SET balance = balance - .+ AND balance >=").
				WithArgs("w-1", int64(500)).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			ok, err := repo.Debit(context.Background(), "w-1", 500)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestAccountRepo_Credit(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepo(mock)

	mock.ExpectExec("UPDATE accounts SET balance = balance \\+").
		WithArgs("w-2", int64(500)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE accounts SET balance = balance \\+").
		WithArgs("w-missing", int64(500)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec("UPDATE accounts SET balance = balance \\+").
		WithArgs("w-2", int64(1)).
		WillReturnError(errors.New("connection reset"))

	assert.NoError(t, repo.Credit(context.Background(), "w-2", 500))
	assert.ErrorContains(t, repo.Credit(context.Background(), "w-missing", 500), "not found")
	assert.ErrorContains(t, repo.Credit(context.Background(), "w-2", 1), "credit account")
	assert.NoError(t, mock.ExpectationsWereMet())
}
