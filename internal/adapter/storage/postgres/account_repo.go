package postgres

import (
	"context"
	"errors"
	"fmt"

	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, owner_id, public_key, balance, last_nonce, created_at`

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create inserts a new account. A taken id or owner yields ports.ErrDuplicate.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (` + accountColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.OwnerID, a.PublicKey, a.Balance, a.LastNonce, a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrDuplicate
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID fetches an account by wallet id.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	a, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}

// GetByOwner fetches the account of an owning identity.
func (r *AccountRepo) GetByOwner(ctx context.Context, ownerID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1`
	a, err := scanAccount(r.pool.QueryRow(ctx, query, ownerID))
	if err != nil {
		return nil, fmt.Errorf("get account by owner: %w", err)
	}
	return a, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(&a.ID, &a.OwnerID, &a.PublicKey, &a.Balance, &a.LastNonce, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// AllocateNonce increments last_nonce in a single statement.
func (r *AccountRepo) AllocateNonce(ctx context.Context, id string) (uint64, error) {
	query := `UPDATE accounts SET last_nonce = last_nonce + 1 WHERE id = $1 RETURNING last_nonce`

	var nonce uint64
	if err := r.pool.QueryRow(ctx, query, id).Scan(&nonce); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("allocate nonce: account %s not found", id)
		}
		return 0, fmt.Errorf("allocate nonce: %w", err)
	}
	return nonce, nil
}

// Debit subtracts amount only while the balance covers it.
func (r *AccountRepo) Debit(ctx context.Context, id string, amount int64) (bool, error) {
	query := `UPDATE accounts SET balance = balance - $2 WHERE id = $1 AND balance >= $2`

	tag, err := r.pool.Exec(ctx, query, id, amount)
	if err != nil {
		return false, fmt.Errorf("debit account: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Credit adds amount to an existing account.
func (r *AccountRepo) Credit(ctx context.Context, id string, amount int64) error {
	query := `UPDATE accounts SET balance = balance + $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, amount)
	if err != nil {
		return fmt.Errorf("credit account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("credit account: %s not found", id)
	}
	return nil
}
