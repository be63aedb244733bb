package postgres

import (
	"context"
	"errors"
	"fmt"

	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

const txColumns = `id, from_wallet, to_wallet, amount, currency, nonce, payload_ts,
	signature, public_key, algorithm, provenance, payload_hash, status,
	COALESCE(block_index, 0), created_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a pending transaction. (from_wallet, nonce) is unique.
func (r *TransactionRepo) Create(ctx context.Context, t *domain.LedgerTransaction) error {
	query := `INSERT INTO ledger_transactions (id, from_wallet, to_wallet, amount, currency, nonce,
		payload_ts, signature, public_key, algorithm, provenance, payload_hash, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	p := t.Signed.Payload
	_, err := r.pool.Exec(ctx, query,
		t.ID, p.FromWallet, p.To, p.Amount, p.Currency, p.Nonce, p.Timestamp,
		t.Signed.Signature, t.Signed.PublicKey, t.Signed.Algorithm, string(t.Signed.Provenance),
		t.PayloadHash, string(t.Status), t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrDuplicate
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by tx id.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*domain.LedgerTransaction, error) {
	query := `SELECT ` + txColumns + ` FROM ledger_transactions WHERE id = $1`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListPending returns pending transactions in submission order.
// A limit <= 0 returns all of them.
func (r *TransactionRepo) ListPending(ctx context.Context, limit int) ([]domain.LedgerTransaction, error) {
	query := `SELECT ` + txColumns + ` FROM ledger_transactions WHERE status = $1 ORDER BY seq`
	args := []any{string(domain.TxStatusPending)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.LedgerTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending transactions: %w", err)
	}
	return out, nil
}

// CountPending counts unsealed transactions.
func (r *TransactionRepo) CountPending(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM ledger_transactions WHERE status = $1`

	var n int
	if err := r.pool.QueryRow(ctx, query, string(domain.TxStatusPending)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending transactions: %w", err)
	}
	return n, nil
}

func scanTransaction(row pgx.Row) (*domain.LedgerTransaction, error) {
	var (
		t          domain.LedgerTransaction
		p          domain.TransactionPayload
		provenance string
		status     string
	)
	err := row.Scan(
		&t.ID, &p.FromWallet, &p.To, &p.Amount, &p.Currency, &p.Nonce, &p.Timestamp,
		&t.Signed.Signature, &t.Signed.PublicKey, &t.Signed.Algorithm, &provenance,
		&t.PayloadHash, &status, &t.BlockIndex, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Signed.Payload = p
	t.Signed.Provenance = domain.Provenance(provenance)
	t.Status = domain.TxStatus(status)
	return &t, nil
}
