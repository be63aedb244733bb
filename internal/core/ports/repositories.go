package ports

import (
	"context"
	"errors"
	"time"

	"quantum-receipt-gateway/internal/core/domain"
)

// ErrDuplicate is returned by repositories when a uniqueness constraint is hit.
var ErrDuplicate = errors.New("duplicate record")

// AccountRepository defines persistence operations for ledger accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByOwner(ctx context.Context, ownerID string) (*domain.Account, error)
	// AllocateNonce atomically increments and returns the account's last nonce.
	AllocateNonce(ctx context.Context, id string) (uint64, error)
	// Debit subtracts amount if the balance covers it; false means it did not.
	Debit(ctx context.Context, id string, amount int64) (bool, error)
	Credit(ctx context.Context, id string, amount int64) error
}

// TransactionRepository defines persistence operations for submitted transactions.
type TransactionRepository interface {
	// Create returns ErrDuplicate when (fromWallet, nonce) is already stored.
	Create(ctx context.Context, tx *domain.LedgerTransaction) error
	GetByID(ctx context.Context, id string) (*domain.LedgerTransaction, error)
	// ListPending returns unsealed transactions in submission order.
	ListPending(ctx context.Context, limit int) ([]domain.LedgerTransaction, error)
	CountPending(ctx context.Context) (int, error)
}

// BlockRepository defines persistence operations for sealed blocks.
type BlockRepository interface {
	// Seal stores the header and proofs and marks the block's transactions
	// sealed, all or nothing.
	Seal(ctx context.Context, block *domain.Block) error
	Latest(ctx context.Context) (*domain.BlockHeader, error)
	GetByIndex(ctx context.Context, index uint64) (*domain.BlockHeader, error)
	GetProof(ctx context.Context, txID string) ([]domain.ProofItem, error)
}

// IdempotencyCache remembers prepare responses by client request id.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// NonceStore guards (wallet, nonce) submissions against replay.
type NonceStore interface {
	// CheckAndSet atomically claims nonce for walletID.
	// Returns true if the nonce was unclaimed, false if already used.
	CheckAndSet(ctx context.Context, walletID string, nonce uint64, ttl time.Duration) (bool, error)
	// Release drops a claim whose submission was not recorded.
	Release(ctx context.Context, walletID string, nonce uint64) error
}
