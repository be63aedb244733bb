package ports

import (
	"context"
	"time"

	"quantum-receipt-gateway/internal/core/domain"
)

// WalletStore persists the owner to wallet mapping. Entries are write-once.
type WalletStore interface {
	// Get returns nil, nil when the owner has no wallet.
	Get(ctx context.Context, ownerID string) (*domain.Wallet, error)
	// PutIfAbsent stores w unless the owner already has a wallet.
	// It returns the stored wallet and whether w was the one written.
	PutIfAbsent(ctx context.Context, w *domain.Wallet) (*domain.Wallet, bool, error)
}

// KeyRing holds wallet signing keys. It must live as long as the WalletStore
// that maps owners to those wallets.
type KeyRing interface {
	Put(ctx context.Context, walletID string, keys *domain.KeyPair) error
	// Get returns nil, nil when no keys are held for walletID.
	Get(ctx context.Context, walletID string) (*domain.KeyPair, error)
}

// ReceiptArchive keeps fetched receipts as read-only audit artifacts.
type ReceiptArchive interface {
	// Store writes r once; it returns false if the tx was already archived.
	Store(ctx context.Context, r *domain.QuantumReceipt) (bool, error)
	// Get returns nil, nil when the tx is not archived.
	Get(ctx context.Context, txID string) (*domain.QuantumReceipt, error)
}

// RateLimitResult describes one counted request.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // unix seconds
}

// NewRateLimitResult derives the verdict from the window's running count.
func NewRateLimitResult(count, limit, resetAt int64) *RateLimitResult {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return &RateLimitResult{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

// RateLimitStore counts requests per key in fixed windows.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}
