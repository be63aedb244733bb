package ports

import (
	"context"

	"quantum-receipt-gateway/internal/core/domain"
)

// Signer is the signing capability, whatever backend executes it.
type Signer interface {
	// Algorithm names the scheme the backend signs with.
	Algorithm() string
	GenerateKeyPair(ctx context.Context) (*domain.KeyPair, error)
	Sign(ctx context.Context, payload []byte, keys *domain.KeyPair) (*domain.Signature, error)
	Verify(ctx context.Context, payload, signature, publicKey []byte) (bool, error)
}

// AvailabilityProbe reports whether the ledger answers within a bounded time.
type AvailabilityProbe interface {
	Reachable(ctx context.Context) bool
}

// WalletRegistry maps owners to wallets and holds their signing keys.
type WalletRegistry interface {
	Ensure(ctx context.Context, ownerID string) (*domain.Wallet, error)
	Lookup(ctx context.Context, ownerID string) (*domain.Wallet, error)
	Keys(ctx context.Context, walletID string) (*domain.KeyPair, error)
}

// ReceiptVerifier produces verdicts; it never returns an error.
type ReceiptVerifier interface {
	Verify(ctx context.Context, receipt *domain.QuantumReceipt) domain.VerificationResult
	Offline(receipt *domain.QuantumReceipt) domain.VerificationResult
}

// LedgerService is the ledger business logic behind the HTTP routes.
type LedgerService interface {
	CreateWallet(ctx context.Context, ownerID, publicKey string) (*domain.Account, error)
	Prepare(ctx context.Context, req PrepareRequest) (*domain.TransactionPayload, error)
	Submit(ctx context.Context, tx domain.SignedTransaction) (string, error)
	Receipt(ctx context.Context, txID string) (*domain.QuantumReceipt, error)
	// Verify errors only when the ledger cannot reach a verdict.
	Verify(ctx context.Context, receipt *domain.QuantumReceipt) (*RemoteVerdict, error)
}
