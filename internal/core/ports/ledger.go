package ports

import (
	"context"

	"quantum-receipt-gateway/internal/core/domain"
)

// PrepareRequest asks the ledger for a nonce and a canonical payload.
type PrepareRequest struct {
	WalletID        string `json:"walletId"`
	To              string `json:"to"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	ClientRequestID string `json:"clientRequestId,omitempty"`
}

// RemoteVerdict is the ledger's verification answer.
type RemoteVerdict struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Ledger is the consumed ledger-service contract.
// Errors are *apperror.AppError of kind transport, protocol or rejection.
type Ledger interface {
	CreateWallet(ctx context.Context, ownerID, publicKey string) (string, error)
	Prepare(ctx context.Context, req PrepareRequest) (*domain.TransactionPayload, error)
	Submit(ctx context.Context, tx domain.SignedTransaction) (string, error)
	Receipt(ctx context.Context, txID string) (*domain.QuantumReceipt, error)
	Verify(ctx context.Context, receipt *domain.QuantumReceipt) (*RemoteVerdict, error)
}
