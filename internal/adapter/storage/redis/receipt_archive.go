package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quantum-receipt-gateway/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// ReceiptArchive implements ports.ReceiptArchive. Receipts are written once
// and never expire.
type ReceiptArchive struct {
	client goredis.UniversalClient
	prefix string
}

// NewReceiptArchive creates a new Redis-backed receipt archive.
func NewReceiptArchive(client goredis.UniversalClient) *ReceiptArchive {
	return &ReceiptArchive{
		client: client,
		prefix: "qrg:receipt:",
	}
}

// Store archives r unless its tx is already archived.
func (a *ReceiptArchive) Store(ctx context.Context, r *domain.QuantumReceipt) (bool, error) {
	if r == nil || r.TxID == "" {
		return false, errors.New("archive: receipt without txId")
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return false, fmt.Errorf("encode receipt: %w", err)
	}

	ok, err := a.client.SetNX(ctx, a.prefix+r.TxID, raw, 0).Result()
	if err != nil {
		return false, fmt.Errorf("redis receipt setnx: %w", err)
	}
	return ok, nil
}

// Get returns nil, nil when txID is not archived.
func (a *ReceiptArchive) Get(ctx context.Context, txID string) (*domain.QuantumReceipt, error) {
	raw, err := a.client.Get(ctx, a.prefix+txID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis receipt get: %w", err)
	}

	var r domain.QuantumReceipt
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}
	return &r, nil
}
