package postgres

import (
	"context"
	"fmt"
)

// HealthCheck reports the ledger database healthy when the blocks table is
// readable, which also catches a missing migration.
type HealthCheck struct {
	pool Pool
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	if _, err := h.pool.Exec(ctx, "SELECT 1 FROM blocks LIMIT 1"); err != nil {
		return fmt.Errorf("read blocks: %w", err)
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "ledger-db"
}
