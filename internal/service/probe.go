package service

import (
	"context"
	"time"

	"quantum-receipt-gateway/internal/core/ports"

	"github.com/rs/zerolog"
)

// LedgerProbe answers whether the ledger responds to a health check in time.
type LedgerProbe struct {
	checker ports.HealthChecker
	timeout time.Duration
	log     zerolog.Logger
}

// NewLedgerProbe creates a new LedgerProbe.
func NewLedgerProbe(checker ports.HealthChecker, timeout time.Duration, log zerolog.Logger) *LedgerProbe {
	return &LedgerProbe{checker: checker, timeout: timeout, log: log}
}

// Reachable pings once, bounded by the probe timeout.
func (p *LedgerProbe) Reachable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.checker.Ping(ctx); err != nil {
		p.log.Debug().Err(err).Str("component", p.checker.Name()).Msg("probe failed")
		return false
	}
	return true
}
