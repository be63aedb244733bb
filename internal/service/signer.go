package service

import (
	"errors"
	"fmt"

	"quantum-receipt-gateway/config"
	"quantum-receipt-gateway/internal/core/ports"
	"quantum-receipt-gateway/internal/metrics"

	"github.com/rs/zerolog"
)

// NewSigner selects the signing backend named by cfg.Backend. remote is the
// HTTP delegate client and is only required for the remote backend.
func NewSigner(cfg config.SignerConfig, remote ports.Signer, m *metrics.Metrics, log zerolog.Logger) (ports.Signer, error) {
	switch cfg.Backend {
	case config.SignerRemote:
		if remote == nil {
			return nil, errors.New("remote signer backend needs a client")
		}
		return NewFallbackSigner(remote, cfg.Timeout, cfg.AllowFallback, m, log), nil
	case config.SignerLocal:
		return NewSchemeSigner(cfg.Algorithm)
	case config.SignerClassical:
		return NewSchemeSigner(ClassicalAlgorithm)
	default:
		return nil, fmt.Errorf("unknown signer backend %q", cfg.Backend)
	}
}
