package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/internal/core/ports"
	"quantum-receipt-gateway/internal/metrics"
	"quantum-receipt-gateway/pkg/apperror"

	"github.com/rs/zerolog"
)

// FallbackAlgorithm tags signatures made by the local fallback generator.
const FallbackAlgorithm = "fallback-sha256"

// LocalFallbackSigner produces placeholder keys and signatures tagged
// non-authoritative. Its signatures never verify.
type LocalFallbackSigner struct{}

// Algorithm returns FallbackAlgorithm.
func (LocalFallbackSigner) Algorithm() string {
	return FallbackAlgorithm
}

// GenerateKeyPair returns random key material marked as fallback.
func (LocalFallbackSigner) GenerateKeyPair(ctx context.Context) (*domain.KeyPair, error) {
	priv := make([]byte, 32)
	if _, err := rand.Read(priv); err != nil {
		return nil, fmt.Errorf("fallback key: %w", err)
	}
	pub := sha256.Sum256(append([]byte("fallback-public:"), priv...))

	return &domain.KeyPair{
		PublicKey:  pub[:],
		PrivateKey: priv,
		Algorithm:  FallbackAlgorithm,
		Provenance: domain.ProvenanceFallback,
	}, nil
}

// Sign digests payload with the fallback private key. A nil keys argument
// generates a fresh key for this one signature.
func (f LocalFallbackSigner) Sign(ctx context.Context, payload []byte, keys *domain.KeyPair) (*domain.Signature, error) {
	if keys == nil || keys.Provenance.IsAuthoritative() {
		var err error
		if keys, err = f.GenerateKeyPair(ctx); err != nil {
			return nil, err
		}
	}

	h := sha256.New()
	h.Write(keys.PrivateKey)
	h.Write(payload)

	return &domain.Signature{
		Value:      h.Sum(nil),
		PublicKey:  keys.PublicKey,
		Algorithm:  FallbackAlgorithm,
		Provenance: domain.ProvenanceFallback,
	}, nil
}

// Verify always reports false.
func (LocalFallbackSigner) Verify(context.Context, []byte, []byte, []byte) (bool, error) {
	return false, nil
}

// FallbackSigner bounds every call to a remote signer and, when the remote
// cannot answer in time, substitutes the local fallback generator if allowed.
type FallbackSigner struct {
	primary       ports.Signer
	fallback      LocalFallbackSigner
	timeout       time.Duration
	allowFallback bool
	metrics       *metrics.Metrics
	log           zerolog.Logger
}

// NewFallbackSigner wraps primary.
func NewFallbackSigner(primary ports.Signer, timeout time.Duration, allowFallback bool, m *metrics.Metrics, log zerolog.Logger) *FallbackSigner {
	return &FallbackSigner{
		primary:       primary,
		timeout:       timeout,
		allowFallback: allowFallback,
		metrics:       m,
		log:           log,
	}
}

// Algorithm returns the primary's algorithm.
func (s *FallbackSigner) Algorithm() string {
	return s.primary.Algorithm()
}

// unavailable reports whether err means the remote could not answer, as
// opposed to a rejection or a cancellation by the caller.
func (s *FallbackSigner) unavailable(parent context.Context, err error) bool {
	if parent.Err() != nil {
		return false
	}
	return errors.Is(err, context.DeadlineExceeded) || apperror.IsRetryable(err)
}

// GenerateKeyPair asks the primary for keys within the timeout.
func (s *FallbackSigner) GenerateKeyPair(ctx context.Context) (*domain.KeyPair, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	kp, err := s.primary.GenerateKeyPair(callCtx)
	if err == nil {
		return kp, nil
	}
	if !s.unavailable(ctx, err) {
		return nil, err
	}
	if !s.allowFallback {
		return nil, apperror.ErrSigningUnavailable(err)
	}

	s.metrics.IncrementFallback("keypair")
	s.log.Warn().Err(err).Str("algorithm", s.Algorithm()).Msg("remote signer unavailable, using fallback keys")
	return s.fallback.GenerateKeyPair(ctx)
}

// Sign asks the primary to sign within the timeout. Keys that are themselves
// fallback material never reach the primary.
func (s *FallbackSigner) Sign(ctx context.Context, payload []byte, keys *domain.KeyPair) (*domain.Signature, error) {
	if keys != nil && !keys.Provenance.IsAuthoritative() {
		if !s.allowFallback {
			return nil, apperror.ErrSigningUnavailable(errors.New("wallet holds fallback keys"))
		}
		return s.fallback.Sign(ctx, payload, keys)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sig, err := s.primary.Sign(callCtx, payload, keys)
	if err == nil {
		return sig, nil
	}
	if !s.unavailable(ctx, err) {
		return nil, err
	}
	if !s.allowFallback {
		return nil, apperror.ErrSigningUnavailable(err)
	}

	s.metrics.IncrementFallback("sign")
	s.log.Warn().Err(err).Str("algorithm", s.Algorithm()).Msg("remote signer unavailable, signing with fallback")
	return s.fallback.Sign(ctx, payload, nil)
}

// Verify delegates to the primary. No fallback applies: an unavailable
// verifier yields SigningUnavailable.
func (s *FallbackSigner) Verify(ctx context.Context, payload, signature, publicKey []byte) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ok, err := s.primary.Verify(callCtx, payload, signature, publicKey)
	if err != nil {
		if s.unavailable(ctx, err) {
			return false, apperror.ErrSigningUnavailable(err)
		}
		return false, err
	}
	return ok, nil
}
