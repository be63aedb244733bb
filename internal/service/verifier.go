package service

import (
	"context"

	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/internal/core/ports"
	"quantum-receipt-gateway/internal/merkle"
	"quantum-receipt-gateway/internal/metrics"

	"github.com/rs/zerolog"
)

// ReceiptVerifierImpl implements ports.ReceiptVerifier.
type ReceiptVerifierImpl struct {
	ledger  ports.Ledger
	probe   ports.AvailabilityProbe
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewReceiptVerifier creates a new ReceiptVerifierImpl.
func NewReceiptVerifier(ledger ports.Ledger, probe ports.AvailabilityProbe, m *metrics.Metrics, log zerolog.Logger) *ReceiptVerifierImpl {
	return &ReceiptVerifierImpl{ledger: ledger, probe: probe, metrics: m, log: log}
}

// Verify asks the ledger when it is reachable and falls back to the offline
// check otherwise. A remote failure after a positive probe yields a wholly
// offline verdict.
func (v *ReceiptVerifierImpl) Verify(ctx context.Context, r *domain.QuantumReceipt) domain.VerificationResult {
	res := v.verify(ctx, r)
	v.metrics.ObserveVerification(string(res.Mode), res.Valid)
	return res
}

func (v *ReceiptVerifierImpl) verify(ctx context.Context, r *domain.QuantumReceipt) domain.VerificationResult {
	if r == nil {
		return domain.Invalid(domain.ModeOffline, domain.ReasonMissingReceipt)
	}
	if !v.probe.Reachable(ctx) {
		v.log.Info().Str("tx_id", r.TxID).Msg("ledger unreachable, verifying offline")
		return v.Offline(r)
	}

	verdict, err := v.ledger.Verify(ctx, r)
	if err != nil {
		v.log.Warn().Err(err).Str("tx_id", r.TxID).Msg("remote verification failed, verifying offline")
		return v.Offline(r)
	}

	if !r.Provenance.IsAuthoritative() {
		return domain.Invalid(domain.ModeRemote, domain.ReasonNonAuthoritative)
	}
	if !verdict.Valid {
		reason := verdict.Reason
		if reason == "" {
			reason = domain.ReasonSignatureInvalid
		}
		return domain.Invalid(domain.ModeRemote, reason)
	}
	return domain.Valid(domain.ModeRemote)
}

// Offline runs the structural checks only: presence, provenance and the
// Merkle inclusion proof. Signatures are not checked.
func (v *ReceiptVerifierImpl) Offline(r *domain.QuantumReceipt) domain.VerificationResult {
	switch {
	case r == nil:
		return domain.Invalid(domain.ModeOffline, domain.ReasonMissingReceipt)
	case r.Signature == "":
		return domain.Invalid(domain.ModeOffline, domain.ReasonMissingSignature)
	case r.PublicKey == "":
		return domain.Invalid(domain.ModeOffline, domain.ReasonMissingPublicKey)
	case !r.Provenance.IsAuthoritative():
		return domain.Invalid(domain.ModeOffline, domain.ReasonNonAuthoritative)
	case !merkle.VerifyReceipt(r):
		return domain.Invalid(domain.ModeOffline, domain.ReasonMerkleMismatch)
	}
	return domain.Valid(domain.ModeOffline)
}
