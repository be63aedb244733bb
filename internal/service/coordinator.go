package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quantum-receipt-gateway/config"
	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/internal/core/ports"
	"quantum-receipt-gateway/internal/metrics"
	"quantum-receipt-gateway/pkg/apperror"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SealPolicy bounds the receipt polling loop.
type SealPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// SealPolicyFromConfig copies the seal section of the configuration.
func SealPolicyFromConfig(c config.SealConfig) SealPolicy {
	return SealPolicy{
		MaxAttempts:     c.MaxAttempts,
		InitialInterval: c.InitialInterval,
		MaxInterval:     c.MaxInterval,
		Multiplier:      c.Multiplier,
	}
}

func (p SealPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	// WithMaxRetries treats zero as unlimited.
	if p.MaxAttempts <= 1 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1)), ctx)
}

// Coordinator drives a transfer through prepare, sign, submit, seal and
// receipt retrieval. It holds no per-transfer state; callers own the Transfer.
type Coordinator struct {
	ledger  ports.Ledger
	signer  ports.Signer
	wallets ports.WalletRegistry
	archive ports.ReceiptArchive
	policy  SealPolicy
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// NewCoordinator creates a new Coordinator.
func NewCoordinator(
	ledger ports.Ledger,
	signer ports.Signer,
	wallets ports.WalletRegistry,
	archive ports.ReceiptArchive,
	policy SealPolicy,
	m *metrics.Metrics,
	log zerolog.Logger,
) *Coordinator {
	return &Coordinator{
		ledger:  ledger,
		signer:  signer,
		wallets: wallets,
		archive: archive,
		policy:  policy,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

func (c *Coordinator) advance(t *domain.Transfer, state domain.TransferState) {
	t.Advance(state, c.now().UTC())
	c.metrics.ObserveTransition(string(state))
	c.log.Debug().
		Str("client_request_id", t.ClientRequestID).
		Str("tx_id", t.TxID).
		Str("state", string(state)).
		Msg("transfer advanced")
}

// settle records err on t. Rejections, protocol, signing and validation
// failures are terminal; transport, internal and cancellation errors leave
// the state alone so the step can be retried.
func (c *Coordinator) settle(t *domain.Transfer, err error) error {
	switch apperror.KindOf(err) {
	case apperror.KindRejection, apperror.KindProtocol, apperror.KindSigning, apperror.KindValidation:
	default:
		return err
	}

	code := apperror.CodeInternal
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}
	t.Fail(code, err.Error(), c.now().UTC())
	c.metrics.ObserveTransition(string(domain.TransferFailed))
	c.log.Warn().
		Err(err).
		Str("client_request_id", t.ClientRequestID).
		Str("tx_id", t.TxID).
		Str("failure_code", code).
		Msg("transfer failed")
	return err
}

func expect(t *domain.Transfer, state domain.TransferState, op string) error {
	if t == nil {
		return apperror.ErrInvalidTransition("nil", op)
	}
	if t.State != state {
		return apperror.ErrInvalidTransition(string(t.State), op)
	}
	return nil
}

// Prepare asks the ledger for a payload. The returned transfer is prepared,
// failed, or still draft when the ledger could not be reached; in the last
// case calling Prepare again with t.ClientRequestID is safe.
func (c *Coordinator) Prepare(ctx context.Context, req ports.PrepareRequest) (*domain.Transfer, error) {
	if req.ClientRequestID == "" {
		req.ClientRequestID = uuid.New().String()
	}
	t := &domain.Transfer{
		ClientRequestID: req.ClientRequestID,
		WalletID:        req.WalletID,
		State:           domain.TransferDraft,
		UpdatedAt:       c.now().UTC(),
	}

	if req.Amount <= 0 {
		return t, c.settle(t, apperror.ErrInvalidAmount())
	}

	payload, err := c.ledger.Prepare(ctx, req)
	if err != nil {
		return t, c.settle(t, err)
	}
	if err := echoes(payload, req); err != nil {
		return t, c.settle(t, apperror.ErrMalformedResponse(err))
	}

	t.Payload = payload
	c.advance(t, domain.TransferPrepared)
	return t, nil
}

func echoes(p *domain.TransactionPayload, req ports.PrepareRequest) error {
	if p == nil {
		return errors.New("prepare returned no payload")
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("prepared payload: %w", err)
	}
	if p.FromWallet != req.WalletID || p.To != req.To || p.Amount != req.Amount || p.Currency != req.Currency {
		return errors.New("prepared payload does not echo the request")
	}
	return nil
}

// Sign signs the canonical payload with the wallet's keys.
func (c *Coordinator) Sign(ctx context.Context, t *domain.Transfer) error {
	if err := expect(t, domain.TransferPrepared, "sign"); err != nil {
		return err
	}

	keys, err := c.wallets.Keys(ctx, t.WalletID)
	if err != nil {
		return c.settle(t, err)
	}

	sig, err := c.signer.Sign(ctx, t.Payload.Canonical(), keys)
	if err != nil {
		return c.settle(t, err)
	}

	signed := domain.NewSignedTransaction(*t.Payload, sig)
	t.Signed = &signed
	c.advance(t, domain.TransferSigned)
	return nil
}

// Submit sends the signed transaction. A transport failure keeps the
// transfer signed; resubmitting is safe because the nonce is fixed.
func (c *Coordinator) Submit(ctx context.Context, t *domain.Transfer) error {
	if err := expect(t, domain.TransferSigned, "submit"); err != nil {
		return err
	}

	txID, err := c.ledger.Submit(ctx, *t.Signed)
	if err != nil {
		return c.settle(t, err)
	}
	if txID == "" {
		return c.settle(t, apperror.ErrMalformedResponse(errors.New("submit returned no txId")))
	}

	t.TxID = txID
	c.advance(t, domain.TransferSubmitted)
	return nil
}

// AwaitSeal polls for the receipt until the transaction is sealed or the
// policy is exhausted. Exhaustion returns SealTimeout and cancellation
// returns ctx.Err(); both leave the transfer submitted.
func (c *Coordinator) AwaitSeal(ctx context.Context, t *domain.Transfer) error {
	if err := expect(t, domain.TransferSubmitted, "await seal of"); err != nil {
		return err
	}

	var (
		receipt  *domain.QuantumReceipt
		attempts int
	)
	poll := func() error {
		attempts++
		r, err := c.ledger.Receipt(ctx, t.TxID)
		switch {
		case err == nil:
			receipt = r
			return nil
		case ctx.Err() != nil:
			return backoff.Permanent(ctx.Err())
		case apperror.HasCode(err, apperror.CodeNotSealed), apperror.IsRetryable(err):
			c.log.Debug().Err(err).Str("tx_id", t.TxID).Int("attempt", attempts).Msg("not sealed yet")
			return err
		default:
			return backoff.Permanent(err)
		}
	}

	err := backoff.Retry(poll, c.policy.backOff(ctx))
	switch {
	case err == nil:
	case ctx.Err() != nil:
		c.metrics.ObserveSealAttempts("cancelled", attempts)
		return ctx.Err()
	case apperror.HasCode(err, apperror.CodeNotSealed), apperror.IsRetryable(err):
		c.metrics.ObserveSealAttempts("timeout", attempts)
		c.log.Warn().Err(err).Str("tx_id", t.TxID).Int("attempts", attempts).Msg("seal wait exhausted")
		return apperror.ErrSealTimeout(t.TxID, attempts)
	default:
		c.metrics.ObserveSealAttempts("error", attempts)
		return c.settle(t, err)
	}

	if receipt == nil {
		c.metrics.ObserveSealAttempts("error", attempts)
		return c.settle(t, apperror.ErrMalformedResponse(errors.New("empty receipt")))
	}

	c.metrics.ObserveSealAttempts("sealed", attempts)
	t.Receipt = receipt
	c.advance(t, domain.TransferSealed)
	return nil
}

// Resume rebuilds a submitted transfer from its tx id so seal polling can
// continue after a restart. Without payload the receipt cannot be checked
// against the submission.
func (c *Coordinator) Resume(txID string, payload *domain.TransactionPayload) *domain.Transfer {
	t := &domain.Transfer{
		TxID:      txID,
		Payload:   payload,
		State:     domain.TransferSubmitted,
		UpdatedAt: c.now().UTC(),
	}
	if payload != nil {
		t.WalletID = payload.FromWallet
	}
	return t
}

// FetchReceipt checks the sealed receipt against the submitted payload,
// archives it and returns it.
func (c *Coordinator) FetchReceipt(ctx context.Context, t *domain.Transfer) (*domain.QuantumReceipt, error) {
	if err := expect(t, domain.TransferSealed, "fetch receipt of"); err != nil {
		return nil, err
	}

	r := t.Receipt
	if r == nil {
		var err error
		if r, err = c.ledger.Receipt(ctx, t.TxID); err != nil {
			return nil, c.settle(t, err)
		}
	}

	if r.TxID == "" {
		r.TxID = t.TxID
	}
	if r.TxID != t.TxID {
		return nil, c.settle(t, apperror.ErrReceiptMismatch(t.TxID))
	}
	if t.Payload == nil {
		c.log.Warn().Str("tx_id", t.TxID).Msg("no submitted payload to compare, adopting receipt payload")
		p := r.Tx
		t.Payload = &p
	} else if r.Tx != *t.Payload {
		return nil, c.settle(t, apperror.ErrReceiptMismatch(t.TxID))
	}

	stored, err := c.archive.Store(ctx, r)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("archive receipt: %w", err))
	}
	if !stored {
		c.log.Debug().Str("tx_id", t.TxID).Msg("receipt already archived")
	}

	t.Receipt = r
	c.advance(t, domain.TransferReceiptRetrieved)
	return r, nil
}

// Run executes the whole pipeline. The transfer is returned in whatever
// state it reached, together with the error that stopped it.
func (c *Coordinator) Run(ctx context.Context, req ports.PrepareRequest) (*domain.Transfer, error) {
	t, err := c.Prepare(ctx, req)
	if err != nil {
		return t, err
	}
	if err := c.Sign(ctx, t); err != nil {
		return t, err
	}
	if err := c.Submit(ctx, t); err != nil {
		return t, err
	}
	if err := c.AwaitSeal(ctx, t); err != nil {
		return t, err
	}
	if _, err := c.FetchReceipt(ctx, t); err != nil {
		return t, err
	}

	c.log.Info().
		Str("client_request_id", t.ClientRequestID).
		Str("tx_id", t.TxID).
		Uint64("block_index", t.Receipt.BlockHeader.Index).
		Msg("receipt retrieved")
	return t, nil
}
