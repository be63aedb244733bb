package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"sync/atomic"
	"time"

	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/internal/core/ports"
	"quantum-receipt-gateway/internal/merkle"
	"quantum-receipt-gateway/pkg/apperror"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DemoAlgorithm tags receipts synthesized without a ledger.
const DemoAlgorithm = "demo"

// Snapshot is the last receipt produced or verified.
type Snapshot struct {
	Receipt *domain.QuantumReceipt
	Result  *domain.VerificationResult
	At      time.Time
}

// ReceiptServiceImpl is the entry point used by the banking module.
type ReceiptServiceImpl struct {
	wallets   ports.WalletRegistry
	coord     *Coordinator
	verifier  ports.ReceiptVerifier
	allowDemo bool
	last      atomic.Pointer[Snapshot]
	log       zerolog.Logger
	now       func() time.Time
}

// NewReceiptService creates a new ReceiptServiceImpl.
func NewReceiptService(
	wallets ports.WalletRegistry,
	coord *Coordinator,
	verifier ports.ReceiptVerifier,
	allowDemo bool,
	log zerolog.Logger,
) *ReceiptServiceImpl {
	return &ReceiptServiceImpl{
		wallets:   wallets,
		coord:     coord,
		verifier:  verifier,
		allowDemo: allowDemo,
		log:       log,
		now:       time.Now,
	}
}

// GenerateReceipt settles a bank transfer on the ledger and returns its
// receipt. txID is the bank's transaction id and doubles as the client
// request id, so calling again for the same transfer reuses its nonce.
func (s *ReceiptServiceImpl) GenerateReceipt(
	ctx context.Context,
	txID, fromAccount, toAccount string,
	amount int64,
	currency string,
) (*domain.QuantumReceipt, error) {
	switch {
	case txID == "":
		return nil, apperror.Validation("txId is required")
	case fromAccount == "" || toAccount == "":
		return nil, apperror.Validation("fromAccount and toAccount are required")
	case currency == "":
		return nil, apperror.Validation("currency is required")
	case amount <= 0:
		return nil, apperror.ErrInvalidAmount()
	}

	var from, to *domain.Wallet
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		from, err = s.wallets.Ensure(gctx, fromAccount)
		return err
	})
	g.Go(func() (err error) {
		to, err = s.wallets.Ensure(gctx, toAccount)
		return err
	})
	if err := g.Wait(); err != nil {
		return s.demoOr(txID, fromAccount, toAccount, amount, currency, err)
	}

	t, err := s.coord.Run(ctx, ports.PrepareRequest{
		WalletID:        from.WalletID,
		To:              to.WalletID,
		Amount:          amount,
		Currency:        currency,
		ClientRequestID: txID,
	})
	if err != nil {
		// Once signed the transfer may already be at the ledger, so it is
		// never replaced by a demo receipt.
		if t != nil && t.State != domain.TransferDraft {
			return nil, err
		}
		return s.demoOr(txID, from.WalletID, to.WalletID, amount, currency, err)
	}

	s.record(t.Receipt, nil)
	return t.Receipt, nil
}

func (s *ReceiptServiceImpl) demoOr(txID, from, to string, amount int64, currency string, err error) (*domain.QuantumReceipt, error) {
	if !s.allowDemo || !apperror.IsRetryable(err) {
		return nil, err
	}

	s.log.Warn().Err(err).Str("tx_id", txID).Msg("ledger unreachable, issuing demo receipt")
	r := newDemoReceipt(txID, domain.TransactionPayload{
		FromWallet: from,
		To:         to,
		Amount:     amount,
		Currency:   currency,
		Nonce:      1,
		Timestamp:  s.now().Unix(),
	})
	s.record(r, nil)
	return r, nil
}

// newDemoReceipt builds a single-leaf receipt whose root is the leaf hash.
// The proof checks out, the provenance does not.
func newDemoReceipt(txID string, p domain.TransactionPayload) *domain.QuantumReceipt {
	canonical := p.Canonical()
	leaf := merkle.HashLeaf(canonical)
	sig := sha256.Sum256(append([]byte("demo:"), canonical...))

	return &domain.QuantumReceipt{
		TxID:       txID,
		Tx:         p,
		Signature:  base64.StdEncoding.EncodeToString(sig[:]),
		PublicKey:  base64.StdEncoding.EncodeToString([]byte("demo")),
		Algorithm:  DemoAlgorithm,
		Provenance: domain.ProvenanceDemo,
		BlockHeader: domain.BlockHeader{
			Index:      0,
			SealedAt:   p.Timestamp,
			MerkleRoot: hex.EncodeToString(leaf),
		},
		MerkleProof: []domain.ProofItem{},
	}
}

// Verify checks r remotely when possible. It never fails.
func (s *ReceiptServiceImpl) Verify(ctx context.Context, r *domain.QuantumReceipt) domain.VerificationResult {
	res := s.verifier.Verify(ctx, r)
	s.record(r, &res)
	return res
}

// VerifyOffline runs only the structural checks.
func (s *ReceiptServiceImpl) VerifyOffline(r *domain.QuantumReceipt) bool {
	return s.verifier.Offline(r).Valid
}

// Last returns the most recent snapshot, or nil before the first call.
func (s *ReceiptServiceImpl) Last() *Snapshot {
	return s.last.Load()
}

func (s *ReceiptServiceImpl) record(r *domain.QuantumReceipt, res *domain.VerificationResult) {
	s.last.Store(&Snapshot{Receipt: r, Result: res, At: s.now().UTC()})
}
