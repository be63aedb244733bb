// Package ledger is the reference ledger behind cmd/ledgerd. It issues
// nonces, accepts signed transactions, seals them into Merkle blocks and
// serves receipts.
package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"quantum-receipt-gateway/config"
	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/internal/core/ports"
	"quantum-receipt-gateway/internal/merkle"
	"quantum-receipt-gateway/internal/metrics"
	"quantum-receipt-gateway/internal/service"
	"quantum-receipt-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Stores groups the persistence the ledger needs.
type Stores struct {
	Accounts     ports.AccountRepository
	Transactions ports.TransactionRepository
	Blocks       ports.BlockRepository
	Prepared     ports.IdempotencyCache
	Submissions  ports.NonceStore
}

// ServiceImpl implements ports.LedgerService.
type ServiceImpl struct {
	accounts ports.AccountRepository
	txs      ports.TransactionRepository
	blocks   ports.BlockRepository
	prepared ports.IdempotencyCache
	guard    ports.NonceStore
	cfg      config.LedgerdConfig
	metrics  *metrics.Metrics
	log      zerolog.Logger
	now      func() time.Time

	// sealMu serialises block index allocation.
	sealMu sync.Mutex
}

// NewService creates a new ledger ServiceImpl.
func NewService(st Stores, cfg config.LedgerdConfig, m *metrics.Metrics, log zerolog.Logger) *ServiceImpl {
	return &ServiceImpl{
		accounts: st.Accounts,
		txs:      st.Transactions,
		blocks:   st.Blocks,
		prepared: st.Prepared,
		guard:    st.Submissions,
		cfg:      cfg,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// CreateWallet opens an account for ownerID, or returns the existing one.
func (s *ServiceImpl) CreateWallet(ctx context.Context, ownerID, publicKey string) (*domain.Account, error) {
	if ownerID == "" {
		return nil, apperror.Validation("ownerId is required")
	}

	existing, err := s.accounts.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup owner: %w", err))
	}
	if existing != nil {
		return existing, nil
	}

	a := &domain.Account{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		PublicKey: publicKey,
		Balance:   s.cfg.OpeningBalance,
		CreatedAt: s.now().UTC(),
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		if !errors.Is(err, ports.ErrDuplicate) {
			return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
		}
		// A concurrent request for the same owner won.
		winner, err := s.accounts.GetByOwner(ctx, ownerID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("reload owner after conflict: %w", err))
		}
		if winner == nil {
			return nil, apperror.InternalError(fmt.Errorf("account %s conflicts with no owner", a.ID))
		}
		return winner, nil
	}

	s.log.Info().
		Str("wallet_id", a.ID).
		Str("owner_id", ownerID).
		Int64("balance", a.Balance).
		Msg("wallet created")
	return a, nil
}

func preparedKey(req ports.PrepareRequest) string {
	return req.WalletID + ":" + req.ClientRequestID
}

// Prepare allocates the next nonce and issues the payload to sign. A repeated
// ClientRequestID returns the first payload instead of a new nonce.
func (s *ServiceImpl) Prepare(ctx context.Context, req ports.PrepareRequest) (*domain.TransactionPayload, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	if req.ClientRequestID != "" {
		if p := s.cachedPrepare(ctx, req); p != nil {
			if p.To != req.To || p.Amount != req.Amount || p.Currency != req.Currency {
				return nil, apperror.Validation("clientRequestId was already used for a different transfer")
			}
			return p, nil
		}
	}

	a, err := s.accounts.GetByID(ctx, req.WalletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup wallet: %w", err))
	}
	if a == nil {
		return nil, apperror.ErrInvalidWallet()
	}
	if !a.CanCover(req.Amount) {
		return nil, apperror.ErrInsufficientFunds()
	}

	nonce, err := s.accounts.AllocateNonce(ctx, a.ID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	p := &domain.TransactionPayload{
		FromWallet: a.ID,
		To:         req.To,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Nonce:      nonce,
		Timestamp:  s.now().Unix(),
	}

	if req.ClientRequestID != "" {
		raw, _ := json.Marshal(p)
		if err := s.prepared.Set(ctx, preparedKey(req), raw, s.cfg.IdempotencyTTL); err != nil {
			s.log.Warn().Err(err).Str("client_request_id", req.ClientRequestID).Msg("failed to cache prepared payload")
		}
	}
	return p, nil
}

func (s *ServiceImpl) cachedPrepare(ctx context.Context, req ports.PrepareRequest) *domain.TransactionPayload {
	raw, err := s.prepared.Get(ctx, preparedKey(req))
	if err != nil {
		s.log.Warn().Err(err).Str("client_request_id", req.ClientRequestID).Msg("prepare cache lookup failed, issuing a new nonce")
		return nil
	}
	if raw == nil {
		return nil
	}
	var p domain.TransactionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		s.log.Warn().Err(err).Str("client_request_id", req.ClientRequestID).Msg("discarding undecodable prepared payload")
		return nil
	}
	return &p
}

// Submit accepts a signed transaction, debits the sender and queues the
// transaction for sealing.
func (s *ServiceImpl) Submit(ctx context.Context, tx domain.SignedTransaction) (string, error) {
	p := tx.Payload
	if p.Amount <= 0 {
		return "", apperror.ErrInvalidAmount()
	}
	if err := p.Validate(); err != nil {
		return "", apperror.Validation(err.Error())
	}
	if tx.Signature == "" || tx.PublicKey == "" {
		return "", apperror.ErrInvalidSignature()
	}

	a, err := s.accounts.GetByID(ctx, p.FromWallet)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("lookup wallet: %w", err))
	}
	if a == nil {
		return "", apperror.ErrInvalidWallet()
	}
	if p.Nonce > a.LastNonce {
		return "", apperror.Validation(fmt.Sprintf("nonce %d was never issued", p.Nonce))
	}

	if err := s.checkSignature(ctx, a, tx); err != nil {
		return "", err
	}

	claimed, err := s.guard.CheckAndSet(ctx, p.FromWallet, p.Nonce, 0)
	if err != nil {
		// The (wallet, nonce) unique constraint still rejects replays.
		s.log.Warn().Err(err).Str("wallet_id", p.FromWallet).Msg("submission guard unavailable, relying on the store")
	} else if !claimed {
		return "", apperror.ErrAlreadySubmitted()
	}

	release := func() {
		if claimed {
			s.release(ctx, p)
		}
	}

	ok, err := s.accounts.Debit(ctx, p.FromWallet, p.Amount)
	if err != nil {
		release()
		return "", apperror.InternalError(fmt.Errorf("debit: %w", err))
	}
	if !ok {
		release()
		return "", apperror.ErrInsufficientFunds()
	}

	lt := &domain.LedgerTransaction{
		ID:          uuid.New().String(),
		Signed:      tx,
		PayloadHash: merkle.LeafHex(p),
		Status:      domain.TxStatusPending,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.txs.Create(ctx, lt); err != nil {
		s.refund(ctx, p)
		if errors.Is(err, ports.ErrDuplicate) {
			return "", apperror.ErrAlreadySubmitted()
		}
		release()
		return "", apperror.InternalError(fmt.Errorf("store transaction: %w", err))
	}

	s.creditRecipient(ctx, p)

	s.log.Info().
		Str("tx_id", lt.ID).
		Str("wallet_id", p.FromWallet).
		Uint64("nonce", p.Nonce).
		Int64("amount", p.Amount).
		Msg("transaction accepted")

	s.sealIfFull(ctx)
	return lt.ID, nil
}

// checkSignature binds tx to the sender's registered key and verifies it.
// Non-authoritative signatures carry a substituted key and cannot be bound;
// they are only accepted with ledgerd.accept_fallback and never verify later.
func (s *ServiceImpl) checkSignature(ctx context.Context, a *domain.Account, tx domain.SignedTransaction) error {
	if !tx.Provenance.IsAuthoritative() {
		if !s.cfg.AcceptFallback {
			s.log.Warn().Str("wallet_id", a.ID).Str("provenance", string(tx.Provenance)).Msg("non-authoritative submission refused")
			return apperror.ErrInvalidSignature()
		}
		return nil
	}
	if a.PublicKey != "" && !sameKey(a.PublicKey, tx.PublicKey) {
		s.log.Warn().Str("wallet_id", a.ID).Msg("submission signed with a key the wallet did not register")
		return apperror.ErrInvalidSignature()
	}
	scheme, err := service.NewSchemeSigner(s.algorithmOf(tx.Algorithm))
	if err != nil {
		return apperror.ErrInvalidSignature()
	}
	valid, err := verifyEncoded(ctx, scheme, tx.Payload.Canonical(), tx.Signature, tx.PublicKey)
	if err != nil {
		return apperror.InternalError(err)
	}
	if !valid {
		return apperror.ErrInvalidSignature()
	}
	return nil
}

// sameKey compares two base64 keys by their decoded bytes.
func sameKey(registered, presented string) bool {
	a, err := base64.StdEncoding.DecodeString(registered)
	if err != nil {
		return false
	}
	b, err := base64.StdEncoding.DecodeString(presented)
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

func (s *ServiceImpl) algorithmOf(name string) string {
	if name == "" {
		return s.cfg.PQCAlgorithm
	}
	return name
}

func verifyEncoded(ctx context.Context, scheme *service.SchemeSigner, payload []byte, sigB64, pubB64 string) (bool, error) {
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return false, nil
	}
	pub, err := base64.StdEncoding.DecodeString(pubB64)
	if err != nil {
		return false, nil
	}
	return scheme.Verify(ctx, payload, sig, pub)
}

func (s *ServiceImpl) refund(ctx context.Context, p domain.TransactionPayload) {
	if err := s.accounts.Credit(ctx, p.FromWallet, p.Amount); err != nil {
		s.log.Error().Err(err).Str("wallet_id", p.FromWallet).Int64("amount", p.Amount).Msg("refund after failed submit")
	}
}

// release frees a guard claim so the same signed transaction can be
// resubmitted after a failure that recorded nothing.
func (s *ServiceImpl) release(ctx context.Context, p domain.TransactionPayload) {
	if err := s.guard.Release(ctx, p.FromWallet, p.Nonce); err != nil {
		s.log.Warn().Err(err).Str("wallet_id", p.FromWallet).Uint64("nonce", p.Nonce).Msg("release submission claim")
	}
}

func (s *ServiceImpl) creditRecipient(ctx context.Context, p domain.TransactionPayload) {
	to, err := s.accounts.GetByID(ctx, p.To)
	if err != nil || to == nil {
		return
	}
	if err := s.accounts.Credit(ctx, to.ID, p.Amount); err != nil {
		s.log.Error().Err(err).Str("wallet_id", to.ID).Msg("credit recipient")
	}
}

func (s *ServiceImpl) sealIfFull(ctx context.Context) {
	n, err := s.txs.CountPending(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("count pending")
		return
	}
	if n < s.cfg.BatchSize {
		return
	}
	if _, err := s.SealPending(ctx); err != nil {
		s.log.Error().Err(err).Msg("seal on full batch")
	}
}

// SealPending seals every pending transaction into the next block. It
// returns nil when nothing is pending.
func (s *ServiceImpl) SealPending(ctx context.Context) (*domain.BlockHeader, error) {
	s.sealMu.Lock()
	defer s.sealMu.Unlock()

	pending, err := s.txs.ListPending(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	leaves := make([][]byte, len(pending))
	ids := make([]string, len(pending))
	for i, t := range pending {
		leaf, err := hex.DecodeString(t.PayloadHash)
		if err != nil {
			return nil, fmt.Errorf("decode leaf of %s: %w", t.ID, err)
		}
		leaves[i] = leaf
		ids[i] = t.ID
	}

	tree, err := merkle.Build(leaves)
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}

	prev, err := s.blocks.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest block: %w", err)
	}
	var index uint64 = 1
	if prev != nil {
		index = prev.Index + 1
	}

	block := &domain.Block{
		Header: domain.BlockHeader{
			Index:      index,
			SealedAt:   s.now().Unix(),
			MerkleRoot: tree.Root(),
		},
		TxIDs:  ids,
		Proofs: make(map[string][]domain.ProofItem, len(ids)),
	}
	for i, id := range ids {
		proof, err := tree.Proof(i)
		if err != nil {
			return nil, fmt.Errorf("proof of %s: %w", id, err)
		}
		block.Proofs[id] = proof
	}

	if err := s.blocks.Seal(ctx, block); err != nil {
		return nil, fmt.Errorf("seal block %d: %w", index, err)
	}

	s.metrics.ObserveBlock(len(ids))
	s.log.Info().
		Uint64("block_index", index).
		Int("transactions", len(ids)).
		Str("merkle_root", block.Header.MerkleRoot).
		Msg("block sealed")
	return &block.Header, nil
}

// RunSealer seals on every interval tick until ctx is done.
func (s *ServiceImpl) RunSealer(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SealInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SealPending(ctx); err != nil && ctx.Err() == nil {
				s.log.Error().Err(err).Msg("periodic seal failed")
			}
		}
	}
}

// Receipt assembles the receipt of a sealed transaction.
func (s *ServiceImpl) Receipt(ctx context.Context, txID string) (*domain.QuantumReceipt, error) {
	t, err := s.txs.GetByID(ctx, txID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup transaction: %w", err))
	}
	if t == nil {
		return nil, apperror.ErrTxNotFound()
	}
	if !t.IsSealed() {
		return nil, apperror.ErrNotSealed()
	}

	header, err := s.blocks.GetByIndex(ctx, t.BlockIndex)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup block: %w", err))
	}
	if header == nil {
		return nil, apperror.InternalError(fmt.Errorf("block %d of %s missing", t.BlockIndex, txID))
	}
	proof, err := s.blocks.GetProof(ctx, txID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup proof: %w", err))
	}
	if proof == nil {
		proof = []domain.ProofItem{}
	}

	return &domain.QuantumReceipt{
		TxID:        t.ID,
		Tx:          t.Signed.Payload,
		Signature:   t.Signed.Signature,
		PublicKey:   t.Signed.PublicKey,
		Algorithm:   t.Signed.Algorithm,
		Provenance:  t.Signed.Provenance,
		BlockHeader: *header,
		MerkleProof: proof,
	}, nil
}

// Verify attests a receipt. Checks run in a fixed order and the first
// failure names the verdict.
func (s *ServiceImpl) Verify(ctx context.Context, r *domain.QuantumReceipt) (*ports.RemoteVerdict, error) {
	invalid := func(reason string) (*ports.RemoteVerdict, error) {
		return &ports.RemoteVerdict{Valid: false, Reason: reason}, nil
	}

	switch {
	case r == nil:
		return invalid(domain.ReasonMissingReceipt)
	case r.Signature == "":
		return invalid(domain.ReasonMissingSignature)
	case r.PublicKey == "":
		return invalid(domain.ReasonMissingPublicKey)
	case !r.Provenance.IsAuthoritative():
		return invalid(domain.ReasonNonAuthoritative)
	}

	scheme, err := service.NewSchemeSigner(s.algorithmOf(r.Algorithm))
	if err != nil {
		return invalid(domain.ReasonSignatureInvalid)
	}
	valid, err := verifyEncoded(ctx, scheme, r.Tx.Canonical(), r.Signature, r.PublicKey)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if !valid {
		return invalid(domain.ReasonSignatureInvalid)
	}

	if !merkle.VerifyReceipt(r) {
		return invalid(domain.ReasonMerkleMismatch)
	}

	stored, err := s.blocks.GetByIndex(ctx, r.BlockHeader.Index)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup block: %w", err))
	}
	if stored == nil || *stored != r.BlockHeader {
		return invalid(domain.ReasonHeaderMismatch)
	}

	if r.TxID != "" {
		t, err := s.txs.GetByID(ctx, r.TxID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("lookup transaction: %w", err))
		}
		if t == nil {
			return invalid(domain.ReasonUnknownTransaction)
		}
		if t.BlockIndex != r.BlockHeader.Index {
			return invalid(domain.ReasonHeaderMismatch)
		}
	}

	return &ports.RemoteVerdict{Valid: true}, nil
}
