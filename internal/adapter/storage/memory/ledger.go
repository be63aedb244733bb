package memory

import (
	"context"
	"fmt"
	"sync"

	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/internal/core/ports"
)

// LedgerStore keeps the reference ledger's accounts, transactions and
// blocks behind one lock so a seal is observed all at once.
type LedgerStore struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
	owners   map[string]string // owner id -> account id
	txs      map[string]domain.LedgerTransaction
	pending  []string // tx ids in submission order
	nonces   map[nonceKey]string
	blocks   map[uint64]domain.BlockHeader
	latest   uint64
	proofs   map[string][]domain.ProofItem
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		accounts: make(map[string]domain.Account),
		owners:   make(map[string]string),
		txs:      make(map[string]domain.LedgerTransaction),
		nonces:   make(map[nonceKey]string),
		blocks:   make(map[uint64]domain.BlockHeader),
		proofs:   make(map[string][]domain.ProofItem),
	}
}

// Accounts returns the ports.AccountRepository view.
func (s *LedgerStore) Accounts() *AccountRepo { return &AccountRepo{s: s} }

// Transactions returns the ports.TransactionRepository view.
func (s *LedgerStore) Transactions() *TransactionRepo { return &TransactionRepo{s: s} }

// Blocks returns the ports.BlockRepository view.
func (s *LedgerStore) Blocks() *BlockRepo { return &BlockRepo{s: s} }

type AccountRepo struct{ s *LedgerStore }

func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; ok {
		return ports.ErrDuplicate
	}
	if _, ok := s.owners[a.OwnerID]; ok {
		return ports.ErrDuplicate
	}
	s.accounts[a.ID] = *a
	s.owners[a.OwnerID] = a.ID
	return nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *AccountRepo) GetByOwner(ctx context.Context, ownerID string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.owners[ownerID]
	if !ok {
		return nil, nil
	}
	a := r.s.accounts[id]
	return &a, nil
}

func (r *AccountRepo) AllocateNonce(ctx context.Context, id string) (uint64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return 0, fmt.Errorf("allocate nonce: account %s not found", id)
	}
	a.LastNonce++
	s.accounts[id] = a
	return a.LastNonce, nil
}

func (r *AccountRepo) Debit(ctx context.Context, id string, amount int64) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.Balance < amount {
		return false, nil
	}
	a.Balance -= amount
	s.accounts[id] = a
	return true, nil
}

func (r *AccountRepo) Credit(ctx context.Context, id string, amount int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return fmt.Errorf("credit account: %s not found", id)
	}
	a.Balance += amount
	s.accounts[id] = a
	return nil
}

type TransactionRepo struct{ s *LedgerStore }

func (r *TransactionRepo) Create(ctx context.Context, t *domain.LedgerTransaction) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	k := nonceKey{wallet: t.Signed.Payload.FromWallet, nonce: t.Signed.Payload.Nonce}
	if _, ok := s.nonces[k]; ok {
		return ports.ErrDuplicate
	}
	if _, ok := s.txs[t.ID]; ok {
		return ports.ErrDuplicate
	}
	s.txs[t.ID] = *t
	s.nonces[k] = t.ID
	if !t.IsSealed() {
		s.pending = append(s.pending, t.ID)
	}
	return nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*domain.LedgerTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.txs[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *TransactionRepo) ListPending(ctx context.Context, limit int) ([]domain.LedgerTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := r.s.pending
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]domain.LedgerTransaction, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.s.txs[id])
	}
	return out, nil
}

func (r *TransactionRepo) CountPending(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.pending), nil
}

type BlockRepo struct{ s *LedgerStore }

// Seal checks every precondition before mutating anything.
func (r *BlockRepo) Seal(ctx context.Context, b *domain.Block) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blocks[b.Header.Index]; ok {
		return ports.ErrDuplicate
	}
	sealing := make(map[string]bool, len(b.TxIDs))
	for _, id := range b.TxIDs {
		t, ok := s.txs[id]
		if !ok || t.IsSealed() {
			return fmt.Errorf("seal block %d: %s is not pending", b.Header.Index, id)
		}
		sealing[id] = true
	}

	s.blocks[b.Header.Index] = b.Header
	if b.Header.Index > s.latest {
		s.latest = b.Header.Index
	}
	for _, id := range b.TxIDs {
		t := s.txs[id]
		t.Status = domain.TxStatusSealed
		t.BlockIndex = b.Header.Index
		s.txs[id] = t
		s.proofs[id] = append([]domain.ProofItem{}, b.Proofs[id]...)
	}

	remaining := s.pending[:0:0]
	for _, id := range s.pending {
		if !sealing[id] {
			remaining = append(remaining, id)
		}
	}
	s.pending = remaining
	return nil
}

func (r *BlockRepo) Latest(ctx context.Context) (*domain.BlockHeader, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.latest == 0 {
		return nil, nil
	}
	h := r.s.blocks[r.s.latest]
	return &h, nil
}

func (r *BlockRepo) GetByIndex(ctx context.Context, index uint64) (*domain.BlockHeader, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	h, ok := r.s.blocks[index]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (r *BlockRepo) GetProof(ctx context.Context, txID string) ([]domain.ProofItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.proofs[txID]
	if !ok {
		return nil, nil
	}
	return append([]domain.ProofItem{}, p...), nil
}

var (
	_ ports.AccountRepository     = (*AccountRepo)(nil)
	_ ports.TransactionRepository = (*TransactionRepo)(nil)
	_ ports.BlockRepository       = (*BlockRepo)(nil)
	_ ports.WalletStore           = (*WalletStore)(nil)
	_ ports.KeyRing               = (*KeyRing)(nil)
	_ ports.ReceiptArchive        = (*ReceiptArchive)(nil)
	_ ports.IdempotencyCache      = (*IdempotencyCache)(nil)
	_ ports.NonceStore            = (*NonceStore)(nil)
	_ ports.RateLimitStore        = (*RateLimitStore)(nil)
)
