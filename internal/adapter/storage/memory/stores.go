// Package memory holds in-process implementations of the storage ports.
// They back the default client configuration and ledgerd's memory storage.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/internal/core/ports"
)

// WalletStore implements ports.WalletStore.
type WalletStore struct {
	mu      sync.RWMutex
	wallets map[string]domain.Wallet
}

func NewWalletStore() *WalletStore {
	return &WalletStore{wallets: make(map[string]domain.Wallet)}
}

func (s *WalletStore) Get(ctx context.Context, ownerID string) (*domain.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[ownerID]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (s *WalletStore) PutIfAbsent(ctx context.Context, w *domain.Wallet) (*domain.Wallet, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.wallets[w.OwnerID]; ok {
		return &existing, false, nil
	}
	s.wallets[w.OwnerID] = *w
	stored := *w
	return &stored, true, nil
}

// KeyRing implements ports.KeyRing.
type KeyRing struct {
	mu   sync.RWMutex
	keys map[string]domain.KeyPair
}

func NewKeyRing() *KeyRing {
	return &KeyRing{keys: make(map[string]domain.KeyPair)}
}

func (k *KeyRing) Put(ctx context.Context, walletID string, keys *domain.KeyPair) error {
	if keys == nil {
		return errors.New("keyring: nil key pair")
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[walletID] = *keys
	return nil
}

func (k *KeyRing) Get(ctx context.Context, walletID string) (*domain.KeyPair, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	kp, ok := k.keys[walletID]
	if !ok {
		return nil, nil
	}
	return &kp, nil
}

// ReceiptArchive implements ports.ReceiptArchive.
type ReceiptArchive struct {
	mu       sync.RWMutex
	receipts map[string]domain.QuantumReceipt
}

func NewReceiptArchive() *ReceiptArchive {
	return &ReceiptArchive{receipts: make(map[string]domain.QuantumReceipt)}
}

func (a *ReceiptArchive) Store(ctx context.Context, r *domain.QuantumReceipt) (bool, error) {
	if r == nil || r.TxID == "" {
		return false, errors.New("archive: receipt without txId")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.receipts[r.TxID]; ok {
		return false, nil
	}
	a.receipts[r.TxID] = cloneReceipt(*r)
	return true, nil
}

func (a *ReceiptArchive) Get(ctx context.Context, txID string) (*domain.QuantumReceipt, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	r, ok := a.receipts[txID]
	if !ok {
		return nil, nil
	}
	out := cloneReceipt(r)
	return &out, nil
}

func cloneReceipt(r domain.QuantumReceipt) domain.QuantumReceipt {
	r.MerkleProof = append([]domain.ProofItem(nil), r.MerkleProof...)
	return r
}

type expiring struct {
	value     []byte
	expiresAt time.Time // zero never expires
}

func (e expiring) live(now time.Time) bool {
	return e.expiresAt.IsZero() || now.Before(e.expiresAt)
}

func deadline(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

// IdempotencyCache implements ports.IdempotencyCache.
type IdempotencyCache struct {
	mu      sync.Mutex
	entries map[string]expiring
	now     func() time.Time
}

func NewIdempotencyCache() *IdempotencyCache {
	return &IdempotencyCache{entries: make(map[string]expiring), now: time.Now}
}

func (c *IdempotencyCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if !e.live(c.now()) {
		delete(c.entries, key)
		return nil, nil
	}
	return append([]byte(nil), e.value...), nil
}

func (c *IdempotencyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if e, ok := c.entries[key]; ok && e.live(now) {
		return nil
	}
	c.entries[key] = expiring{value: append([]byte(nil), value...), expiresAt: deadline(now, ttl)}
	return nil
}

type nonceKey struct {
	wallet string
	nonce  uint64
}

// NonceStore implements ports.NonceStore.
type NonceStore struct {
	mu     sync.Mutex
	claims map[nonceKey]time.Time
	now    func() time.Time
}

func NewNonceStore() *NonceStore {
	return &NonceStore{claims: make(map[nonceKey]time.Time), now: time.Now}
}

func (s *NonceStore) CheckAndSet(ctx context.Context, walletID string, nonce uint64, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := nonceKey{wallet: walletID, nonce: nonce}
	now := s.now()
	if exp, ok := s.claims[k]; ok && (exp.IsZero() || now.Before(exp)) {
		return false, nil
	}
	s.claims[k] = deadline(now, ttl)
	return true, nil
}

func (s *NonceStore) Release(ctx context.Context, walletID string, nonce uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claims, nonceKey{wallet: walletID, nonce: nonce})
	return nil
}

type window struct {
	id    int64
	count int64
}

// RateLimitStore implements ports.RateLimitStore with fixed windows.
type RateLimitStore struct {
	mu      sync.Mutex
	windows map[string]window
	now     func() time.Time
}

func NewRateLimitStore() *RateLimitStore {
	return &RateLimitStore{windows: make(map[string]window), now: time.Now}
}

func (s *RateLimitStore) Allow(ctx context.Context, key string, limit int64, w time.Duration) (*ports.RateLimitResult, error) {
	secs := int64(w / time.Second)
	if secs < 1 {
		secs = 1
	}
	id := s.now().Unix() / secs

	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.windows[key]
	if cur.id != id {
		cur = window{id: id}
	}
	cur.count++
	s.windows[key] = cur

	return ports.NewRateLimitResult(cur.count, limit, (id+1)*secs), nil
}
