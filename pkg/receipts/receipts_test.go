package receipts_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"quantum-receipt-gateway/config"
	"quantum-receipt-gateway/internal/adapter/http/handler"
	"quantum-receipt-gateway/internal/adapter/storage/memory"
	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/internal/ledger"
	"quantum-receipt-gateway/internal/merkle"
	"quantum-receipt-gateway/internal/metrics"
	"quantum-receipt-gateway/pkg/apperror"
	"quantum-receipt-gateway/pkg/receipts"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// startLedger runs a reference ledger on memory storage.
func startLedger(t *testing.T, batchSize int) *httptest.Server {
	t.Helper()
	store := memory.NewLedgerStore()
	cfg := config.LedgerdConfig{
		BatchSize:      batchSize,
		SealInterval:   50 * time.Millisecond,
		OpeningBalance: 10_000,
		IdempotencyTTL: time.Hour,
		PQCAlgorithm:   "ML-DSA-44",
		MaxBodyBytes:   1 << 20,
	}
	svc := ledger.NewService(ledger.Stores{
		Accounts:     store.Accounts(),
		Transactions: store.Transactions(),
		Blocks:       store.Blocks(),
		Prepared:     memory.NewIdempotencyCache(),
		Submissions:  memory.NewNonceStore(),
	}, cfg, metrics.New(nil), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.RunSealer(ctx)
	}()

	srv := httptest.NewServer(handler.SetupRouter(handler.RouterDeps{LedgerSvc: svc, Config: cfg, Logger: zerolog.Nop()}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return srv
}

func gatewayConfig(t *testing.T, ledgerURL string) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.Ledger.BaseURL = ledgerURL
	cfg.Ledger.RetryInitial = time.Millisecond
	cfg.Ledger.RetryMax = 5 * time.Millisecond
	cfg.Ledger.MaxRetries = 1
	cfg.Signer.Backend = config.SignerRemote
	cfg.Signer.RemoteURL = ledgerURL
	cfg.Seal.InitialInterval = 5 * time.Millisecond
	cfg.Seal.MaxInterval = 20 * time.Millisecond
	cfg.Seal.MaxAttempts = 100
	cfg.Store.Driver = config.StoreMemory
	return cfg
}

func newGateway(t *testing.T, cfg *config.Config) *receipts.Client {
	t.Helper()
	c, err := receipts.New(context.Background(), cfg, zerolog.Nop(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// ==================== End To End Tests ====================

func TestGenerateReceipt_SealedAndVerified(t *testing.T) {
	srv := startLedger(t, 1)
	c := newGateway(t, gatewayConfig(t, srv.URL))
	ctx := context.Background()

	r, err := c.GenerateReceipt(ctx, "bank-tx-1", "acct-1", "acct-2", 100, "USD")
	require.NoError(t, err)

	assert.Equal(t, int64(100), r.Tx.Amount)
	assert.Equal(t, "USD", r.Tx.Currency)
	assert.Equal(t, uint64(1), r.Tx.Nonce)
	assert.Equal(t, domain.ProvenanceAuthoritative, r.Provenance)
	assert.True(t, merkle.VerifyReceipt(r), "the proof recomputes to the header root")

	res := c.Verify(ctx, r)
	assert.True(t, res.Valid, res.Reason)
	assert.Equal(t, domain.ModeRemote, res.Mode)
	assert.True(t, c.VerifyOffline(r))

	last := c.Last()
	require.NotNil(t, last)
	assert.Equal(t, r, last.Receipt)
	require.NotNil(t, last.Result)
	assert.True(t, last.Result.Valid)
}

func TestGenerateReceipt_RepeatReusesNonce(t *testing.T) {
	srv := startLedger(t, 1)
	c := newGateway(t, gatewayConfig(t, srv.URL))
	ctx := context.Background()

	first, err := c.GenerateReceipt(ctx, "bank-tx-1", "acct-1", "acct-2", 100, "USD")
	require.NoError(t, err)

	// The ledger replays the prepared payload, so the resend is a duplicate.
	_, err = c.GenerateReceipt(ctx, "bank-tx-1", "acct-1", "acct-2", 100, "USD")
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadySubmitted), "got %v", err)

	second, err := c.GenerateReceipt(ctx, "bank-tx-2", "acct-1", "acct-2", 100, "USD")
	require.NoError(t, err)
	assert.Equal(t, first.Tx.Nonce+1, second.Tx.Nonce)
}

func TestGenerateReceipt_TamperedReceiptRejected(t *testing.T) {
	srv := startLedger(t, 1)
	c := newGateway(t, gatewayConfig(t, srv.URL))
	ctx := context.Background()

	r, err := c.GenerateReceipt(ctx, "bank-tx-1", "acct-1", "acct-2", 100, "USD")
	require.NoError(t, err)

	forged := *r
	forged.Tx.Amount = 1_000_000
	res := c.Verify(ctx, &forged)
	assert.False(t, res.Valid)
	assert.Equal(t, domain.ModeRemote, res.Mode)
	assert.Equal(t, domain.ReasonSignatureInvalid, res.Reason)
}

func TestGenerateReceipt_ConcurrentTransfersShareBlock(t *testing.T) {
	srv := startLedger(t, 4)
	c := newGateway(t, gatewayConfig(t, srv.URL))
	ctx := context.Background()

	const n = 4
	results := make([]*receipts.Receipt, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := c.GenerateReceipt(ctx, fmt.Sprintf("bank-tx-%d", i), "acct-1", fmt.Sprintf("acct-%d", i+2), 10, "USD")
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}
	wg.Wait()

	nonces := make(map[uint64]bool)
	for _, r := range results {
		require.NotNil(t, r)
		assert.False(t, nonces[r.Tx.Nonce], "nonce %d issued twice", r.Tx.Nonce)
		nonces[r.Tx.Nonce] = true
		assert.True(t, merkle.VerifyReceipt(r))
		assert.True(t, c.Verify(ctx, r).Valid)
	}
}

// ==================== Coordinator Tests ====================

func TestCoordinator_DuplicateNonceRejected(t *testing.T) {
	srv := startLedger(t, 3)
	c := newGateway(t, gatewayConfig(t, srv.URL))
	ctx := context.Background()

	from, err := c.EnsureWallet(ctx, "acct-1")
	require.NoError(t, err)
	to, err := c.EnsureWallet(ctx, "acct-2")
	require.NoError(t, err)

	coord := c.Coordinator()
	tr, err := coord.Prepare(ctx, receipts.PrepareRequest{WalletID: from, To: to, Amount: 100, Currency: "USD"})
	require.NoError(t, err)
	require.NoError(t, coord.Sign(ctx, tr))

	dup := *tr
	require.NoError(t, coord.Submit(ctx, tr))
	err = coord.Submit(ctx, &dup)

	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadySubmitted))
	assert.Equal(t, apperror.KindRejection, receipts.KindOf(err))
	assert.Equal(t, domain.TransferFailed, dup.State)
	assert.Equal(t, domain.TransferSubmitted, tr.State)
}

// ==================== Offline Verification Tests ====================

func authoritativeReceipt() *receipts.Receipt {
	p := receipts.Payload{FromWallet: "w-1", To: "w-2", Amount: 100, Currency: "USD", Nonce: 1, Timestamp: 1700000000}
	return &receipts.Receipt{
		TxID:        "tx-1",
		Tx:          p,
		Signature:   "c2ln",
		PublicKey:   "cGs=",
		Algorithm:   "ML-DSA-44",
		Provenance:  domain.ProvenanceAuthoritative,
		BlockHeader: domain.BlockHeader{Index: 1, SealedAt: p.Timestamp, MerkleRoot: merkle.LeafHex(p)},
		MerkleProof: []domain.ProofItem{},
	}
}

func TestVerifyOffline_SingleLeafBlock(t *testing.T) {
	c := newGateway(t, gatewayConfig(t, "http://127.0.0.1:1"))

	res := c.OfflineVerdict(authoritativeReceipt())
	assert.True(t, res.Valid)
	assert.Equal(t, domain.ModeOffline, res.Mode)
}

func TestVerifyOffline_MissingSignature(t *testing.T) {
	c := newGateway(t, gatewayConfig(t, "http://127.0.0.1:1"))
	r := authoritativeReceipt()
	r.Signature = ""

	assert.False(t, c.VerifyOffline(r))
	assert.Equal(t, domain.ReasonMissingSignature, c.OfflineVerdict(r).Reason)
}

func TestVerify_LedgerDownFallsBackOffline(t *testing.T) {
	cfg := gatewayConfig(t, "http://127.0.0.1:1")
	cfg.Probe.Timeout = 2 * time.Second
	c := newGateway(t, cfg)

	res := c.Verify(context.Background(), authoritativeReceipt())
	assert.True(t, res.Valid)
	assert.Equal(t, domain.ModeOffline, res.Mode)
}

// ==================== Demo Fallback Tests ====================

func TestGenerateReceipt_LedgerDown(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	t.Run("demo disabled", func(t *testing.T) {
		cfg := gatewayConfig(t, url)
		cfg.Signer.Backend = config.SignerLocal
		c := newGateway(t, cfg)

		_, err := c.GenerateReceipt(context.Background(), "bank-tx-1", "acct-1", "acct-2", 100, "USD")
		assert.True(t, receipts.IsRetryable(err))
	})

	t.Run("demo enabled", func(t *testing.T) {
		cfg := gatewayConfig(t, url)
		cfg.Signer.Backend = config.SignerLocal
		cfg.Receipts.AllowDemoFallback = true
		c := newGateway(t, cfg)

		r, err := c.GenerateReceipt(context.Background(), "bank-tx-1", "acct-1", "acct-2", 100, "USD")
		require.NoError(t, err)
		assert.Equal(t, domain.ProvenanceDemo, r.Provenance)
		assert.True(t, merkle.VerifyReceipt(r), "demo receipts are structurally sound")

		res := c.OfflineVerdict(r)
		assert.False(t, res.Valid, "demo receipts are never trusted")
		assert.Equal(t, domain.ReasonNonAuthoritative, res.Reason)
	})
}

// ==================== Store Driver Tests ====================

func TestNew_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	srv := startLedger(t, 1)
	cfg := gatewayConfig(t, srv.URL)
	cfg.Store.Driver = config.StoreRedis
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = port
	c := newGateway(t, cfg)

	r, err := c.GenerateReceipt(context.Background(), "bank-tx-1", "acct-1", "acct-2", 100, "USD")
	require.NoError(t, err)

	var wallets, keys, archived int
	for _, k := range mr.Keys() {
		switch {
		case strings.HasPrefix(k, "qrg:wallet:"):
			wallets++
		case strings.HasPrefix(k, "qrg:keys:"):
			keys++
		case k == "qrg:receipt:"+r.TxID:
			archived++
		}
	}
	assert.Equal(t, 2, wallets)
	assert.Equal(t, 2, keys, "signing keys persist next to the wallet mapping")
	assert.Equal(t, 1, archived)
}

func TestNew_RedisStoreSurvivesRestart(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	srv := startLedger(t, 1)
	cfg := gatewayConfig(t, srv.URL)
	cfg.Store.Driver = config.StoreRedis
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = port
	ctx := context.Background()

	first, err := receipts.New(ctx, cfg, zerolog.Nop(), nil)
	require.NoError(t, err)
	r1, err := first.GenerateReceipt(ctx, "bank-tx-1", "acct-1", "acct-2", 100, "USD")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// The restarted gateway finds the wallets in redis and must still hold their keys.
	second := newGateway(t, cfg)
	r2, err := second.GenerateReceipt(ctx, "bank-tx-2", "acct-1", "acct-2", 100, "USD")
	require.NoError(t, err)

	assert.Equal(t, r1.Tx.FromWallet, r2.Tx.FromWallet, "the wallet is reused, not recreated")
	assert.Equal(t, r1.Tx.Nonce+1, r2.Tx.Nonce)
	assert.Equal(t, domain.ProvenanceAuthoritative, r2.Provenance)
	assert.True(t, second.Verify(ctx, r2).Valid)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := gatewayConfig(t, "http://127.0.0.1:1")
	cfg.Store.Driver = "etcd"

	_, err := receipts.New(context.Background(), cfg, zerolog.Nop(), nil)
	assert.Error(t, err)
}
