// Package receipts is the public entry point of the quantum receipt
// gateway. New wires the ledger client, the signer, the wallet registry and
// the verifier from a config.Config; callers use the returned Client.
package receipts

import (
	"context"
	"fmt"

	"quantum-receipt-gateway/config"
	ledgerClient "quantum-receipt-gateway/internal/adapter/ledger"
	"quantum-receipt-gateway/internal/adapter/pqc"
	"quantum-receipt-gateway/internal/adapter/storage/memory"
	redisStorage "quantum-receipt-gateway/internal/adapter/storage/redis"
	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/internal/core/ports"
	"quantum-receipt-gateway/internal/metrics"
	"quantum-receipt-gateway/internal/service"
	"quantum-receipt-gateway/pkg/apperror"
	"quantum-receipt-gateway/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type (
	Receipt            = domain.QuantumReceipt
	Payload            = domain.TransactionPayload
	VerificationResult = domain.VerificationResult
	Transfer           = domain.Transfer
	PrepareRequest     = ports.PrepareRequest
	Snapshot           = service.Snapshot
	Coordinator        = service.Coordinator
	Kind               = apperror.Kind
)

// KindOf classifies err; see pkg/apperror for the kinds.
func KindOf(err error) Kind { return apperror.KindOf(err) }

// IsRetryable reports whether err is a transport failure worth retrying.
func IsRetryable(err error) bool { return apperror.IsRetryable(err) }

// Client is a wired receipt gateway.
type Client struct {
	svc      *service.ReceiptServiceImpl
	coord    *service.Coordinator
	wallets  ports.WalletRegistry
	verifier *service.ReceiptVerifierImpl
	redis    *goredis.Client
}

// New builds a Client. reg may be nil, in which case metrics are collected
// but not registered.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg prometheus.Registerer) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	m := metrics.New(reg)
	lc := ledgerClient.NewClient(cfg.Ledger, m, logger.Component(log, "ledger_client"))

	var remote ports.Signer
	if cfg.Signer.Backend == config.SignerRemote {
		remote = pqc.NewClient(cfg.Signer)
	}
	signer, err := service.NewSigner(cfg.Signer, remote, m, logger.Component(log, "signer"))
	if err != nil {
		return nil, err
	}

	c := &Client{}
	var (
		wallets ports.WalletStore
		keys    ports.KeyRing
		archive ports.ReceiptArchive
	)
	switch cfg.Store.Driver {
	case config.StoreRedis:
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.redis = rdb
		wallets = redisStorage.NewWalletStore(rdb)
		keys = redisStorage.NewKeyRing(rdb)
		archive = redisStorage.NewReceiptArchive(rdb)
	default:
		wallets = memory.NewWalletStore()
		keys = memory.NewKeyRing()
		archive = memory.NewReceiptArchive()
	}

	c.wallets = service.NewWalletRegistry(lc, signer, wallets, keys, logger.Component(log, "wallets"))
	probe := service.NewLedgerProbe(lc, cfg.Probe.Timeout, log)
	c.verifier = service.NewReceiptVerifier(lc, probe, m, logger.Component(log, "verifier"))
	c.coord = service.NewCoordinator(lc, signer, c.wallets, archive,
		service.SealPolicyFromConfig(cfg.Seal), m, logger.Component(log, "coordinator"))
	c.svc = service.NewReceiptService(c.wallets, c.coord, c.verifier, cfg.Receipts.AllowDemoFallback, log)

	log.Info().
		Str("ledger", cfg.Ledger.BaseURL).
		Str("signer", cfg.Signer.Backend).
		Str("algorithm", signer.Algorithm()).
		Str("store", cfg.Store.Driver).
		Msg("receipt gateway ready")
	return c, nil
}

// GenerateReceipt settles a bank transfer and returns its receipt. txID is
// the bank's transaction id; repeating a call with it reuses the nonce.
func (c *Client) GenerateReceipt(ctx context.Context, txID, fromAccount, toAccount string, amount int64, currency string) (*Receipt, error) {
	return c.svc.GenerateReceipt(ctx, txID, fromAccount, toAccount, amount, currency)
}

// Verify checks r with the ledger, or offline when the ledger is away.
func (c *Client) Verify(ctx context.Context, r *Receipt) VerificationResult {
	return c.svc.Verify(ctx, r)
}

// VerifyOffline runs the structural checks only.
func (c *Client) VerifyOffline(r *Receipt) bool {
	return c.svc.VerifyOffline(r)
}

// OfflineVerdict is VerifyOffline with the reason.
func (c *Client) OfflineVerdict(r *Receipt) VerificationResult {
	return c.verifier.Offline(r)
}

// Last returns the latest receipt or verification, or nil.
func (c *Client) Last() *Snapshot {
	return c.svc.Last()
}

// Coordinator exposes the step-by-step transfer pipeline.
func (c *Client) Coordinator() *Coordinator {
	return c.coord
}

// EnsureWallet returns the ledger wallet of an account, creating it on first use.
func (c *Client) EnsureWallet(ctx context.Context, accountID string) (string, error) {
	w, err := c.wallets.Ensure(ctx, accountID)
	if err != nil {
		return "", err
	}
	return w.WalletID, nil
}

// Close releases the store connection, if any.
func (c *Client) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}
