package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quantum-receipt-gateway/config"
	httpHandler "quantum-receipt-gateway/internal/adapter/http/handler"
	"quantum-receipt-gateway/internal/adapter/storage/memory"
	pgStorage "quantum-receipt-gateway/internal/adapter/storage/postgres"
	redisStorage "quantum-receipt-gateway/internal/adapter/storage/redis"
	"quantum-receipt-gateway/internal/core/ports"
	"quantum-receipt-gateway/internal/ledger"
	"quantum-receipt-gateway/internal/metrics"
	"quantum-receipt-gateway/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

// backend is the storage a ledgerd process runs on.
type backend struct {
	stores    ledger.Stores
	rateLimit ports.RateLimitStore
	checkers  []ports.HealthChecker
	close     func()
}

func main() {
	configPath := flag.String("config", "", "path to a config file (default ./config.yaml)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateLedgerd(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("ledgerd", cfg.Log.Level, cfg.Log.Pretty)
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("storage", cfg.Ledgerd.Storage).
		Int("batch_size", cfg.Ledgerd.BatchSize).
		Dur("seal_interval", cfg.Ledgerd.SealInterval).
		Msg("Starting reference ledger")

	ctx := context.Background()

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger storage")
	}
	defer be.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	svc := ledger.NewService(be.stores, cfg.Ledgerd, m, logger.Component(log, "ledger"))

	sealCtx, stopSealer := context.WithCancel(ctx)
	sealerDone := make(chan struct{})
	go func() {
		defer close(sealerDone)
		svc.RunSealer(sealCtx)
	}()

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		LedgerSvc:      svc,
		Config:         cfg.Ledgerd,
		RateLimitStore: be.rateLimit,
		HealthCheckers: be.checkers,
		Gatherer:       reg,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	stopSealer()
	<-sealerDone
	if h, err := svc.SealPending(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Final seal failed")
	} else if h != nil {
		log.Info().Uint64("block_index", h.Index).Msg("Sealed remaining transactions")
	}

	log.Info().Msg("Server exited")
}

// openBackend wires the in-memory store or PostgreSQL plus Redis.
func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	if cfg.Ledgerd.Storage == config.LedgerStorageMemory {
		store := memory.NewLedgerStore()
		log.Warn().Msg("Using in-memory ledger storage, state is lost on exit")
		return &backend{
			stores: ledger.Stores{
				Accounts:     store.Accounts(),
				Transactions: store.Transactions(),
				Blocks:       store.Blocks(),
				Prepared:     memory.NewIdempotencyCache(),
				Submissions:  memory.NewNonceStore(),
			},
			rateLimit: memory.NewRateLimitStore(),
			close:     func() {},
		}, nil
	}

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pgStorage.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().Msg("PostgreSQL connected and migrated")

	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	log.Info().Msg("Redis connected")

	return &backend{
		stores: ledger.Stores{
			Accounts:     pgStorage.NewAccountRepo(pool),
			Transactions: pgStorage.NewTransactionRepo(pool),
			Blocks:       pgStorage.NewBlockRepo(pool),
			Prepared:     redisStorage.NewIdempotencyCache(rdb),
			Submissions:  redisStorage.NewNonceStore(rdb),
		},
		rateLimit: redisStorage.NewRateLimitStore(rdb),
		checkers: []ports.HealthChecker{
			pgStorage.NewHealthCheck(pool),
			redisStorage.NewHealthCheck(rdb, ""),
		},
		close: func() {
			_ = rdb.Close()
			pool.Close()
		},
	}, nil
}
