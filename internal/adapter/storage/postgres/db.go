package postgres

import (
	"context"
	"fmt"
	"time"

	"quantum-receipt-gateway/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// ledgerd usually starts next to its database, so the first ping is retried.
const (
	connectAttempts = 4
	connectInitial  = 100 * time.Millisecond
)

// NewPool opens the ledger's connection pool and waits for the database to
// answer a ping.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "ledgerd"

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	attempts := 0
	err = backoff.Retry(func() error {
		attempts++
		return pool.Ping(ctx)
	}, connectBackOff(ctx))
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database after %d attempts: %w", attempts, err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("dbname", cfg.DBName).
		Int32("max_conns", cfg.MaxConns).
		Int("attempts", attempts).
		Msg("ledger database ready")

	return pool, nil
}

func connectBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = connectInitial
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, connectAttempts-1), ctx)
}
