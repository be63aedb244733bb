package redis

import (
	"context"
	"fmt"
	"time"

	"quantum-receipt-gateway/config"

	"github.com/cenkalti/backoff/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	connectAttempts = 3
	connectInitial  = 50 * time.Millisecond
)

// NewClient connects to Redis and retries the first ping a few times. The
// same client serves the gateway stores and ledgerd's caches.
func NewClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = connectInitial
	b.MaxElapsedTime = 0
	b.Reset()

	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		return client.Ping(ctx).Err()
	}, backoff.WithContext(backoff.WithMaxRetries(b, connectAttempts-1), ctx))
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis after %d attempts: %w", attempts, err)
	}

	log.Info().
		Str("addr", cfg.Addr()).
		Int("db", cfg.DB).
		Int("attempts", attempts).
		Msg("redis ready")

	return client, nil
}
