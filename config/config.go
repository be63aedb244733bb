package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Signer   SignerConfig   `mapstructure:"signer"`
	Probe    ProbeConfig    `mapstructure:"probe"`
	Seal     SealConfig     `mapstructure:"seal"`
	Receipts ReceiptsConfig `mapstructure:"receipts"`
	Store    StoreConfig    `mapstructure:"store"`
	Ledgerd  LedgerdConfig  `mapstructure:"ledgerd"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
}

// LedgerConfig describes how the client reaches the ledger service.
type LedgerConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryInitial   time.Duration `mapstructure:"retry_initial"`
	RetryMax       time.Duration `mapstructure:"retry_max"`
	RateLimit      float64       `mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	RateBurst      int           `mapstructure:"rate_burst"`
}

// Signer backends.
const (
	SignerRemote    = "remote"
	SignerLocal     = "local"
	SignerClassical = "classical"
)

type SignerConfig struct {
	Backend       string        `mapstructure:"backend"`   // remote, local, classical
	Algorithm     string        `mapstructure:"algorithm"` // scheme name for remote and local
	RemoteURL     string        `mapstructure:"remote_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	AllowFallback bool          `mapstructure:"allow_fallback"`
}

type ProbeConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// SealConfig bounds the seal polling loop.
type SealConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
}

type ReceiptsConfig struct {
	AllowDemoFallback bool `mapstructure:"allow_demo_fallback"`
}

// Store drivers.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type StoreConfig struct {
	Driver string `mapstructure:"driver"` // memory, redis
}

// LedgerdConfig configures the reference ledger service.
type LedgerdConfig struct {
	Storage        string        `mapstructure:"storage"` // memory, postgres
	BatchSize      int           `mapstructure:"batch_size"`
	SealInterval   time.Duration `mapstructure:"seal_interval"`
	OpeningBalance int64         `mapstructure:"opening_balance"`
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
	PQCAlgorithm   string        `mapstructure:"pqc_algorithm"`
	RateLimit      int64         `mapstructure:"rate_limit"` // requests per client per window, 0 = off
	RateWindow     time.Duration `mapstructure:"rate_window"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	AcceptFallback bool          `mapstructure:"accept_fallback"` // settle non-authoritative signatures
}

// Ledger storage backends.
const (
	LedgerStorageMemory   = "memory"
	LedgerStoragePostgres = "postgres"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: QRG_ (Quantum Receipt Gateway).
// Nested keys use underscore: QRG_LEDGER_BASE_URL, QRG_SIGNER_BACKEND, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("ledger.base_url", "http://localhost:8080")
	v.SetDefault("ledger.request_timeout", "10s")
	v.SetDefault("ledger.max_retries", 3)
	v.SetDefault("ledger.retry_initial", "200ms")
	v.SetDefault("ledger.retry_max", "2s")
	v.SetDefault("ledger.rate_limit", 0)
	v.SetDefault("ledger.rate_burst", 10)
	v.SetDefault("signer.backend", SignerRemote)
	v.SetDefault("signer.algorithm", "ML-DSA-44")
	v.SetDefault("signer.remote_url", "http://localhost:8080")
	v.SetDefault("signer.timeout", "5s")
	v.SetDefault("signer.allow_fallback", true)
	v.SetDefault("probe.timeout", "3s")
	v.SetDefault("seal.max_attempts", 8)
	v.SetDefault("seal.initial_interval", "500ms")
	v.SetDefault("seal.max_interval", "8s")
	v.SetDefault("seal.multiplier", 2.0)
	v.SetDefault("receipts.allow_demo_fallback", false)
	v.SetDefault("store.driver", StoreMemory)
	v.SetDefault("ledgerd.storage", LedgerStorageMemory)
	v.SetDefault("ledgerd.batch_size", 3)
	v.SetDefault("ledgerd.seal_interval", "5s")
	v.SetDefault("ledgerd.opening_balance", 1_000_000)
	v.SetDefault("ledgerd.idempotency_ttl", "24h")
	v.SetDefault("ledgerd.accept_fallback", false)
	v.SetDefault("ledgerd.pqc_algorithm", "ML-DSA-44")
	v.SetDefault("ledgerd.rate_limit", 0)
	v.SetDefault("ledgerd.rate_window", "1m")
	v.SetDefault("ledgerd.max_body_bytes", 1<<20)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "quantum_ledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// QRG_LEDGER_BASE_URL -> ledger.base_url
	v.SetEnvPrefix("QRG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The file is optional; env vars can suffice.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the bounds the client relies on.
func (c *Config) Validate() error {
	var errs []error

	if c.Ledger.BaseURL == "" {
		errs = append(errs, errors.New("ledger.base_url is required"))
	}
	if c.Ledger.MaxRetries < 0 {
		errs = append(errs, errors.New("ledger.max_retries must not be negative"))
	}

	switch c.Signer.Backend {
	case SignerRemote:
		if c.Signer.RemoteURL == "" {
			errs = append(errs, errors.New("signer.remote_url is required for the remote backend"))
		}
		if c.Signer.Timeout < 3*time.Second || c.Signer.Timeout > 10*time.Second {
			errs = append(errs, fmt.Errorf("signer.timeout %s outside 3s..10s", c.Signer.Timeout))
		}
	case SignerLocal, SignerClassical:
	default:
		errs = append(errs, fmt.Errorf("unknown signer.backend %q", c.Signer.Backend))
	}

	if c.Probe.Timeout < 2*time.Second || c.Probe.Timeout > 5*time.Second {
		errs = append(errs, fmt.Errorf("probe.timeout %s outside 2s..5s", c.Probe.Timeout))
	}

	if c.Seal.MaxAttempts < 1 {
		errs = append(errs, errors.New("seal.max_attempts must be at least 1"))
	}
	if c.Seal.InitialInterval <= 0 || c.Seal.MaxInterval < c.Seal.InitialInterval {
		errs = append(errs, errors.New("seal intervals must be positive and max >= initial"))
	}
	if c.Seal.Multiplier < 1 {
		errs = append(errs, errors.New("seal.multiplier must be >= 1"))
	}

	if c.Store.Driver != StoreMemory && c.Store.Driver != StoreRedis {
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}

	return errors.Join(errs...)
}

// ValidateLedgerd checks the reference ledger settings.
func (c *Config) ValidateLedgerd() error {
	var errs []error

	if c.Ledgerd.Storage != LedgerStorageMemory && c.Ledgerd.Storage != LedgerStoragePostgres {
		errs = append(errs, fmt.Errorf("unknown ledgerd.storage %q", c.Ledgerd.Storage))
	}
	if c.Ledgerd.BatchSize < 1 {
		errs = append(errs, errors.New("ledgerd.batch_size must be at least 1"))
	}
	if c.Ledgerd.SealInterval <= 0 {
		errs = append(errs, errors.New("ledgerd.seal_interval must be positive"))
	}
	if c.Ledgerd.IdempotencyTTL <= 0 {
		errs = append(errs, errors.New("ledgerd.idempotency_ttl must be positive"))
	}
	if c.Ledgerd.OpeningBalance < 0 {
		errs = append(errs, errors.New("ledgerd.opening_balance must not be negative"))
	}
	if c.Ledgerd.RateLimit < 0 {
		errs = append(errs, errors.New("ledgerd.rate_limit must not be negative"))
	}
	if c.Ledgerd.RateLimit > 0 && c.Ledgerd.RateWindow < time.Second {
		errs = append(errs, errors.New("ledgerd.rate_window must be at least 1s"))
	}

	return errors.Join(errs...)
}
