package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quantum-receipt-gateway/config"
	"quantum-receipt-gateway/internal/adapter/http/dto"
	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/internal/core/ports"
	"quantum-receipt-gateway/internal/metrics"
	"quantum-receipt-gateway/pkg/apperror"
	"quantum-receipt-gateway/pkg/response"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 4 << 20

// Client implements ports.Ledger and ports.HealthChecker over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cfg        config.LedgerConfig
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

// NewClient creates a ledger client. A zero cfg.RateLimit disables pacing.
func NewClient(cfg config.LedgerConfig, m *metrics.Metrics, log zerolog.Logger) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    rate.NewLimiter(limit, burst),
		cfg:        cfg,
		metrics:    m,
		log:        log,
	}
}

// Name returns the dependency name.
func (c *Client) Name() string {
	return "ledger"
}

// Ping issues a single GET /health.
func (c *Client) Ping(ctx context.Context) error {
	return c.send(ctx, http.MethodGet, "/health", nil, nil)
}

// CreateWallet registers ownerID with the ledger. The ledger returns the
// existing wallet for a known owner, so retries are safe.
func (c *Client) CreateWallet(ctx context.Context, ownerID, publicKey string) (string, error) {
	var resp dto.CreateWalletResponse
	err := c.do(ctx, "create_wallet", http.MethodPost, "/wallets", true,
		dto.CreateWalletRequest{OwnerID: ownerID, PublicKey: publicKey}, &resp)
	if err != nil {
		return "", err
	}
	if resp.WalletID == "" {
		return "", apperror.ErrMalformedResponse(errors.New("wallet response without walletId"))
	}
	return resp.WalletID, nil
}

// Prepare asks for a payload. Retries reuse req.ClientRequestID.
func (c *Client) Prepare(ctx context.Context, req ports.PrepareRequest) (*domain.TransactionPayload, error) {
	var resp dto.PrepareTxResponse
	err := c.do(ctx, "prepare", http.MethodPost, "/tx/prepare", true, dto.PrepareTxRequest{
		WalletID:        req.WalletID,
		To:              req.To,
		Amount:          req.Amount,
		Currency:        req.Currency,
		ClientRequestID: req.ClientRequestID,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Nonce != 0 && resp.Nonce != resp.Payload.Nonce {
		return nil, apperror.ErrMalformedResponse(fmt.Errorf("nonce %d differs from payload nonce %d", resp.Nonce, resp.Payload.Nonce))
	}
	return &resp.Payload, nil
}

// Submit sends tx once. It is not retried here: a lost response followed by
// a resend would be rejected as a duplicate nonce.
func (c *Client) Submit(ctx context.Context, tx domain.SignedTransaction) (string, error) {
	var resp dto.SubmitTxResponse
	if err := c.do(ctx, "submit", http.MethodPost, "/tx/submit", false, tx, &resp); err != nil {
		return "", err
	}
	if resp.TxID == "" {
		return "", apperror.ErrMalformedResponse(errors.New("submit response without txId"))
	}
	return resp.TxID, nil
}

// Receipt fetches the receipt of a sealed transaction.
func (c *Client) Receipt(ctx context.Context, txID string) (*domain.QuantumReceipt, error) {
	var r domain.QuantumReceipt
	if err := c.do(ctx, "receipt", http.MethodGet, "/tx/"+url.PathEscape(txID)+"/receipt", true, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Verify asks the ledger to attest receipt.
func (c *Client) Verify(ctx context.Context, receipt *domain.QuantumReceipt) (*ports.RemoteVerdict, error) {
	var v ports.RemoteVerdict
	if err := c.do(ctx, "verify", http.MethodPost, "/verify", true, dto.VerifyRequest{Receipt: receipt}, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) backOff(ctx context.Context, retry bool) backoff.BackOff {
	if !retry || c.cfg.MaxRetries <= 0 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.RetryInitial
	b.MaxInterval = c.cfg.RetryMax
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.cfg.MaxRetries)), ctx)
}

// do sends one request, retrying transport failures when retry is set.
func (c *Client) do(ctx context.Context, op, method, path string, retry bool, in, out interface{}) error {
	start := time.Now()
	attempts := 0

	err := backoff.Retry(func() error {
		attempts++
		err := c.send(ctx, method, path, in, out)
		if err == nil || apperror.IsRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}, c.backOff(ctx, retry))

	outcome := "ok"
	switch {
	case err == nil:
	case ctx.Err() != nil:
		outcome = "cancelled"
	case apperror.IsRetryable(err):
		outcome = "unreachable"
	default:
		outcome = string(apperror.KindOf(err))
	}
	c.metrics.ObserveLedgerRequest(op, outcome, time.Since(start))

	if err != nil && attempts > 1 {
		c.log.Warn().Err(err).Str("operation", op).Int("attempts", attempts).Msg("ledger request failed")
	}
	return err
}

// send performs a single HTTP exchange and maps the outcome onto the error
// taxonomy: network failures, 5xx and 429 are transport errors; other 4xx
// carry the ledger's error envelope.
func (c *Client) send(ctx context.Context, method, path string, in, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperror.ErrLedgerUnreachable(fmt.Errorf("rate limit: %w", err))
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("marshal request: %w", err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperror.ErrLedgerUnreachable(fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return apperror.ErrLedgerUnreachable(fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError, resp.StatusCode == http.StatusTooManyRequests:
		return apperror.ErrLedgerUnreachable(fmt.Errorf("request failed: %s: %s", resp.Status, truncate(raw)))
	case resp.StatusCode >= http.StatusBadRequest:
		return response.DecodeError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperror.ErrMalformedResponse(fmt.Errorf("unmarshal response: %w", err))
	}
	return nil
}

func truncate(b []byte) string {
	const n = 200
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
