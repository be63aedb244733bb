package pqc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"quantum-receipt-gateway/config"
	"quantum-receipt-gateway/internal/adapter/http/dto"
	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/pkg/apperror"
	"quantum-receipt-gateway/pkg/response"
)

// Client signs through the remote post-quantum delegate. It implements
// ports.Signer; call deadlines come from the caller's context.
type Client struct {
	baseURL    string
	algorithm  string
	httpClient *http.Client
}

// NewClient creates a delegate client for cfg.RemoteURL.
func NewClient(cfg config.SignerConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.RemoteURL, "/"),
		algorithm:  cfg.Algorithm,
		httpClient: &http.Client{},
	}
}

// Algorithm returns the scheme requested from the delegate.
func (c *Client) Algorithm() string {
	return c.algorithm
}

// GenerateKeyPair asks the delegate for a fresh key pair.
func (c *Client) GenerateKeyPair(ctx context.Context) (*domain.KeyPair, error) {
	var resp dto.PQCKeypairResponse
	if err := c.post(ctx, "/pqc/keypair", dto.PQCKeypairRequest{Algorithm: c.algorithm}, &resp); err != nil {
		return nil, err
	}

	pub, err := base64.StdEncoding.DecodeString(resp.PublicKey)
	if err != nil {
		return nil, apperror.ErrMalformedResponse(fmt.Errorf("decode public key: %w", err))
	}
	sec, err := base64.StdEncoding.DecodeString(resp.SecretKey)
	if err != nil {
		return nil, apperror.ErrMalformedResponse(fmt.Errorf("decode secret key: %w", err))
	}

	return &domain.KeyPair{
		PublicKey:  pub,
		PrivateKey: sec,
		Algorithm:  c.algorithmOr(resp.Algorithm),
		Provenance: domain.ProvenanceAuthoritative,
	}, nil
}

// Sign has the delegate sign payload with keys.PrivateKey.
func (c *Client) Sign(ctx context.Context, payload []byte, keys *domain.KeyPair) (*domain.Signature, error) {
	if keys == nil {
		return nil, apperror.Validation("sign: no keys")
	}

	var resp dto.PQCSignResponse
	err := c.post(ctx, "/pqc/sign", dto.PQCSignRequest{
		Message:   base64.StdEncoding.EncodeToString(payload),
		SecretKey: base64.StdEncoding.EncodeToString(keys.PrivateKey),
		Algorithm: c.algorithm,
	}, &resp)
	if err != nil {
		return nil, err
	}

	sig, err := base64.StdEncoding.DecodeString(resp.Signature)
	if err != nil || len(sig) == 0 {
		return nil, apperror.ErrMalformedResponse(fmt.Errorf("decode signature: %v", err))
	}

	return &domain.Signature{
		Value:      sig,
		PublicKey:  keys.PublicKey,
		Algorithm:  c.algorithmOr(resp.Algorithm),
		Provenance: domain.ProvenanceAuthoritative,
	}, nil
}

// Verify has the delegate check signature.
func (c *Client) Verify(ctx context.Context, payload, signature, publicKey []byte) (bool, error) {
	var resp dto.PQCVerifyResponse
	err := c.post(ctx, "/pqc/verify", dto.PQCVerifyRequest{
		Message:   base64.StdEncoding.EncodeToString(payload),
		Signature: base64.StdEncoding.EncodeToString(signature),
		PublicKey: base64.StdEncoding.EncodeToString(publicKey),
		Algorithm: c.algorithm,
	}, &resp)
	if err != nil {
		return false, err
	}
	return resp.Valid, nil
}

func (c *Client) algorithmOr(got string) string {
	if got != "" {
		return got
	}
	return c.algorithm
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return apperror.InternalError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Deadline errors stay recognisable to the fallback decorator.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperror.ErrSignerUnreachable(fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperror.ErrSignerUnreachable(fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return apperror.ErrSignerUnreachable(fmt.Errorf("request failed: %s", resp.Status))
	case resp.StatusCode >= http.StatusBadRequest:
		return response.DecodeError(resp.StatusCode, raw)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return apperror.ErrMalformedResponse(fmt.Errorf("unmarshal response: %w", err))
	}
	return nil
}
