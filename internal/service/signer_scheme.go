package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quantum-receipt-gateway/internal/core/domain"

	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/schemes"
)

// ClassicalAlgorithm is the legacy pre-quantum scheme.
const ClassicalAlgorithm = "Ed25519"

// ErrUnknownScheme is returned for algorithm names circl does not provide.
var ErrUnknownScheme = errors.New("unknown signature scheme")

// SchemeSigner signs in process with a circl signature scheme.
type SchemeSigner struct {
	scheme sign.Scheme
}

// NewSchemeSigner looks up the scheme by name, case-insensitively.
func NewSchemeSigner(name string) (*SchemeSigner, error) {
	s := schemes.ByName(name)
	if s == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
	return &SchemeSigner{scheme: s}, nil
}

// Algorithm returns the canonical scheme name.
func (s *SchemeSigner) Algorithm() string {
	return s.scheme.Name()
}

// GenerateKeyPair creates a fresh authoritative key pair.
func (s *SchemeSigner) GenerateKeyPair(ctx context.Context) (*domain.KeyPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pk, sk, err := s.scheme.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate %s key: %w", s.Algorithm(), err)
	}
	pub, err := pk.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}
	priv, err := sk.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal private key: %w", err)
	}

	return &domain.KeyPair{
		PublicKey:  pub,
		PrivateKey: priv,
		Algorithm:  s.Algorithm(),
		Provenance: domain.ProvenanceAuthoritative,
	}, nil
}

// Sign signs payload with keys.PrivateKey.
func (s *SchemeSigner) Sign(ctx context.Context, payload []byte, keys *domain.KeyPair) (*domain.Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if keys == nil || len(keys.PrivateKey) == 0 {
		return nil, errors.New("sign: no private key")
	}
	if keys.Algorithm != "" && !strings.EqualFold(keys.Algorithm, s.Algorithm()) {
		return nil, fmt.Errorf("sign: %s key given to %s signer", keys.Algorithm, s.Algorithm())
	}

	sk, err := s.scheme.UnmarshalBinaryPrivateKey(keys.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("unmarshal private key: %w", err)
	}

	return &domain.Signature{
		Value:      s.scheme.Sign(sk, payload, nil),
		PublicKey:  keys.PublicKey,
		Algorithm:  s.Algorithm(),
		Provenance: domain.ProvenanceAuthoritative,
	}, nil
}

// Verify checks signature over payload. Malformed keys or signatures verify false.
func (s *SchemeSigner) Verify(ctx context.Context, payload, signature, publicKey []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if len(signature) != s.scheme.SignatureSize() {
		return false, nil
	}
	pk, err := s.scheme.UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return false, nil
	}
	return s.scheme.Verify(pk, payload, signature, nil), nil
}

// SchemeInfo describes one available scheme.
type SchemeInfo struct {
	Name           string `json:"name"`
	PublicKeySize  int    `json:"publicKeySize"`
	PrivateKeySize int    `json:"privateKeySize"`
	SignatureSize  int    `json:"signatureSize"`
	SeedSize       int    `json:"seedSize"`
}

// Info reports the scheme's sizes.
func (s *SchemeSigner) Info() SchemeInfo {
	return SchemeInfo{
		Name:           s.scheme.Name(),
		PublicKeySize:  s.scheme.PublicKeySize(),
		PrivateKeySize: s.scheme.PrivateKeySize(),
		SignatureSize:  s.scheme.SignatureSize(),
		SeedSize:       s.scheme.SeedSize(),
	}
}

// AvailableSchemes lists every scheme circl provides.
func AvailableSchemes() []SchemeInfo {
	all := schemes.All()
	out := make([]SchemeInfo, 0, len(all))
	for _, sc := range all {
		out = append(out, (&SchemeSigner{scheme: sc}).Info())
	}
	return out
}
