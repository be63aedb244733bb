package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"quantum-receipt-gateway/config"
	"quantum-receipt-gateway/internal/adapter/http/dto"
	"quantum-receipt-gateway/internal/adapter/pqc"
	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func TestPQC_KeypairSignVerify(t *testing.T) {
	d := setupHandler(t)

	w := d.do(http.MethodPost, "/pqc/keypair", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var kp dto.PQCKeypairResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &kp))
	assert.Equal(t, "ML-DSA-44", kp.Algorithm)

	msg := b64([]byte(`{"fromWallet":"w-1"}`))
	w = d.do(http.MethodPost, "/pqc/sign", dto.PQCSignRequest{Message: msg, SecretKey: kp.SecretKey})
	require.Equal(t, http.StatusOK, w.Code)
	var sig dto.PQCSignResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sig))

	tests := []struct {
		name    string
		message string
		valid   bool
	}{
		{name: "original message", message: msg, valid: true},
		{name: "other message", message: b64([]byte(`{"fromWallet":"w-2"}`)), valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := d.do(http.MethodPost, "/pqc/verify", dto.PQCVerifyRequest{
				Message: tt.message, Signature: sig.Signature, PublicKey: kp.PublicKey,
			})
			require.Equal(t, http.StatusOK, w.Code)
			var v dto.PQCVerifyResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
			assert.Equal(t, tt.valid, v.Valid)
		})
	}
}

func TestPQC_NamedAlgorithm(t *testing.T) {
	d := setupHandler(t)

	w := d.do(http.MethodPost, "/pqc/keypair", dto.PQCKeypairRequest{Algorithm: "ed25519"})
	require.Equal(t, http.StatusOK, w.Code)
	var kp dto.PQCKeypairResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &kp))
	assert.Equal(t, "Ed25519", kp.Algorithm)
}

func TestPQC_UnsupportedAlgorithm(t *testing.T) {
	d := setupHandler(t)

	for _, path := range []string{"/pqc/keypair", "/pqc/sign", "/pqc/verify"} {
		t.Run(path, func(t *testing.T) {
			w := d.do(http.MethodPost, path, map[string]string{
				"algorithm": "NOPE-1",
				"message":   "bXNn",
				"secretKey": "c2s=",
				"signature": "c2ln",
				"publicKey": "cGs=",
			})
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, apperror.CodeValidation, decodeError(t, w).ErrorCode)
		})
	}
}

func TestPQC_MalformedKeys(t *testing.T) {
	d := setupHandler(t)

	w := d.do(http.MethodPost, "/pqc/sign", dto.PQCSignRequest{Message: "bXNn", SecretKey: "c2s="})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = d.do(http.MethodPost, "/pqc/verify", dto.PQCVerifyRequest{Message: "bXNn", Signature: "c2ln", PublicKey: "cGs="})
	require.Equal(t, http.StatusOK, w.Code)
	var v dto.PQCVerifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.False(t, v.Valid)

	w = d.do(http.MethodPost, "/pqc/sign", dto.PQCSignRequest{Message: "not base64!", SecretKey: "c2s="})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPQC_Algorithms(t *testing.T) {
	d := setupHandler(t)

	w := d.do(http.MethodGet, "/pqc/algorithms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.PQCAlgorithmsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ML-DSA-44", resp.Default)

	var found *dto.PQCAlgorithm
	for i := range resp.Algorithms {
		if resp.Algorithms[i].Name == "ML-DSA-44" {
			found = &resp.Algorithms[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, 1312, found.PublicKeySize)
	assert.Equal(t, 2420, found.SignatureSize)
	assert.Equal(t, 32, found.SeedSize)
}

// The delegate client and the delegate routes agree on the wire format.
func TestPQC_ClientRoundTrip(t *testing.T) {
	d := setupHandler(t)
	srv := httptest.NewServer(d.router)
	t.Cleanup(srv.Close)

	c := pqc.NewClient(config.SignerConfig{RemoteURL: srv.URL, Algorithm: "ML-DSA-44"})
	ctx := context.Background()

	kp, err := c.GenerateKeyPair(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ProvenanceAuthoritative, kp.Provenance)

	payload := domain.TransactionPayload{FromWallet: "w-1", To: "w-2", Amount: 5, Currency: "USD", Nonce: 1}.Canonical()
	sig, err := c.Sign(ctx, payload, kp)
	require.NoError(t, err)

	ok, err := c.Verify(ctx, payload, sig.Value, kp.PublicKey)
	require.NoError(t, err)
	assert.True(t, ok)
}
