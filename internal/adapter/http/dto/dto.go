package dto

import "quantum-receipt-gateway/internal/core/domain"

// CreateWalletRequest is the request body for POST /wallets.
type CreateWalletRequest struct {
	OwnerID   string `json:"ownerId" binding:"required,max=128,safe_id"`
	PublicKey string `json:"publicKey,omitempty" binding:"omitempty,base64"`
}

// CreateWalletResponse is the response body for POST /wallets.
type CreateWalletResponse struct {
	WalletID string `json:"walletId"`
}

// PrepareTxRequest is the request body for POST /tx/prepare.
// Amount is validated by the ledger so that non-positive values map to LGR_006.
type PrepareTxRequest struct {
	WalletID        string `json:"walletId" binding:"required,max=128"`
	To              string `json:"to" binding:"required,max=128"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency" binding:"required,len=3"`
	ClientRequestID string `json:"clientRequestId,omitempty" binding:"omitempty,max=128,safe_id"`
}

// PrepareTxResponse is the response body for POST /tx/prepare.
type PrepareTxResponse struct {
	Payload domain.TransactionPayload `json:"payload"`
	Nonce   uint64                    `json:"nonce"`
}

// SubmitTxResponse is the response body for POST /tx/submit.
type SubmitTxResponse struct {
	TxID string `json:"txId"`
}

// VerifyRequest is the request body for POST /verify.
type VerifyRequest struct {
	Receipt *domain.QuantumReceipt `json:"receipt" binding:"required"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// ---- Post-quantum delegate (/pqc) ----
// Binary fields are standard base64.

// PQCKeypairRequest is the request body for POST /pqc/keypair.
type PQCKeypairRequest struct {
	Algorithm string `json:"algorithm,omitempty"`
}

// PQCKeypairResponse is the response body for POST /pqc/keypair.
type PQCKeypairResponse struct {
	Algorithm string `json:"algorithm"`
	PublicKey string `json:"publicKey"`
	SecretKey string `json:"secretKey"`
}

// PQCSignRequest is the request body for POST /pqc/sign.
type PQCSignRequest struct {
	Message   string `json:"message" binding:"required,base64"`
	SecretKey string `json:"secretKey" binding:"required,base64"`
	Algorithm string `json:"algorithm,omitempty"`
}

// PQCSignResponse is the response body for POST /pqc/sign.
type PQCSignResponse struct {
	Algorithm string `json:"algorithm"`
	Signature string `json:"signature"`
}

// PQCVerifyRequest is the request body for POST /pqc/verify.
type PQCVerifyRequest struct {
	Message   string `json:"message" binding:"required,base64"`
	Signature string `json:"signature" binding:"required,base64"`
	PublicKey string `json:"publicKey" binding:"required,base64"`
	Algorithm string `json:"algorithm,omitempty"`
}

// PQCVerifyResponse is the response body for POST /pqc/verify.
type PQCVerifyResponse struct {
	Algorithm string `json:"algorithm"`
	Valid     bool   `json:"valid"`
}

// PQCAlgorithm describes one scheme offered by the delegate. Sizes are in bytes.
type PQCAlgorithm struct {
	Name           string `json:"name"`
	PublicKeySize  int    `json:"publicKeySize"`
	PrivateKeySize int    `json:"privateKeySize"`
	SignatureSize  int    `json:"signatureSize"`
	SeedSize       int    `json:"seedSize"`
}

// PQCAlgorithmsResponse is the response body for GET /pqc/algorithms.
type PQCAlgorithmsResponse struct {
	Default    string         `json:"default"`
	Algorithms []PQCAlgorithm `json:"algorithms"`
}
