package domain

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrMissingWallet     = errors.New("fromWallet is required")
	ErrMissingRecipient  = errors.New("to is required")
	ErrMissingCurrency   = errors.New("currency is required")
	ErrMissingNonce      = errors.New("nonce is required")
)

// TransactionPayload is the transfer instruction issued by the ledger at prepare.
// Field order is part of the canonical encoding and must not change.
type TransactionPayload struct {
	FromWallet string `json:"fromWallet"`
	To         string `json:"to"`
	Amount     int64  `json:"amount"` // minor currency units
	Currency   string `json:"currency"`
	Nonce      uint64 `json:"nonce"`
	Timestamp  int64  `json:"timestamp"` // unix seconds
}

// Validate checks the payload invariants.
func (p TransactionPayload) Validate() error {
	switch {
	case p.Amount <= 0:
		return ErrNonPositiveAmount
	case p.FromWallet == "":
		return ErrMissingWallet
	case p.To == "":
		return ErrMissingRecipient
	case p.Currency == "":
		return ErrMissingCurrency
	case p.Nonce == 0:
		return ErrMissingNonce
	}
	return nil
}

// Canonical returns the bytes that are signed and hashed into the block.
func (p TransactionPayload) Canonical() []byte {
	// Marshalling a struct of strings and integers cannot fail.
	b, _ := json.Marshal(p)
	return b
}

// Provenance marks how far a signature can be trusted.
type Provenance string

const (
	ProvenanceAuthoritative Provenance = "authoritative"
	ProvenanceFallback      Provenance = "fallback"
	ProvenanceDemo          Provenance = "demo"
)

// IsAuthoritative is true only for signatures produced by a real scheme.
// An empty provenance is treated as authoritative for ledgers that omit the field.
func (p Provenance) IsAuthoritative() bool {
	return p == ProvenanceAuthoritative || p == ""
}

// KeyPair is signing key material. PrivateKey never leaves the process.
type KeyPair struct {
	PublicKey  []byte     `json:"-"`
	PrivateKey []byte     `json:"-"`
	Algorithm  string     `json:"algorithm"`
	Provenance Provenance `json:"provenance"`
}

// Signature is the output of a signer. PublicKey is the key that verifies
// Value, which differs from the caller's key when a fallback substituted one.
type Signature struct {
	Value      []byte
	PublicKey  []byte
	Algorithm  string
	Provenance Provenance
}

// SignedTransaction is the submission body.
type SignedTransaction struct {
	Payload    TransactionPayload `json:"payload"`
	Signature  string             `json:"signature"` // base64
	PublicKey  string             `json:"publicKey"` // base64
	Algorithm  string             `json:"algorithm,omitempty"`
	Provenance Provenance         `json:"provenance,omitempty"`
}

// NewSignedTransaction encodes sig for the wire.
func NewSignedTransaction(p TransactionPayload, sig *Signature) SignedTransaction {
	return SignedTransaction{
		Payload:    p,
		Signature:  base64.StdEncoding.EncodeToString(sig.Value),
		PublicKey:  base64.StdEncoding.EncodeToString(sig.PublicKey),
		Algorithm:  sig.Algorithm,
		Provenance: sig.Provenance,
	}
}

// TxStatus is the ledger-side settlement state.
type TxStatus string

const (
	TxStatusPending TxStatus = "PENDING"
	TxStatusSealed  TxStatus = "SEALED"
)

// LedgerTransaction is a submitted transaction as stored by the ledger.
type LedgerTransaction struct {
	ID          string            `json:"txId"`
	Signed      SignedTransaction `json:"signed"`
	PayloadHash string            `json:"payloadHash"` // hex SHA-256 of the canonical payload
	Status      TxStatus          `json:"status"`
	BlockIndex  uint64            `json:"blockIndex,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// IsSealed returns true once the transaction is part of a block.
func (t *LedgerTransaction) IsSealed() bool {
	return t.Status == TxStatusSealed
}
