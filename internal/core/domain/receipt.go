package domain

// QuantumReceipt is the immutable proof of settlement.
type QuantumReceipt struct {
	TxID        string             `json:"txId,omitempty"`
	Tx          TransactionPayload `json:"tx"`
	Signature   string             `json:"signature"` // base64
	PublicKey   string             `json:"publicKey"` // base64
	Algorithm   string             `json:"algorithm,omitempty"`
	Provenance  Provenance         `json:"provenance,omitempty"`
	BlockHeader BlockHeader        `json:"blockHeader"`
	MerkleProof []ProofItem        `json:"merkleProof"`
}

// VerificationMode labels the assurance level of a verdict.
type VerificationMode string

const (
	// ModeRemote is a full attestation by the ledger.
	ModeRemote VerificationMode = "remote"
	// ModeOffline is structural only: Merkle recomputation plus presence checks.
	ModeOffline VerificationMode = "offline"
)

// Reasons reported for invalid receipts.
const (
	ReasonMissingReceipt     = "missing receipt"
	ReasonMissingSignature   = "missing signature"
	ReasonMissingPublicKey   = "missing public key"
	ReasonNonAuthoritative   = "non-authoritative signature provenance"
	ReasonSignatureInvalid   = "signature verification failed"
	ReasonMerkleMismatch     = "merkle proof verification failed"
	ReasonHeaderMismatch     = "block header mismatch"
	ReasonUnknownTransaction = "unknown transaction"
)

// VerificationResult is always returned, never raised.
type VerificationResult struct {
	Valid  bool             `json:"valid"`
	Mode   VerificationMode `json:"mode"`
	Reason string           `json:"reason,omitempty"`
}

// Valid builds a positive verdict.
func Valid(mode VerificationMode) VerificationResult {
	return VerificationResult{Valid: true, Mode: mode}
}

// Invalid builds a negative verdict.
func Invalid(mode VerificationMode, reason string) VerificationResult {
	return VerificationResult{Valid: false, Mode: mode, Reason: reason}
}
