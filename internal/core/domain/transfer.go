package domain

import "time"

// TransferState is the coordinator's view of one transfer.
type TransferState string

const (
	TransferDraft            TransferState = "draft"
	TransferPrepared         TransferState = "prepared"
	TransferSigned           TransferState = "signed"
	TransferSubmitted        TransferState = "submitted"
	TransferSealed           TransferState = "sealed"
	TransferReceiptRetrieved TransferState = "receipt_retrieved"
	TransferFailed           TransferState = "failed"
)

// IsTerminal returns true if no further operation applies.
func (s TransferState) IsTerminal() bool {
	return s == TransferReceiptRetrieved || s == TransferFailed
}

// Transfer carries one transfer through prepare, sign, submit, seal and receipt.
// It is owned by a single caller; the coordinator keeps no copy.
type Transfer struct {
	ClientRequestID string              `json:"clientRequestId"`
	WalletID        string              `json:"walletId"`
	State           TransferState       `json:"state"`
	Payload         *TransactionPayload `json:"payload,omitempty"`
	Signed          *SignedTransaction  `json:"signed,omitempty"`
	TxID            string              `json:"txId,omitempty"`
	Receipt         *QuantumReceipt     `json:"receipt,omitempty"`
	FailureCode     string              `json:"failureCode,omitempty"`
	FailureReason   string              `json:"failureReason,omitempty"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// Advance moves the transfer to state.
func (t *Transfer) Advance(state TransferState, now time.Time) {
	t.State = state
	t.UpdatedAt = now
}

// Fail moves the transfer to the terminal failed state.
func (t *Transfer) Fail(code, reason string, now time.Time) {
	t.State = TransferFailed
	t.FailureCode = code
	t.FailureReason = reason
	t.UpdatedAt = now
}
