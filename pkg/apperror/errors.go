package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind groups error codes by how callers must react to them.
type Kind string

const (
	KindTransport  Kind = "transport"
	KindProtocol   Kind = "protocol"
	KindRejection  Kind = "rejection"
	KindSigning    Kind = "signing"
	KindSeal       Kind = "seal"
	KindState      Kind = "state"
	KindValidation Kind = "validation"
	KindInternal   Kind = "internal"
)

// Error codes shared by the ledger service and its clients.
const (
	CodeLedgerUnreachable = "TRN_001"
	CodeSignerUnreachable = "TRN_002"

	CodeMalformedResponse = "PRT_001"
	CodeReceiptMismatch   = "PRT_002"

	CodeInsufficientFunds = "LGR_001"
	CodeInvalidWallet     = "LGR_002"
	CodeAlreadySubmitted  = "LGR_003"
	CodeTxNotFound        = "LGR_004"
	CodeNotSealed         = "LGR_005"
	CodeInvalidAmount     = "LGR_006"
	CodeInvalidSignature  = "LGR_007"

	CodeSigningUnavailable = "SGN_001"
	CodeMissingKeys        = "SGN_002"

	CodeSealTimeout = "SEAL_001"

	CodeInvalidTransition = "TX_001"

	CodeInternal   = "SYS_001"
	CodeValidation = "SYS_002"
	CodeRateLimited = "SYS_003"
)

var kindByCode = map[string]Kind{
	CodeLedgerUnreachable:  KindTransport,
	CodeSignerUnreachable:  KindTransport,
	CodeMalformedResponse:  KindProtocol,
	CodeReceiptMismatch:    KindProtocol,
	CodeInsufficientFunds:  KindRejection,
	CodeInvalidWallet:      KindRejection,
	CodeAlreadySubmitted:   KindRejection,
	CodeTxNotFound:         KindRejection,
	CodeNotSealed:          KindRejection,
	CodeInvalidAmount:      KindRejection,
	CodeInvalidSignature:   KindRejection,
	CodeSigningUnavailable: KindSigning,
	CodeMissingKeys:        KindSigning,
	CodeSealTimeout:        KindSeal,
	CodeInvalidTransition:  KindState,
	CodeValidation:         KindValidation,
	CodeInternal:           KindInternal,
	CodeRateLimited:        KindTransport,
}

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	Kind       Kind   `json:"-"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient.
func (e *AppError) Retryable() bool {
	return e.Kind == KindTransport
}

// New creates a new AppError. The kind is derived from the code.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Kind:       kindOfCode(code),
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	e := New(code, message, httpStatus)
	e.Err = err
	return e
}

// FromCode rebuilds an AppError received over the wire.
// Unknown codes are treated as protocol errors.
func FromCode(code, message string, httpStatus int) *AppError {
	if _, ok := kindByCode[code]; !ok {
		return Wrap(CodeMalformedResponse, "Unrecognised ledger error", http.StatusBadGateway,
			fmt.Errorf("code %q status %d: %s", code, httpStatus, message))
	}
	return New(code, message, httpStatus)
}

func kindOfCode(code string) Kind {
	if k, ok := kindByCode[code]; ok {
		return k
	}
	return KindInternal
}

// KindOf returns the kind of the first AppError in err's chain.
// Errors outside the taxonomy are internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsRetryable reports whether err is a transport failure.
func IsRetryable(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Retryable()
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// ---- Transport (TRN) ----

func ErrLedgerUnreachable(err error) *AppError {
	return Wrap(CodeLedgerUnreachable, "Ledger service unreachable", http.StatusServiceUnavailable, err)
}

func ErrSignerUnreachable(err error) *AppError {
	return Wrap(CodeSignerUnreachable, "Signing service unreachable", http.StatusServiceUnavailable, err)
}

// ---- Protocol (PRT) ----

func ErrMalformedResponse(err error) *AppError {
	return Wrap(CodeMalformedResponse, "Malformed response", http.StatusBadGateway, err)
}

func ErrReceiptMismatch(txID string) *AppError {
	return New(CodeReceiptMismatch, fmt.Sprintf("Receipt for %s does not match the submitted transaction", txID), http.StatusBadGateway)
}

// ---- Ledger rejections (LGR) ----

func ErrInsufficientFunds() *AppError {
	return New(CodeInsufficientFunds, "Insufficient balance in wallet", http.StatusPaymentRequired)
}

func ErrInvalidWallet() *AppError {
	return New(CodeInvalidWallet, "Wallet not found", http.StatusNotFound)
}

func ErrAlreadySubmitted() *AppError {
	return New(CodeAlreadySubmitted, "Transaction already submitted", http.StatusConflict)
}

func ErrTxNotFound() *AppError {
	return New(CodeTxNotFound, "Transaction not found", http.StatusNotFound)
}

func ErrNotSealed() *AppError {
	return New(CodeNotSealed, "Transaction not yet confirmed", http.StatusConflict)
}

func ErrInvalidAmount() *AppError {
	return New(CodeInvalidAmount, "Invalid amount", http.StatusBadRequest)
}

func ErrInvalidSignature() *AppError {
	return New(CodeInvalidSignature, "Invalid signature", http.StatusBadRequest)
}

// ---- Signing (SGN) ----

func ErrSigningUnavailable(err error) *AppError {
	return Wrap(CodeSigningUnavailable, "Signing unavailable", http.StatusServiceUnavailable, err)
}

func ErrMissingKeys(walletID string) *AppError {
	return New(CodeMissingKeys, fmt.Sprintf("No signing keys for wallet %s", walletID), http.StatusNotFound)
}

// ---- Sealing (SEAL) ----

func ErrSealTimeout(txID string, attempts int) *AppError {
	return New(CodeSealTimeout, fmt.Sprintf("Transaction %s not sealed after %d attempts", txID, attempts), http.StatusGatewayTimeout)
}

// ---- Coordinator state (TX) ----

func ErrInvalidTransition(from, op string) *AppError {
	return New(CodeInvalidTransition, fmt.Sprintf("Cannot %s a transfer in state %s", op, from), http.StatusConflict)
}

// ---- System & Infrastructure (SYS) ----

func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

func Validation(msg string) *AppError {
	return New(CodeValidation, msg, http.StatusBadRequest)
}

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimited, "Rate limit exceeded, retry later", http.StatusTooManyRequests)
}
