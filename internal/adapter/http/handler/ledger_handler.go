package handler

import (
	"quantum-receipt-gateway/internal/adapter/http/dto"
	"quantum-receipt-gateway/internal/adapter/http/middleware"
	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/internal/core/ports"
	"quantum-receipt-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// LedgerHandler serves the ledger contract consumed by the receipt client.
type LedgerHandler struct {
	svc ports.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(svc ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{svc: svc}
}

// CreateWallet handles POST /wallets.
func (h *LedgerHandler) CreateWallet(c *gin.Context) {
	var req dto.CreateWalletRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	dto.SanitizeStruct(&req)

	account, err := h.svc.CreateWallet(c.Request.Context(), req.OwnerID, req.PublicKey)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxWalletID, account.ID)
	response.Created(c, dto.CreateWalletResponse{WalletID: account.ID})
}

// Prepare handles POST /tx/prepare.
func (h *LedgerHandler) Prepare(c *gin.Context) {
	var req dto.PrepareTxRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	dto.SanitizeStruct(&req)

	payload, err := h.svc.Prepare(c.Request.Context(), ports.PrepareRequest{
		WalletID:        req.WalletID,
		To:              req.To,
		Amount:          req.Amount,
		Currency:        req.Currency,
		ClientRequestID: req.ClientRequestID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxWalletID, payload.FromWallet)
	response.OK(c, dto.PrepareTxResponse{Payload: *payload, Nonce: payload.Nonce})
}

// Submit handles POST /tx/submit.
func (h *LedgerHandler) Submit(c *gin.Context) {
	var tx domain.SignedTransaction
	if err := bindJSON(c, &tx); err != nil {
		response.Error(c, err)
		return
	}

	txID, err := h.svc.Submit(c.Request.Context(), tx)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxWalletID, tx.Payload.FromWallet)
	c.Set(middleware.CtxTxID, txID)
	response.Created(c, dto.SubmitTxResponse{TxID: txID})
}

// Receipt handles GET /tx/:txId/receipt.
func (h *LedgerHandler) Receipt(c *gin.Context) {
	r, err := h.svc.Receipt(c.Request.Context(), c.Param("txId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, r)
}

// Verify handles POST /verify. Invalid receipts are a 200 with valid=false.
func (h *LedgerHandler) Verify(c *gin.Context) {
	var req dto.VerifyRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	v, err := h.svc.Verify(c.Request.Context(), req.Receipt)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, v)
}
