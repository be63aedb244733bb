package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuditAction names a ledger state change.
type AuditAction string

const (
	AuditWalletCreated AuditAction = "wallet_created"
	AuditTxPrepared    AuditAction = "tx_prepared"
	AuditTxSubmitted   AuditAction = "tx_submitted"
)

var auditedRoutes = map[string]AuditAction{
	http.MethodPost + " /wallets":    AuditWalletCreated,
	http.MethodPost + " /tx/prepare": AuditTxPrepared,
	http.MethodPost + " /tx/submit":  AuditTxSubmitted,
}

// AuditLog writes one audit event per successful state-changing request.
// Handlers attach the affected ids with CtxWalletID and CtxTxID.
func AuditLog(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		action, ok := auditedRoutes[c.Request.Method+" "+c.FullPath()]
		if !ok {
			return
		}

		event := log.Info().
			Str("audit_action", string(action)).
			Str("request_id", c.GetString(CtxRequestID)).
			Str("client_ip", c.ClientIP()).
			Int("status", status)
		if id := c.GetString(CtxWalletID); id != "" {
			event = event.Str("wallet_id", id)
		}
		if id := c.GetString(CtxTxID); id != "" {
			event = event.Str("tx_id", id)
		}
		event.Msg("audit")
	}
}
