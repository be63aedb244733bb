package handler

import (
	"quantum-receipt-gateway/config"
	"quantum-receipt-gateway/internal/adapter/http/middleware"
	"quantum-receipt-gateway/internal/core/ports"
	"quantum-receipt-gateway/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	Config         config.LedgerdConfig
	RateLimitStore ports.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Gatherer       prometheus.Gatherer // nil = no /metrics
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine of the reference ledger.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(deps.Config.MaxBodyBytes))
	r.Use(middleware.AuditLog(logger.Component(deps.Logger, "audit")))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("")
	if deps.RateLimitStore != nil && deps.Config.RateLimit > 0 {
		rule := middleware.RateLimitRule{Limit: deps.Config.RateLimit, Window: deps.Config.RateWindow}
		api.Use(middleware.RateLimiter(deps.RateLimitStore, "ledger", rule, deps.Logger))
	}

	ledger := NewLedgerHandler(deps.LedgerSvc)
	api.POST("/wallets", ledger.CreateWallet)
	api.POST("/verify", ledger.Verify)

	tx := api.Group("/tx")
	{
		tx.POST("/prepare", ledger.Prepare)
		tx.POST("/submit", ledger.Submit)
		tx.GET("/:txId/receipt", ledger.Receipt)
	}

	pqcHandler := NewPQCHandler(deps.Config.PQCAlgorithm)
	pqc := api.Group("/pqc")
	{
		pqc.POST("/keypair", pqcHandler.Keypair)
		pqc.POST("/sign", pqcHandler.Sign)
		pqc.POST("/verify", pqcHandler.Verify)
		pqc.GET("/algorithms", pqcHandler.Algorithms)
	}

	return r
}
