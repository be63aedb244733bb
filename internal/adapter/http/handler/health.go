package handler

import (
	"net/http"

	"quantum-receipt-gateway/internal/adapter/http/dto"
	"quantum-receipt-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// HealthCheck pings every checker and answers 503 when any of them fails.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := make(map[string]string, len(checkers))
		healthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				checks[checker.Name()] = "unhealthy: " + err.Error()
				healthy = false
			} else {
				checks[checker.Name()] = "healthy"
			}
		}

		resp := dto.HealthResponse{Status: "healthy", Checks: checks}
		code := http.StatusOK
		if !healthy {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, resp)
	}
}
