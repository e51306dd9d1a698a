package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReadinessCheck reports whether a dependency is ready to serve traffic.
type ReadinessCheck func() error

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	checks map[string]ReadinessCheck
}

// NewHealthHandler creates a new HealthHandler. checks are evaluated on every readiness request.
func NewHealthHandler(checks map[string]ReadinessCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	for name, check := range h.checks {
		if err := check(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": name + " not ready: " + err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
