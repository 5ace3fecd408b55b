package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthStatus interface for the service state exposed by health checks
type HealthStatus interface {
	ActiveSessions() int
	Ready() bool
	PricePerSecond() float64
}

// HealthHandler handles health check requests
type HealthHandler struct {
	status HealthStatus
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(status HealthStatus) *HealthHandler {
	return &HealthHandler{status: status}
}

// GetHealth returns the health status of the service
// GET /api/health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "UP",
		"initialized":    h.status.Ready(),
		"activeSessions": h.status.ActiveSessions(),
		"pricePerSecond": h.status.PricePerSecond(),
	})
}
