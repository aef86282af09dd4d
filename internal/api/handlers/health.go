package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parlaylab/sports-mcp/internal/services"
	"github.com/parlaylab/sports-mcp/internal/tools"
)

// HealthHandler serves liveness and a small status snapshot. It never
// invokes a tool handler or touches an upstream.
type HealthHandler struct {
	registry *tools.Registry
	breakers *services.CircuitBreakerService
}

func NewHealthHandler(registry *tools.Registry, breakers *services.CircuitBreakerService) *HealthHandler {
	return &HealthHandler{registry: registry, breakers: breakers}
}

// GetHealth serves GET /healthz.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetStatus serves GET /status with the registered tools and breaker states.
func (h *HealthHandler) GetStatus(c *gin.Context) {
	breakerStates := map[string]string{
		services.BreakerMLB:          h.breakers.GetState(services.BreakerMLB).String(),
		services.BreakerFootballData: h.breakers.GetState(services.BreakerFootballData).String(),
		services.BreakerSoccerData:   h.breakers.GetState(services.BreakerSoccerData).String(),
		services.BreakerOddsAPI:      h.breakers.GetState(services.BreakerOddsAPI).String(),
		services.BreakerLLM:          h.breakers.GetState(services.BreakerLLM).String(),
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"tools":    h.registry.Names(),
		"breakers": breakerStates,
	})
}
