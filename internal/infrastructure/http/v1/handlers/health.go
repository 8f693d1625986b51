// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"arpscout/internal/infrastructure/cache"
	"arpscout/internal/infrastructure/http/v1/dto"
	"arpscout/internal/upstream"
)

// Version is reported by /health/info.
var Version = "dev"

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	router   *upstream.Router
	sessions *cache.SessionCache
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(router *upstream.Router, sessions *cache.SessionCache) *HealthHandler {
	return &HealthHandler{router: router, sessions: sessions}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// Ready handles readiness probe. Upstream base URLs are validated when the
// router is built, so they are only listed here; third-party APIs are not
// pinged. The instance is ready once the session eviction loop runs.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := map[string]string{}
	for _, kind := range upstream.Kinds {
		checks[string(kind)] = h.router.ResolveBaseURL(kind).String()
	}

	if !h.sessions.Running() {
		checks["sessions"] = "stopped"
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "error", Checks: checks})
		return
	}
	checks["sessions"] = "running"
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Checks: checks})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	mode := "direct"
	if h.router.IsLocal() {
		mode = "local"
	}
	c.JSON(http.StatusOK, gin.H{
		"app":           "arpscout",
		"version":       Version,
		"upstream_mode": mode,
		"sessions":      h.sessions.Len(),
	})
}
