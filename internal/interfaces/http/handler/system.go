package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger verifies a backing connection is alive
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler handles health and readiness endpoints
type SystemHandler struct {
	BaseHandler
	db      Pinger
	appName string
	version string
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger, appName, version string) *SystemHandler {
	return &SystemHandler{db: db, appName: appName, version: version}
}

// Health handles GET /healthz. Liveness only; no dependencies checked.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"app":     h.appName,
		"version": h.version,
	})
}

// Ready handles GET /readyz and verifies the database connection
func (h *SystemHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"reason": "database unreachable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
