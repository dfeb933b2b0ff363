package views

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/helpdesk-io/helpdesk-web/internal/version"
)

// Health reports the process as up. The backend is probed but its state
// only degrades the report; the frontend itself is still serving.
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, backend := "ok", "ok"
	if err := h.Client.Ping(ctx); err != nil {
		status, backend = "degraded", ErrorMessage(err)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  status,
		"backend": backend,
		"version": version.Version,
		"time":    h.Now().UTC().Format(time.RFC3339),
	})
}

// MetricsEndpoint serves prometheus metrics when they are enabled.
func (h *Handlers) MetricsEndpoint(c *gin.Context) {
	if h.Metrics == nil {
		c.Status(http.StatusNotFound)
		return
	}
	h.Metrics.ServeHTTP(c.Writer, c.Request)
}
