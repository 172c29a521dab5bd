package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadyFunc reports whether the service's hard dependencies are usable.
type ReadyFunc func(ctx context.Context) error

// RegisterOps mounts /health, /ready and, when metrics is non-nil, /metrics.
func RegisterOps(r gin.IRoutes, service string, ready ReadyFunc, metrics http.Handler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   service,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.GET("/ready", func(c *gin.Context) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}
}
