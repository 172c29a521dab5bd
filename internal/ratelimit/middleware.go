package ratelimit

import (
	"strconv"

	"microhub/internal/apperr"
	"microhub/internal/auth"
	"microhub/internal/httpapi"
	"microhub/internal/metrics"
	"microhub/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RequireQuota limits writes per authenticated user. It must run after
// auth.RequireBearer. A nil limiter disables the check; limiter errors let the
// request through.
func RequireQuota(l Limiter, rec metrics.Recorder) gin.HandlerFunc {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		id := auth.MustIdentity(c)
		key := strconv.FormatInt(id.ID, 10)

		ok, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			logger.FromGin(c).Warn("rate limiter unavailable, allowing request", "err", err)
			c.Next()
			return
		}
		if !ok {
			rec.RecordRateLimited(c.FullPath())
			logger.FromGin(c).Warn("write rate limit exceeded", "user_id", id.ID)
			c.Header("Retry-After", "60")
			httpapi.Abort(c, apperr.RateLimited("Too many requests, please try again later"))
			return
		}
		c.Next()
	}
}
