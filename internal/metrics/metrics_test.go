package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordModeration("approved")
	c.RecordModeration("approved")
	c.RecordModeration("rejected")
	c.RecordRateLimited("/posts")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.moderation.WithLabelValues("approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.moderation.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rateLimited.WithLabelValues("/posts")))
}

func TestMiddleware_ObservesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	r := gin.New()
	r.Use(c.Middleware())
	r.GET("/posts/:id", func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(Handler(reg)))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts/7", nil))

	assert.Equal(t, 1, testutil.CollectAndCount(c.requestDuration))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `http_request_duration_seconds_count{code="204",method="GET",route="/posts/:id"} 1`), body)
}
