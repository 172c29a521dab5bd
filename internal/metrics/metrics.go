// Package metrics exposes the Prometheus collectors shared by every service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the moderation gate and the rate limiter report into.
type Recorder interface {
	RecordModeration(outcome string)
	RecordRateLimited(route string)
}

// Collector holds the registered Prometheus instruments.
type Collector struct {
	requestDuration *prometheus.HistogramVec
	moderation      *prometheus.CounterVec
	rateLimited     *prometheus.CounterVec
}

// NewCollector creates the instruments and registers them on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.1, 0.5, 1, 1.5, 2, 5},
		}, []string{"method", "route", "code"}),
		moderation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moderation_gate_outcomes_total",
			Help: "Moderation gate results by outcome",
		}, []string{"outcome"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "write_rate_limited_total",
			Help: "Write requests rejected by the per-user limiter",
		}, []string{"route"}),
	}
	reg.MustRegister(c.requestDuration, c.moderation, c.rateLimited)
	return c
}

// NewRegistry returns a registry preloaded with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (c *Collector) RecordModeration(outcome string) {
	c.moderation.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordRateLimited(route string) {
	c.rateLimited.WithLabelValues(route).Inc()
}

// Middleware observes request duration labelled by the matched route template.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		c.requestDuration.
			WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus exposition for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything; used where no registry is wired.
type Nop struct{}

func (Nop) RecordModeration(string)  {}
func (Nop) RecordRateLimited(string) {}
