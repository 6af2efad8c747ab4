package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
)

// Metrics bundles the prometheus collectors the service emits. The registry
// is injected, never the global default, so tests can run isolated instances.
type Metrics struct {
	registry           *prometheus.Registry
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	transitions        *prometheus.CounterVec
	idempotencyReplays prometheus.Counter
}

// NewMetrics creates and registers all collectors on the given registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "request_transitions_total",
			Help: "Payment request state transitions by action.",
		}, []string{"action"}),
		idempotencyReplays: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "idempotency_replays_total",
			Help: "Mutating calls served from the idempotency cache.",
		}),
	}
	registry.MustRegister(m.httpRequests, m.httpDuration, m.transitions, m.idempotencyReplays)
	return m
}

// Ensure Metrics implements the service-layer sink.
var _ portssvc.MetricsSink = (*Metrics)(nil)

// TransitionRecorded counts one applied state transition.
func (m *Metrics) TransitionRecorded(action string) {
	m.transitions.WithLabelValues(action).Inc()
}

// IdempotencyReplay counts one replay served from cache.
func (m *Metrics) IdempotencyReplay() {
	m.idempotencyReplays.Inc()
}

// Handler exposes the registry for the /metrics route.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware observes every request. The route template, not the raw path,
// keeps cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
