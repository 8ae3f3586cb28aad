// Package metrics defines the Prometheus collectors of the site server.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Gate decisions.
const (
	DecisionPassThrough = "pass_through"
	DecisionAllow       = "allow"
	DecisionLogin       = "redirect_login"
	DecisionForbidden   = "redirect_root"
)

// Metrics holds the collectors.
type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	gateDecisions *prometheus.CounterVec
	assetRescues  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gate_decisions_total",
			Help: "Access gate outcomes.",
		}, []string{"decision"}),
		assetRescues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "asset_rescues_total",
			Help: "Asset requests retried or substituted after a transient failure.",
		}, []string{"action"}),
	}
	reg.MustRegister(m.requests, m.duration, m.gateDecisions, m.assetRescues)
	return m
}

// Middleware records request count and latency.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// GateDecision counts one access gate outcome. Safe on a nil receiver.
func (m *Metrics) GateDecision(decision string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(decision).Inc()
}

// AssetRescue counts one retried or substituted asset request. Safe on a nil receiver.
func (m *Metrics) AssetRescue(action string) {
	if m == nil {
		return
	}
	m.assetRescues.WithLabelValues(action).Inc()
}
