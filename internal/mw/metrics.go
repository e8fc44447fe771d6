package mw

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	RequestsInFlight  prometheus.Gauge
	RateLimitRejects  prometheus.Counter
	VouchesSubmitted  *prometheus.CounterVec
	NotificationsSent *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crowd_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status_code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crowd_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "crowd_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
		RateLimitRejects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crowd_rate_limit_rejects_total",
			Help: "Requests rejected by the per-IP rate limiter",
		}),
		VouchesSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crowd_vouches_submitted_total",
			Help: "Crowd reports accepted, by reported level",
		}, []string{"crowd_level"}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crowd_notifications_total",
			Help: "Web push notifications attempted, by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RequestsInFlight,
		m.RateLimitRejects,
		m.VouchesSubmitted,
		m.NotificationsSent,
	)
	return m
}

// Middleware records request count, latency and in-flight requests. The
// route template is used as label so path ids do not explode cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
