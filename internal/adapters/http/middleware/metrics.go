package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "commispipe",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "commispipe",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "commispipe",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)
)

// Pipeline metrics, recorded by the worker and the emit path.
var (
	EventsEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "commispipe",
			Subsystem: "pipeline",
			Name:      "events_emitted_total",
			Help:      "Commission-affecting payment events by installment and outcome",
		},
		[]string{"installment", "enqueued"},
	)

	EventAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "commispipe",
			Subsystem: "pipeline",
			Name:      "event_attempts_total",
			Help:      "Verification attempts by result",
		},
		[]string{"result"}, // processed, retried, failed
	)

	VerificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "commispipe",
			Subsystem: "pipeline",
			Name:      "verification_duration_seconds",
			Help:      "Time spent verifying commissions for one event",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 30, 60, 120},
		},
	)

	SchemesTruncatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "commispipe",
			Subsystem: "schemes",
			Name:      "truncated_total",
			Help:      "Schemes truncated to keep the timeline consistent",
		},
	)
)

// Metrics returns the Prometheus HTTP middleware.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		method := c.Request.Method

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordEmission records the outcome of an event emission.
func RecordEmission(installment string, enqueued bool) {
	EventsEmittedTotal.WithLabelValues(installment, strconv.FormatBool(enqueued)).Inc()
}

// RecordAttempt records one verification attempt outcome.
func RecordAttempt(result string, duration time.Duration) {
	EventAttemptsTotal.WithLabelValues(result).Inc()
	VerificationDuration.Observe(duration.Seconds())
}
