// Package telemetry exposes the dashboard's prometheus metrics.
package telemetry

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gym_dashboard"

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeStale    = "stale"
)

var (
	// requestDuration measures HTTP handler latency.
	// Labels: method, route (the gin route template), status
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// mutations counts member activity writes that can unlock achievements.
	// Labels: operation (log_workout, book_class), outcome (ok, rejected, error)
	mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "activity",
		Name:      "mutations_total",
		Help:      "Member activity mutations (workout logging, class booking) by operation and outcome",
	}, []string{"operation", "outcome"})

	// aiCalls counts calls to the external assistant.
	// Labels: kind (coach, meal), outcome (ok, error, stale)
	aiCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ai",
		Name:      "calls_total",
		Help:      "Assistant calls by kind and outcome",
	}, []string{"kind", "outcome"})

	// aiLatency measures assistant round trips.
	aiLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ai",
		Name:      "latency_seconds",
		Help:      "Assistant call latency in seconds",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"kind"})
)

// RecordMutation counts one mutation attempt.
func RecordMutation(operation, outcome string) {
	mutations.WithLabelValues(operation, outcome).Inc()
}

// RecordAICall counts one assistant call and its latency.
func RecordAICall(kind, outcome string, elapsed time.Duration) {
	aiCalls.WithLabelValues(kind, outcome).Inc()
	aiLatency.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// GinMiddleware observes request latency per route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
