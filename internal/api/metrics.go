package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fridge_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fridge_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fridge_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)

	handlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fridge_handler_errors_total",
			Help: "Total number of error responses by failure class",
		},
		[]string{"code"},
	)

	panicRecoveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fridge_panic_recoveries_total",
			Help: "Total number of panics recovered in HTTP handlers",
		},
	)

	// Domain metrics
	ingredientsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fridge_ingredients_resolved_total",
			Help: "Ingredient find-or-create calls by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	upstreamCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fridge_upstream_calls_total",
			Help: "Calls to external services by service and result",
		},
		[]string{"service", "result"},
	)
)

func recordIngredient(created bool, source string) {
	outcome := "existing"
	if created {
		outcome = "created"
	}
	ingredientsResolved.WithLabelValues(source, outcome).Inc()
}

// metricsMiddleware tracks request rate, errors and duration. Paths are the
// route templates so ids do not explode label cardinality.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
