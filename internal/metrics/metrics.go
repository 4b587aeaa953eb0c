package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "healthrec_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "healthrec_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "healthrec_recommendations_total",
			Help: "Recommendation requests by outcome",
		},
		[]string{"outcome"}, // "ok", "invalid_input", "error"
	)

	ConditionMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "healthrec_condition_lookups_total",
			Help: "Condition lookups by result",
		},
		[]string{"result"}, // "matched", "unmatched"
	)

	ContentItemsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "healthrec_content_items",
			Help: "Number of content items loaded at startup",
		},
	)

	ConditionsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "healthrec_conditions",
			Help: "Number of condition entries loaded at startup",
		},
	)
)

// RecordRecommendation counts one recommendation request.
func RecordRecommendation(outcome string) {
	RecommendationsServed.WithLabelValues(outcome).Inc()
}

// RecordConditionLookups counts matched and unmatched condition lookups.
func RecordConditionLookups(matched, unmatched int) {
	if matched > 0 {
		ConditionMatches.WithLabelValues("matched").Add(float64(matched))
	}
	if unmatched > 0 {
		ConditionMatches.WithLabelValues("unmatched").Add(float64(unmatched))
	}
}

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
	}
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
