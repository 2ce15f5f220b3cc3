package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	bitesRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bites_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	bitesRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bites_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	bitesSignupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bites_signups_total",
		Help: "Total signup attempts by result.",
	}, []string{"result"})

	bitesVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bites_email_verifications_total",
		Help: "Total email verification attempts by result.",
	}, []string{"result"})

	bitesRecipeViewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bites_recipe_views_total",
		Help: "Total recipe detail views served.",
	})
)

// PrometheusMiddleware returns a Gin middleware that records per-request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		bitesRequestsTotal.WithLabelValues(method, path, status).Inc()
		bitesRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// MetricsHandler returns a Gin handler that serves Prometheus metrics.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordSignup records a signup attempt.
func RecordSignup(success bool) {
	if success {
		bitesSignupsTotal.WithLabelValues("success").Inc()
	} else {
		bitesSignupsTotal.WithLabelValues("failure").Inc()
	}
}

// RecordVerification records an email verification attempt.
func RecordVerification(success bool) {
	if success {
		bitesVerificationsTotal.WithLabelValues("success").Inc()
	} else {
		bitesVerificationsTotal.WithLabelValues("failure").Inc()
	}
}

// RecordRecipeView records one served recipe detail view.
func RecordRecipeView() {
	bitesRecipeViewsTotal.Inc()
}
