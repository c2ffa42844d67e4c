package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Business metrics
	BookingsCreated   prometheus.Counter
	BookingsAccepted  prometheus.Counter
	BookingsRejected  prometheus.Counter
	BookingsCompleted prometheus.Counter
	MessagesSent      prometheus.Counter
	ReviewsSubmitted  prometheus.Counter
	NotificationsSent *prometheus.CounterVec
}

var metrics *Metrics

// Init initializes all Prometheus metrics
func Init() *Metrics {
	if metrics != nil {
		return metrics
	}

	metrics = &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hanapbuhay_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hanapbuhay_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "hanapbuhay_http_requests_in_flight",
				Help: "Number of HTTP requests currently being served",
			},
		),
		DBConnectionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "hanapbuhay_db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "hanapbuhay_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hanapbuhay_rate_limit_hits_total",
				Help: "Total number of rate limited requests",
			},
			[]string{"path"},
		),
		BookingsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "hanapbuhay_bookings_created_total",
				Help: "Total number of job requests created",
			},
		),
		BookingsAccepted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "hanapbuhay_bookings_accepted_total",
				Help: "Total number of job requests accepted",
			},
		),
		BookingsRejected: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "hanapbuhay_bookings_rejected_total",
				Help: "Total number of job requests rejected",
			},
		),
		BookingsCompleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "hanapbuhay_bookings_completed_total",
				Help: "Total number of job requests marked completed",
			},
		),
		MessagesSent: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "hanapbuhay_messages_sent_total",
				Help: "Total number of messages sent",
			},
		),
		ReviewsSubmitted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "hanapbuhay_reviews_submitted_total",
				Help: "Total number of reviews submitted",
			},
		),
		NotificationsSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hanapbuhay_notifications_sent_total",
				Help: "Total number of notifications dispatched",
			},
			[]string{"type"},
		),
	}

	return metrics
}

// Get returns the initialized metrics, initializing on first use
func Get() *Metrics {
	return Init()
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware records HTTP metrics for each request
func MetricsMiddleware() gin.HandlerFunc {
	m := Get()
	return func(c *gin.Context) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()

		c.Next()

		m.HTTPRequestsInFlight.Dec()

		// Use the route template, not the raw path, to bound cardinality.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
		).Observe(time.Since(start).Seconds())
	}
}
