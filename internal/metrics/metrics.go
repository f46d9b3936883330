package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "estoque"

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)
)

// Session metrics
var (
	// LoginsTotal counts login attempts by result: success, rejected, error.
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Total number of login attempts",
		},
		[]string{"result"},
	)

	// RegistrationsTotal counts sign ups by result: success, rejected,
	// profile_failed, error.
	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Total number of registration attempts",
		},
		[]string{"result"},
	)

	// TokenVerificationsTotal counts decode outcomes: valid, invalid, missing.
	TokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_verifications_total",
			Help:      "Total number of session token verifications",
		},
		[]string{"result"},
	)

	GateRedirectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_redirects_total",
			Help:      "Total number of protected requests redirected to the login page",
		},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)
)

// Business metrics
var (
	ProductsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_created_total",
			Help:      "Total number of products created",
		},
	)

	EntradasCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entradas_created_total",
			Help:      "Total number of entradas created",
		},
	)

	ImagesUploaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_uploaded_total",
			Help:      "Total number of product images uploaded",
		},
		[]string{"status"},
	)
)

// Background job metrics
var (
	// JobsProcessedTotal counts finished job runs by type and result:
	// completed, retried, failed. Recorded through the helpers in worker.go.
	JobsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_processed_total",
			Help:      "Total number of background job runs",
		},
		[]string{"job_type", "result"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Background job execution time",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"job_type"},
	)
)

// Result label values shared by the session counters.
const (
	ResultSuccess       = "success"
	ResultRejected      = "rejected"
	ResultError         = "error"
	ResultProfileFailed = "profile_failed"
	ResultValid         = "valid"
	ResultInvalid       = "invalid"
	ResultMissing       = "missing"
)
