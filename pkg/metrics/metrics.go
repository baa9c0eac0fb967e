package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "xetor", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "xetor", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "xetor", Name: "http_requests_total", Help: "HTTP requests by method, route and status code."},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "xetor", Name: "http_request_duration_seconds", Help: "HTTP request latency by method and route.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)
	StoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "xetor", Name: "store_errors_total", Help: "Document store failures by operation."},
		[]string{"op"},
	)
	ResolverLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "xetor", Name: "resolver_lookups_total", Help: "Batched reference lookups by target collection and outcome."},
		[]string{"target", "outcome"},
	)
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "xetor", Name: "notifications_total", Help: "Contact notifications by outcome (sent|failed|skipped)."},
		[]string{"outcome"},
	)
	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "xetor", Name: "image_uploads_total", Help: "Image uploads by backend and outcome."},
		[]string{"backend", "outcome"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(HTTPDuration)
	reg.MustRegister(StoreErrors)
	reg.MustRegister(ResolverLookups)
	reg.MustRegister(Notifications)
	reg.MustRegister(Uploads)
}
