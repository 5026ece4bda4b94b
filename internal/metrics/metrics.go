// Package metrics defines Prometheus metrics for the caching reverse proxy.
package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// registerOnce ensures Register() is idempotent.
var registerOnce sync.Once

// sizeBuckets are exponential buckets for request/response size histograms (bytes).
var sizeBuckets = []float64{256, 1024, 4096, 16384, 65536, 262144, 1048576, 4194304, 16777216, 67108864}

// HTTP metrics (RED: Rate, Errors, Duration).
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "s3cacheproxy_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency in seconds by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "s3cacheproxy_http_request_duration_seconds",
			Help:    "Request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// HTTPRequestSize observes request body size in bytes.
	HTTPRequestSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "s3cacheproxy_http_request_size_bytes",
			Help:    "Request body size in bytes",
			Buckets: sizeBuckets,
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize observes response body size in bytes.
	HTTPResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "s3cacheproxy_http_response_size_bytes",
			Help:    "Response body size in bytes",
			Buckets: sizeBuckets,
		},
		[]string{"method", "path"},
	)
)

// S3 operation metrics.
var (
	// S3OperationsTotal counts resolved S3 operations by operation name and status.
	S3OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "s3cacheproxy_s3_operations_total",
			Help: "S3 operations by type",
		},
		[]string{"operation", "status"},
	)
)

// Cache-plane metrics (spec §4.5, §4.6).
var (
	// CacheHitsTotal counts cache lookups that returned a fresh entry.
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "s3cacheproxy_cache_hits_total",
			Help: "Cache lookups served from a fresh entry",
		},
		[]string{"operation"},
	)

	// CacheMissesTotal counts cache lookups that required an upstream fetch.
	CacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "s3cacheproxy_cache_misses_total",
			Help: "Cache lookups that required an upstream fetch",
		},
		[]string{"operation"},
	)

	// CacheBypassTotal counts requests that skipped the cache entirely.
	CacheBypassTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "s3cacheproxy_cache_bypass_total",
			Help: "Requests that bypassed the cache entirely",
		},
		[]string{"operation", "reason"},
	)

	// CacheEvictionsTotal counts entries removed to stay under the weight budget.
	CacheEvictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "s3cacheproxy_cache_evictions_total",
			Help: "Cache entries evicted to stay under the configured weight budget",
		},
	)

	// CacheWeightBytes is a gauge of the cache's current total weight.
	CacheWeightBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "s3cacheproxy_cache_weight_bytes",
			Help: "Current total weight of cached entries",
		},
	)

	// InvalidationsTotal counts keys invalidated by the webhook worker.
	InvalidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "s3cacheproxy_invalidations_total",
			Help: "Cache keys invalidated, by triggering S3 event name",
		},
		[]string{"event_name"},
	)

	// WebhookEventsTotal counts ingress webhook deliveries by outcome.
	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "s3cacheproxy_webhook_events_total",
			Help: "Webhook notifications received, by outcome",
		},
		[]string{"outcome"},
	)

	// BytesReceivedTotal counts total bytes received in request bodies.
	BytesReceivedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "s3cacheproxy_bytes_received_total",
			Help: "Total bytes received (request bodies)",
		},
	)

	// BytesSentTotal counts total bytes sent in response bodies.
	BytesSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "s3cacheproxy_bytes_sent_total",
			Help: "Total bytes sent (response bodies)",
		},
	)
)

// Register registers all Prometheus collectors with the default registry.
// This must be called explicitly (typically from main) so that metrics
// registration can be made conditional on configuration. It is safe to call
// multiple times; subsequent calls are no-ops.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			HTTPRequestSize,
			HTTPResponseSize,
			S3OperationsTotal,
			CacheHitsTotal,
			CacheMissesTotal,
			CacheBypassTotal,
			CacheEvictionsTotal,
			CacheWeightBytes,
			InvalidationsTotal,
			WebhookEventsTotal,
			BytesReceivedTotal,
			BytesSentTotal,
		)
	})
}

// NormalizePath maps actual request paths to normalized path templates
// suitable for use as Prometheus metric labels. This avoids high-cardinality
// labels from individual bucket/object names.
func NormalizePath(path string) string {
	// Known fixed paths.
	switch path {
	case "/health":
		return "/health"
	case "/healthz":
		return "/healthz"
	case "/readyz":
		return "/readyz"
	case "/docs", "/docs/":
		return "/docs"
	case "/metrics":
		return "/metrics"
	case "/openapi.json":
		return "/openapi.json"
	case "/", "":
		return "/"
	}

	if strings.HasPrefix(path, "/docs") {
		return "/docs"
	}
	if strings.HasPrefix(path, "/admin") {
		return "/admin"
	}

	trimmed := path
	if len(trimmed) > 0 && trimmed[0] == '/' {
		trimmed = trimmed[1:]
	}
	if trimmed == "" {
		return "/"
	}

	idx := strings.IndexByte(trimmed, '/')
	if idx < 0 {
		return "/{bucket}"
	}
	keyPart := trimmed[idx+1:]
	if keyPart == "" {
		return "/{bucket}"
	}
	return "/{bucket}/{key}"
}
