// Package metrics provides Prometheus metrics for monitoring the audit service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuditsRun = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timecop_audits_total",
			Help: "Total number of audit runs",
		},
		[]string{"status"},
	)
	AuditDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "timecop_audit_duration_seconds",
			Help:    "End-to-end audit run duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)
	EntriesScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timecop_entries_scanned_total",
			Help: "Total number of time entries classified",
		},
	)
	Verdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timecop_verdicts_total",
			Help: "Total number of verdicts issued by severity",
		},
		[]string{"severity"},
	)
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timecop_provider_requests_total",
			Help: "Total number of requests issued to the time-tracking provider",
		},
		[]string{"endpoint", "status"},
	)
	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "timecop_provider_request_duration_seconds",
			Help:    "Provider request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	DegradedFetches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timecop_degraded_fetches_total",
			Help: "Total number of provider calls absorbed as empty results",
		},
	)
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timecop_report_cache_hits_total",
			Help: "Total number of audit reports served from cache",
		},
	)
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timecop_report_cache_misses_total",
			Help: "Total number of cache lookups that missed",
		},
	)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timecop_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "timecop_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

func RecordAudit(status string, duration time.Duration) {
	AuditsRun.WithLabelValues(status).Inc()
	AuditDuration.Observe(duration.Seconds())
}

func RecordVerdict(severity string) {
	EntriesScanned.Inc()
	Verdicts.WithLabelValues(severity).Inc()
}

func RecordProviderRequest(endpoint, status string, duration time.Duration) {
	ProviderRequests.WithLabelValues(endpoint, status).Inc()
	ProviderRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func RecordDegradedFetch() {
	DegradedFetches.Inc()
}

func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
		return
	}
	CacheMisses.Inc()
}

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
