package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meetlog_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "meetlog_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meetlog_login_attempts_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	recordOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meetlog_record_operations_total",
		Help: "Meeting record operations by operation and result",
	}, []string{"op", "result"})

	summarizeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "meetlog_summarize_duration_seconds",
		Help:    "Duration of summarization requests",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"result"})

	summaryCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meetlog_summary_cache_total",
		Help: "Summary cache lookups by outcome",
	}, []string{"outcome"})

	breakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meetlog_summarizer_breaker_state",
		Help: "Summarizer circuit breaker state (0 closed, 1 open, 2 half-open)",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveLogin counts a login attempt with result success|failure|error.
func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// ObserveRecordOp counts a meeting record operation.
func ObserveRecordOp(op, result string) {
	recordOperations.WithLabelValues(op, result).Inc()
}

// ObserveSummarize records the duration of a summarization call.
func ObserveSummarize(result string, duration time.Duration) {
	summarizeDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// ObserveSummaryCache counts a cache lookup with outcome hit|miss|error.
func ObserveSummaryCache(outcome string) {
	summaryCacheHits.WithLabelValues(outcome).Inc()
}

// SetBreakerState exports the summarizer circuit breaker state.
func SetBreakerState(state int) {
	breakerState.Set(float64(state))
}
