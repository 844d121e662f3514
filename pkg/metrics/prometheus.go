// Package metrics provides Prometheus metrics for the PODIUM judging service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the PODIUM service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Core Business Metrics - What really matters for a judging platform
	scoresSubmitted   prometheus.Counter
	scoreSubmitErrors prometheus.Counter
	aggregateLatency  prometheus.Histogram
	roundsFinalized   prometheus.Counter

	// Leaderboard Metrics
	leaderboardQueries      prometheus.Counter
	leaderboardQueryLatency prometheus.Histogram
	leaderboardBroadcasts   prometheus.Counter

	// Review Integrity Metrics
	reviewsUpserted     prometheus.Counter
	flagsRaised         *prometheus.CounterVec
	flagAnalysisRuns    prometheus.Counter
	flagAnalysisErrors  prometheus.Counter
	flagAnalysisLatency prometheus.Histogram

	// Broadcast Metrics - Notification fanout health
	broadcastsPublished  prometheus.Counter
	broadcastsDropped    prometheus.Counter
	broadcastSubscribers prometheus.Gauge

	// Sweep Metrics - Scheduled integrity re-analysis
	sweepRuns   prometheus.Counter
	sweepErrors prometheus.Counter

	// Operational Health Metrics
	totalSubmissions prometheus.Gauge
	totalReviews     prometheus.Gauge

	// Repository Metrics
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "podium",
		subsystem:        "judging",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Business Metrics
	m.scoresSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scores_submitted_total",
		Help:      "Total number of judge score sets successfully submitted",
	})

	m.scoreSubmitErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_submit_errors_total",
		Help:      "Total number of rejected score submissions (validation or access)",
	})

	m.aggregateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregate_latency_milliseconds",
		Help:      "Histogram of weighted aggregate computation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.roundsFinalized = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rounds_finalized_total",
		Help:      "Total number of rounds finalized by organizers",
	})

	// Leaderboard Metrics
	m.leaderboardQueries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_queries_total",
		Help:      "Total number of leaderboard reads",
	})

	m.leaderboardQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_query_latency_milliseconds",
		Help:      "Histogram of leaderboard assembly latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.leaderboardBroadcasts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_broadcasts_total",
		Help:      "Total number of leaderboard update notifications emitted",
	})

	// Review Integrity Metrics
	m.reviewsUpserted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reviews_upserted_total",
		Help:      "Total number of event reviews created or updated",
	})

	m.flagsRaised = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "review_flags_total",
			Help:      "Total number of review flags raised, by reason",
		},
		[]string{"reason"},
	)

	m.flagAnalysisRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flag_analysis_runs_total",
		Help:      "Total number of review flagging analysis runs",
	})

	m.flagAnalysisErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flag_analysis_errors_total",
		Help:      "Total number of failed review flagging analysis runs",
	})

	m.flagAnalysisLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flag_analysis_latency_milliseconds",
		Help:      "Histogram of review flagging analysis latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Broadcast Metrics
	m.broadcastsPublished = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "broadcasts_published_total",
		Help:      "Total number of notifications delivered to subscribers",
	})

	m.broadcastsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "broadcasts_dropped_total",
		Help:      "Total number of notifications dropped due to slow subscribers",
	})

	m.broadcastSubscribers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "broadcast_subscribers",
		Help:      "Current number of connected broadcast subscribers",
	})

	// Sweep Metrics
	m.sweepRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sweep_runs_total",
		Help:      "Total number of scheduled integrity sweep runs",
	})

	m.sweepErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sweep_errors_total",
		Help:      "Total number of scheduled integrity sweep failures",
	})

	// Operational Health Metrics
	m.totalSubmissions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_submissions",
		Help:      "Total number of submissions tracked (business scale)",
	})

	m.totalReviews = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_reviews",
		Help:      "Total number of event reviews tracked (business scale)",
	})

	// Repository Metrics
	m.repositoryUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_update_latency_milliseconds",
		Help:      "Histogram of repository write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.repositoryQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_query_latency_milliseconds",
		Help:      "Histogram of repository read latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds (user experience)",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Enhanced Error Metrics
	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total errors by component and error type",
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total errors by HTTP endpoint, method and error type",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// Package-level helpers operating on the global manager.

func RecordScoreSubmission() {
	globalManager.scoresSubmitted.Inc()
}

func RecordScoreSubmitError() {
	globalManager.scoreSubmitErrors.Inc()
}

func RecordAggregateLatency(latencyMs float64) {
	globalManager.aggregateLatency.Observe(latencyMs)
}

func RecordRoundFinalized() {
	globalManager.roundsFinalized.Inc()
}

func RecordLeaderboardQuery() {
	globalManager.leaderboardQueries.Inc()
}

func RecordLeaderboardQueryLatency(latencyMs float64) {
	globalManager.leaderboardQueryLatency.Observe(latencyMs)
}

func RecordLeaderboardBroadcast() {
	globalManager.leaderboardBroadcasts.Inc()
}

func RecordReviewUpsert() {
	globalManager.reviewsUpserted.Inc()
}

func RecordReviewFlag(reason string) {
	globalManager.flagsRaised.WithLabelValues(reason).Inc()
}

func RecordFlagAnalysisRun() {
	globalManager.flagAnalysisRuns.Inc()
}

func RecordFlagAnalysisError() {
	globalManager.flagAnalysisErrors.Inc()
}

func RecordFlagAnalysisLatency(latencyMs float64) {
	globalManager.flagAnalysisLatency.Observe(latencyMs)
}

func RecordBroadcastPublished() {
	globalManager.broadcastsPublished.Inc()
}

func RecordBroadcastDropped() {
	globalManager.broadcastsDropped.Inc()
}

func UpdateBroadcastSubscribers(count int) {
	globalManager.broadcastSubscribers.Set(float64(count))
}

func RecordSweepRun() {
	globalManager.sweepRuns.Inc()
}

func RecordSweepError() {
	globalManager.sweepErrors.Inc()
}

func UpdateTotalSubmissions(count int) {
	globalManager.totalSubmissions.Set(float64(count))
}

func UpdateTotalReviews(count int) {
	globalManager.totalReviews.Set(float64(count))
}

func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
