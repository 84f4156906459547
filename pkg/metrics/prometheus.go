// Package metrics provides Prometheus metrics for the scalesync ingestion service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Record outcome labels.
const (
	OutcomeCreated    = "created"
	OutcomeUpdated    = "updated"
	OutcomeSkipped    = "skipped"
	OutcomeInvalid    = "invalid_date"
	OutcomeFiltered   = "filtered"
	OutcomeDuplicate  = "duplicate"
	OutcomeStoreError = "error"
)

// Manager manages all Prometheus metrics for the ingestion service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Import pipeline
	importRuns     *prometheus.CounterVec
	importDuration prometheus.Histogram
	rowsParsed     prometheus.Counter
	rowsMisaligned prometheus.Counter
	recordOutcomes *prometheus.CounterVec

	// Store
	storeLatency  *prometheus.HistogramVec
	storeErrors   *prometheus.CounterVec
	storedRecords prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System
	systemMemoryUsage   prometheus.Gauge
	systemGoroutines    prometheus.Gauge
	systemGCPauseMillis prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scalesync",
		subsystem:        "ingest",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.importRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "import_runs_total",
		Help:        "Import runs by final status (ok, warnings, rejected)",
		ConstLabels: m.constLabels,
	}, []string{"status"})

	m.importDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "import_duration_milliseconds",
		Help:        "End-to-end import latency in milliseconds",
		Buckets:     []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		ConstLabels: m.constLabels,
	})

	m.rowsParsed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_parsed_total",
		Help:        "Data rows read from uploaded CSV files",
		ConstLabels: m.constLabels,
	})

	m.rowsMisaligned = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_misaligned_total",
		Help:        "Rows whose field count did not match the header and were padded or truncated",
		ConstLabels: m.constLabels,
	})

	m.recordOutcomes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "record_outcomes_total",
		Help:        "Terminal state of each input row",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_operation_latency_milliseconds",
		Help:        "Record store latency by operation",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"op"})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_errors_total",
		Help:        "Record store failures by operation",
		ConstLabels: m.constLabels,
	}, []string{"op"})

	m.storedRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stored_records",
		Help:        "Number of canonical records currently held by the store",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_endpoint_total",
		Help:        "HTTP errors by endpoint, method and error type",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_usage_bytes",
		Help:        "Heap bytes allocated and still in use",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutines = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutines",
		Help:        "Number of live goroutines",
		ConstLabels: m.constLabels,
	})

	m.systemGCPauseMillis = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "gc_pause_milliseconds",
		Help:        "Average GC pause in milliseconds",
		ConstLabels: m.constLabels,
	})
}

// RecordImportRun counts a finished import by status.
func RecordImportRun(status string) {
	globalManager.importRuns.WithLabelValues(status).Inc()
}

// RecordImportDuration records import latency in milliseconds.
func RecordImportDuration(latencyMs float64) {
	globalManager.importDuration.Observe(latencyMs)
}

// AddRowsParsed adds to the parsed rows counter.
func AddRowsParsed(n int) {
	globalManager.rowsParsed.Add(float64(n))
}

// AddRowsMisaligned adds to the misaligned rows counter.
func AddRowsMisaligned(n int) {
	globalManager.rowsMisaligned.Add(float64(n))
}

// AddRecordOutcome adds n to the given outcome.
func AddRecordOutcome(outcome string, n int) {
	if n <= 0 {
		return
	}
	globalManager.recordOutcomes.WithLabelValues(outcome).Add(float64(n))
}

// RecordStoreLatency records a store operation latency in milliseconds.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreError increments the store error counter for op.
func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
}

// UpdateStoredRecords sets the stored records gauge.
func UpdateStoredRecords(count int) {
	globalManager.storedRecords.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint increments the error counter for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the in-use heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutines.Set(float64(n))
}

// RecordSystemGCPauseTime sets the average GC pause gauge.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseMillis.Set(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
