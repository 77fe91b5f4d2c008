// Package metrics provides Prometheus metrics for the newspulse pipeline.
//
// The pipeline is a batch job, so metrics are exported by writing the
// registry in text exposition format to a file (see WriteTextfile) rather
// than by serving a scrape endpoint.
package metrics

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for a pipeline run.
type Manager struct {
	namespace    string
	subsystem    string
	customLabels map[string]string
	registry     prometheus.Registerer

	// Fetch metrics
	fetchRequests    prometheus.Counter
	fetchFailures    *prometheus.CounterVec
	headlinesFetched prometheus.Counter
	fetchLatency     prometheus.Histogram

	// Scoring metrics
	scoringLatency prometheus.Histogram
	scoringErrors  prometheus.Counter
	sentimentRows  *prometheus.CounterVec

	// Run metrics
	rowsWritten      prometheus.Gauge
	runDuration      prometheus.Gauge
	lastRunTimestamp prometheus.Gauge
}

// DefaultNamespace prefixes every metric name unless WithNamespace overrides it.
const DefaultNamespace = "newspulse"

const subsystem = "pipeline"

// Variable labels used by the pipeline metrics; const labels may not reuse them.
var variableLabels = []string{"reason", "label"} //nolint:gochecknoglobals // read-only

var validName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`) //nolint:gochecknoglobals // compiled once

// Default bucket layout for upstream latencies, in milliseconds.
var defaultLatencyBuckets = []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 15000} //nolint:gochecknoglobals // read-only defaults

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init replaces the global manager with one built from opts on a fresh
// registry. Call it once at startup before any metric is recorded; values
// recorded earlier are discarded.
func Init(opts ...Option) error {
	draft := &Manager{namespace: DefaultNamespace}
	for _, opt := range opts {
		opt(draft)
	}
	if err := validate(draft.namespace, draft.customLabels); err != nil {
		return err
	}

	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(customRegistry))...)
	return nil
}

func validate(namespace string, labels map[string]string) error {
	if !validName.MatchString(namespace) {
		return fmt.Errorf("%w: namespace %q", ErrInvalidOption, namespace)
	}
	for name := range labels {
		if !validName.MatchString(name) || strings.HasPrefix(name, "__") || slices.Contains(variableLabels, name) {
			return fmt.Errorf("%w: label name %q", ErrInvalidOption, name)
		}
	}
	return nil
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:    DefaultNamespace,
		subsystem:    subsystem,
		customLabels: make(map[string]string),
		registry:     prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.fetchRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fetch_requests_total",
		Help:        "Total number of feed search requests issued",
		ConstLabels: labels,
	})

	m.fetchFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fetch_failures_total",
		Help:        "Total number of feed requests that yielded no headlines because of an error",
		ConstLabels: labels,
	}, []string{"reason"})

	m.headlinesFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "headlines_fetched_total",
		Help:        "Total number of headlines returned by the feed",
		ConstLabels: labels,
	})

	m.fetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fetch_latency_milliseconds",
		Help:        "Feed request latency in milliseconds",
		Buckets:     defaultLatencyBuckets,
		ConstLabels: labels,
	})

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "scoring_latency_milliseconds",
		Help:        "Sentiment classification latency in milliseconds",
		Buckets:     defaultLatencyBuckets,
		ConstLabels: labels,
	})

	m.scoringErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "scoring_errors_total",
		Help:        "Total number of headlines dropped because classification failed",
		ConstLabels: labels,
	})

	m.sentimentRows = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "sentiment_rows_total",
		Help:        "Total number of scored rows by sentiment label",
		ConstLabels: labels,
	}, []string{"label"})

	m.rowsWritten = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_written",
		Help:        "Number of rows written to the output table by the last run",
		ConstLabels: labels,
	})

	m.runDuration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_seconds",
		Help:        "Wall-clock duration of the last run",
		ConstLabels: labels,
	})

	m.lastRunTimestamp = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_timestamp_seconds",
		Help:        "Unix time at which the last run completed",
		ConstLabels: labels,
	})
}

// RecordFetchRequest increments the feed request counter.
func RecordFetchRequest() {
	globalManager.fetchRequests.Inc()
}

// RecordFetchFailure increments the fetch failure counter for reason.
func RecordFetchFailure(reason string) {
	globalManager.fetchFailures.WithLabelValues(reason).Inc()
}

// RecordHeadlinesFetched adds n to the fetched headline counter.
func RecordHeadlinesFetched(n int) {
	if n > 0 {
		globalManager.headlinesFetched.Add(float64(n))
	}
}

// RecordFetchLatency records feed request latency.
func RecordFetchLatency(latencyMs float64) {
	globalManager.fetchLatency.Observe(latencyMs)
}

// RecordScoringLatency records classification latency.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordScoringError increments the scoring errors counter.
func RecordScoringError() {
	globalManager.scoringErrors.Inc()
}

// RecordSentimentRow increments the row counter for label.
func RecordSentimentRow(label string) {
	globalManager.sentimentRows.WithLabelValues(label).Inc()
}

// UpdateRowsWritten sets the number of rows written by the last run.
func UpdateRowsWritten(n int) {
	globalManager.rowsWritten.Set(float64(n))
}

// RecordRunCompleted records the duration and completion time of a run.
func RecordRunCompleted(d time.Duration, at time.Time) {
	globalManager.runDuration.Set(d.Seconds())
	globalManager.lastRunTimestamp.Set(float64(at.Unix()))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes the current state of the custom registry to path in
// the Prometheus text format, atomically replacing any previous file.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	return nil
}
