// Package metrics provides Prometheus metrics for the matchdesk assignment tool.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for matchdesk.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Matching
	matchPairs          prometheus.Counter
	assignmentsAdded    prometheus.Counter
	assignmentsMerged   prometheus.Counter
	sourceRecordsLoaded *prometheus.CounterVec

	// Lifecycle
	assignmentsRetired *prometheus.CounterVec

	// Store
	storeRows              prometheus.Gauge
	storeOperations        *prometheus.CounterVec
	storeOperationDuration *prometheus.HistogramVec
	exportWrites           prometheus.Counter

	// Session
	commands *prometheus.CounterVec
	queries  *prometheus.CounterVec

	// Errors
	errorsByComponent *prometheus.CounterVec
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
		namespace:        "matchdesk",
		subsystem:        "",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.matchPairs = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "match_pairs_total",
		Help:        "Professional/demand pairs with equal subject found by matching",
		ConstLabels: labels,
	})

	m.assignmentsAdded = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "assignments_added_total",
		Help:        "Assignments created for demands not yet in the store",
		ConstLabels: labels,
	})

	m.assignmentsMerged = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "assignments_merged_total",
		Help:        "Assignments that gained an additional professional",
		ConstLabels: labels,
	})

	m.sourceRecordsLoaded = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "source_records_loaded_total",
			Help:        "Input records read from CSV sources by kind",
			ConstLabels: labels,
		},
		[]string{"kind"},
	)

	m.assignmentsRetired = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "assignments_retired_total",
			Help:        "Assignments removed from the store by selector kind",
			ConstLabels: labels,
		},
		[]string{"selector"},
	)

	m.storeRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_rows",
		Help:        "Rows in the assignment store after the last read or write",
		ConstLabels: labels,
	})

	m.storeOperations = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "store_operations_total",
			Help:        "Assignment store operations by operation and status",
			ConstLabels: labels,
		},
		[]string{"operation", "status"},
	)

	m.storeOperationDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "store_operation_duration_milliseconds",
			Help:        "Assignment store operation latency in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"operation"},
	)

	m.exportWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "export_writes_total",
		Help:        "Structured JSON exports written",
		ConstLabels: labels,
	})

	m.commands = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "session_commands_total",
			Help:        "Interactive menu commands by command name",
			ConstLabels: labels,
		},
		[]string{"command"},
	)

	m.queries = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "queries_total",
			Help:        "Read-only store queries by kind and outcome",
			ConstLabels: labels,
		},
		[]string{"kind", "outcome"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_total",
			Help:        "Errors by component and error type",
			ConstLabels: labels,
		},
		[]string{"component", "type"},
	)
}

// RecordMatch adds the outcome of a matching or merge pass.
func RecordMatch(pairs, added, merged int) {
	if !globalManager.enabled {
		return
	}
	globalManager.matchPairs.Add(float64(pairs))
	globalManager.assignmentsAdded.Add(float64(added))
	globalManager.assignmentsMerged.Add(float64(merged))
}

// RecordSourceRecords adds records loaded from a source of the given kind.
func RecordSourceRecords(kind string, n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.sourceRecordsLoaded.WithLabelValues(kind).Add(float64(n))
}

// RecordRetired adds assignments removed by a selector kind.
func RecordRetired(selector string, n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.assignmentsRetired.WithLabelValues(selector).Add(float64(n))
}

// UpdateStoreRows sets the current number of store rows.
func UpdateStoreRows(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.storeRows.Set(float64(n))
}

// RecordStoreOperation records a store operation, its status and latency.
func RecordStoreOperation(operation string, err error, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	globalManager.storeOperations.WithLabelValues(operation, status).Inc()
	globalManager.storeOperationDuration.WithLabelValues(operation).Observe(latencyMs)
}

// RecordExportWrite increments the structured export counter.
func RecordExportWrite() {
	if !globalManager.enabled {
		return
	}
	globalManager.exportWrites.Inc()
}

// RecordCommand increments the counter for an interactive command.
func RecordCommand(command string) {
	if !globalManager.enabled {
		return
	}
	globalManager.commands.WithLabelValues(command).Inc()
}

// RecordQuery records a query kind with its outcome (found, not_found, empty, error).
func RecordQuery(kind, outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.queries.WithLabelValues(kind, outcome).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// SetEnabled turns recording on or off for the global manager.
func SetEnabled(enabled bool) { globalManager.enabled = enabled }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes the current metrics in the text exposition format to
// path, for pickup by a node_exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}
