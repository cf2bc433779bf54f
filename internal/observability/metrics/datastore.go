package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DatastoreMetrics implements Recorder on top of Prometheus vectors.
// Operation labels are the repository op names (occupancy_set, exhibits_replace, ...).
type DatastoreMetrics struct {
	vecGroup
	ops     *prometheus.CounterVec
	latency *prometheus.HistogramVec
	errs    *prometheus.CounterVec
}

// NewDatastoreMetrics creates the datastore collectors and registers them on registry.
func NewDatastoreMetrics(registry prometheus.Registerer) (*DatastoreMetrics, error) {
	m := &DatastoreMetrics{
		ops: counter("zoneheat_datastore_operations_total", "Total number of datastore operations",
			"operation", "status"),
		latency: histogram("zoneheat_datastore_operation_duration_seconds", "Time taken for datastore operations",
			storeBuckets, "operation"),
		errs: counter("zoneheat_datastore_errors_total", "Total number of datastore operation errors by category",
			"operation", "error_type"),
	}
	m.vecGroup = vecGroup{m.ops, m.latency, m.errs}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordOperation counts one operation by status (StatusSuccess or StatusError).
func (m *DatastoreMetrics) RecordOperation(operation, status string) {
	m.ops.WithLabelValues(operation, status).Inc()
}

// RecordDuration observes an operation latency in seconds.
func (m *DatastoreMetrics) RecordDuration(operation string, seconds float64) {
	m.latency.WithLabelValues(operation).Observe(seconds)
}

// RecordError counts a failed operation by error category.
func (m *DatastoreMetrics) RecordError(operation, errorType string) {
	m.errs.WithLabelValues(operation, errorType).Inc()
}
