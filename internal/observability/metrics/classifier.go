package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ClassifierMetrics tracks zone classification outcomes and the remote call.
type ClassifierMetrics struct {
	vecGroup
	resultsTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheTotal      *prometheus.CounterVec
	breakerState    *prometheus.GaugeVec
}

// NewClassifierMetrics creates and registers new classifier metrics
func NewClassifierMetrics(registry prometheus.Registerer) (*ClassifierMetrics, error) {
	m := &ClassifierMetrics{
		// source: primary, fallback-error, fallback-empty, fallback-exception
		resultsTotal: counter("zoneheat_classifier_results_total", "Classification results by source tag", "source"),
		requestDuration: histogram("zoneheat_classifier_request_duration_seconds",
			"Duration of remote classifier requests", remoteBuckets, "status"),
		cacheTotal: counter("zoneheat_classifier_cache_total", "Classifier cache lookups", "result"),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "zoneheat_classifier_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		}, []string{"name"}),
	}
	m.vecGroup = vecGroup{m.resultsTotal, m.requestDuration, m.cacheTotal, m.breakerState}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordResult counts one classification by its source tag.
func (m *ClassifierMetrics) RecordResult(source string) {
	m.resultsTotal.WithLabelValues(source).Inc()
}

// RecordRequest observes a remote request duration.
func (m *ClassifierMetrics) RecordRequest(status string, seconds float64) {
	m.requestDuration.WithLabelValues(status).Observe(seconds)
}

// RecordCache counts a cache hit or miss.
func (m *ClassifierMetrics) RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheTotal.WithLabelValues(result).Inc()
}

// SetBreakerState publishes the breaker state as 0, 1 or 2.
func (m *ClassifierMetrics) SetBreakerState(name string, state int) {
	m.breakerState.WithLabelValues(name).Set(float64(state))
}
