package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics counts API requests by route template, never by raw URL.
type HTTPMetrics struct {
	vecGroup
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewHTTPMetrics creates the request collectors and registers them on registry.
func NewHTTPMetrics(registry prometheus.Registerer) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		requests: counter("zoneheat_http_requests_total", "Total number of HTTP requests",
			"method", "path", "status_code"),
		latency: histogram("zoneheat_http_request_duration_seconds", "Time taken for HTTP requests",
			prometheus.DefBuckets, "method", "path"),
	}
	m.vecGroup = vecGroup{m.requests, m.latency}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordRequest records a completed request.
func (m *HTTPMetrics) RecordRequest(method, path string, statusCode int, seconds float64) {
	m.requests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.latency.WithLabelValues(method, path).Observe(seconds)
}
