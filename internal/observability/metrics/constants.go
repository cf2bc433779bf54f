// Package metrics defines the Prometheus collectors exported by zoneheat.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Status label values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	storeBuckets  = prometheus.ExponentialBuckets(0.001, 2, 15) // 1ms to ~16s
	remoteBuckets = prometheus.ExponentialBuckets(0.01, 2, 12)  // 10ms to ~20s
)

// vecGroup lets a metrics struct register its vectors as one collector.
type vecGroup []prometheus.Collector

func (g vecGroup) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range g {
		c.Describe(ch)
	}
}

func (g vecGroup) Collect(ch chan<- prometheus.Metric) {
	for _, c := range g {
		c.Collect(ch)
	}
}

func counter(name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
}

func histogram(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, labels)
}
