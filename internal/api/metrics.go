package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records API call counts and latency per operation.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the client collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pastyears",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Requests sent to the questions API by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pastyears",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Latency of questions API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

func (m *Metrics) observe(op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func outcomeFor(status int, err error) string {
	switch {
	case status == 0 && err != nil:
		return "network_error"
	case status >= 500:
		return "http_5xx"
	case status >= 400:
		return "http_4xx"
	case err != nil:
		return "decode_error"
	}
	return "ok"
}
