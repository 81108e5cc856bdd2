package blazegraph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// sharedMetrics is registered once on the default registry; clients share it
// so that creating several clients does not double-register collectors.
var sharedMetrics = newMetrics()

func newMetrics() *metrics {
	return &metrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "repository",
			Subsystem: "blazegraph",
			Name:      "requests_total",
			Help:      "Requests to the triple store by operation and status.",
		}, []string{"operation", "status"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "repository",
			Subsystem: "blazegraph",
			Name:      "request_duration_seconds",
			Help:      "Triple store request latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

func (m *metrics) observe(op, status string, d time.Duration) {
	m.requests.WithLabelValues(op, status).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}
