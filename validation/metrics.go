package validation

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments the validation pipeline: counters for operations
// validated/failed per failure code, and a histogram of per-consignment
// validation latency. No HTTP server is started here — exposing a
// /metrics endpoint is the embedder's job; this package has no network
// transport of its own.
type Metrics struct {
	opsValidated   prometheus.Counter
	opsFailed      *prometheus.CounterVec
	consignmentDur prometheus.Histogram
}

// NewMetrics registers the pipeline's collectors against reg and returns
// the handle the Validator uses to record them. Passing a
// prometheus.NewRegistry() (rather than the global DefaultRegisterer) is
// the recommended embedding for tests and multi-tenant hosts.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		opsValidated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rgb",
			Subsystem: "validation",
			Name:      "operations_validated_total",
			Help:      "Total operations processed by the validation pipeline.",
		}),
		opsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rgb",
			Subsystem: "validation",
			Name:      "operations_failed_total",
			Help:      "Total operations that produced at least one Failure finding, by code.",
		}, []string{"code"}),
		consignmentDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rgb",
			Subsystem: "validation",
			Name:      "consignment_validation_seconds",
			Help:      "Wall-clock duration of a full consignment validation run.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.opsValidated, m.opsFailed, m.consignmentDur)
	return m
}

func (m *Metrics) recordOperation(findings []Finding) {
	if m == nil {
		return
	}
	m.opsValidated.Inc()
	for _, f := range findings {
		if f.Severity == SeverityFailure {
			m.opsFailed.WithLabelValues(string(f.Code)).Inc()
		}
	}
}

func (m *Metrics) observeConsignmentSeconds(seconds float64) {
	if m == nil {
		return
	}
	m.consignmentDur.Observe(seconds)
}
