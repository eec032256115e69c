package actions

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "dashboard"

// Result labels.
const (
	resultRedirected = "redirected"
	resultInvalid    = "invalid"
	resultFailed     = "failed"
	resultDeleted    = "deleted"
	resultRejected   = "rejected"
	resultError      = "error"
)

// Metrics counts form submissions by entity, operation and result.
type Metrics struct {
	submissions *prometheus.CounterVec
}

// NewMetrics registers the submission counter on reg. A nil registerer
// leaves the counter unregistered, which is what tests usually want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "submissions_total",
				Help:      "The number of processed form submissions.",
			}, []string{"entity", "operation", "result"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.submissions)
	}
	return m
}

// Describe is part of the prometheus.Collector interface.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.submissions.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.submissions.Collect(ch)
}

func (m *Metrics) observe(entity, op, result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(entity, op, result).Inc()
}

// Count returns the counter for one label set.
func (m *Metrics) Count(entity, op, result string) prometheus.Counter {
	return m.submissions.WithLabelValues(entity, op, result)
}
