package event

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts reconciliation outcomes. A nil *Metrics records nothing.
type Metrics struct {
	reconciliations *prometheus.CounterVec
	compensations   *prometheus.CounterVec
	rejected        *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "event_reconciliations_total",
			Help: "Event create/update/delete runs by outcome.",
		}, []string{"operation", "outcome"}),
		compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "event_compensations_total",
			Help: "Compensation passes run after a failed reconciliation, by resource.",
		}, []string{"resource"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "event_rejected_lines_total",
			Help: "Equipment or room lines rejected during reconciliation.",
		}, []string{"resource"}),
	}
	reg.MustRegister(m.reconciliations, m.compensations, m.rejected)
	return m
}

func (m *Metrics) observe(operation, outcome string) {
	if m == nil {
		return
	}
	m.reconciliations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) compensated(resource string) {
	if m == nil {
		return
	}
	m.compensations.WithLabelValues(resource).Inc()
}

func (m *Metrics) rejectedLines(resource string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.rejected.WithLabelValues(resource).Add(float64(n))
}
