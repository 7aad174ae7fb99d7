package event

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCount(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.observe(opCreate, "success")
	m.observe(opCreate, "success")
	m.compensated("room")
	m.rejectedLines("equipment", 3)
	m.rejectedLines("room", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reconciliations.WithLabelValues(opCreate, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.compensations.WithLabelValues("room")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.rejected.WithLabelValues("equipment")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.rejected))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observe(opDelete, "error")
		m.compensated("equipment")
		m.rejectedLines("room", 2)
	})
}
