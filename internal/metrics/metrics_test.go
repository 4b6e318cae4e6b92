package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidwall/assert"
)

func TestRecordSuppressedIncrementsByReason(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordReceived(120)
	m.RecordSuppressed("SPEED", 120)
	m.RecordSuppressed("SPEED", 130)
	m.RecordSuppressed("GEOPOSITION", 140)

	assert.Assert(counterValue(m.Received) == 1)
	assert.Assert(counterValue(m.Filtered) == 3)
	assert.Assert(m.Suppressed.WithLabelValues("SPEED") != nil)
}

func TestSummaryReflectsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordReceived(10)
	m.RecordSent(10)

	s := m.Summary()
	assert.Assert(s != "")
}
