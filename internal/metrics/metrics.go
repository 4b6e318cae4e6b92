// Package metrics exports the PPM's per-run counters as Prometheus
// metrics: BSMs and bytes received, sent, and suppressed (the last
// broken out by suppression reason), the same counters the original
// implementation kept by hand and logged at shutdown.
package metrics

import (
	"fmt"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every counter the consume loop updates once per message.
type Metrics struct {
	Received        prometheus.Counter
	ReceivedBytes   prometheus.Counter
	Sent            prometheus.Counter
	SentBytes       prometheus.Counter
	Filtered        prometheus.Counter
	FilteredBytes   prometheus.Counter
	Suppressed      *prometheus.CounterVec
	ProduceFailures prometheus.Counter
}

// New constructs and registers the counters against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Received: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ppm_bsm_received_total",
			Help: "Total BSMs consumed from the upstream topic.",
		}),
		ReceivedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ppm_bsm_received_bytes_total",
			Help: "Total bytes consumed from the upstream topic.",
		}),
		Sent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ppm_bsm_sent_total",
			Help: "Total BSMs produced to the downstream topic.",
		}),
		SentBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ppm_bsm_sent_bytes_total",
			Help: "Total bytes produced to the downstream topic.",
		}),
		Filtered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ppm_bsm_filtered_total",
			Help: "Total BSMs suppressed by any filter.",
		}),
		FilteredBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ppm_bsm_filtered_bytes_total",
			Help: "Total bytes of BSMs suppressed by any filter.",
		}),
		Suppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ppm_bsm_suppressed_total",
			Help: "Total BSMs suppressed, broken out by reason.",
		}, []string{"reason"}),
		ProduceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ppm_produce_failures_total",
			Help: "Total produce calls that returned an error.",
		}),
	}
	reg.MustRegister(
		m.Received, m.ReceivedBytes,
		m.Sent, m.SentBytes,
		m.Filtered, m.FilteredBytes,
		m.Suppressed,
		m.ProduceFailures,
	)
	return m
}

// RecordReceived updates the received counters for one polled message.
func (m *Metrics) RecordReceived(n int) {
	m.Received.Inc()
	m.ReceivedBytes.Add(float64(n))
}

// RecordSent updates the sent counters for one produced message.
func (m *Metrics) RecordSent(n int) {
	m.Sent.Inc()
	m.SentBytes.Add(float64(n))
}

// RecordSuppressed updates the filtered/suppressed counters for one
// dropped message, labeled by reason (e.g. "SPEED", "GEOPOSITION").
func (m *Metrics) RecordSuppressed(reason string, n int) {
	m.Filtered.Inc()
	m.FilteredBytes.Add(float64(n))
	m.Suppressed.WithLabelValues(reason).Inc()
}

// Summary renders the one-line shutdown report ppm.cpp prints from its
// hand-kept counters.
func (m *Metrics) Summary() string {
	recv := counterValue(m.Received)
	sent := counterValue(m.Sent)
	filt := counterValue(m.Filtered)
	return fmt.Sprintf("bsm_recv_count=%d bsm_send_count=%d bsm_filt_count=%d", recv, sent, filt)
}

func counterValue(c prometheus.Counter) int64 {
	pb := &dto.Metric{}
	if err := c.Write(pb); err != nil {
		return 0
	}
	return int64(pb.GetCounter().GetValue())
}
