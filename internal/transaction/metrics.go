// internal/transaction/metrics.go
package transaction

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks simulated submissions.
type Metrics struct {
	submissions *prometheus.CounterVec
	inFlight    prometheus.Gauge
	delay       prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// uses a private registry so repeated construction never collides.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "token_swap_tx_submissions_total",
			Help: "Total number of simulated swap submissions by outcome",
		}, []string{"outcome"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "token_swap_tx_in_flight",
			Help: "Simulated submissions waiting for their delay to elapse",
		}),
		delay: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "token_swap_tx_delay_seconds",
			Help:    "Simulated network delay in seconds",
			Buckets: prometheus.LinearBuckets(1.5, 0.25, 8),
		}),
	}
	reg.MustRegister(m.submissions, m.inFlight, m.delay)
	return m
}

func (m *Metrics) started() {
	m.inFlight.Inc()
}

func (m *Metrics) finished(outcome Outcome, delay time.Duration) {
	m.inFlight.Dec()
	m.submissions.WithLabelValues(string(outcome)).Inc()
	m.delay.Observe(delay.Seconds())
}
