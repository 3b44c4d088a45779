package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the attach collectors. A nil *Metrics records nothing.
type Metrics struct {
	attachRequests   *prometheus.CounterVec
	dispatchDuration prometheus.Histogram
}

// NewMetrics creates the attach collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		attachRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "attach_requests_total",
				Help: "Attach requests by classification tag and outcome.",
			},
			[]string{"tag", "outcome"},
		),
		dispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "attach_dispatch_duration_seconds",
			Help:    "Time spent opening the mail client.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
	}

	for _, c := range []prometheus.Collector{m.attachRequests, m.dispatchDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeAttach(tag string, success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.attachRequests.WithLabelValues(tag, outcome).Inc()
}

func (m *Metrics) observeDispatch(d time.Duration) {
	if m == nil {
		return
	}
	m.dispatchDuration.Observe(d.Seconds())
}
