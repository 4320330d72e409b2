package backend

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the counters a Hub keeps.
type Metrics struct {
	Sessions prometheus.Gauge
	Intents  *prometheus.CounterVec
	Errors   *prometheus.CounterVec
	Patches  *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "patchbay_sessions",
			Help: "Number of connected editors",
		}),
		Intents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "patchbay_intents_total",
				Help: "Total number of intents received from editors",
			},
			[]string{"action"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "patchbay_intent_errors_total",
				Help: "Total number of intents that were reported back as failed",
			},
			[]string{"action"},
		),
		Patches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "patchbay_patch_operations_total",
				Help: "Total number of patch loads and saves",
			},
			[]string{"op", "result"},
		),
	}
	reg.MustRegister(m.Sessions, m.Intents, m.Errors, m.Patches)
	return m
}

func (m *Metrics) intent(action string, err error) {
	if m == nil {
		return
	}
	m.Intents.WithLabelValues(action).Inc()
	if err != nil {
		m.Errors.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) patch(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Patches.WithLabelValues(op, result).Inc()
}
