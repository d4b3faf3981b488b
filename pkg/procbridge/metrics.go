package procbridge

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	m := &metrics{
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rexp_external_commands_total",
				Help: "External command invocations by executable and outcome",
			},
			[]string{"command", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rexp_external_command_duration_seconds",
				Help:    "Wall time of external command invocations",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"command"},
		),
	}
	m.invocations = register(reg, m.invocations)
	m.duration = register(reg, m.duration)
	return m
}

// register reuses an already registered collector so several bridges can
// share one registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *metrics) observe(name string, res Result) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(name, res.Outcome.String()).Inc()
	m.duration.WithLabelValues(name).Observe(res.Duration.Seconds())
}
