// Package metrics exposes controller activity as Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hvac"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	gatherer prometheus.Gatherer

	transitions   *prometheus.CounterVec
	active        *prometheus.GaugeVec
	clock         prometheus.Gauge
	rejectedTicks prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Unit switch transitions by unit and direction.",
		}, []string{"unit", "direction"}),
		active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unit_active",
			Help:      "1 while the unit is energized.",
		}, []string{"unit"}),
		clock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clock_seconds",
			Help:      "Last accepted controller time.",
		}),
		rejectedTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_ticks_total",
			Help:      "Ticks refused because the clock went backwards.",
		}),
	}
	reg.MustRegister(m.transitions, m.active, m.clock, m.rejectedTicks)
	for _, unit := range []string{"heat", "cool", "fan"} {
		m.active.WithLabelValues(unit).Set(0)
	}
	return m
}

// Transition records unit switching on or off.
func (m *Metrics) Transition(unit string, on bool) {
	if m == nil {
		return
	}
	dir, v := "off", 0.0
	if on {
		dir, v = "on", 1
	}
	m.transitions.WithLabelValues(unit, dir).Inc()
	m.active.WithLabelValues(unit).Set(v)
}

func (m *Metrics) SetClock(seconds uint64) {
	if m == nil {
		return
	}
	m.clock.Set(float64(seconds))
}

func (m *Metrics) TickRejected() {
	if m == nil {
		return
	}
	m.rejectedTicks.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
