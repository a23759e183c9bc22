package observability

import (
	"github.com/aretw0/observed/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "observed"

// Registry operations reported in the "op" label.
const (
	OpAdd     = "add"
	OpDiscard = "discard"
	OpPrune   = "prune"
)

// Metrics holds the collectors fed by registry hooks.
type Metrics struct {
	registrations *prometheus.CounterVec
	dispatches    *prometheus.CounterVec
	fanout        *prometheus.HistogramVec
	skipped       *prometheus.CounterVec
	failures      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "Observer registry changes by operation.",
			},
			[]string{"observable", "op"},
		),
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatches_total",
				Help:      "Completed or aborted observer dispatches.",
			},
			[]string{"observable"},
		),
		fanout: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_fanout",
				Help:      "Observers invoked per dispatch.",
				Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
			},
			[]string{"observable"},
		),
		skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_skipped_total",
				Help:      "Collected observers skipped before their registry entry was pruned.",
			},
			[]string{"observable"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "observer_failures_total",
				Help:      "Dispatches aborted by an observer error.",
			},
			[]string{"observable"},
		),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNewMetrics is NewMetrics that panics on registration errors.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	m, err := NewMetrics(reg)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.registrations, m.dispatches, m.fanout, m.skipped, m.failures}
}

// Hooks returns registry hooks that record into m.
func (m *Metrics) Hooks() domain.RegistryHooks {
	return domain.RegistryHooks{
		OnAdd:     m.record(OpAdd),
		OnDiscard: m.record(OpDiscard),
		OnPrune:   m.record(OpPrune),
		OnDispatch: func(e domain.DispatchEvent) {
			m.dispatches.WithLabelValues(e.Registry).Inc()
			m.fanout.WithLabelValues(e.Registry).Observe(float64(e.Delivered))
			if e.Skipped > 0 {
				m.skipped.WithLabelValues(e.Registry).Add(float64(e.Skipped))
			}
			if e.Err != nil {
				m.failures.WithLabelValues(e.Registry).Inc()
			}
		},
	}
}

func (m *Metrics) record(op string) func(domain.RegistryEvent) {
	return func(e domain.RegistryEvent) {
		m.registrations.WithLabelValues(e.Registry, op).Inc()
	}
}
