package shared

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the prometheus collectors of a [Cache].
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	lookups   *prometheus.CounterVec
	conflicts prometheus.Counter
	durations prometheus.Histogram
}

// NewMetrics creates and registers the cache collectors.
// Collectors already registered (by another cache) are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reportlayout_shared_lookups_total",
				Help: "Shared layout lookups, by result (hit, miss, stale)",
			},
			[]string{"result"},
		),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reportlayout_shared_conflicts_total",
			Help: "Conflicts detected between rendering contexts",
		}),
		durations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "reportlayout_shared_layout_duration_seconds",
			Help: "Duration of the layouts computed on cache misses",
		}),
	}
	var err error
	if m.lookups, err = register(reg, m.lookups); err != nil {
		return nil, err
	}
	if m.conflicts, err = register(reg, m.conflicts); err != nil {
		return nil, err
	}
	if m.durations, err = register(reg, m.durations); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) lookup(result string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(result).Inc()
}

func (m *Metrics) conflict(n int) {
	if m == nil || n == 0 {
		return
	}
	m.conflicts.Add(float64(n))
}

func (m *Metrics) observe(seconds float64) {
	if m == nil {
		return
	}
	m.durations.Observe(seconds)
}
