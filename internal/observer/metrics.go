package observer

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts template calls and records rendered sizes per unit.
type Metrics struct {
	renders *prometheus.CounterVec
	size    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. Collectors
// that are already registered are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	renders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ftmpl",
		Name:      "renders_total",
		Help:      "Number of calls of instrumented template units.",
	}, []string{"unit"})
	size := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ftmpl",
		Name:      "rendered_bytes",
		Help:      "Size of the strings rendered by instrumented template units.",
		Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
	}, []string{"unit"})

	var err error
	if renders, err = register(reg, renders); err != nil {
		return nil, err
	}
	if size, err = register(reg, size); err != nil {
		return nil, err
	}
	return &Metrics{renders: renders, size: size}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("failed to register template metrics: %w", err)
	}
	return c, nil
}

// Observe records one call. It satisfies Func.
func (m *Metrics) Observe(name, rendered string, _ map[string]any) error {
	m.renders.WithLabelValues(name).Inc()
	m.size.WithLabelValues(name).Observe(float64(len(rendered)))
	return nil
}

// Renders returns the call counter.
func (m *Metrics) Renders() *prometheus.CounterVec {
	return m.renders
}
