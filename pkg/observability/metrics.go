package observability

import (
	"errors"

	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "beatbox"

// Metrics records traversal activity.
type Metrics struct {
	Terminals  *prometheus.CounterVec
	Descents   prometheus.Counter
	Traversals prometheus.Counter
	Depth      prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// Collectors already registered by an earlier call are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Terminals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "terminals_total",
				Help:      "Total number of terminals emitted, by symbol.",
			},
			[]string{"symbol"},
		),
		Descents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "descents_total",
			Help:      "Total number of non-terminal expansions entered.",
		}),
		Traversals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "traversals_completed_total",
			Help:      "Total number of traversals that reached the end of their root sequence.",
		}),
		Depth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "stack_depth",
			Help:      "Position stack depth observed on each descent.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	var err error
	m.Terminals, err = register(reg, m.Terminals)
	if err != nil {
		return nil, err
	}
	if m.Descents, err = register(reg, m.Descents); err != nil {
		return nil, err
	}
	if m.Traversals, err = register(reg, m.Traversals); err != nil {
		return nil, err
	}
	if m.Depth, err = register(reg, m.Depth); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDescend: func(e *domain.Event) {
			m.Descents.Inc()
			m.Depth.Observe(float64(e.Depth))
		},
		OnEmit: func(e *domain.Event) {
			m.Terminals.WithLabelValues(e.Symbol.String()).Inc()
		},
		OnDone: func(*domain.Event) {
			m.Traversals.Inc()
		},
	}
}
