package asyncapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// collector holds the facade's Prometheus metrics. A nil collector (metrics
// disabled) is safe to call.
type collector struct {
	EventsTotal        *prometheus.CounterVec
	EmitsTotal         *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
}

func newCollector(reg prometheus.Registerer) *collector {
	if reg == nil {
		return nil
	}
	factory := promauto.With(reg)
	return &collector{
		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sockio",
				Name:      "events_total",
				Help:      "Inbound events dispatched through the validation pipeline",
			},
			[]string{"event"},
		),
		EmitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sockio",
				Name:      "emits_total",
				Help:      "Outbound emits through the validating facade",
			},
			[]string{"event"},
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sockio",
				Name:      "validation_failures_total",
				Help:      "Payload validation failures by pipeline stage",
			},
			[]string{"event", "stage"},
		),
	}
}

func (c *collector) event(name string) {
	if c != nil {
		c.EventsTotal.WithLabelValues(name).Inc()
	}
}

func (c *collector) emit(name string) {
	if c != nil {
		c.EmitsTotal.WithLabelValues(name).Inc()
	}
}

func (c *collector) failure(name, stage string) {
	if c != nil {
		c.ValidationFailures.WithLabelValues(name, stage).Inc()
	}
}
