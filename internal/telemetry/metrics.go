package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"modelcore/internal/registry"
)

// Metrics counts lifecycle events and inference outcomes. It implements
// registry.Publisher and gateway.Observer.
type Metrics struct {
	events     *prometheus.CounterVec
	inferences *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them, together with a
// RegistryCollector over src when src is non-nil, on reg.
func NewMetrics(reg prometheus.Registerer, src Source) (*Metrics, error) {
	m := &Metrics{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modelcore",
				Subsystem: "registry",
				Name:      "events_total",
				Help:      "Registry lifecycle events",
			},
			[]string{"event"},
		),
		inferences: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modelcore",
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "Inference requests by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "modelcore",
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Duration of inference requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
	}
	cs := []prometheus.Collector{m.events, m.inferences, m.duration}
	if src != nil {
		cs = append(cs, NewRegistryCollector(src))
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Publish implements registry.Publisher.
func (m *Metrics) Publish(e registry.Event) {
	m.events.WithLabelValues(e.Name).Inc()
}

// ObserveInference implements gateway.Observer. Outcomes are a small fixed
// set; model names are kept out of labels to bound cardinality.
func (m *Metrics) ObserveInference(model, outcome string, dur time.Duration) {
	m.inferences.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(dur.Seconds())
}
