// Package metrics exports loader events as Prometheus metrics.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/probablyarth/dynload-go"
)

// Observer counts loader events. It implements dynload.Observer.
type Observer struct {
	events *prometheus.CounterVec
	cached prometheus.Counter
}

// NewObserver creates an Observer and registers its collectors with reg.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dynload_loader_events_total",
				Help: "Total number of loader events, by event type.",
			},
			[]string{"event"},
		),
		cached: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dynload_cached_resources_total",
				Help: "Total number of resources that loaded successfully and were cached.",
			},
		),
	}
	for _, c := range []prometheus.Collector{o.events, o.cached} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register loader metrics: %w", err)
		}
	}
	return o, nil
}

// On implements dynload.Observer.
func (o *Observer) On(e dynload.EventData) {
	o.events.WithLabelValues(e.Event.String()).Inc()
	if e.Event == dynload.EventSuccess {
		o.cached.Inc()
	}
}
