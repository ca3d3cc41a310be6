// Package metrics records column events as Prometheus metrics.
package metrics

import (
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/flexcol/column"
	"github.com/arloliu/flexcol/errs"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Observer is a column.Observer that counts finished events and records
// their durations, labeled by event name and outcome. Outcome is "success"
// or, for failed events, the error kind such as "data_too_long".
type Observer struct {
	events   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ column.Observer = (*Observer)(nil)

// NewObserver creates an Observer and registers its collectors with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewObserver(reg prometheus.Registerer, namespace string) (*Observer, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &Observer{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "column",
				Name:      "events_total",
				Help:      "Column deserialize and serialize events.",
			},
			[]string{"event", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "column",
				Name:      "event_duration_seconds",
				Help:      "Column event duration in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"event"},
		),
	}

	for _, c := range []prometheus.Collector{o.events, o.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// Started implements column.Observer; only finished events are recorded.
func (o *Observer) Started(column.Event) {}

// Finished implements column.Observer.
func (o *Observer) Finished(ev column.Event) {
	o.events.WithLabelValues(ev.Name, outcome(ev.Err)).Inc()
	o.duration.WithLabelValues(ev.Name).Observe(ev.Duration.Seconds())
}

func outcome(err error) string {
	if err == nil {
		return outcomeSuccess
	}

	var e *errs.Error
	if errors.As(err, &e) {
		return strings.ReplaceAll(e.Kind.String(), " ", "_")
	}

	return outcomeError
}
