package column

import (
	"time"

	"github.com/rs/zerolog"
)

// Event names emitted by a Column.
const (
	EventDeserialize = "flexcol.deserialize"
	EventSerialize   = "flexcol.serialize"
)

// Event describes one instrumented operation.
type Event struct {
	// Name is EventDeserialize or EventSerialize.
	Name string
	// Payload is the data source's event context plus event-specific keys
	// (raw_data for deserialization).
	Payload map[string]any
	// Duration and Err are set only when the event is finished.
	Duration time.Duration
	Err      error
}

// Observer receives events synchronously, before and after each
// deserialization and serialization.
type Observer interface {
	Started(ev Event)
	Finished(ev Event)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) Started(Event)  {}
func (NopObserver) Finished(Event) {}

// LogObserver writes finished events to a zerolog logger: successful events
// at debug level, failed ones at error level.
type LogObserver struct {
	logger zerolog.Logger
}

var _ Observer = (*LogObserver)(nil)

// NewLogObserver creates a LogObserver writing to logger.
func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// Started implements Observer at trace level.
func (o *LogObserver) Started(ev Event) {
	o.logger.Trace().Str("event", ev.Name).Msg("started")
}

// Finished implements Observer.
func (o *LogObserver) Finished(ev Event) {
	var e *zerolog.Event
	if ev.Err != nil {
		e = o.logger.Error().Err(ev.Err)
	} else {
		e = o.logger.Debug()
	}

	e.Str("event", ev.Name).Dur("duration", ev.Duration)
	for k, v := range ev.Payload {
		if k == PayloadRawData {
			if raw, ok := v.(string); ok {
				e.Int("raw_bytes", len(raw))
			}

			continue
		}
		e.Interface(k, v)
	}
	e.Msg("finished")
}

type multiObserver []Observer

// MultiObserver fans events out to every non-nil observer in order.
func MultiObserver(observers ...Observer) Observer {
	out := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}

	return out
}

func (m multiObserver) Started(ev Event) {
	for _, o := range m {
		o.Started(ev)
	}
}

func (m multiObserver) Finished(ev Event) {
	for _, o := range m {
		o.Finished(ev)
	}
}
