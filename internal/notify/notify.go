// Package notify contains the notification sinks the engine fans alert
// events out to. All sinks are fire-and-forget: delivery failures are logged
// and never propagate back into alert processing.
package notify

import (
	"log"

	"github.com/vibhukrishnas/sams-sub016/internal/engine"
)

// LogSink writes alert events to the process log
type LogSink struct{}

// NewLogSink creates a new log sink
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Notify logs the event
func (s *LogSink) Notify(event engine.AlertEvent) {
	log.Printf("Alert event %s: [%s] %s (alert %s, target %s)",
		event.Type, event.Alert.Severity, event.Alert.Summary, event.Alert.ID, event.Alert.TargetID)
}

// Fanout delivers each event to every configured sink in order
type Fanout struct {
	sinks []engine.Notifier
}

// NewFanout creates a fanout over the given sinks. Nil sinks are skipped.
func NewFanout(sinks ...engine.Notifier) *Fanout {
	f := &Fanout{}
	for _, sink := range sinks {
		if sink != nil {
			f.sinks = append(f.sinks, sink)
		}
	}
	return f
}

// Notify delivers the event to all sinks
func (f *Fanout) Notify(event engine.AlertEvent) {
	for _, sink := range f.sinks {
		sink.Notify(event)
	}
}
