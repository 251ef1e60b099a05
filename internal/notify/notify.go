// Package notify delivers session lifecycle events to external sinks.
// The core produces the events; what a sink does with them (Discord
// message, log line, dashboard push) is its own business.
package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flowtrack/flowtrack/internal/logging"
	"github.com/flowtrack/flowtrack/internal/realtime"
	"github.com/flowtrack/flowtrack/internal/session"
)

// Event is one notifiable session lifecycle moment.
type Event struct {
	ID   string
	Time time.Time

	// Exactly one of the following is set.
	Closed     *session.Session
	Transition *realtime.Transition
}

// Notifier receives session events. Implementations must not block the
// caller for long; delivery failures are theirs to log.
type Notifier interface {
	Notify(Event)
}

// NewClosedEvent wraps a finished session.
func NewClosedEvent(s session.Session) Event {
	return Event{ID: uuid.NewString(), Time: time.Now(), Closed: &s}
}

// NewTransitionEvent wraps a session transition tuple.
func NewTransitionEvent(t realtime.Transition) Event {
	return Event{ID: uuid.NewString(), Time: time.Now(), Transition: &t}
}

// LogNotifier writes events to the process log. It is the default sink
// and always configured.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(e Event) {
	logging.Info("notify", "%s", describe(e))
}

// describe renders a one-line human summary of an event.
func describe(e Event) string {
	switch {
	case e.Closed != nil:
		s := e.Closed
		return fmt.Sprintf("session closed: %q %s, score %d (%s)",
			s.Name, formatDuration(s.TotalDurationSec), s.Score,
			s.Start.Format("15:04"))
	case e.Transition != nil:
		t := e.Transition
		if t.PrevMeta == nil {
			return fmt.Sprintf("session started: %s", t.NewMeta.DominantType)
		}
		return fmt.Sprintf("transition: %s (%s, score %d) -> %s",
			t.PrevMeta.DominantType, formatDuration(t.PrevMeta.DurationSec),
			t.PrevMeta.Score, t.NewMeta.DominantType)
	default:
		return "empty event"
	}
}

func formatDuration(sec int) string {
	d := time.Duration(sec) * time.Second
	if d < time.Minute {
		return fmt.Sprintf("%ds", sec)
	}
	return d.Truncate(time.Minute).String()
}

// Fanout delivers each event to every configured notifier.
type Fanout []Notifier

// Notify implements Notifier.
func (f Fanout) Notify(e Event) {
	for _, n := range f {
		n.Notify(e)
	}
}
