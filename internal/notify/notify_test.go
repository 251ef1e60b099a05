package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/flowtrack/flowtrack/internal/realtime"
	"github.com/flowtrack/flowtrack/internal/session"
)

type recordingNotifier struct {
	events []Event
}

func (r *recordingNotifier) Notify(e Event) { r.events = append(r.events, e) }

func TestDescribe(t *testing.T) {
	closed := NewClosedEvent(session.Session{
		Name:             "Coding Session",
		Start:            time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		TotalDurationSec: 3600,
		Score:            35,
	})
	got := describe(closed)
	for _, want := range []string{"Coding Session", "1h0m0s", "score 35"} {
		if !strings.Contains(got, want) {
			t.Errorf("describe(closed) = %q, missing %q", got, want)
		}
	}

	tr := NewTransitionEvent(realtime.Transition{
		PrevMeta: &realtime.SessionMeta{DominantType: "productive", DurationSec: 1800, Score: 30},
		NewMeta:  realtime.SessionMeta{DominantType: "unproductive"},
	})
	got = describe(tr)
	if !strings.Contains(got, "productive") || !strings.Contains(got, "unproductive") {
		t.Errorf("describe(transition) = %q", got)
	}

	first := NewTransitionEvent(realtime.Transition{
		NewMeta: realtime.SessionMeta{DominantType: "productive"},
	})
	if !strings.Contains(describe(first), "session started") {
		t.Errorf("describe(first transition) = %q", describe(first))
	}
}

func TestEventIDsUnique(t *testing.T) {
	a := NewClosedEvent(session.Session{})
	b := NewClosedEvent(session.Session{})
	if a.ID == b.ID || a.ID == "" {
		t.Errorf("ids: %q, %q", a.ID, b.ID)
	}
}

func TestFanout(t *testing.T) {
	first := &recordingNotifier{}
	second := &recordingNotifier{}
	f := Fanout{first, second}

	e := NewClosedEvent(session.Session{Name: "x"})
	f.Notify(e)

	if len(first.events) != 1 || len(second.events) != 1 {
		t.Fatalf("delivery counts: %d, %d", len(first.events), len(second.events))
	}
	if first.events[0].ID != e.ID {
		t.Error("event not delivered intact")
	}
}
