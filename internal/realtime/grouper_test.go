package realtime

import (
	"errors"
	"testing"
	"time"

	"github.com/flowtrack/flowtrack/internal/activity"
)

// grouperHarness drives a Grouper with a clock pinned to the last
// record's end, so the per-record timeout check never fires on its own.
type grouperHarness struct {
	g   *Grouper
	now time.Time
	cap *capture
}

func newGrouperHarness(t *testing.T) *grouperHarness {
	t.Helper()
	c := &capture{}
	h := &grouperHarness{now: t0, cap: c}
	h.g = NewGrouper(NewEngine(EngineConfig{}), func() time.Time { return h.now }, c.onClose, c.onTransition)
	return h
}

func (h *grouperHarness) feed(t *testing.T, r activity.Record) {
	t.Helper()
	if r.End().After(h.now) {
		h.now = r.End()
	}
	if err := h.g.Process(r); err != nil {
		t.Fatalf("process %d: %v", r.ID, err)
	}
}

func grec(id int64, offsetSec, durSec int, score *int) activity.Record {
	return activity.Record{
		ID:          id,
		Start:       t0.Add(time.Duration(offsetSec) * time.Second),
		DurationSec: durSec,
		Score:       score,
	}
}

func TestGrouper_AppendsSameType(t *testing.T) {
	h := newGrouperHarness(t)
	h.feed(t, grec(1, 0, 120, intp(30)))
	h.feed(t, grec(2, 120, 120, intp(25)))

	if len(h.g.current) != 2 {
		t.Fatalf("current = %d members, want 2", len(h.g.current))
	}
	if h.g.currentType != activity.TypeProductive {
		t.Errorf("current type = %s", h.g.currentType)
	}
	if len(h.cap.closed) != 0 {
		t.Errorf("closed %d sessions, want 0", len(h.cap.closed))
	}
}

func TestGrouper_NoiseSkipped(t *testing.T) {
	h := newGrouperHarness(t)
	h.feed(t, grec(1, 0, 30, intp(30)))
	if len(h.g.current) != 0 {
		t.Error("noise started a session")
	}
}

func TestGrouper_BriefOffTypeHeldPending(t *testing.T) {
	h := newGrouperHarness(t)
	h.feed(t, grec(1, 0, 60, intp(30)))
	// Unproductive 60s into a productive context: below the minimum
	// focus time, so held back instead of switching.
	h.feed(t, grec(2, 60, 60, intp(-30)))

	if len(h.g.pending) != 1 || h.g.pending[0].ID != 2 {
		t.Fatalf("pending = %v", h.g.pending)
	}
	if len(h.g.current) != 1 {
		t.Errorf("current = %d members, want 1", len(h.g.current))
	}
}

func TestGrouper_SwitchFoldsPendingChronologically(t *testing.T) {
	h := newGrouperHarness(t)
	h.feed(t, grec(1, 0, 60, intp(30)))
	h.feed(t, grec(2, 60, 60, intp(-30)))  // held pending
	h.feed(t, grec(3, 120, 60, intp(30))) // appends
	// Dwell 200s >= 180s minimum focus time: the break commits.
	h.feed(t, grec(4, 200, 120, intp(-30)))

	if len(h.cap.closed) != 1 {
		t.Fatalf("closed %d sessions, want 1", len(h.cap.closed))
	}
	// The finalized productive session holds only the productive
	// members; the held-back break belongs to the new session.
	if got := len(h.cap.closedActs[0]); got != 2 {
		t.Errorf("closed session members = %d, want 2", got)
	}
	if h.g.currentType != activity.TypeUnproductive {
		t.Errorf("current type = %s", h.g.currentType)
	}
	if len(h.g.current) != 2 || h.g.current[0].ID != 2 || h.g.current[1].ID != 4 {
		t.Fatalf("new session members out of order: %v", ids(h.g.current))
	}
	if len(h.g.pending) != 0 {
		t.Errorf("pending not consumed: %v", ids(h.g.pending))
	}

	// The switch also emits the transition tuple.
	if len(h.cap.transitions) != 1 {
		t.Fatalf("got %d transitions, want 1", len(h.cap.transitions))
	}
	tr := h.cap.transitions[0]
	if tr.PrevMeta == nil || tr.PrevMeta.DominantType == "" {
		t.Error("transition missing previous session meta")
	}
	if !tr.NewMeta.Start.Equal(t0.Add(60 * time.Second)) {
		t.Errorf("new session starts at %v, want the folded pending start", tr.NewMeta.Start)
	}
}

func TestGrouper_LongDwellForcesSwitch(t *testing.T) {
	h := newGrouperHarness(t)
	h.feed(t, grec(1, 0, 120, intp(30)))
	h.feed(t, grec(2, 120, 120, intp(30)))
	// Neutral never triggers a focus/break cutover, but 300s of dwell
	// forces the switch regardless of type.
	h.feed(t, grec(3, 300, 120, nil))

	if len(h.cap.closed) != 1 {
		t.Fatalf("closed %d sessions, want 1", len(h.cap.closed))
	}
	if h.g.currentType != activity.TypeNeutral {
		t.Errorf("current type = %s", h.g.currentType)
	}
}

func TestGrouper_MismatchedPendingSurvivesSwitch(t *testing.T) {
	h := newGrouperHarness(t)
	h.feed(t, grec(1, 0, 60, intp(30)))
	h.feed(t, grec(2, 60, 60, nil))        // neutral, held pending
	h.feed(t, grec(3, 200, 120, intp(-30))) // commits an unproductive context

	if len(h.cap.closed) != 1 {
		t.Fatalf("closed %d sessions, want 1", len(h.cap.closed))
	}
	// The neutral holdover matches neither context.
	if len(h.g.pending) != 1 || h.g.pending[0].ID != 2 {
		t.Errorf("pending = %v", ids(h.g.pending))
	}
	if len(h.g.current) != 1 || h.g.current[0].ID != 3 {
		t.Errorf("current = %v", ids(h.g.current))
	}
}

func TestGrouper_InactivityTimeout(t *testing.T) {
	h := newGrouperHarness(t)
	h.feed(t, grec(1, 0, 120, intp(30)))
	h.feed(t, grec(2, 120, 120, intp(30)))

	// Advance past the timeout and poll, the way a worker tick would.
	h.now = h.now.Add(301 * time.Second)
	h.g.CheckTimeout()

	if len(h.cap.closed) != 1 {
		t.Fatalf("closed %d sessions, want 1", len(h.cap.closed))
	}
	s := h.cap.closed[0]
	if !s.End.Equal(t0.Add(240 * time.Second)) {
		t.Errorf("session end = %v, want the last activity end", s.End)
	}
	if s.TotalDurationSec != 240 {
		t.Errorf("total duration = %d, want 240", s.TotalDurationSec)
	}
	if s.Score != 30 {
		t.Errorf("score = %d, want 30", s.Score)
	}
}

func TestGrouper_OutOfOrderRejected(t *testing.T) {
	h := newGrouperHarness(t)
	h.feed(t, grec(1, 120, 60, intp(30)))

	err := h.g.Process(grec(2, 0, 60, intp(30)))
	if !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("got %v, want ErrOutOfOrder", err)
	}
	if len(h.g.current) != 1 {
		t.Errorf("rejected record entered the session: %v", ids(h.g.current))
	}
}

func TestGrouper_FlushFinalizes(t *testing.T) {
	h := newGrouperHarness(t)
	h.feed(t, grec(1, 0, 120, intp(30)))
	h.g.Flush()
	if len(h.cap.closed) != 1 || len(h.g.current) != 0 {
		t.Errorf("flush: closed=%d current=%d", len(h.cap.closed), len(h.g.current))
	}
	// Flushing an empty grouper is a no-op.
	h.g.Flush()
	if len(h.cap.closed) != 1 {
		t.Error("empty flush closed a session")
	}
}

func ids(records []activity.Record) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
