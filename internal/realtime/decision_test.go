package realtime

import (
	"testing"
	"time"

	"github.com/flowtrack/flowtrack/internal/activity"
)

func TestEngine_IsNoise(t *testing.T) {
	e := NewEngine(EngineConfig{})
	if !e.IsNoise(activity.Record{DurationSec: 59}) {
		t.Error("59s should be noise")
	}
	// The threshold itself is meaningful.
	if e.IsNoise(activity.Record{DurationSec: 60}) {
		t.Error("60s should not be noise")
	}
}

func TestEngine_ShouldSwitch(t *testing.T) {
	e := NewEngine(EngineConfig{})

	tests := []struct {
		name    string
		current activity.Type
		dwell   float64
		next    activity.Type
		want    bool
	}{
		{"focus satisfied, break cuts over", activity.TypeProductive, 180, activity.TypeUnproductive, true},
		{"focus one short", activity.TypeProductive, 179, activity.TypeUnproductive, false},
		{"focus satisfied but next neutral", activity.TypeProductive, 180, activity.TypeNeutral, false},
		{"break satisfied, work cuts over", activity.TypeUnproductive, 120, activity.TypeProductive, true},
		{"break one short", activity.TypeUnproductive, 119, activity.TypeProductive, false},
		{"long dwell forces switch", activity.TypeProductive, 300, activity.TypeNeutral, true},
		{"long dwell one short", activity.TypeProductive, 299, activity.TypeNeutral, false},
		{"neutral waits for the forced switch", activity.TypeNeutral, 250, activity.TypeProductive, false},
		{"neutral forced after long dwell", activity.TypeNeutral, 300, activity.TypeUnproductive, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.ShouldSwitch(tt.current, tt.dwell, tt.next); got != tt.want {
				t.Errorf("ShouldSwitch(%s, %.0f, %s) = %v, want %v",
					tt.current, tt.dwell, tt.next, got, tt.want)
			}
		})
	}
}

func TestEngine_IsTimedOut(t *testing.T) {
	e := NewEngine(EngineConfig{})
	last := activity.Record{Start: t0, DurationSec: 60}

	at := last.End().Add(300 * time.Second)
	if e.IsTimedOut(last, at) {
		t.Error("exactly the timeout should not time out")
	}
	if !e.IsTimedOut(last, at.Add(time.Second)) {
		t.Error("past the timeout should time out")
	}
}

func TestEngine_MatchingPending(t *testing.T) {
	e := NewEngine(EngineConfig{})
	pending := []activity.Record{
		{ID: 1, Score: intp(30)},
		{ID: 2, Score: intp(-30)},
		{ID: 3, Score: intp(25)},
		{ID: 4},
	}

	matching, rest := e.MatchingPending(pending, activity.TypeProductive)
	if len(matching) != 2 || matching[0].ID != 1 || matching[1].ID != 3 {
		t.Errorf("matching = %v", matching)
	}
	if len(rest) != 2 || rest[0].ID != 2 || rest[1].ID != 4 {
		t.Errorf("rest = %v", rest)
	}
}

func TestEngine_ConfigOverrides(t *testing.T) {
	e := NewEngine(EngineConfig{MinimumFocusTimeSec: 60})
	if !e.ShouldSwitch(activity.TypeProductive, 60, activity.TypeUnproductive) {
		t.Error("override ignored")
	}
	// Untouched fields still default.
	if e.cfg.ContextSwitchThresholdSec != DefaultContextSwitchThresholdSec {
		t.Errorf("context switch threshold = %d", e.cfg.ContextSwitchThresholdSec)
	}
}
