package session

import (
	"testing"
	"time"

	"github.com/flowtrack/flowtrack/internal/activity"
)

func TestWeightedScore(t *testing.T) {
	records := []activity.Record{
		rec(1, 0, 600, intp(40)),
		rec(2, 600, 300, intp(-20)),
	}
	// (40*600 + -20*300) / 900 = 20
	if got := WeightedScore(records); got != 20 {
		t.Errorf("got %d, want 20", got)
	}
}

func TestWeightedScore_Rounds(t *testing.T) {
	records := []activity.Record{
		rec(1, 0, 60, intp(10)),
		rec(2, 60, 120, intp(11)),
	}
	// (10*60 + 11*120) / 180 = 10.666..., rounds to 11
	if got := WeightedScore(records); got != 11 {
		t.Errorf("got %d, want 11", got)
	}
}

func TestWeightedScore_EdgeCases(t *testing.T) {
	if got := WeightedScore(nil); got != 0 {
		t.Errorf("empty: got %d, want 0", got)
	}
	zeroDur := []activity.Record{rec(1, 0, 0, intp(40))}
	if got := WeightedScore(zeroDur); got != 0 {
		t.Errorf("zero duration: got %d, want 0", got)
	}
	unscored := []activity.Record{rec(1, 0, 600, nil), rec(2, 600, 600, nil)}
	if got := WeightedScore(unscored); got != 0 {
		t.Errorf("all unscored: got %d, want 0", got)
	}
}

func TestWeightedScore_WithinMemberBounds(t *testing.T) {
	records := []activity.Record{
		rec(1, 0, 600, intp(45)),
		rec(2, 600, 1200, intp(-10)),
		rec(3, 1800, 300, intp(25)),
	}
	got := WeightedScore(records)
	if got < -10 || got > 45 {
		t.Errorf("score %d outside member bounds [-10, 45]", got)
	}
}

func TestFromRecords(t *testing.T) {
	records := []activity.Record{
		rec(1, 0, 600, intp(30)),
		rec(2, 900, 300, intp(30)), // 5 min gap between members
	}
	s := FromRecords(records, "Coding Session")

	if s.Name != "Coding Session" {
		t.Errorf("name = %q", s.Name)
	}
	if !s.Start.Equal(t0) {
		t.Errorf("start = %v, want %v", s.Start, t0)
	}
	wantEnd := t0.Add(20 * time.Minute)
	if !s.End.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", s.End, wantEnd)
	}
	// Total duration sums member durations, not the wall-clock span.
	if s.TotalDurationSec != 900 {
		t.Errorf("total duration = %d, want 900", s.TotalDurationSec)
	}
	if s.Score != 30 {
		t.Errorf("score = %d, want 30", s.Score)
	}
}

func TestFromRecords_Empty(t *testing.T) {
	s := FromRecords(nil, "Empty Session")
	if s.TotalDurationSec != 0 || s.Score != 0 {
		t.Errorf("empty session: %+v", s)
	}
}
