package activity

import (
	"testing"
	"time"
)

func intp(v int) *int { return &v }

func TestClassifyScore_Bands(t *testing.T) {
	tests := []struct {
		name  string
		score *int
		want  Type
	}{
		{"nil is neutral", nil, TypeNeutral},
		{"zero is neutral", intp(0), TypeNeutral},
		{"band edge productive", intp(20), TypeProductive},
		{"just under productive", intp(19), TypeNeutral},
		{"band edge unproductive", intp(-20), TypeUnproductive},
		{"just above unproductive", intp(-19), TypeNeutral},
		{"max score", intp(50), TypeProductive},
		{"min score", intp(-50), TypeUnproductive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyScore(tt.score); got != tt.want {
				t.Errorf("ClassifyScore(%v) = %q, want %q", tt.score, got, tt.want)
			}
		})
	}
}

func TestRecord_End(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r := Record{Start: start, DurationSec: 600}
	want := start.Add(10 * time.Minute)
	if !r.End().Equal(want) {
		t.Errorf("End() = %v, want %v", r.End(), want)
	}
}

func TestRecord_ScoreOrZero(t *testing.T) {
	if got := (Record{}).ScoreOrZero(); got != 0 {
		t.Errorf("unscored record: got %d, want 0", got)
	}
	if got := (Record{Score: intp(-35)}).ScoreOrZero(); got != -35 {
		t.Errorf("scored record: got %d, want -35", got)
	}
}

func TestFilterNoise(t *testing.T) {
	records := []Record{
		{ID: 1, DurationSec: 300},
		{ID: 2, DurationSec: 30},
		{ID: 3, DurationSec: 120},
		{ID: 4, DurationSec: 119},
	}

	meaningful, noise := FilterNoise(records, 120)

	if len(meaningful) != 2 || len(noise) != 2 {
		t.Fatalf("got %d meaningful, %d noise; want 2/2", len(meaningful), len(noise))
	}
	// Order preserved within each partition
	if meaningful[0].ID != 1 || meaningful[1].ID != 3 {
		t.Errorf("meaningful order: got %d,%d", meaningful[0].ID, meaningful[1].ID)
	}
	if noise[0].ID != 2 || noise[1].ID != 4 {
		t.Errorf("noise order: got %d,%d", noise[0].ID, noise[1].ID)
	}
}

func TestFilterNoise_Empty(t *testing.T) {
	meaningful, noise := FilterNoise(nil, 120)
	if meaningful != nil || noise != nil {
		t.Errorf("empty input: got %v, %v", meaningful, noise)
	}
}
