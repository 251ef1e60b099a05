// Package session holds the session model and the batch partition
// algorithm that groups activities into contiguous, non-overlapping
// sessions.
package session

import (
	"math"
	"time"

	"github.com/flowtrack/flowtrack/internal/activity"
)

// Session is a maximal contiguous group of activities treated as one
// coherent period. Instances are built by segmentation and persisted by
// the store; the core never deletes them.
type Session struct {
	ID               int64
	Name             string
	Start            time.Time
	End              time.Time
	TotalDurationSec int
	Score            int // time-weighted average of member scores
	UserConfirmed    bool
}

// WeightedScore computes the time-weighted productivity score over a
// set of member activities: sum(score*duration)/sum(duration), rounded
// to nearest integer. Unscored members contribute 0. Empty or
// zero-duration input returns 0 rather than dividing by zero.
func WeightedScore(records []activity.Record) int {
	var totalSec int
	var weighted float64
	for _, r := range records {
		totalSec += r.DurationSec
		weighted += float64(r.ScoreOrZero()) * float64(r.DurationSec)
	}
	if totalSec == 0 {
		return 0
	}
	return int(math.Round(weighted / float64(totalSec)))
}

// FromRecords builds an unsaved session spanning the given records.
// Records must be chronologically ordered (as produced by Sessionize).
func FromRecords(records []activity.Record, name string) Session {
	s := Session{Name: name}
	if len(records) == 0 {
		return s
	}
	s.Start = records[0].Start
	s.End = records[len(records)-1].End()
	for _, r := range records {
		s.TotalDurationSec += r.DurationSec
	}
	s.Score = WeightedScore(records)
	return s
}
