package activity

import (
	"fmt"
	"time"
)

// Type classifies an activity by its productivity score band
type Type string

const (
	TypeProductive   Type = "productive"
	TypeUnproductive Type = "unproductive"
	TypeNeutral      Type = "neutral"
)

// Score band boundaries. Scores at or beyond a boundary fall into that band.
const (
	ProductiveBand   = 20
	UnproductiveBand = -20
)

// Record is a single observed activity interval: what was active, when,
// and for how long. Score and Confidence are nil until the classifier
// has seen the record. SessionID is nil until segmentation assigns the
// record to a session; once set it never changes.
type Record struct {
	ID          int64     `json:"id,omitempty"`
	Start       time.Time `json:"timestamp_start"`
	DurationSec int       `json:"duration_sec"`
	Details     string    `json:"details"`
	Score       *int      `json:"productivity_score,omitempty"`
	Confidence  *int      `json:"confidence,omitempty"`
	SessionID   *int64    `json:"session_id,omitempty"`
}

// End returns the instant the activity stopped being active.
func (r Record) End() time.Time {
	return r.Start.Add(time.Duration(r.DurationSec) * time.Second)
}

// Type returns the score band the record falls into.
func (r Record) Type() Type {
	return ClassifyScore(r.Score)
}

func (r Record) String() string {
	return fmt.Sprintf("activity %d (%s, %ds)", r.ID, r.Type(), r.DurationSec)
}

// ClassifyScore maps a productivity score to a band. A missing score is
// neutral, never an error.
func ClassifyScore(score *int) Type {
	if score == nil {
		return TypeNeutral
	}
	switch {
	case *score >= ProductiveBand:
		return TypeProductive
	case *score <= UnproductiveBand:
		return TypeUnproductive
	default:
		return TypeNeutral
	}
}

// ScoreOrZero returns the record's score, treating an unclassified
// record as neutral (0).
func (r Record) ScoreOrZero() int {
	if r.Score == nil {
		return 0
	}
	return *r.Score
}
