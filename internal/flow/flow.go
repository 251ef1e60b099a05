// Package flow computes post-hoc quality metrics over a finished
// session's activities: context-switch density mapped to a qualitative
// band, and dominance classification of the session's time.
package flow

import (
	"math"

	"github.com/flowtrack/flowtrack/internal/activity"
)

// DefaultNoiseThresholdSec is the duration floor for flow and dominance
// analysis. Activities shorter than this carry no signal about focus.
const DefaultNoiseThresholdSec = 120

// DominanceRatio is the fraction of meaningful time one type must
// occupy for a pure classification. Inclusive.
const DominanceRatio = 0.75

// Quality bands, from least to most fragmented.
const (
	BandSingleTask = "single_task"
	BandExcellent  = "excellent"
	BandGood       = "good"
	BandModerate   = "moderate"
	BandFragmented = "fragmented"
)

// Quality describes how fragmented a session was.
type Quality struct {
	Band            string
	Switches        int
	SwitchesPerHour float64
	Score           float64 // 10..100, higher is better
	NoiseCount      int
}

// AnalyzeQuality counts type switches among meaningful activities and
// converts the switch rate into a qualitative band. Sessions with fewer
// than two meaningful activities are trivially single-task.
func AnalyzeQuality(records []activity.Record, noiseThresholdSec int) Quality {
	meaningful, noise := activity.FilterNoise(records, noiseThresholdSec)

	if len(meaningful) < 2 {
		return Quality{Band: BandSingleTask, Score: 100, NoiseCount: len(noise)}
	}

	switches := 0
	current := meaningful[0].Type()
	for _, r := range meaningful[1:] {
		if t := r.Type(); t != current {
			switches++
			current = t
		}
	}

	var meaningfulSec int
	for _, r := range meaningful {
		meaningfulSec += r.DurationSec
	}
	minutes := float64(meaningfulSec) / 60
	var rate float64
	if minutes > 0 {
		rate = float64(switches) / minutes * 60
	}

	q := Quality{Switches: switches, NoiseCount: len(noise)}
	switch {
	case rate <= 2:
		q.Band = BandExcellent
		q.Score = 90 + math.Min(10, (2-rate)*5)
	case rate <= 5:
		q.Band = BandGood
		q.Score = 70 + (5-rate)*6
	case rate <= 10:
		q.Band = BandModerate
		q.Score = 40 + (10-rate)*6
	default:
		q.Band = BandFragmented
		q.Score = math.Max(10, 40-(rate-10)*3)
	}
	q.SwitchesPerHour = math.Round(rate*10) / 10
	q.Score = math.Round(q.Score*10) / 10
	return q
}
