package flow

import (
	"math"

	"github.com/flowtrack/flowtrack/internal/activity"
)

// Dominance classifications beyond the pure activity types.
const (
	DomProductive         = "productive"
	DomUnproductive       = "unproductive"
	DomMostlyProductive   = "mostly_productive"
	DomMostlyUnproductive = "mostly_unproductive"
	DomMixed              = "mixed"
	DomNeutral            = "neutral"
)

// Stats breaks down a session's time by type, over meaningful
// activities only.
type Stats struct {
	TotalSec        int
	MeaningfulSec   int
	NoiseSec        int
	ProductiveSec   int
	UnproductiveSec int
	NeutralSec      int

	ProductiveRatio   float64
	UnproductiveRatio float64
	NeutralRatio      float64
	NoiseRatio        float64

	MeaningfulCount int
	NoiseCount      int
}

// Dominance classifies a session by the fraction of meaningful time
// each type occupies. A ratio at or above DominanceRatio yields the
// pure type; otherwise the strictly larger of the two yields mostly_X;
// equal ratios are mixed. An empty session is neutral.
func Dominance(records []activity.Record, noiseThresholdSec int) (string, Stats) {
	if len(records) == 0 {
		return DomNeutral, Stats{}
	}

	meaningful, noise := activity.FilterNoise(records, noiseThresholdSec)

	var st Stats
	st.MeaningfulCount = len(meaningful)
	st.NoiseCount = len(noise)
	for _, r := range records {
		st.TotalSec += r.DurationSec
	}
	for _, r := range noise {
		st.NoiseSec += r.DurationSec
	}
	for _, r := range meaningful {
		st.MeaningfulSec += r.DurationSec
		switch r.Type() {
		case activity.TypeProductive:
			st.ProductiveSec += r.DurationSec
		case activity.TypeUnproductive:
			st.UnproductiveSec += r.DurationSec
		default:
			st.NeutralSec += r.DurationSec
		}
	}

	if st.MeaningfulSec > 0 {
		st.ProductiveRatio = round3(float64(st.ProductiveSec) / float64(st.MeaningfulSec))
		st.UnproductiveRatio = round3(float64(st.UnproductiveSec) / float64(st.MeaningfulSec))
		st.NeutralRatio = round3(float64(st.NeutralSec) / float64(st.MeaningfulSec))
	}
	if st.TotalSec > 0 {
		st.NoiseRatio = round3(float64(st.NoiseSec) / float64(st.TotalSec))
	}

	prodRatio := 0.0
	unprodRatio := 0.0
	if st.MeaningfulSec > 0 {
		prodRatio = float64(st.ProductiveSec) / float64(st.MeaningfulSec)
		unprodRatio = float64(st.UnproductiveSec) / float64(st.MeaningfulSec)
	}

	switch {
	case prodRatio >= DominanceRatio:
		return DomProductive, st
	case unprodRatio >= DominanceRatio:
		return DomUnproductive, st
	case prodRatio > unprodRatio:
		return DomMostlyProductive, st
	case unprodRatio > prodRatio:
		return DomMostlyUnproductive, st
	default:
		return DomMixed, st
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
