package store

import (
	"time"

	"github.com/flowtrack/flowtrack/internal/logging"
)

// Range-finder tuning. Unsessionized activities more than RangeGapSec
// apart belong to separate processing ranges; each range is widened to
// the nearest existing session edge within BoundaryWindow, or by
// FallbackBuffer when none is close enough.
const (
	RangeGapSec    = 1800
	BoundaryWindow = 24 * time.Hour
	FallbackBuffer = 2 * time.Hour
)

// Range is a half-open-ish processing window for the batch
// sessionizer. Bounds are inclusive on both ends; existing session
// edges serve as natural buffers so re-processing never crosses them.
type Range struct {
	Start time.Time
	End   time.Time
}

// FindSessionizationRanges returns processing ranges covering every
// unsessionized activity, grouped by temporal adjacency. With no
// unsessionized backlog it returns nil, which makes repeated batch
// runs idempotent.
func (s *Store) FindSessionizationRanges() ([]Range, error) {
	backlog, err := s.unsessionizedActivities()
	if err != nil {
		return nil, err
	}
	if len(backlog) == 0 {
		return nil, nil
	}

	var ranges []Range
	gapStart := backlog[0].Start
	prev := backlog[0]

	for _, r := range backlog[1:] {
		if r.Start.Sub(prev.Start).Seconds() > RangeGapSec {
			bounded, err := s.processingBounds(gapStart, prev.End())
			if err != nil {
				return nil, err
			}
			ranges = append(ranges, bounded)
			gapStart = r.Start
		}
		prev = r
	}

	bounded, err := s.processingBounds(gapStart, prev.End())
	if err != nil {
		return nil, err
	}
	ranges = append(ranges, bounded)

	logging.Debug("store", "found %d sessionization ranges for %d unsessionized activities", len(ranges), len(backlog))
	return ranges, nil
}

// processingBounds widens a raw activity gap to smart boundaries: the
// nearest session edge on each side within BoundaryWindow, else a
// FallbackBuffer margin.
func (s *Store) processingBounds(gapStart, gapEnd time.Time) (Range, error) {
	start := gapStart.Add(-FallbackBuffer)
	if end, ok, err := s.LastSessionEndBefore(gapStart, BoundaryWindow); err != nil {
		return Range{}, err
	} else if ok {
		start = end
	}

	end := gapEnd.Add(FallbackBuffer)
	if first, ok, err := s.FirstSessionStartAfter(gapEnd, BoundaryWindow); err != nil {
		return Range{}, err
	} else if ok {
		end = first
	}

	return Range{Start: start, End: end}, nil
}
