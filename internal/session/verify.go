package session

import (
	"fmt"
	"sort"
	"time"

	"github.com/flowtrack/flowtrack/internal/activity"
)

// OverlapError reports two session groups that overlap in time. It
// indicates a defect in the partition accounting; callers must discard
// the offending run rather than repair or persist it.
type OverlapError struct {
	PrevEnd   time.Time
	NextStart time.Time
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("session overlap: next session starts at %s, before previous ends at %s",
		e.NextStart.Format(time.RFC3339), e.PrevEnd.Format(time.RFC3339))
}

type span struct {
	start, end time.Time
}

// CheckNonOverlap sorts the groups by start time and asserts that each
// group starts at or after the previous group ends. A violation is
// returned, never silently repaired.
func CheckNonOverlap(groups [][]activity.Record) error {
	spans := make([]span, 0, len(groups))
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		spans = append(spans, span{start: g[0].Start, end: g[len(g)-1].End()})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })

	for i := 1; i < len(spans); i++ {
		if spans[i].start.Before(spans[i-1].end) {
			return &OverlapError{PrevEnd: spans[i-1].end, NextStart: spans[i].start}
		}
	}
	return nil
}
