package session

import (
	"sort"

	"github.com/flowtrack/flowtrack/internal/activity"
)

// Default batch thresholds (seconds).
const (
	DefaultGapThresholdSec        = 1800
	DefaultMicroBreakThresholdSec = 300
)

// Sessionize partitions activities into chronologically ordered,
// non-overlapping groups. The input may arrive in any order.
//
// A new group starts when the gap since the previous activity's end
// exceeds gapThresholdSec (a long absence always ends a session,
// whatever the types), or when the activity's type differs from the
// trailing type. A type change is forgiven when it is a blip: a short activity
// (duration <= microBreakThresholdSec) interrupting a run that still
// matches the group's original type is absorbed, in either direction,
// so brief distractions and relief breaks don't fragment a session.
//
// The groups' union is the input set exactly once; callers should
// verify the non-overlap invariant with CheckNonOverlap before
// persisting.
func Sessionize(records []activity.Record, gapThresholdSec, microBreakThresholdSec int) [][]activity.Record {
	if len(records) == 0 {
		return nil
	}

	sorted := make([]activity.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var groups [][]activity.Record
	buffer := []activity.Record{sorted[0]}

	for _, curr := range sorted[1:] {
		prev := buffer[len(buffer)-1]
		gap := curr.Start.Sub(prev.End()).Seconds()

		if gap > float64(gapThresholdSec) {
			groups = append(groups, buffer)
			buffer = []activity.Record{curr}
			continue
		}

		prevType := prev.Type()
		currType := curr.Type()
		if prevType == currType {
			buffer = append(buffer, curr)
			continue
		}

		originType := buffer[0].Type()
		// A short off-type activity is a blip when the run before it
		// still carries the group's original type.
		if curr.DurationSec <= microBreakThresholdSec && prevType == originType {
			buffer = append(buffer, curr)
			continue
		}
		// Symmetric case: the previous activity was the blip and the
		// current one resumes the original type.
		if prev.DurationSec <= microBreakThresholdSec && currType == originType {
			buffer = append(buffer, curr)
			continue
		}

		groups = append(groups, buffer)
		buffer = []activity.Record{curr}
	}

	groups = append(groups, buffer)
	return groups
}
