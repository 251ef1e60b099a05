package batch

import (
	"fmt"

	"github.com/flowtrack/flowtrack/internal/activity"
	"github.com/flowtrack/flowtrack/internal/flow"
	"github.com/flowtrack/flowtrack/internal/logging"
	"github.com/flowtrack/flowtrack/internal/naming"
	"github.com/flowtrack/flowtrack/internal/session"
	"github.com/flowtrack/flowtrack/internal/store"
)

// Default runner thresholds (seconds).
const (
	DefaultGapThresholdSec        = session.DefaultGapThresholdSec
	DefaultMicroBreakThresholdSec = session.DefaultMicroBreakThresholdSec
	DefaultNoiseThresholdSec      = flow.DefaultNoiseThresholdSec
)

// Config tunes a batch run. Zero values take the defaults above.
type Config struct {
	GapThresholdSec        int
	MicroBreakThresholdSec int
	NoiseThresholdSec      int
}

// Report summarizes one batch pass.
type Report struct {
	Ranges             int
	SessionsCreated    int
	ActivitiesAssigned int
	OverlapViolations  int
}

// Runner drives the incremental batch sessionization pass: find the
// unsessionized backlog's processing ranges, segment each range, then
// score, name, and persist every new group. Ranges whose segmentation
// produces overlapping groups are reported and skipped whole, never
// repaired.
type Runner struct {
	store   *store.Store
	matcher naming.Matcher
	cfg     Config
}

// NewRunner creates a batch runner. matcher may be nil to skip pattern
// matching and rely on heuristic naming alone.
func NewRunner(st *store.Store, matcher naming.Matcher, cfg Config) *Runner {
	if cfg.GapThresholdSec == 0 {
		cfg.GapThresholdSec = DefaultGapThresholdSec
	}
	if cfg.MicroBreakThresholdSec == 0 {
		cfg.MicroBreakThresholdSec = DefaultMicroBreakThresholdSec
	}
	if cfg.NoiseThresholdSec == 0 {
		cfg.NoiseThresholdSec = DefaultNoiseThresholdSec
	}
	return &Runner{store: st, matcher: matcher, cfg: cfg}
}

// Run executes one batch pass. A pass over a fully sessionized store is
// a no-op, so running on a timer is safe.
func (r *Runner) Run() (Report, error) {
	var report Report

	ranges, err := r.store.FindSessionizationRanges()
	if err != nil {
		return report, fmt.Errorf("failed to find processing ranges: %w", err)
	}
	report.Ranges = len(ranges)

	for _, rng := range ranges {
		records, err := r.store.ActivitiesBetween(rng.Start, rng.End)
		if err != nil {
			return report, fmt.Errorf("failed to load range %s: %w", rng.Start, err)
		}

		groups := session.Sessionize(records, r.cfg.GapThresholdSec, r.cfg.MicroBreakThresholdSec)
		if err := session.CheckNonOverlap(groups); err != nil {
			logging.Warn("batch", "skipping range starting %s: %v", rng.Start, err)
			report.OverlapViolations++
			continue
		}

		for _, group := range groups {
			created, assigned, err := r.persistGroup(group)
			if err != nil {
				return report, err
			}
			if created {
				report.SessionsCreated++
				report.ActivitiesAssigned += assigned
			}
		}
	}

	if report.SessionsCreated > 0 {
		logging.Info("batch", "pass complete: %d sessions from %d ranges (%d activities)",
			report.SessionsCreated, report.Ranges, report.ActivitiesAssigned)
	}
	return report, nil
}

// persistGroup scores, names, and saves one segmented group. Groups
// whose members all belong to existing sessions are left alone;
// membership is write-once.
func (r *Runner) persistGroup(group []activity.Record) (bool, int, error) {
	var fresh []activity.Record
	for _, rec := range group {
		if rec.SessionID == nil {
			fresh = append(fresh, rec)
		}
	}
	if len(fresh) == 0 {
		return false, 0, nil
	}

	dominance, stats := flow.Dominance(fresh, r.cfg.NoiseThresholdSec)
	quality := flow.AnalyzeQuality(fresh, r.cfg.NoiseThresholdSec)
	features := naming.ExtractFeatures(fresh, r.cfg.NoiseThresholdSec)

	name := naming.Name(features, dominance)
	var matchedPattern *naming.Pattern
	if r.matcher != nil {
		if p, sim, ok := r.matcher.Match(features); ok {
			logging.Debug("batch", "pattern %q matched (%.2f)", p.Name, sim)
			name = p.Name
			matchedPattern = &p
		}
	}

	confidence := flow.Confidence(dominance, quality, stats)
	sess := session.FromRecords(fresh, name)
	sess.UserConfirmed = confidence >= flow.AutoConfirmConfidence

	ids := make([]int64, len(fresh))
	for i, rec := range fresh {
		ids[i] = rec.ID
	}
	id, assigned, err := r.store.SaveSession(sess, ids)
	if err != nil {
		return false, 0, fmt.Errorf("failed to save session %q: %w", name, err)
	}
	logging.Info("batch", "session %d %q: %d activities, score %d, %s flow, confidence %d",
		id, name, assigned, sess.Score, quality.Band, confidence)

	if matchedPattern != nil {
		if err := r.store.RecordPatternUse(matchedPattern.ID, sess.UserConfirmed); err != nil {
			logging.Warn("batch", "failed to record pattern use: %v", err)
		}
	}
	return true, assigned, nil
}
