package realtime

import (
	"fmt"
	"sort"
	"time"

	"github.com/flowtrack/flowtrack/internal/activity"
	"github.com/flowtrack/flowtrack/internal/flow"
	"github.com/flowtrack/flowtrack/internal/logging"
	"github.com/flowtrack/flowtrack/internal/session"
)

// Grouper is the context-switch realtime sessionizer: it cuts session
// boundaries when the activity type changes and the dwell-time policy
// (Engine) agrees, holding too-brief off-type activities in a pending
// queue until a context commits that matches them.
//
// Like Machine, a Grouper is single-owner; run it inside a Worker.
type Grouper struct {
	engine       *Engine
	now          func() time.Time
	onClose      func(session.Session, []activity.Record)
	onTransition func(Transition)

	current      []activity.Record
	currentType  activity.Type
	contextStart time.Time

	pending []activity.Record

	lastArrival time.Time

	prevMeta *SessionMeta
	prevActs []activity.Record
}

// NewGrouper creates a grouper over the given policy engine. The nil
// clock defaults to time.Now.
func NewGrouper(engine *Engine, now func() time.Time, onClose func(session.Session, []activity.Record), onTransition func(Transition)) *Grouper {
	if now == nil {
		now = time.Now
	}
	return &Grouper{
		engine:       engine,
		now:          now,
		onClose:      onClose,
		onTransition: onTransition,
	}
}

// Process consumes one activity in arrival order.
func (g *Grouper) Process(r activity.Record) error {
	if r.Start.Before(g.lastArrival) {
		return fmt.Errorf("%w: %s before %s", ErrOutOfOrder,
			r.Start.Format(time.RFC3339), g.lastArrival.Format(time.RFC3339))
	}
	g.lastArrival = r.Start

	if g.engine.IsNoise(r) {
		logging.Debug("realtime", "ignoring noise activity (%ds): %s", r.DurationSec, logging.Truncate(r.Details, 60))
		return nil
	}

	t := r.Type()
	switch {
	case len(g.current) == 0:
		g.startSession(r, t)

	case t != g.currentType:
		dwell := r.Start.Sub(g.contextStart).Seconds()
		if g.engine.ShouldSwitch(g.currentType, dwell, t) {
			logging.Debug("realtime", "context switch %s -> %s after %.0fs dwell", g.currentType, t, dwell)
			g.finalize()
			g.startSession(r, t)
		} else {
			// Too brief to commit; might be a passing distraction.
			g.pending = append(g.pending, r)
		}

	default:
		g.current = append(g.current, r)
	}

	g.CheckTimeout()
	return nil
}

func (g *Grouper) startSession(r activity.Record, t activity.Type) {
	// Fold in pending activities that match the committed context.
	// They arrived before the trigger, so they seed the member list
	// first to keep it chronological.
	matching, rest := g.engine.MatchingPending(g.pending, t)
	g.pending = rest

	g.current = append(matching, r)
	sort.SliceStable(g.current, func(i, j int) bool {
		return g.current[i].Start.Before(g.current[j].Start)
	})
	g.currentType = t
	g.contextStart = r.Start
	logging.Info("realtime", "started %s session (%d pending folded in)", t, len(matching))

	if g.onTransition != nil && (g.prevMeta != nil || len(g.prevActs) > 0) {
		var total int
		for _, a := range g.current {
			total += a.DurationSec
		}
		g.onTransition(Transition{
			PrevMeta:       g.prevMeta,
			PrevActivities: g.prevActs,
			NewMeta: SessionMeta{
				DominantType: string(t),
				Start:        g.current[0].Start,
				DurationSec:  total,
			},
			NewActivities: g.current,
		})
	}
	g.prevMeta = nil
	g.prevActs = nil
}

func (g *Grouper) finalize() {
	if len(g.current) == 0 {
		return
	}
	records := g.current
	s := session.FromRecords(records, "")

	dom, _ := flow.Dominance(records, g.engine.cfg.NoiseThresholdSec)
	g.prevMeta = &SessionMeta{
		DominantType: dom,
		Start:        s.Start,
		DurationSec:  s.TotalDurationSec,
		Score:        s.Score,
	}
	g.prevActs = records

	logging.Info("realtime", "session finalized (%s, score %d, %d activities)",
		g.currentType, s.Score, len(records))
	if g.onClose != nil {
		g.onClose(s, records)
	}

	g.current = nil
	g.currentType = ""
	g.contextStart = time.Time{}
}

// CheckTimeout finalizes the current session after sustained
// inactivity.
func (g *Grouper) CheckTimeout() {
	if len(g.current) == 0 {
		return
	}
	last := g.current[len(g.current)-1]
	if g.engine.IsTimedOut(last, g.now()) {
		logging.Info("realtime", "session timeout after %s of inactivity",
			g.now().Sub(last.End()).Round(time.Second))
		g.finalize()
	}
}

// Flush finalizes any in-progress session, for shutdown.
func (g *Grouper) Flush() {
	g.finalize()
}
