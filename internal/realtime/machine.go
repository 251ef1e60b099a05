package realtime

import (
	"errors"
	"fmt"
	"time"

	"github.com/flowtrack/flowtrack/internal/activity"
	"github.com/flowtrack/flowtrack/internal/flow"
	"github.com/flowtrack/flowtrack/internal/logging"
	"github.com/flowtrack/flowtrack/internal/session"
)

// Smoothing and hysteresis constants. Dynamic thresholds adapt the
// work/break split to the user's own score distribution once enough
// history exists; until then the static fallback applies.
const (
	EMAAlpha = 0.3

	// BufferSize covers ~4h of history at one sample per minute.
	BufferSize = 240

	// MinSamplesForDynamic is the buffer fill below which the static
	// fallback thresholds apply.
	MinSamplesForDynamic = 10

	StaticWorkThreshold  = 20.0
	StaticBreakThreshold = 0.0

	// HardBreakMin consecutive break samples close a session;
	// HardWorkMin consecutive work samples open one.
	HardBreakMin = 10
	HardWorkMin  = 15
)

// Defaults for the machine's own thresholds (seconds).
const (
	DefaultMachineNoiseThresholdSec = 60
	DefaultSessionTimeoutSec        = 300
)

// ErrOutOfOrder is returned when an activity arrives with a start time
// before an already-processed one. Arrival order is a precondition;
// violating records are rejected rather than allowed to corrupt the
// EMA and buffer.
var ErrOutOfOrder = errors.New("activity arrived out of order")

// MachineConfig tunes the smoothed realtime sessionizer. Zero values
// take the defaults above.
type MachineConfig struct {
	NoiseThresholdSec int
	SessionTimeoutSec int

	// MinSamplesForDynamic overrides the buffer fill required before
	// percentile thresholds replace the static fallback.
	MinSamplesForDynamic int

	// Now is the clock for the inactivity timeout. Tests inject one.
	Now func() time.Time
}

// Machine is the online sessionizer: it consumes one activity at a
// time in arrival order and commits session boundaries without
// lookahead, driven by an EMA of the score, rolling percentile
// thresholds, and hysteresis counters.
//
// A Machine is single-owner and must not be used concurrently; run it
// inside a Worker or provide equivalent external serialization.
type Machine struct {
	cfg          MachineConfig
	onClose      func(session.Session, []activity.Record)
	onTransition func(Transition)

	open    bool
	current []activity.Record
	start   time.Time

	ema    float64
	emaSet bool
	buf    *ring

	breakCounter int
	workCounter  int

	lastArrival time.Time

	// Snapshot of the last closed session, kept until the next open
	// emits a transition.
	prevMeta *SessionMeta
	prevActs []activity.Record
}

// NewMachine creates a machine. onClose receives each finished session
// for persistence; onTransition (optional) receives the commentary
// tuple when a session opens after a previous one closed.
func NewMachine(cfg MachineConfig, onClose func(session.Session, []activity.Record), onTransition func(Transition)) *Machine {
	if cfg.NoiseThresholdSec == 0 {
		cfg.NoiseThresholdSec = DefaultMachineNoiseThresholdSec
	}
	if cfg.SessionTimeoutSec == 0 {
		cfg.SessionTimeoutSec = DefaultSessionTimeoutSec
	}
	if cfg.MinSamplesForDynamic == 0 {
		cfg.MinSamplesForDynamic = MinSamplesForDynamic
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Machine{
		cfg:     cfg,
		onClose: onClose,
		onTransition: onTransition,
		buf:     newRing(BufferSize),
	}
}

// Open reports whether a session is in progress.
func (m *Machine) Open() bool { return m.open }

// Process consumes one activity. Activities must arrive in
// non-decreasing start order; violations return ErrOutOfOrder and leave
// all state untouched.
func (m *Machine) Process(r activity.Record) error {
	if r.Start.Before(m.lastArrival) {
		return fmt.Errorf("%w: %s before %s", ErrOutOfOrder,
			r.Start.Format(time.RFC3339), m.lastArrival.Format(time.RFC3339))
	}
	m.lastArrival = r.Start

	// Noise never perturbs the EMA or counters.
	if activity.IsNoise(r, m.cfg.NoiseThresholdSec) {
		logging.Debug("realtime", "ignoring noise activity (%ds): %s", r.DurationSec, logging.Truncate(r.Details, 60))
		return nil
	}

	if m.open {
		m.current = append(m.current, r)
	}

	score := float64(r.ScoreOrZero())
	if m.emaSet {
		m.ema = EMAAlpha*score + (1-EMAAlpha)*m.ema
	} else {
		m.ema = score
		m.emaSet = true
	}
	m.buf.push(score)

	workThresh, breakThresh := m.thresholds()

	switch {
	case m.ema < breakThresh:
		m.breakCounter++
		m.workCounter = 0
	case m.ema > workThresh:
		m.workCounter++
		m.breakCounter = 0
	default:
		// Neutral dead-band: decay both toward zero.
		if m.breakCounter > 0 {
			m.breakCounter--
		}
		if m.workCounter > 0 {
			m.workCounter--
		}
	}

	if m.open && m.breakCounter >= HardBreakMin {
		m.close(r.End())
	} else if !m.open && m.workCounter >= HardWorkMin {
		m.openSession(r)
	}
	return nil
}

// thresholds returns (work, break). Percentiles of the rolling buffer
// once it holds enough samples, else the static fallback.
func (m *Machine) thresholds() (float64, float64) {
	if m.buf.len() < m.cfg.MinSamplesForDynamic {
		return StaticWorkThreshold, StaticBreakThreshold
	}
	sorted := m.buf.sorted()
	return percentile(sorted, 0.75), percentile(sorted, 0.25)
}

func (m *Machine) openSession(r activity.Record) {
	m.open = true
	m.current = []activity.Record{r}
	m.start = r.Start
	logging.Info("realtime", "session opened at %s", r.Start.Format(time.RFC3339))

	if m.onTransition != nil && (m.prevMeta != nil || len(m.prevActs) > 0) {
		m.onTransition(Transition{
			PrevMeta:       m.prevMeta,
			PrevActivities: m.prevActs,
			NewMeta: SessionMeta{
				DominantType: string(activity.TypeProductive),
				Start:        r.Start,
				DurationSec:  r.DurationSec,
			},
			NewActivities: []activity.Record{r},
		})
	}
	m.prevMeta = nil
	m.prevActs = nil
}

// close finalizes the open session at the given boundary, emits it for
// persistence, and resets all ephemeral smoothing state so the next
// session starts clean.
func (m *Machine) close(end time.Time) {
	records := m.current
	s := session.Session{
		Start: m.start,
		End:   end,
		Score: session.WeightedScore(records),
	}
	for _, r := range records {
		s.TotalDurationSec += r.DurationSec
	}

	dom, _ := flow.Dominance(records, m.cfg.NoiseThresholdSec)
	m.prevMeta = &SessionMeta{
		DominantType: dom,
		Start:        s.Start,
		DurationSec:  s.TotalDurationSec,
		Score:        s.Score,
	}
	m.prevActs = records

	logging.Info("realtime", "session closed at %s (score %d, %d activities)",
		end.Format(time.RFC3339), s.Score, len(records))
	if m.onClose != nil {
		m.onClose(s, records)
	}

	m.open = false
	m.current = nil
	m.start = time.Time{}
	m.ema = 0
	m.emaSet = false
	m.buf.reset()
	m.breakCounter = 0
	m.workCounter = 0
}

// CheckTimeout force-closes the open session once wall-clock
// inactivity since the last member's end exceeds the configured
// timeout, bounding how long a session can stay open while the user is
// away.
func (m *Machine) CheckTimeout() {
	if !m.open || len(m.current) == 0 {
		return
	}
	last := m.current[len(m.current)-1]
	idle := m.cfg.Now().Sub(last.End())
	if idle > time.Duration(m.cfg.SessionTimeoutSec)*time.Second {
		logging.Info("realtime", "session timeout after %s of inactivity", idle.Round(time.Second))
		m.close(last.End())
	}
}

// Flush force-closes any open session, for shutdown.
func (m *Machine) Flush() {
	if m.open && len(m.current) > 0 {
		m.close(m.current[len(m.current)-1].End())
	}
}
