package realtime

import (
	"time"

	"github.com/flowtrack/flowtrack/internal/activity"
)

// Default decision thresholds (seconds).
const (
	DefaultMinimumFocusTimeSec       = 180
	DefaultMinimumBreakTimeSec       = 120
	DefaultContextSwitchThresholdSec = 300
	DefaultEngineNoiseThresholdSec   = 60
)

// EngineConfig holds the dwell-time policy thresholds. Zero values
// take the defaults above.
type EngineConfig struct {
	MinimumFocusTimeSec       int
	MinimumBreakTimeSec       int
	ContextSwitchThresholdSec int
	NoiseThresholdSec         int
	SessionTimeoutSec         int
}

// Engine is the stateless session policy: it answers whether an
// activity is noise, whether a context switch should cut over given
// dwell time, and which held-back activities fold into a newly
// committed context. Keeping it separate from the state machines keeps
// the thresholds swappable and testable on their own.
type Engine struct {
	cfg EngineConfig
}

// NewEngine creates a decision engine, filling zero config fields with
// defaults.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.MinimumFocusTimeSec == 0 {
		cfg.MinimumFocusTimeSec = DefaultMinimumFocusTimeSec
	}
	if cfg.MinimumBreakTimeSec == 0 {
		cfg.MinimumBreakTimeSec = DefaultMinimumBreakTimeSec
	}
	if cfg.ContextSwitchThresholdSec == 0 {
		cfg.ContextSwitchThresholdSec = DefaultContextSwitchThresholdSec
	}
	if cfg.NoiseThresholdSec == 0 {
		cfg.NoiseThresholdSec = DefaultEngineNoiseThresholdSec
	}
	if cfg.SessionTimeoutSec == 0 {
		cfg.SessionTimeoutSec = DefaultSessionTimeoutSec
	}
	return &Engine{cfg: cfg}
}

// IsNoise reports whether the activity is too brief to matter.
func (e *Engine) IsNoise(r activity.Record) bool {
	return r.DurationSec < e.cfg.NoiseThresholdSec
}

// ShouldSwitch decides whether to end the current session and start a
// new one, given the current context type, how long we've dwelt in it,
// and the incoming activity's type. A productive stretch must last the
// minimum focus time before a break cuts over; a break must last the
// minimum break time before work cuts over; and any dwell past the
// context-switch threshold ends the session whatever the types.
func (e *Engine) ShouldSwitch(current activity.Type, dwellSec float64, next activity.Type) bool {
	switch current {
	case activity.TypeProductive:
		if dwellSec >= float64(e.cfg.MinimumFocusTimeSec) && next == activity.TypeUnproductive {
			return true
		}
	case activity.TypeUnproductive:
		if dwellSec >= float64(e.cfg.MinimumBreakTimeSec) && next == activity.TypeProductive {
			return true
		}
	}
	return dwellSec >= float64(e.cfg.ContextSwitchThresholdSec)
}

// IsTimedOut reports whether the session holding last as its most
// recent member has been inactive past the session timeout.
func (e *Engine) IsTimedOut(last activity.Record, now time.Time) bool {
	return now.Sub(last.End()) > time.Duration(e.cfg.SessionTimeoutSec)*time.Second
}

// MatchingPending splits held-back activities into those matching the
// newly committed context type and the rest.
func (e *Engine) MatchingPending(pending []activity.Record, t activity.Type) (matching, rest []activity.Record) {
	for _, r := range pending {
		if r.Type() == t {
			matching = append(matching, r)
		} else {
			rest = append(rest, r)
		}
	}
	return matching, rest
}
