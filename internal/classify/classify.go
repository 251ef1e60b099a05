// Package classify defines the productivity oracle consulted when an
// activity has no score yet. Implementations may be keyword-based,
// user-overridden, or backed by an external model; the core treats any
// failure as "no score" and carries on with neutral defaults.
package classify

import "context"

// Result is the oracle's verdict for one activity description.
type Result struct {
	Score      int    // -50..+50
	Confidence int    // 0..100
	Reasoning  string // short human-readable explanation
}

// Classifier maps an opaque activity description to a productivity
// verdict. Classify may fail or time out; callers must degrade to a
// missing score rather than propagate the failure.
type Classifier interface {
	Classify(ctx context.Context, details string) (Result, error)
}
