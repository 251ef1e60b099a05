package realtime

import (
	"time"

	"github.com/flowtrack/flowtrack/internal/activity"
)

// SessionMeta summarizes one side of a session transition for the
// commentary/notification collaborator. The core produces the tuple;
// it never renders text or alerts the user.
type SessionMeta struct {
	DominantType string
	Start        time.Time
	DurationSec  int
	Score        int
}

// Transition is emitted whenever a new session opens after a previous
// one closed. Prev fields are nil/empty on the very first session.
type Transition struct {
	PrevMeta       *SessionMeta
	PrevActivities []activity.Record
	NewMeta        SessionMeta
	NewActivities  []activity.Record
}
