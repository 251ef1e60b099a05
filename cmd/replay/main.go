package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/flowtrack/flowtrack/internal/activity"
	"github.com/flowtrack/flowtrack/internal/realtime"
	"github.com/flowtrack/flowtrack/internal/session"
)

// replay feeds a recorded JSONL activity history through a realtime
// sessionizer and prints the sessions it would have cut. Useful for
// tuning thresholds against real history without touching the store.

type replayEvent struct {
	Start       string `json:"start"`
	DurationSec int    `json:"duration_sec"`
	Details     string `json:"details"`
	Score       *int   `json:"score,omitempty"`
}

func main() {
	file := flag.String("file", "", "JSONL activity history (required)")
	strategy := flag.String("strategy", "smoothed", "sessionizer strategy: smoothed or switch")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Failed to open history: %v", err)
	}
	defer f.Close()

	// The replay clock tracks the record stream, so inactivity
	// timeouts fire from gaps in the history rather than wall time.
	var clock time.Time
	now := func() time.Time { return clock }

	var closed int
	onClose := func(s session.Session, records []activity.Record) {
		closed++
		fmt.Printf("session %d: %s -> %s  score %+d  %d activities\n",
			closed, s.Start.Format("2006-01-02 15:04"), s.End.Format("15:04"),
			s.Score, len(records))
	}
	onTransition := func(t realtime.Transition) {
		if t.PrevMeta != nil {
			fmt.Printf("  transition: %s -> %s\n", t.PrevMeta.DominantType, t.NewMeta.DominantType)
		}
	}

	var sessionizer realtime.Sessionizer
	switch *strategy {
	case "smoothed":
		sessionizer = realtime.NewMachine(realtime.MachineConfig{Now: now}, onClose, onTransition)
	case "switch":
		sessionizer = realtime.NewGrouper(realtime.NewEngine(realtime.EngineConfig{}), now, onClose, onTransition)
	default:
		log.Fatalf("Unknown strategy %q", *strategy)
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	var lineNo, fed int
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev replayEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			log.Printf("line %d: skipping malformed event: %v", lineNo, err)
			continue
		}
		start, err := time.Parse(time.RFC3339, ev.Start)
		if err != nil {
			log.Printf("line %d: skipping event with bad start: %v", lineNo, err)
			continue
		}

		r := activity.Record{
			ID:          int64(lineNo),
			Start:       start.UTC(),
			DurationSec: ev.DurationSec,
			Details:     ev.Details,
			Score:       ev.Score,
		}
		if r.End().After(clock) {
			clock = r.End()
		}
		if err := sessionizer.Process(r); err != nil {
			log.Printf("line %d: rejected: %v", lineNo, err)
			continue
		}
		sessionizer.CheckTimeout()
		fed++
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("Failed to read history: %v", err)
	}

	sessionizer.Flush()
	fmt.Printf("replayed %d activities, %d sessions\n", fed, closed)
}
