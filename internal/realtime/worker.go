package realtime

import (
	"time"

	"github.com/flowtrack/flowtrack/internal/activity"
	"github.com/flowtrack/flowtrack/internal/logging"
)

// DefaultTimeoutTick is how often the worker polls the inactivity
// timeout.
const DefaultTimeoutTick = 30 * time.Second

// Sessionizer is an online session segmenter. Machine and Grouper both
// implement it.
type Sessionizer interface {
	// Process consumes one activity; activities must arrive in
	// non-decreasing start order.
	Process(activity.Record) error
	// CheckTimeout force-closes on wall-clock inactivity.
	CheckTimeout()
	// Flush finalizes any open session.
	Flush()
}

// Worker gives a Sessionizer the single-writer discipline it requires:
// one dedicated goroutine consumes submitted activities sequentially
// and drives the timeout poll. All sessionizer state is touched only
// from that goroutine.
type Worker struct {
	s    Sessionizer
	in   chan activity.Record
	stop chan struct{}
	done chan struct{}
	tick time.Duration
}

// NewWorker wraps a sessionizer. A zero tick uses DefaultTimeoutTick.
func NewWorker(s Sessionizer, tick time.Duration) *Worker {
	if tick == 0 {
		tick = DefaultTimeoutTick
	}
	return &Worker{
		s:    s,
		in:   make(chan activity.Record, 64),
		stop: make(chan struct{}),
		done: make(chan struct{}),
		tick: tick,
	}
}

// Start launches the worker goroutine.
func (w *Worker) Start() {
	go w.loop()
	logging.Info("realtime", "worker started (timeout tick %s)", w.tick)
}

// Submit queues an activity for processing. Blocks if the worker is
// saturated.
func (w *Worker) Submit(r activity.Record) {
	w.in <- r
}

// Stop processes whatever is already queued, flushes any open session,
// and waits for the worker goroutine to exit.
func (w *Worker) Stop() {
	close(w.stop)
	<-w.done
}

func (w *Worker) loop() {
	defer close(w.done)
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			w.drain()
			w.s.Flush()
			return
		case r := <-w.in:
			if err := w.s.Process(r); err != nil {
				logging.Warn("realtime", "rejected activity %d: %v", r.ID, err)
			}
		case <-ticker.C:
			w.s.CheckTimeout()
		}
	}
}

// drain processes anything already queued so records submitted before
// Stop are never dropped.
func (w *Worker) drain() {
	for {
		select {
		case r := <-w.in:
			if err := w.s.Process(r); err != nil {
				logging.Warn("realtime", "rejected activity %d: %v", r.ID, err)
			}
		default:
			return
		}
	}
}
