package senses

import (
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/flowtrack/flowtrack/internal/activity"
	"github.com/flowtrack/flowtrack/internal/logging"
)

// DefaultProcPollInterval is how often the process sampler checks the
// active context.
const DefaultProcPollInterval = 5 * time.Second

// ProcSense samples the host's top-CPU process as a stand-in for the
// active context when no external feed is configured. A record is
// emitted when the top process changes, covering the elapsed dwell in
// the previous one.
type ProcSense struct {
	pollInterval time.Duration
	onActivity   func(activity.Record)

	current      string
	contextStart time.Time

	mu       sync.Mutex
	stopChan chan struct{}
	stopped  bool
}

// NewProcSense creates a process sampler. A zero interval uses
// DefaultProcPollInterval.
func NewProcSense(pollInterval time.Duration, onActivity func(activity.Record)) *ProcSense {
	if pollInterval == 0 {
		pollInterval = DefaultProcPollInterval
	}
	return &ProcSense{
		pollInterval: pollInterval,
		onActivity:   onActivity,
		stopChan:     make(chan struct{}),
	}
}

// Start begins sampling.
func (p *ProcSense) Start() error {
	go p.pollLoop()
	logging.Info("proc-sense", "sampling top process every %v", p.pollInterval)
	return nil
}

// Stop stops sampling and flushes the in-progress context.
func (p *ProcSense) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return nil
	}
	p.stopped = true
	close(p.stopChan)
	p.flush(time.Now())
	return nil
}

func (p *ProcSense) pollLoop() {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			if name := topProcess(); name != "" {
				p.mu.Lock()
				if !p.stopped {
					p.observe(name, time.Now())
				}
				p.mu.Unlock()
			}
		}
	}
}

// observe registers the currently active process name. A change of
// context emits a record for the previous dwell. Callers hold the
// mutex.
func (p *ProcSense) observe(name string, now time.Time) {
	if name == p.current {
		return
	}
	p.flush(now)
	p.current = name
	p.contextStart = now
}

// flush emits the in-progress context, if any, ending now.
func (p *ProcSense) flush(now time.Time) {
	if p.current == "" {
		return
	}
	dwell := int(now.Sub(p.contextStart).Seconds())
	if dwell > 0 {
		logging.Debug("proc-sense", "context %s held for %ds", p.current, dwell)
		p.onActivity(activity.Record{
			Start:       p.contextStart,
			DurationSec: dwell,
			Details:     fmt.Sprintf("active process | %s | ", p.current),
		})
	}
	p.current = ""
}

// topProcess returns the name of the process currently using the most
// CPU, or "" when sampling fails.
func topProcess() string {
	procs, err := process.Processes()
	if err != nil {
		return ""
	}

	var best string
	var bestCPU float64
	for _, proc := range procs {
		cpu, err := proc.CPUPercent()
		if err != nil {
			continue
		}
		if cpu <= bestCPU {
			continue
		}
		name, err := proc.Name()
		if err != nil {
			continue
		}
		best = name
		bestCPU = cpu
	}
	return best
}
