// Package senses provides activity sources for the tracking daemon: a
// JSONL feed tail for external trackers and a host process sampler for
// standalone use.
package senses

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/flowtrack/flowtrack/internal/activity"
	"github.com/flowtrack/flowtrack/internal/logging"
)

// feedEvent is one JSONL line from an external tracker.
type feedEvent struct {
	ID          string `json:"id"`
	Start       string `json:"start"`
	DurationSec int    `json:"duration_sec"`
	Details     string `json:"details"`
	Score       *int   `json:"score,omitempty"`
	Confidence  *int   `json:"confidence,omitempty"`
}

// FeedConfig configures the JSONL feed tail.
type FeedConfig struct {
	Path string

	// FromStart ingests the existing file content on start instead of
	// only lines appended afterward.
	FromStart bool
}

// FeedSense tails a JSONL activity feed and emits a record per
// appended line. The file may be truncated or recreated by the
// producer; the tail follows.
type FeedSense struct {
	path       string
	fromStart  bool
	onActivity func(activity.Record)

	watcher *fsnotify.Watcher
	offset  int64

	mu       sync.Mutex
	stopChan chan struct{}
	stopped  bool
}

// NewFeedSense creates a feed tail delivering parsed activities to
// onActivity.
func NewFeedSense(cfg FeedConfig, onActivity func(activity.Record)) *FeedSense {
	return &FeedSense{
		path:       cfg.Path,
		fromStart:  cfg.FromStart,
		onActivity: onActivity,
		stopChan:   make(chan struct{}),
	}
}

// Start begins watching the feed file's directory. The file itself may
// not exist yet.
func (f *FeedSense) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(f.path), err)
	}
	f.watcher = watcher

	if !f.fromStart {
		if info, err := os.Stat(f.path); err == nil {
			f.offset = info.Size()
		}
	}
	// Catch up on whatever is already there.
	f.readNew()

	go f.watchLoop()
	logging.Info("feed-sense", "tailing %s", f.path)
	return nil
}

// Stop stops the tail.
func (f *FeedSense) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return nil
	}
	f.stopped = true
	close(f.stopChan)
	return f.watcher.Close()
}

func (f *FeedSense) watchLoop() {
	for {
		select {
		case <-f.stopChan:
			return
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != f.path {
				continue
			}
			if ev.Op.Has(fsnotify.Create) {
				// Recreated: start over.
				f.offset = 0
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
				f.readNew()
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("feed-sense", "watcher error: %v", err)
		}
	}
}

// readNew consumes everything past the current offset, keeping any
// trailing partial line for the next write.
func (f *FeedSense) readNew() {
	file, err := os.Open(f.path)
	if err != nil {
		return
	}
	defer file.Close()

	if info, err := file.Stat(); err == nil && info.Size() < f.offset {
		// Truncated underneath us.
		f.offset = 0
	}
	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return
	}

	reader := bufio.NewReader(file)
	for {
		chunk, err := reader.ReadBytes('\n')
		if err != nil {
			// Incomplete line: leave it unread until the producer
			// finishes it.
			return
		}
		f.offset += int64(len(chunk))
		f.emitLine(strings.TrimSpace(string(chunk)))
	}
}

func (f *FeedSense) emitLine(line string) {
	if line == "" {
		return
	}
	var ev feedEvent
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		logging.Warn("feed-sense", "skipping malformed line: %v", err)
		return
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	start, err := time.Parse(time.RFC3339, ev.Start)
	if err != nil {
		logging.Warn("feed-sense", "skipping event %s: bad start time: %v", ev.ID, err)
		return
	}
	if ev.DurationSec < 0 {
		logging.Warn("feed-sense", "skipping event %s: negative duration", ev.ID)
		return
	}

	logging.Debug("feed-sense", "event %s: %s", ev.ID, logging.Truncate(ev.Details, 60))
	f.onActivity(activity.Record{
		Start:       start.UTC(),
		DurationSec: ev.DurationSec,
		Details:     ev.Details,
		Score:       ev.Score,
		Confidence:  ev.Confidence,
	})
}
