package senses

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/flowtrack/flowtrack/internal/activity"
)

func TestFeedSense_IngestsExistingLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.jsonl")
	lines := `{"start":"2026-03-02T09:00:00Z","duration_sec":600,"details":"editing main.go | code | ","score":40}
not json at all
{"start":"2026-03-02T09:10:00Z","duration_sec":300,"details":"reading mail | thunderbird | "}
`
	if err := os.WriteFile(path, []byte(lines), 0644); err != nil {
		t.Fatal(err)
	}

	got := make(chan activity.Record, 8)
	f := NewFeedSense(FeedConfig{Path: path, FromStart: true}, func(r activity.Record) {
		got <- r
	})
	if err := f.Start(); err != nil {
		t.Fatal(err)
	}
	defer f.Stop()

	first := recv(t, got)
	if first.DurationSec != 600 || first.Score == nil || *first.Score != 40 {
		t.Errorf("first record = %+v", first)
	}
	if !first.Start.Equal(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("first start = %v", first.Start)
	}

	// The malformed line is skipped, not fatal.
	second := recv(t, got)
	if second.DurationSec != 300 || second.Score != nil {
		t.Errorf("second record = %+v", second)
	}
}

func TestFeedSense_TailsAppendedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.jsonl")
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}

	got := make(chan activity.Record, 8)
	f := NewFeedSense(FeedConfig{Path: path}, func(r activity.Record) {
		got <- r
	})
	if err := f.Start(); err != nil {
		t.Fatal(err)
	}
	defer f.Stop()

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	_, err = file.WriteString(`{"start":"2026-03-02T09:00:00Z","duration_sec":120,"details":"x | terminal | "}` + "\n")
	file.Close()
	if err != nil {
		t.Fatal(err)
	}

	r := recv(t, got)
	if r.DurationSec != 120 {
		t.Errorf("record = %+v", r)
	}
}

func recv(t *testing.T, ch chan activity.Record) activity.Record {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for feed record")
		return activity.Record{}
	}
}

func TestProcSense_EmitsOnContextChange(t *testing.T) {
	var got []activity.Record
	p := NewProcSense(time.Minute, func(r activity.Record) {
		got = append(got, r)
	})

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	p.observe("code", start)
	p.observe("code", start.Add(10*time.Second))
	if len(got) != 0 {
		t.Fatalf("emitted %d records before a context change", len(got))
	}

	p.observe("chrome", start.Add(90*time.Second))
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].DurationSec != 90 {
		t.Errorf("dwell = %ds, want 90", got[0].DurationSec)
	}
	if !got[0].Start.Equal(start) {
		t.Errorf("start = %v", got[0].Start)
	}
	if got[0].Details != "active process | code | " {
		t.Errorf("details = %q", got[0].Details)
	}

	// Flush covers the final context.
	p.flush(start.Add(150 * time.Second))
	if len(got) != 2 {
		t.Fatalf("got %d records after flush, want 2", len(got))
	}
	if got[1].DurationSec != 60 {
		t.Errorf("final dwell = %ds, want 60", got[1].DurationSec)
	}
}

func TestProcSense_ZeroDwellNotEmitted(t *testing.T) {
	var got []activity.Record
	p := NewProcSense(time.Minute, func(r activity.Record) {
		got = append(got, r)
	})
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	p.observe("code", start)
	p.observe("chrome", start)
	if len(got) != 0 {
		t.Errorf("zero-length dwell emitted: %+v", got)
	}
}
