package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Batch.GapThresholdSec != 1800 {
		t.Errorf("gap threshold = %d, want 1800", c.Batch.GapThresholdSec)
	}
	if c.Realtime.Strategy != StrategySmoothed {
		t.Errorf("strategy = %q", c.Realtime.Strategy)
	}
	if c.Realtime.SessionTimeoutSec != 300 {
		t.Errorf("session timeout = %d, want 300", c.Realtime.SessionTimeoutSec)
	}
}

func TestLoad_FileLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
db_path: /tmp/custom.db
batch:
  gap_threshold_seconds: 900
realtime:
  strategy: switch
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.DBPath != "/tmp/custom.db" {
		t.Errorf("db path = %q", c.DBPath)
	}
	if c.Batch.GapThresholdSec != 900 {
		t.Errorf("gap threshold = %d, want 900", c.Batch.GapThresholdSec)
	}
	// Untouched fields keep their defaults.
	if c.Batch.MicroBreakThresholdSec != 300 {
		t.Errorf("micro break threshold = %d, want 300", c.Batch.MicroBreakThresholdSec)
	}
	if c.Realtime.Strategy != StrategySwitch {
		t.Errorf("strategy = %q", c.Realtime.Strategy)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("db_path: from-file.db\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FLOWTRACK_DB", "from-env.db")

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.DBPath != "from-env.db" {
		t.Errorf("db path = %q, want the env override", c.DBPath)
	}
}

func TestLoad_RejectsUnknownStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("realtime:\n  strategy: hybrid\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("unknown strategy accepted")
	}
}
