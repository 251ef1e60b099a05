// Package config loads flowtrack's tunable thresholds from a YAML file
// with environment overrides for paths and tokens. Every threshold has
// a default matching the core algorithms, so an empty config is fully
// usable.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/flowtrack/flowtrack/internal/batch"
	"github.com/flowtrack/flowtrack/internal/flow"
	"github.com/flowtrack/flowtrack/internal/realtime"
	"github.com/flowtrack/flowtrack/internal/session"
)

// Realtime strategies.
const (
	StrategySmoothed = "smoothed"
	StrategySwitch   = "switch"
)

// Config is the full daemon configuration.
type Config struct {
	DBPath   string `yaml:"db_path"`
	FeedPath string `yaml:"feed_path"`

	Batch struct {
		GapThresholdSec        int `yaml:"gap_threshold_seconds"`
		MicroBreakThresholdSec int `yaml:"micro_break_threshold_seconds"`
		NoiseThresholdSec      int `yaml:"noise_threshold_seconds"`
		IntervalSec            int `yaml:"interval_seconds"`
	} `yaml:"batch"`

	Realtime struct {
		Strategy          string `yaml:"strategy"` // smoothed | switch
		NoiseThresholdSec int    `yaml:"noise_threshold_seconds"`
		SessionTimeoutSec int    `yaml:"session_timeout_seconds"`

		// Switch-strategy dwell thresholds.
		MinimumFocusTimeSec       int `yaml:"minimum_focus_time_seconds"`
		MinimumBreakTimeSec       int `yaml:"minimum_break_time_seconds"`
		ContextSwitchThresholdSec int `yaml:"context_switch_threshold_seconds"`
	} `yaml:"realtime"`

	Poller struct {
		IntervalSec int `yaml:"interval_seconds"`
	} `yaml:"poller"`

	Discord struct {
		Token     string `yaml:"token"`
		ChannelID string `yaml:"channel_id"`
	} `yaml:"discord"`
}

// Default returns a configuration with every threshold at its
// canonical default.
func Default() Config {
	var c Config
	c.DBPath = "flowtrack.db"
	c.Batch.GapThresholdSec = session.DefaultGapThresholdSec
	c.Batch.MicroBreakThresholdSec = session.DefaultMicroBreakThresholdSec
	c.Batch.NoiseThresholdSec = flow.DefaultNoiseThresholdSec
	c.Batch.IntervalSec = 900
	c.Realtime.Strategy = StrategySmoothed
	c.Realtime.NoiseThresholdSec = realtime.DefaultMachineNoiseThresholdSec
	c.Realtime.SessionTimeoutSec = realtime.DefaultSessionTimeoutSec
	c.Realtime.MinimumFocusTimeSec = realtime.DefaultMinimumFocusTimeSec
	c.Realtime.MinimumBreakTimeSec = realtime.DefaultMinimumBreakTimeSec
	c.Realtime.ContextSwitchThresholdSec = realtime.DefaultContextSwitchThresholdSec
	c.Poller.IntervalSec = 5
	return c
}

// Load reads the YAML config at path, layered over the defaults, then
// applies environment overrides. A missing file is not an error; the
// defaults stand.
func Load(path string) (Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return c, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Env overrides for deployment-specific values.
	if v := os.Getenv("FLOWTRACK_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("FLOWTRACK_FEED"); v != "" {
		c.FeedPath = v
	}
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		c.Discord.Token = v
	}
	if v := os.Getenv("DISCORD_CHANNEL_ID"); v != "" {
		c.Discord.ChannelID = v
	}

	if err := c.validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Config) validate() error {
	switch c.Realtime.Strategy {
	case StrategySmoothed, StrategySwitch:
	default:
		return fmt.Errorf("unknown realtime strategy %q", c.Realtime.Strategy)
	}
	if c.Batch.GapThresholdSec <= 0 || c.Batch.MicroBreakThresholdSec <= 0 {
		return fmt.Errorf("batch thresholds must be positive")
	}
	return nil
}

// BatchConfig converts the batch section for the runner.
func (c *Config) BatchConfig() batch.Config {
	return batch.Config{
		GapThresholdSec:        c.Batch.GapThresholdSec,
		MicroBreakThresholdSec: c.Batch.MicroBreakThresholdSec,
		NoiseThresholdSec:      c.Batch.NoiseThresholdSec,
	}
}

// MachineConfig converts the realtime section for the smoothed
// strategy.
func (c *Config) MachineConfig() realtime.MachineConfig {
	return realtime.MachineConfig{
		NoiseThresholdSec: c.Realtime.NoiseThresholdSec,
		SessionTimeoutSec: c.Realtime.SessionTimeoutSec,
	}
}

// EngineConfig converts the realtime section for the switch strategy.
func (c *Config) EngineConfig() realtime.EngineConfig {
	return realtime.EngineConfig{
		MinimumFocusTimeSec:       c.Realtime.MinimumFocusTimeSec,
		MinimumBreakTimeSec:       c.Realtime.MinimumBreakTimeSec,
		ContextSwitchThresholdSec: c.Realtime.ContextSwitchThresholdSec,
		NoiseThresholdSec:         c.Realtime.NoiseThresholdSec,
		SessionTimeoutSec:         c.Realtime.SessionTimeoutSec,
	}
}
