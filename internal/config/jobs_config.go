package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// JobsConfig tunes the background jobs and snapshot backups. Connection
// settings stay in the environment; this file only carries cadence and
// bucket naming.
type JobsConfig struct {
	Alerts   AlertsConfig   `toml:"alerts"`
	Snapshot SnapshotConfig `toml:"snapshot"`
}

type AlertsConfig struct {
	IntervalMinutes int `toml:"interval_minutes"`
}

type SnapshotConfig struct {
	IntervalHours int    `toml:"interval_hours"`
	Bucket        string `toml:"bucket"`
}

// DefaultJobsConfig is what runs when no config file is present.
func DefaultJobsConfig() *JobsConfig {
	return &JobsConfig{
		Alerts:   AlertsConfig{IntervalMinutes: 30},
		Snapshot: SnapshotConfig{IntervalHours: 24, Bucket: "toolkeeper-backups"},
	}
}

// LoadJobsConfig loads configuration from a TOML file, falling back to
// defaults when the file does not exist.
func LoadJobsConfig(filename string) (*JobsConfig, error) {
	config := DefaultJobsConfig()
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return config, nil
	}
	if _, err := toml.DecodeFile(filename, config); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	if config.Alerts.IntervalMinutes <= 0 || config.Snapshot.IntervalHours <= 0 {
		return nil, fmt.Errorf("job intervals must be positive")
	}
	if config.Snapshot.Bucket == "" {
		return nil, fmt.Errorf("snapshot bucket must not be empty")
	}
	return config, nil
}

func (c *JobsConfig) AlertInterval() time.Duration {
	return time.Duration(c.Alerts.IntervalMinutes) * time.Minute
}

func (c *JobsConfig) SnapshotInterval() time.Duration {
	return time.Duration(c.Snapshot.IntervalHours) * time.Hour
}
