package scheduler

import (
	"time"
)

// Config controls job cadences and the staleness policy windows.
type Config struct {
	// RunInterval is how often the run loop wakes up to check for due jobs.
	RunInterval time.Duration
	// ScanInterval is the cadence of the staleness scan.
	ScanInterval time.Duration
	// NotifyInterval is the cadence of the re-notification sweep.
	NotifyInterval time.Duration
	// StaleAfter is the policy window after which an unconfirmed record
	// counts as stale.
	StaleAfter time.Duration
	// NotifyCooldown keeps freshly flagged or freshly edited records out of
	// the sweep.
	NotifyCooldown time.Duration
	// JobTimeout bounds a single job execution.
	JobTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval:    time.Hour,
		ScanInterval:   24 * time.Hour,
		NotifyInterval: 14 * 24 * time.Hour,
		StaleAfter:     365 * 24 * time.Hour,
		NotifyCooldown: 14 * 24 * time.Hour,
		JobTimeout:     5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.ScanInterval <= 0 {
		c.ScanInterval = defaults.ScanInterval
	}
	if c.NotifyInterval <= 0 {
		c.NotifyInterval = defaults.NotifyInterval
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = defaults.StaleAfter
	}
	if c.NotifyCooldown <= 0 {
		c.NotifyCooldown = defaults.NotifyCooldown
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}
