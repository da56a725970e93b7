// Package worker runs background maintenance jobs for the location backend.
package worker

import (
	"time"

	"github.com/danisampedro/locationapp/internal/provider/resilience"
)

// MigrationConfig holds configuration for the content migration job.
type MigrationConfig struct {
	// BatchSize is the page size used when scanning stored documents.
	// Default: 100
	BatchSize int

	// Concurrency is the number of concurrent rewrites.
	// Default: 4
	Concurrency int

	// Timeout bounds each rewrite.
	// Default: 10 seconds
	Timeout time.Duration

	// Retry governs rewrites that fail transiently.
	Retry resilience.RetryPolicy

	// Interval is how often the job runs when no Pub/Sub subscription is
	// configured.
	// Default: 1 hour
	Interval time.Duration
}

// DefaultMigrationConfig returns the default migration configuration.
func DefaultMigrationConfig() MigrationConfig {
	return MigrationConfig{
		BatchSize:   100,
		Concurrency: 4,
		Timeout:     10 * time.Second,
		Retry:       resilience.DefaultRetryPolicy(),
		Interval:    time.Hour,
	}
}

func (c MigrationConfig) withDefaults() MigrationConfig {
	d := DefaultMigrationConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.Retry == (resilience.RetryPolicy{}) {
		c.Retry = d.Retry
	}
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	return c
}
