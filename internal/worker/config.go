package worker

import (
	"fmt"
	"time"
)

// Config tunes the worker pool.
type Config struct {
	Concurrency       int           // polling goroutines
	PollInterval      time.Duration // idle wait between dequeue attempts
	JobTimeout        time.Duration // per-job context deadline
	ShutdownTimeout   time.Duration // how long Stop waits for running jobs
	StaleJobThreshold time.Duration // running jobs older than this are requeued on Start
}

// DefaultConfig suits the object cleanup jobs: short, I/O bound work.
func DefaultConfig() Config {
	return Config{
		Concurrency:       2,
		PollInterval:      5 * time.Second,
		JobTimeout:        time.Minute,
		ShutdownTimeout:   30 * time.Second,
		StaleJobThreshold: 10 * time.Minute,
	}
}

// Validate rejects values that would spin or starve the pool.
func (c Config) Validate() error {
	switch {
	case c.Concurrency < 1 || c.Concurrency > 100:
		return fmt.Errorf("concurrency must be between 1 and 100, got %d", c.Concurrency)
	case c.PollInterval < time.Second:
		return fmt.Errorf("poll interval must be at least 1s, got %v", c.PollInterval)
	case c.JobTimeout < time.Second:
		return fmt.Errorf("job timeout must be at least 1s, got %v", c.JobTimeout)
	case c.ShutdownTimeout < time.Second:
		return fmt.Errorf("shutdown timeout must be at least 1s, got %v", c.ShutdownTimeout)
	case c.StaleJobThreshold <= c.JobTimeout:
		return fmt.Errorf("stale job threshold (%v) must exceed the job timeout (%v)", c.StaleJobThreshold, c.JobTimeout)
	}
	return nil
}
