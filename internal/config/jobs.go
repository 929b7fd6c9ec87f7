package config

import "time"

// JobsConfig tunes the asynq worker and the periodic maintenance tasks.
type JobsConfig struct {
	// Concurrency is the number of tasks processed in parallel.
	Concurrency int `koanf:"concurrency"`

	// SessionPurgeSpec is a cron spec (or "@every 1h") for the session purge task.
	SessionPurgeSpec string `koanf:"session_purge_spec"`

	// SessionRetention is how long expired session rows are kept for audit
	// before the purge task deletes them.
	SessionRetention time.Duration `koanf:"session_retention"`
}

// DefaultJobsConfig returns the job settings used when none are configured.
func DefaultJobsConfig() *JobsConfig {
	return &JobsConfig{
		Concurrency:      10,
		SessionPurgeSpec: "@every 1h",
		SessionRetention: 30 * 24 * time.Hour,
	}
}
