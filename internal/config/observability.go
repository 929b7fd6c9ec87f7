package config

import (
	"fmt"
	"slices"
	"time"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// ObservabilityConfig covers logging, New Relic and the /status probes.
// LoadConfig falls back to DefaultObservabilityConfig when the section is
// absent and always pins ServiceName to "consultdesk".
type ObservabilityConfig struct {
	ServiceName  string             `koanf:"service_name" validate:"required"`
	Environment  string             `koanf:"environment" validate:"required"`
	Logging      LoggingConfig      `koanf:"logging" validate:"required"`
	NewRelic     NewRelicConfig     `koanf:"new_relic" validate:"required"`
	HealthChecks HealthChecksConfig `koanf:"health_checks" validate:"required"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"required"`
	Format string `koanf:"format" validate:"required"` // json or console

	// Statements slower than this are logged at warn by the pgx tracer.
	SlowQueryThreshold time.Duration `koanf:"slow_query_threshold"`
}

// NewRelicConfig leaves the agent off while LicenseKey is empty.
type NewRelicConfig struct {
	LicenseKey                string `koanf:"license_key"`
	AppLogForwardingEnabled   bool   `koanf:"app_log_forwarding_enabled"`
	DistributedTracingEnabled bool   `koanf:"distributed_tracing_enabled"`
	DebugLogging              bool   `koanf:"debug_logging"`
}

// HealthChecksConfig selects which dependencies GET /status probes
// ("database", "redis") and how long each probe may take.
type HealthChecksConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval" validate:"min=1s"`
	Timeout  time.Duration `koanf:"timeout" validate:"min=1s"`
	Checks   []string      `koanf:"checks"`
}

func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		ServiceName: "consultdesk",
		Environment: "development",
		Logging: LoggingConfig{
			Level:              "info",
			Format:             "json",
			SlowQueryThreshold: 100 * time.Millisecond,
		},
		NewRelic: NewRelicConfig{
			AppLogForwardingEnabled:   true,
			DistributedTracingEnabled: true,
		},
		HealthChecks: HealthChecksConfig{
			Enabled:  true,
			Interval: 30 * time.Second,
			Timeout:  5 * time.Second,
			Checks:   []string{"database", "redis"},
		},
	}
}

// Validate covers the rules struct tags cannot express.
func (c *ObservabilityConfig) Validate() error {
	switch {
	case c.ServiceName == "":
		return fmt.Errorf("service_name is required")
	case !slices.Contains(logLevels, c.Logging.Level):
		return fmt.Errorf("invalid logging level %q, want one of %v", c.Logging.Level, logLevels)
	case c.Logging.SlowQueryThreshold < 0:
		return fmt.Errorf("logging slow_query_threshold must be non-negative")
	case c.HealthChecks.Enabled && c.HealthChecks.Timeout <= 0:
		return fmt.Errorf("health_checks timeout must be positive while checks are enabled")
	}
	return nil
}

// GetLogLevel falls back to debug outside production when no level is set.
func (c *ObservabilityConfig) GetLogLevel() string {
	if c.Logging.Level != "" {
		return c.Logging.Level
	}
	if c.IsProduction() {
		return "info"
	}
	return "debug"
}

func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == "production"
}

// HealthCheckEnabled reports whether /status should probe name.
func (c *ObservabilityConfig) HealthCheckEnabled(name string) bool {
	return c.HealthChecks.Enabled && slices.Contains(c.HealthChecks.Checks, name)
}
