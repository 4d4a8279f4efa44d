package config

import (
	"fmt"
	"slices"
	"time"
)

// ServiceName identifies this service in logs, traces and metrics.
const ServiceName = "tours-api"

// ObservabilityConfig groups configuration related to telemetry.
type ObservabilityConfig struct {
	ServiceName  string             `koanf:"service_name" validate:"required"`
	Environment  string             `koanf:"environment" validate:"required"`
	Logging      LoggingConfig      `koanf:"logging" validate:"required"`
	NewRelic     NewRelicConfig     `koanf:"new_relic"`
	HealthChecks HealthChecksConfig `koanf:"health_checks"`
}

// LoggingConfig holds application logging configuration.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level" validate:"required"`

	// Format is "json" or "console". JSON is only honoured in production.
	Format string `koanf:"format" validate:"required"`

	// SlowQueryThreshold flags store commands slower than this duration.
	SlowQueryThreshold time.Duration `koanf:"slow_query_threshold"`
}

// NewRelicConfig holds configuration for New Relic APM.
// An empty LicenseKey disables the agent.
type NewRelicConfig struct {
	LicenseKey                string `koanf:"license_key"`
	AppLogForwardingEnabled   bool   `koanf:"app_log_forwarding_enabled"`
	DistributedTracingEnabled bool   `koanf:"distributed_tracing_enabled"`
	DebugLogging              bool   `koanf:"debug_logging"`
}

// HealthChecksConfig controls the dependency probes run by GET /status.
type HealthChecksConfig struct {
	Timeout time.Duration `koanf:"timeout"`
	Checks  []string      `koanf:"checks"`
}

// DefaultObservabilityConfig provides defaults used when no observability
// block is configured.
func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		ServiceName: ServiceName,
		Environment: "development",
		Logging: LoggingConfig{
			Level:              "info",
			Format:             "json",
			SlowQueryThreshold: 100 * time.Millisecond,
		},
		NewRelic: NewRelicConfig{
			AppLogForwardingEnabled:   true,
			DistributedTracingEnabled: true,
			// Disabled by default to avoid mixed log formats.
			DebugLogging: false,
		},
		HealthChecks: HealthChecksConfig{
			Timeout: 5 * time.Second,
			Checks:  []string{"database", "redis", "storage"},
		},
	}
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the rules struct tags cannot express and fills in a
// missing health check timeout.
func (c *ObservabilityConfig) Validate() error {
	switch {
	case c.ServiceName == "":
		return fmt.Errorf("service_name is required")
	case !slices.Contains(logLevels, c.Logging.Level):
		return fmt.Errorf("invalid logging level %q, expected one of %v", c.Logging.Level, logLevels)
	case c.Logging.SlowQueryThreshold < 0:
		return fmt.Errorf("logging slow_query_threshold must be non-negative")
	}
	if c.HealthChecks.Timeout <= 0 {
		c.HealthChecks.Timeout = 5 * time.Second
	}
	return nil
}

// GetLogLevel returns the configured level; an empty level means debug
// outside production.
func (c *ObservabilityConfig) GetLogLevel() string {
	if c.Logging.Level != "" {
		return c.Logging.Level
	}
	if c.IsProduction() {
		return "info"
	}
	return "debug"
}

// IsProduction reports whether the application is running in production mode.
func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == "production"
}
