// Package config defines service configuration and its layered loading.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers a YAML file, a .env file and HARKWISE_* environment variables on top.
// - Failures wrap this package's sentinel errors.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// BackendURL is the base URL of the feedback backend; /api/v1/feedback is appended per call.
	BackendURL string `koanf:"backend_url" validate:"required,url"`

	// BackendTimeoutMS bounds every backend call.
	BackendTimeoutMS int `koanf:"backend_timeout_ms" validate:"gt=0"`

	// SessionCapacity caps the number of form sessions kept in memory.
	SessionCapacity int `koanf:"session_capacity" validate:"gt=0"`

	// SessionTTLSeconds drops sessions idle for longer than this.
	SessionTTLSeconds int `koanf:"session_ttl_seconds" validate:"gt=0"`

	// SweepIntervalSeconds sets how often idle sessions are swept.
	SweepIntervalSeconds int `koanf:"sweep_interval_seconds" validate:"gt=0"`

	// CookieSecure marks the session cookie Secure (enable behind TLS).
	CookieSecure bool `koanf:"cookie_secure"`

	// BrandName is shown in the page header and titles.
	BrandName string `koanf:"brand_name" validate:"required"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":8080",
		BackendURL:           "http://localhost:9090",
		BackendTimeoutMS:     10_000,
		SessionCapacity:      10_000,
		SessionTTLSeconds:    1800,
		SweepIntervalSeconds: 60,
		CookieSecure:         false,
		BrandName:            "Harkwise",
	}
}

// BackendTimeout returns BackendTimeoutMS as a duration.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutMS) * time.Millisecond
}

// SessionTTL returns SessionTTLSeconds as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// SweepInterval returns SweepIntervalSeconds as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
