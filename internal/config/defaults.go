package config

import (
	"time"

	period "github.com/nholding/rate-calendar/internal/period/domain"
)

// Default values for optional configuration fields.
const (
	DefaultAddr            = ":8000"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxBodyBytes    = 1 << 20
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultTimeZone        = period.DefaultZone
	DefaultMetricsPath     = "/metrics"
	DefaultArchivePrefix   = "rate-calendar"
	DefaultSinkTimeout     = 5 * time.Second
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "require"
)

// Defaults returns a configuration with every default applied, the same as
// loading an empty file.
func Defaults() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}

	if c.Calendar.TimeZone == "" {
		c.Calendar.TimeZone = DefaultTimeZone
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Sink defaults
	if c.Archive.Prefix == "" {
		c.Archive.Prefix = DefaultArchivePrefix
	}
	if c.Archive.Timeout == 0 {
		c.Archive.Timeout = DefaultSinkTimeout
	}
	if c.Ledger.Port == 0 {
		c.Ledger.Port = DefaultDBPort
	}
	if c.Ledger.SSLMode == "" {
		c.Ledger.SSLMode = DefaultDBSSLMode
	}
	if c.Ledger.Timeout == 0 {
		c.Ledger.Timeout = DefaultSinkTimeout
	}
}
