package config

import "time"

// Config is the root configuration of the rate calendar service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Calendar CalendarConfig `yaml:"calendar"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Ledger   LedgerConfig   `yaml:"ledger"`
}

// ServerConfig holds HTTP boundary settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" validate:"gt=0"`
	AllowedOrigins  []string      `yaml:"allowed_origins" validate:"dive,required"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// CalendarConfig holds engine settings.
type CalendarConfig struct {
	TimeZone string `yaml:"time_zone" validate:"required,timezone"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"required,startswith=/"`
}

// AWSConfig is shared by the AWS-backed sinks.
type AWSConfig struct {
	Region  string `yaml:"region"`
	Profile string `yaml:"profile"` // Primarily for dev purposes
}

// ArchiveConfig enables the S3 archive of processed batches.
type ArchiveConfig struct {
	Enabled bool          `yaml:"enabled"`
	Bucket  string        `yaml:"bucket" validate:"required_if=Enabled true"`
	Prefix  string        `yaml:"prefix"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
	AWS     AWSConfig     `yaml:"aws"`
}

// LedgerConfig enables the RDS batch ledger. The database password is an
// IAM auth token built at connect time.
type LedgerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Endpoint string        `yaml:"endpoint" validate:"required_if=Enabled true"` // e.g. ratecal.abc123xyz.us-west-2.rds.amazonaws.com
	Port     int           `yaml:"port" validate:"min=1,max=65535"`
	User     string        `yaml:"user" validate:"required_if=Enabled true"`
	Name     string        `yaml:"name" validate:"required_if=Enabled true"`
	SSLMode  string        `yaml:"sslmode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`
	AWS      AWSConfig     `yaml:"aws"`
}
