// Package config provides centralized configuration management for the
// service. It loads configuration from environment variables with sensible
// defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Engine   EngineConfig
	Upload   UploadConfig
	Rate     RateLimitConfig
	Cleanup  CleanupConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8000)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8000"`

	// ReadTimeout is the maximum duration for reading a request (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 120s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"120s"`
}

// DatabaseConfig holds the optional audit database settings. With no URL the
// service runs with log-only auditing.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (optional)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// StorageConfig holds the on-disk directory layout.
type StorageConfig struct {
	// UploadsDir is where uploaded input files are stored (default: uploads)
	UploadsDir string `env:"UPLOADS_DIR" default:"uploads"`

	// SamplesDir is where generated sample files are stored (default: samples)
	SamplesDir string `env:"SAMPLES_DIR" default:"samples"`
}

// EngineConfig holds the anonymization engine settings.
type EngineConfig struct {
	// Salt is the hashing salt. Empty means generate a fresh one at startup,
	// which makes hashes non-reproducible across restarts.
	Salt string `env:"ANONYMIZER_SALT"`

	// DefaultK is the k-anonymity threshold used when a column config gives
	// none (default: 5)
	DefaultK int `env:"DEFAULT_K_ANONYMITY" default:"5"`

	// DefaultEpsilon is the differential privacy epsilon used when a column
	// config gives none (default: 1.0)
	DefaultEpsilon float64 `env:"DEFAULT_EPSILON" default:"1.0"`
}

// UploadConfig holds upload processing settings.
type UploadConfig struct {
	// MaxFileSizeMB is the maximum allowed upload size in megabytes (default: 100)
	MaxFileSizeMB int64 `env:"UPLOAD_MAX_FILE_SIZE_MB" default:"100"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for upload endpoints (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// CleanupConfig holds the stale-upload cleanup settings.
type CleanupConfig struct {
	// Interval is how often the cleanup job runs (default: 1h)
	Interval time.Duration `env:"CLEANUP_INTERVAL" default:"1h"`

	// Retention is how long uploads are kept before removal (default: 24h)
	Retention time.Duration `env:"CLEANUP_RETENTION" default:"24h"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + strconv.Itoa(c.Port)
	}
	return c.Host + ":" + strconv.Itoa(c.Port)
}
