// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Clean     CleanConfig
	Jobs      JobsConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
	Translate TranslateConfig
	Retention RetentionConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 2m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 90s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// DatabaseConfig holds database connection settings. Run history is kept
// in memory when URL is empty.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
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

// CleanConfig holds defaults for the cleaning pipeline and file intake.
type CleanConfig struct {
	// KnownDomains overrides the built-in email domain list (comma-separated)
	KnownDomains []string `env:"CLEAN_KNOWN_DOMAINS"`

	// SimilarityThreshold is the minimum ratio for an email domain repair (default: 0.8)
	SimilarityThreshold float64 `env:"CLEAN_SIMILARITY_THRESHOLD" default:"0.8"`

	// Workers is the number of rule passes run concurrently (default: 1)
	Workers int `env:"CLEAN_WORKERS" default:"1"`

	// StopOnError aborts a run at the first failed pass (default: false)
	StopOnError bool `env:"CLEAN_STOP_ON_ERROR" default:"false"`

	// MaxFileSize is the maximum accepted input size in bytes (default: 100MB)
	MaxFileSize int64 `env:"CLEAN_MAX_FILE_SIZE" default:"104857600"`

	// Timeout is the maximum duration for a single cleaning job (default: 10m)
	Timeout time.Duration `env:"CLEAN_TIMEOUT" default:"10m"`
}

// JobsConfig bounds concurrent cleaning jobs.
type JobsConfig struct {
	// MaxConcurrent is the maximum number of parallel jobs (default: 4)
	MaxConcurrent int `env:"JOBS_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for a job slot (default: 30s)
	MaxWaitTime time.Duration `env:"JOBS_MAX_WAIT_TIME" default:"30s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// CleanLimit is requests per minute for the clean endpoint (default: 10)
	CleanLimit int `env:"RATE_LIMIT_CLEAN" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enables X-API-Key authentication on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum console log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// File enables a log file sink when set
	File string `env:"LOG_FILE"`

	// FileLevel is the minimum level written to File (default: debug)
	FileLevel string `env:"LOG_FILE_LEVEL" default:"debug"`
}

// TranslateConfig holds header translation service settings.
type TranslateConfig struct {
	// URL is the base URL of a LibreTranslate-compatible service
	URL string `env:"TRANSLATE_URL" default:"http://localhost:5000"`

	// APIKey is sent with each request when set
	APIKey string `env:"TRANSLATE_API_KEY"`

	// RequestsPerSecond throttles outbound calls (default: 5)
	RequestsPerSecond float64 `env:"TRANSLATE_REQUESTS_PER_SECOND" default:"5"`

	// Timeout is the per-request HTTP timeout (default: 15s)
	Timeout time.Duration `env:"TRANSLATE_TIMEOUT" default:"15s"`
}

// RetentionConfig holds run history pruning settings.
type RetentionConfig struct {
	// MaxAge is how long run records are kept (default: 720h)
	MaxAge time.Duration `env:"RETENTION_MAX_AGE" default:"720h"`

	// CheckInterval is how often pruning runs (default: 1h)
	CheckInterval time.Duration `env:"RETENTION_CHECK_INTERVAL" default:"1h"`

	// MemoryMaxRuns caps the in-memory store (default: 1000)
	MemoryMaxRuns int `env:"RETENTION_MEMORY_MAX_RUNS" default:"1000"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
