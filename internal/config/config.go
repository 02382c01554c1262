// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Dataset  DatasetConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Upload   UploadConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 2m, exports can be large)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatasetConfig locates the supplier dataset.
type DatasetConfig struct {
	// Source is a file path (.xlsx, .csv, .db) or a postgres:// URL (default: excel.xlsx)
	Source string `env:"DATASET_SOURCE" default:"excel.xlsx"`

	// Sheet is the workbook sheet to read (default: first sheet)
	Sheet string `env:"DATASET_SHEET"`

	// Table is the database table to read (default: suppliers)
	Table string `env:"DATASET_TABLE" default:"suppliers"`

	// Watch invalidates the cached dataset when the source file changes (default: true)
	Watch bool `env:"DATASET_WATCH" default:"true"`

	// DisplayLimit caps the rows rendered on the dashboard (default: 2000)
	DisplayLimit int `env:"DATASET_DISPLAY_LIMIT" default:"2000"`

	// LoadTimeout bounds a single dataset load (default: 2m)
	LoadTimeout time.Duration `env:"DATASET_LOAD_TIMEOUT" default:"2m"`

	// CloseGrace keeps a source replaced by an upload open for in-flight reads (default: 30s)
	CloseGrace time.Duration `env:"DATASET_CLOSE_GRACE" default:"30s"`
}

// DatabaseConfig holds connection pool settings for postgres sources.
type DatabaseConfig struct {
	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// CacheConfig holds dataset cache settings.
type CacheConfig struct {
	// TTL is how long a loaded dataset is reused (default: 1h)
	TTL time.Duration `env:"CACHE_TTL" default:"1h"`

	// MaxEntries bounds the dataset versions kept in memory (default: 8)
	MaxEntries int `env:"CACHE_MAX_ENTRIES" default:"8"`

	// WarmSchedule is a cron expression for background reloads (default: off)
	WarmSchedule string `env:"CACHE_WARM_SCHEDULE"`
}

// UploadConfig holds dataset upload settings.
type UploadConfig struct {
	// Dir is where uploaded dataset files are stored (default: uploads)
	Dir string `env:"UPLOAD_DIR" default:"uploads"`

	// MaxFileSize is the maximum allowed file size in bytes (default: 100MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"104857600"`

	// MaxConcurrent is the maximum number of parallel uploads (default: 2)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"2"`

	// MaxWaitTime is how long to wait for an upload slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for upload and reload endpoints (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// RequireAPIKey gates /api routes behind X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`

	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
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
	return c.Host + ":" + strconv.Itoa(c.Port)
}
