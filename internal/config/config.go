// Package config loads portal configuration from environment variables.
// Defaults live in struct tags and everything is validated at startup.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Registry RegistryConfig
	Staging  StagingConfig
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
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"120s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including draining bulk confirms (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 90s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// DatabaseConfig holds staging database settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required).
	// DB_URL is accepted as a fallback.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// AutoMigrate applies pending migrations when the server starts (default: true)
	AutoMigrate bool `env:"DB_AUTO_MIGRATE" default:"true"`
}

// RegistryConfig holds main-registry settings.
type RegistryConfig struct {
	// DSN is the MySQL DSN of the main registry. When empty every
	// snapshot is empty and only staging duplicates are detected.
	DSN string `env:"REGISTRY_DSN"`

	// Table is the registry table to read (default: ts_entity_company_profile)
	Table string `env:"REGISTRY_TABLE" default:"ts_entity_company_profile"`

	// Timeout bounds one full registry read (default: 30s)
	Timeout time.Duration `env:"REGISTRY_TIMEOUT" default:"30s"`

	// SnapshotTTL is how long a session keeps its snapshot before refetching (default: 30m)
	SnapshotTTL time.Duration `env:"SNAPSHOT_TTL" default:"30m"`
}

// StagingConfig holds duplicate-handling policy.
type StagingConfig struct {
	// RejectDuplicates reports staging duplicates without storing them (default: false)
	RejectDuplicates bool `env:"STAGING_REJECT_DUPLICATES" default:"false"`
}

// UploadConfig holds bulk upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum accepted upload in bytes (default: 10MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrent is the number of bulk confirms allowed at once (default: 4)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a confirm waits for a slot (default: 15s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"15s"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds authentication and proxy settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// BcryptCost is the cost used for new password hashes (default: 10)
	BcryptCost int `env:"BCRYPT_COST" default:"10"`

	// BootstrapAdmin and BootstrapPassword create an admin account on
	// startup when it does not exist yet. Both or neither must be set.
	BootstrapAdmin    string `env:"BOOTSTRAP_ADMIN_USER"`
	BootstrapPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
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
