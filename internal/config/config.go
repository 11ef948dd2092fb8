// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Session  SessionConfig
	Display  DisplayConfig
	Report   ReportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080).
	// PORT is honoured for platforms that inject it.
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 60s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"60s"`

	// WriteTimeout is the maximum duration for writing response (default: 120s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"120s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 90s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// UploadConfig holds dataset upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum accepted file size in bytes (default: 200MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"209715200"`

	// MaxConcurrent is the maximum number of analyses running at once (default: 4)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for an analysis slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// SessionConfig holds browser session settings.
type SessionConfig struct {
	// CookieName is the session cookie name (default: rr_session)
	CookieName string `env:"SESSION_COOKIE_NAME" default:"rr_session"`

	// IdleTTL drops sessions without activity for this long (default: 2h)
	IdleTTL time.Duration `env:"SESSION_IDLE_TTL" default:"2h"`

	// SweepInterval is how often idle sessions are purged (default: 10m)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"10m"`

	// SecureCookie sets the Secure attribute on the cookie (default: false)
	SecureCookie bool `env:"SESSION_SECURE_COOKIE" default:"false"`
}

// DisplayConfig holds table viewer settings.
type DisplayConfig struct {
	// DefaultPageSize is the initial rows per page (default: 10)
	DefaultPageSize int `env:"DISPLAY_DEFAULT_PAGE_SIZE" default:"10"`

	// DefaultPage is the initial page number (default: 1)
	DefaultPage int `env:"DISPLAY_DEFAULT_PAGE" default:"1"`

	// FullViewMaxRows caps the rows rendered by the full view (default: 5000)
	FullViewMaxRows int `env:"DISPLAY_FULL_VIEW_MAX_ROWS" default:"5000"`
}

// ReportConfig holds report generation settings.
type ReportConfig struct {
	// SampleRows is the number of example rows in the report (default: 5)
	SampleRows int `env:"REPORT_SAMPLE_ROWS" default:"5"`

	// TopValues is the number of frequent values per categorical column (default: 5)
	TopValues int `env:"REPORT_TOP_VALUES" default:"5"`

	// MissingWarnRatio flags columns with at least this missing share (default: 0.5)
	MissingWarnRatio float64 `env:"REPORT_MISSING_WARN_RATIO" default:"0.5"`

	// Correlations enables the correlation matrix (default: true)
	Correlations bool `env:"REPORT_CORRELATIONS" default:"true"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// AnalyzeLimit is requests per minute for upload endpoints (default: 10)
	AnalyzeLimit int `env:"RATE_LIMIT_ANALYZE" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects /api routes with an API key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
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
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
