// Package api assembles the zoneheat HTTP server: echo, the middleware stack,
// and the routes from the handlers subpackage.
package api

import (
	"time"

	"github.com/labstack/gommon/bytes"

	"github.com/zoneheat/zoneheat/internal/conf"
	"github.com/zoneheat/zoneheat/internal/errors"
)

// Default constants for the HTTP server.
const (
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultRequestTimeout  = 20 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultBodyLimit       = "1M"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host string
	Port string

	AllowedOrigins []string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration // per-request context deadline
	ShutdownTimeout time.Duration

	BodyLimit string
	Debug     bool

	RateLimit      conf.RateLimitSettings
	AdminTokenHash string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:            "3000",
		AllowedOrigins:  []string{"*"},
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		RequestTimeout:  DefaultRequestTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		BodyLimit:       DefaultBodyLimit,
	}
}

// ConfigFromSettings bridges conf.Settings to the server config.
func ConfigFromSettings(settings *conf.Settings) *Config {
	cfg := DefaultConfig()
	ws := settings.WebServer
	if ws.Port != "" {
		cfg.Port = ws.Port
	}
	if len(ws.CORSOrigins) > 0 {
		cfg.AllowedOrigins = ws.CORSOrigins
	}
	if ws.RequestTimeout > 0 {
		cfg.RequestTimeout = ws.RequestTimeout
	}
	if ws.ShutdownTimeout > 0 {
		cfg.ShutdownTimeout = ws.ShutdownTimeout
	}
	cfg.Debug = ws.Debug
	cfg.RateLimit = settings.RateLimit
	cfg.AdminTokenHash = settings.Admin.TokenHash
	return cfg
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.ValidationError("port is required"))
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		errs = append(errs, errors.ValidationError("read and write timeouts must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.ValidationError("request timeout must be positive"))
	}
	// echo's BodyLimit panics on a limit it cannot parse.
	if n, err := bytes.Parse(c.BodyLimit); err != nil || n <= 0 {
		errs = append(errs, errors.ValidationError("body limit must be a positive size such as 1M"))
	}
	return errors.Join(errs...)
}

// Address returns the listen address.
func (c *Config) Address() string {
	return c.Host + ":" + c.Port
}
