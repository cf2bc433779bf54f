// Package conf loads zoneheat settings from config.yaml, environment variables and defaults.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/zoneheat/zoneheat/internal/errors"
	"github.com/zoneheat/zoneheat/internal/logger"
	"github.com/zoneheat/zoneheat/internal/secrets"
)

const (
	appName        = "zoneheat"
	configFileName = "config"
	configFileType = "yaml"

	dirPermissions  = 0o755
	filePermissions = 0o600
)

// Database drivers accepted by datastore.Open
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Settings contains all configuration options for the zoneheat service.
type Settings struct {
	WebServer  WebServerSettings    `mapstructure:"webserver" yaml:"webserver"`
	Database   DatabaseSettings     `mapstructure:"database" yaml:"database"`
	Classifier ClassifierSettings   `mapstructure:"classifier" yaml:"classifier"`
	Admin      AdminSettings        `mapstructure:"admin" yaml:"admin"`
	Logging    logger.LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Sentry     SentrySettings       `mapstructure:"sentry" yaml:"sentry"`
	RateLimit  RateLimitSettings    `mapstructure:"ratelimit" yaml:"ratelimit"`
}

// WebServerSettings configures the HTTP listener.
type WebServerSettings struct {
	Port            string        `mapstructure:"port" yaml:"port"`
	Debug           bool          `mapstructure:"debug" yaml:"debug"`
	CORSOrigins     []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// DatabaseSettings selects and tunes the transactional store.
type DatabaseSettings struct {
	Driver             string        `mapstructure:"driver" yaml:"driver"` // sqlite, mysql or postgres
	DSN                string        `mapstructure:"dsn" yaml:"dsn"`       // mysql/postgres connection string
	DSNFile            string        `mapstructure:"dsn_file" yaml:"dsn_file"`
	Path               string        `mapstructure:"path" yaml:"path"` // sqlite database file
	MaxOpenConns       int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns       int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	SlowQueryThreshold time.Duration `mapstructure:"slow_query_threshold" yaml:"slow_query_threshold"`
	Seed               bool          `mapstructure:"seed" yaml:"seed"`                 // insert zero occupancy rows on startup
	StrictZones        bool          `mapstructure:"strict_zones" yaml:"strict_zones"` // reject zone ids missing from the registry
}

// ClassifierSettings configures the remote zone classifier and its fallbacks.
type ClassifierSettings struct {
	APIKey          string        `mapstructure:"api_key" yaml:"api_key"`
	APIKeyFile      string        `mapstructure:"api_key_file" yaml:"api_key_file"`
	Endpoint        string        `mapstructure:"endpoint" yaml:"endpoint"`
	Model           string        `mapstructure:"model" yaml:"model"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	BreakerFailures uint32        `mapstructure:"breaker_failures" yaml:"breaker_failures"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown" yaml:"breaker_cooldown"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	DefaultZone     string        `mapstructure:"default_zone" yaml:"default_zone"`
}

// AdminSettings holds the bcrypt hash of the curator token.
// An empty hash leaves curation open to every caller.
type AdminSettings struct {
	TokenHash     string `mapstructure:"token_hash" yaml:"token_hash"`
	TokenHashFile string `mapstructure:"token_hash_file" yaml:"token_hash_file"`
}

// SentrySettings enables error telemetry.
type SentrySettings struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled"`
	DSN         string  `mapstructure:"dsn" yaml:"dsn"`
	DSNFile     string  `mapstructure:"dsn_file" yaml:"dsn_file"`
	Environment string  `mapstructure:"environment" yaml:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
}

// RateLimitSettings throttles the classify endpoint per client IP.
type RateLimitSettings struct {
	Enabled           bool          `mapstructure:"enabled" yaml:"enabled"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int           `mapstructure:"burst" yaml:"burst"`
	ExpiresIn         time.Duration `mapstructure:"expires_in" yaml:"expires_in"`
}

// Load reads settings. An explicit configFile must exist; otherwise the default
// search paths are tried and a default config.yaml is created in the first one
// when none is found.
func Load(configFile string) (*Settings, error) {
	v := viper.New()
	if err := initViper(v, configFile); err != nil {
		return nil, err
	}

	if err := bindEnvVars(v); err != nil {
		logger.Global().Module("conf").Warn("environment variable issues", logger.Error(err))
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config into struct: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := resolveSecrets(settings); err != nil {
		return nil, err
	}
	prepareSettings(settings)

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// initViper wires defaults, search paths and the config file into v.
func initViper(v *viper.Viper, configFile string) error {
	setDefaultConfig(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return configError(err, "read_config", configFile)
		}
		return nil
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return err
	}
	for _, path := range configPaths {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return createDefaultConfig(v, configPaths[0])
		}
		return configError(err, "read_config", "")
	}

	return nil
}

// createDefaultConfig writes the current defaults to dir/config.yaml.
func createDefaultConfig(v *viper.Viper, dir string) error {
	configPath := filepath.Join(dir, configFileName+"."+configFileType)

	data, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return configError(err, "marshal_default_config", configPath)
	}

	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return configError(err, "create_config_dir", dir)
	}
	if err := os.WriteFile(configPath, data, filePermissions); err != nil {
		return configError(err, "write_default_config", configPath)
	}

	logger.Global().Module("conf").Info("created default config file", logger.String("path", configPath))
	return nil
}

// GetDefaultConfigPaths returns the directories searched for config.yaml, in priority order.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "get_home_directory").
			Build()
	}

	return []string{
		filepath.Join(homeDir, ".config", appName),
		filepath.Join("/etc", appName),
		".",
	}, nil
}

// resolveSecrets fills credential settings from *_file paths and expands
// ${VAR} references in their inline values.
func resolveSecrets(s *Settings) error {
	fields := []struct {
		name  string
		file  string
		value *string
	}{
		{"database.dsn", s.Database.DSNFile, &s.Database.DSN},
		{"classifier.api_key", s.Classifier.APIKeyFile, &s.Classifier.APIKey},
		{"admin.token_hash", s.Admin.TokenHashFile, &s.Admin.TokenHash},
		{"sentry.dsn", s.Sentry.DSNFile, &s.Sentry.DSN},
	}
	for _, f := range fields {
		v, err := secrets.Resolve(f.file, *f.value)
		if err != nil {
			return errors.New(err).
				Component("conf").
				Category(errors.CategoryConfiguration).
				Context("setting", f.name).
				Build()
		}
		*f.value = v
	}
	return nil
}

// prepareSettings normalizes values that viper cannot derive on its own.
func prepareSettings(s *Settings) {
	s.Database.Driver = strings.ToLower(strings.TrimSpace(s.Database.Driver))
	if s.Database.Driver == "" {
		s.Database.Driver = inferDriver(s.Database.DSN)
	}
	s.Classifier.Endpoint = strings.TrimRight(s.Classifier.Endpoint, "/")
	s.Classifier.APIKey = strings.TrimSpace(s.Classifier.APIKey)
}

// inferDriver picks postgres for postgres URLs (the historic DATABASE_URL form)
// and sqlite otherwise.
func inferDriver(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DriverPostgres
	case dsn != "" && strings.Contains(dsn, "@tcp("):
		return DriverMySQL
	default:
		return DriverSQLite
	}
}

func configError(err error, operation, path string) error {
	return errors.New(err).
		Component("conf").
		Category(errors.CategoryConfiguration).
		Context("operation", operation).
		Context("path", path).
		Build()
}
