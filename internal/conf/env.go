package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVars   []string           // Environment variable names, highest precedence first
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation.
// The unprefixed names are kept for deployments that predate the ZONEHEAT_ prefix.
func getEnvBindings() []envBinding {
	return []envBinding{
		{"webserver.port", []string{"ZONEHEAT_PORT", "PORT"}, validateEnvPort},
		{"webserver.debug", []string{"ZONEHEAT_DEBUG"}, validateEnvBool},

		{"database.driver", []string{"ZONEHEAT_DB_DRIVER"}, validateEnvDriver},
		{"database.dsn", []string{"ZONEHEAT_DB_DSN", "DATABASE_URL"}, nil},
		{"database.path", []string{"ZONEHEAT_DB_PATH"}, nil},
		{"database.strict_zones", []string{"ZONEHEAT_STRICT_ZONES"}, validateEnvBool},

		{"classifier.api_key", []string{"ZONEHEAT_CLASSIFIER_API_KEY", "GEMINI_API_KEY"}, nil},
		{"classifier.endpoint", []string{"ZONEHEAT_CLASSIFIER_ENDPOINT"}, nil},
		{"classifier.model", []string{"ZONEHEAT_CLASSIFIER_MODEL"}, nil},

		{"admin.token_hash", []string{"ZONEHEAT_ADMIN_TOKEN_HASH"}, nil},

		{"logging.default_level", []string{"ZONEHEAT_LOG_LEVEL"}, validateEnvLogLevel},

		{"sentry.enabled", []string{"ZONEHEAT_SENTRY_ENABLED"}, validateEnvBool},
		{"sentry.dsn", []string{"ZONEHEAT_SENTRY_DSN", "SENTRY_DSN"}, nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars(v *viper.Viper) error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		args := append([]string{binding.ConfigKey}, binding.EnvVars...)
		if err := v.BindEnv(args...); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.ConfigKey, err))
			continue
		}

		if binding.Validate == nil {
			continue
		}
		for _, envVar := range binding.EnvVars {
			if envValue := os.Getenv(envVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", envVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be true or false")
	}
	return nil
}

func validateEnvPort(value string) error {
	return validatePort(value)
}

func validateEnvDriver(value string) error {
	switch strings.ToLower(value) {
	case DriverSQLite, DriverMySQL, DriverPostgres:
		return nil
	default:
		return fmt.Errorf("must be one of sqlite, mysql, postgres")
	}
}

func validateEnvLogLevel(value string) error {
	if !isValidLogLevel(value) {
		return fmt.Errorf("must be one of trace, debug, info, warn, error")
	}
	return nil
}
