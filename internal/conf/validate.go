package conf

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

var (
	zoneIDPattern     = regexp.MustCompile(`^zone[0-9]+$`)
	bcryptHashPattern = regexp.MustCompile(`^\$2[aby]\$[0-9]{2}\$[./A-Za-z0-9]{53}$`)
)

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	validators := []func(*Settings) []string{
		func(s *Settings) []string { return validateWebServerSettings(&s.WebServer) },
		func(s *Settings) []string { return validateDatabaseSettings(&s.Database) },
		func(s *Settings) []string { return validateClassifierSettings(&s.Classifier) },
		func(s *Settings) []string { return validateAdminSettings(&s.Admin) },
		func(s *Settings) []string { return validateSentrySettings(&s.Sentry) },
		func(s *Settings) []string { return validateRateLimitSettings(&s.RateLimit) },
		func(s *Settings) []string { return validateLoggingLevels(s) },
	}
	for _, validate := range validators {
		ve.Errors = append(ve.Errors, validate(settings)...)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateWebServerSettings(s *WebServerSettings) []string {
	var errs []string
	if err := validatePort(s.Port); err != nil {
		errs = append(errs, fmt.Sprintf("webserver.port: %v", err))
	}
	if s.RequestTimeout <= 0 {
		errs = append(errs, "webserver.request_timeout must be positive")
	}
	return errs
}

func validateDatabaseSettings(s *DatabaseSettings) []string {
	var errs []string
	switch s.Driver {
	case DriverSQLite:
		if s.Path == "" {
			errs = append(errs, "database.path is required for the sqlite driver")
		}
	case DriverMySQL, DriverPostgres:
		if s.DSN == "" {
			errs = append(errs, fmt.Sprintf("database.dsn is required for the %s driver", s.Driver))
		}
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported", s.Driver))
	}
	if s.MaxOpenConns < 0 || s.MaxIdleConns < 0 {
		errs = append(errs, "database connection pool sizes must not be negative")
	}
	return errs
}

func validateClassifierSettings(s *ClassifierSettings) []string {
	var errs []string
	if u, err := url.Parse(s.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("classifier.endpoint %q is not an absolute URL", s.Endpoint))
	}
	if s.Model == "" {
		errs = append(errs, "classifier.model is required")
	}
	if s.MaxOutputTokens <= 0 {
		errs = append(errs, "classifier.max_output_tokens must be positive")
	}
	if s.Timeout <= 0 {
		errs = append(errs, "classifier.timeout must be positive")
	}
	if s.BreakerFailures == 0 {
		errs = append(errs, "classifier.breaker_failures must be at least 1")
	}
	if !zoneIDPattern.MatchString(s.DefaultZone) {
		errs = append(errs, fmt.Sprintf("classifier.default_zone %q is not a zone id", s.DefaultZone))
	}
	return errs
}

func validateAdminSettings(s *AdminSettings) []string {
	if s.TokenHash != "" && !bcryptHashPattern.MatchString(s.TokenHash) {
		return []string{"admin.token_hash must be a bcrypt hash"}
	}
	return nil
}

func validateSentrySettings(s *SentrySettings) []string {
	var errs []string
	if s.Enabled && s.DSN == "" {
		errs = append(errs, "sentry.dsn is required when sentry is enabled")
	}
	if s.SampleRate < 0 || s.SampleRate > 1 {
		errs = append(errs, "sentry.sample_rate must be between 0 and 1")
	}
	return errs
}

func validateRateLimitSettings(s *RateLimitSettings) []string {
	if !s.Enabled {
		return nil
	}
	var errs []string
	if s.RequestsPerSecond <= 0 {
		errs = append(errs, "ratelimit.requests_per_second must be positive")
	}
	if s.Burst < 1 {
		errs = append(errs, "ratelimit.burst must be at least 1")
	}
	return errs
}

func validateLoggingLevels(s *Settings) []string {
	var errs []string
	if s.Logging.DefaultLevel != "" && !isValidLogLevel(s.Logging.DefaultLevel) {
		errs = append(errs, fmt.Sprintf("logging.default_level %q is not a log level", s.Logging.DefaultLevel))
	}
	for module, level := range s.Logging.ModuleLevels {
		if !isValidLogLevel(level) {
			errs = append(errs, fmt.Sprintf("logging.module_levels.%s %q is not a log level", module, level))
		}
	}
	return errs
}

func validatePort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%q is not a number", value)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("%d is out of range", port)
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "trace", "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}
