package conf

import "github.com/spf13/viper"

// setDefaultConfig sets default values for every configuration key
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("webserver.port", "3000")
	v.SetDefault("webserver.debug", false)
	v.SetDefault("webserver.cors_origins", []string{"*"})
	v.SetDefault("webserver.request_timeout", "30s")
	v.SetDefault("webserver.shutdown_timeout", "10s")

	v.SetDefault("database.driver", "")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.path", "zoneheat.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.slow_query_threshold", "200ms")
	v.SetDefault("database.seed", true)
	v.SetDefault("database.strict_zones", false)

	v.SetDefault("classifier.api_key", "")
	v.SetDefault("classifier.endpoint", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("classifier.model", "text-bison-001")
	v.SetDefault("classifier.max_output_tokens", 64)
	v.SetDefault("classifier.timeout", "8s")
	v.SetDefault("classifier.breaker_failures", 5)
	v.SetDefault("classifier.breaker_cooldown", "30s")
	v.SetDefault("classifier.cache_ttl", "10m")
	v.SetDefault("classifier.default_zone", "zone3")

	v.SetDefault("admin.token_hash", "")

	v.SetDefault("logging.default_level", "info")
	v.SetDefault("logging.timezone", "Local")
	v.SetDefault("logging.console.enabled", true)
	v.SetDefault("logging.console.level", "info")
	v.SetDefault("logging.file_output.enabled", false)
	v.SetDefault("logging.file_output.path", "logs/zoneheat.log")
	v.SetDefault("logging.file_output.level", "info")

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")
	v.SetDefault("sentry.sample_rate", 1.0)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests_per_second", 2.0)
	v.SetDefault("ratelimit.burst", 5)
	v.SetDefault("ratelimit.expires_in", "3m")
}
