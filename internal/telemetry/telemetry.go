// Package telemetry wires categorized errors to Sentry. Reporting is opt-in;
// with it disabled nothing leaves the process.
package telemetry

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/zoneheat/zoneheat/internal/conf"
	"github.com/zoneheat/zoneheat/internal/errors"
	"github.com/zoneheat/zoneheat/internal/logger"
)

// allowedExtra lists the event extras kept by the privacy filter.
var allowedExtra = map[string]bool{
	"error_type": true,
	"component":  true,
}

// Option adjusts the Sentry client options before Init.
type Option func(*sentry.ClientOptions)

// WithTransport sends events through t instead of the network.
func WithTransport(t sentry.Transport) Option {
	return func(o *sentry.ClientOptions) { o.Transport = t }
}

// Init configures Sentry and registers it as the error reporter. The returned
// flush function must be called on shutdown; it is a no-op when disabled.
// release is reported verbatim, e.g. "zoneheat@1.2.0".
func Init(cfg *conf.SentrySettings, release string, log logger.Logger, opts ...Option) (flush func(time.Duration) bool, err error) {
	noop := func(time.Duration) bool { return true }
	if cfg == nil || !cfg.Enabled {
		errors.SetTelemetryReporter(errors.NewSentryReporter(false))
		return noop, nil
	}

	options := sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		SampleRate:       cfg.SampleRate,
		Release:          release,
		AttachStacktrace: false,
		ServerName:       "",
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	}
	for _, opt := range opts {
		opt(&options)
	}

	if err := sentry.Init(options); err != nil {
		return noop, errors.New(err).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Context("operation", "sentry_init").
			Build()
	}

	errors.SetPrivacyScrubber(logger.RedactSensitiveData)
	errors.SetTelemetryReporter(errors.NewSentryReporter(true))

	if log != nil {
		log.Info("error telemetry enabled",
			logger.String("environment", cfg.Environment),
			logger.Float64("sample_rate", cfg.SampleRate))
	}
	return sentry.Flush, nil
}

// applyPrivacyFilters strips host and user identifying data from an event.
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""
	event.Request = nil

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
	}
	for k := range event.Extra {
		if !allowedExtra[k] {
			delete(event.Extra, k)
		}
	}
	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}
	event.Message = logger.RedactSensitiveData(event.Message)
	return event
}
