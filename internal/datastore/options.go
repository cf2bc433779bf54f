package datastore

import (
	"strings"
	"time"

	"github.com/zoneheat/zoneheat/internal/errors"
	"github.com/zoneheat/zoneheat/internal/logger"
	"github.com/zoneheat/zoneheat/internal/observability/metrics"
	"github.com/zoneheat/zoneheat/internal/zone"
)

// Option configures a repository.
type Option func(*repoConfig)

type repoConfig struct {
	log      logger.Logger
	recorder metrics.Recorder
	strict   *zone.Registry
}

// WithLogger sets the logger; the repository scopes it to its own module.
func WithLogger(log logger.Logger) Option {
	return func(c *repoConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// WithRecorder reports operation counts, durations and errors.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *repoConfig) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithStrictZones rejects zone ids that are not in the registry. Without it any
// non-empty zone id is accepted and stored as-is.
func WithStrictZones(reg *zone.Registry) Option {
	return func(c *repoConfig) {
		c.strict = reg
	}
}

func newRepoConfig(module string, opts []Option) repoConfig {
	c := repoConfig{
		log:      logger.Global().Module(componentDatastore),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(&c)
	}
	c.log = c.log.Module(module)
	return c
}

// checkZone validates a zone id syntactically and, in strict mode, against the registry.
func (c *repoConfig) checkZone(zoneID string) error {
	if strings.TrimSpace(zoneID) == "" {
		return validationError("zone id is required", "zone_id", zoneID)
	}
	if c.strict != nil && !c.strict.Has(zoneID) {
		return validationError("unknown zone id "+zoneID, "zone_id", zoneID)
	}
	return nil
}

// observe records the outcome of one repository operation. Use with a named error result:
//
//	defer c.observe("list", time.Now(), &err)
func (c *repoConfig) observe(operation string, start time.Time, errp *error) {
	c.recorder.RecordDuration(operation, time.Since(start).Seconds())
	if errp != nil && *errp != nil {
		c.recorder.RecordOperation(operation, metrics.StatusError)
		c.recorder.RecordError(operation, string(errors.KindOf(*errp)))
		return
	}
	c.recorder.RecordOperation(operation, metrics.StatusSuccess)
}
