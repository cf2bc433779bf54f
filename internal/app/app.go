// Package app wires settings into a running zoneheat instance: logging,
// telemetry, the database, metrics, the classifier and the heatmap service.
// CLI commands build an App and use the parts they need.
package app

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/zoneheat/zoneheat/internal/api"
	"github.com/zoneheat/zoneheat/internal/classifier"
	"github.com/zoneheat/zoneheat/internal/conf"
	"github.com/zoneheat/zoneheat/internal/datastore"
	"github.com/zoneheat/zoneheat/internal/errors"
	"github.com/zoneheat/zoneheat/internal/heatmap"
	"github.com/zoneheat/zoneheat/internal/httpclient"
	"github.com/zoneheat/zoneheat/internal/logger"
	"github.com/zoneheat/zoneheat/internal/observability"
	"github.com/zoneheat/zoneheat/internal/runtime"
	"github.com/zoneheat/zoneheat/internal/telemetry"
	"github.com/zoneheat/zoneheat/internal/zone"
)

const telemetryFlushTimeout = 2 * time.Second

// App holds the wired components. Close releases them in reverse order.
type App struct {
	Runtime  *runtime.Context
	Settings *conf.Settings
	Registry *zone.Registry
	Log      logger.Logger
	Metrics  *observability.Metrics
	DB       *gorm.DB
	Resolver *classifier.Resolver
	Service  *heatmap.Service

	central  *logger.CentralLogger
	flush    func(time.Duration) bool
	outbound *httpclient.Client
	closed   bool
}

// Option adjusts how New wires the App.
type Option func(*options)

type options struct {
	log       logger.Logger
	transport http.RoundTripper
	skipDB    bool
}

// WithLogger uses log instead of building a CentralLogger from settings.
func WithLogger(log logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithTransport replaces the classifier's outbound transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithoutDatabase skips opening the store. Service stays nil; only the
// classifier is usable.
func WithoutDatabase() Option {
	return func(o *options) { o.skipDB = true }
}

// New wires an App from settings. The schema is migrated and, when enabled,
// occupancy rows are seeded for every registered zone.
func New(ctx context.Context, rt *runtime.Context, settings *conf.Settings, opts ...Option) (_ *App, err error) {
	if settings == nil {
		return nil, errors.InvariantError("app requires settings")
	}
	if rt == nil {
		rt = runtime.New("", "")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Runtime: rt, Settings: settings, Registry: zone.Default()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if o.log != nil {
		a.Log = o.log
	} else {
		a.central, err = logger.NewCentralLogger(&settings.Logging)
		if err != nil {
			return nil, errors.New(err).
				Component("app").
				Category(errors.CategoryConfiguration).
				Context("operation", "init_logger").
				Build()
		}
		logger.SetGlobal(a.central)
		a.Log = a.central.Module("app")
	}
	a.Log = a.Log.With(logger.String("instance_id", rt.InstanceID))

	a.flush, err = telemetry.Init(&settings.Sentry, rt.Release(), a.Log)
	if err != nil {
		return nil, err
	}

	a.Metrics, err = observability.NewMetrics()
	if err != nil {
		return nil, err
	}

	a.outbound = httpclient.New(&httpclient.Config{
		DefaultTimeout: settings.Classifier.Timeout,
		UserAgent:      rt.UserAgent(),
		Transport:      o.transport,
	})
	upstreamLog := a.Log.Module("upstream")
	a.outbound.SetAfterResponseHook(func(req *http.Request, resp *http.Response, elapsed time.Duration, err error) {
		fields := []logger.Field{
			logger.String("host", req.URL.Host),
			logger.Duration("elapsed", elapsed),
		}
		if resp != nil {
			fields = append(fields, logger.Int("status", resp.StatusCode))
		}
		if err != nil {
			fields = append(fields, logger.Error(err))
		}
		upstreamLog.Debug("classifier round trip", fields...)
	})

	a.Resolver, err = classifier.New(&settings.Classifier, a.Registry,
		classifier.WithHTTPClient(a.outbound),
		classifier.WithObserver(a.Metrics.Classifier),
		classifier.WithLogger(a.Log))
	if err != nil {
		return nil, err
	}

	if o.skipDB {
		return a, nil
	}

	a.DB, err = datastore.Open(&settings.Database, a.Log.Module("datastore"))
	if err != nil {
		return nil, err
	}
	if err = datastore.Migrate(ctx, a.DB); err != nil {
		return nil, err
	}

	repoOpts := []datastore.Option{
		datastore.WithLogger(a.Log),
		datastore.WithRecorder(a.Metrics.Datastore),
	}
	if settings.Database.StrictZones {
		repoOpts = append(repoOpts, datastore.WithStrictZones(a.Registry))
	}

	a.Service, err = heatmap.New(heatmap.Deps{
		Registry:   a.Registry,
		Occupancy:  datastore.NewOccupancyRepository(a.DB, repoOpts...),
		Ledger:     datastore.NewExhibitionLedger(a.DB, repoOpts...),
		Classifier: a.Resolver,
		Log:        a.Log,
	})
	if err != nil {
		return nil, err
	}

	if settings.Database.Seed {
		created, err := a.Service.Seed(ctx)
		if err != nil {
			return nil, err
		}
		if created > 0 {
			a.Log.Info("seeded occupancy rows", logger.Int("created", created))
		}
	}
	return a, nil
}

// Server builds the HTTP server over the App's service.
func (a *App) Server() (*api.Server, error) {
	if a.Service == nil {
		return nil, errors.InvariantError("server requires a database-backed app")
	}
	return api.New(api.ConfigFromSettings(a.Settings), a.Service,
		api.WithLogger(a.Log),
		api.WithMetrics(a.Metrics),
		api.WithHealthCheck(a.Ping))
}

// Ping checks the database connection.
func (a *App) Ping(ctx context.Context) error {
	if a.DB == nil {
		return errors.InvariantError("database not opened")
	}
	return datastore.Ping(ctx, a.DB)
}

// Preflight reports settings that are legal but worth attention at startup.
func (a *App) Preflight() *runtime.ValidationResult {
	return Preflight(a.Settings)
}

// Preflight reports settings that are legal but worth attention at startup.
func Preflight(s *conf.Settings) *runtime.ValidationResult {
	r := runtime.NewValidationResult()
	if s.Admin.TokenHash == "" {
		r.AddWarning("admin.token_hash is empty; every caller may curate exhibits")
	}
	if s.Classifier.APIKey == "" {
		r.AddWarning("classifier.api_key is empty; zone search uses keyword matching only")
	}
	if !s.RateLimit.Enabled {
		r.AddWarning("ratelimit is disabled; zone search is unthrottled")
	}
	if s.Sentry.Enabled && s.Sentry.DSN == "" {
		r.AddError("sentry.enabled requires sentry.dsn")
	}
	return r
}

// Close releases the database, flushes telemetry and closes log outputs.
// It is safe to call more than once.
func (a *App) Close() {
	if a.closed {
		return
	}
	a.closed = true

	if a.outbound != nil {
		a.outbound.Close()
	}
	if a.DB != nil {
		if err := datastore.Close(a.DB); err != nil && a.Log != nil {
			a.Log.Warn("error closing database", logger.Error(err))
		}
	}
	if a.flush != nil {
		a.flush(telemetryFlushTimeout)
	}
	if a.central != nil {
		_ = a.central.Close()
	}
}
