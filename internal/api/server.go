package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/zoneheat/zoneheat/internal/api/handlers"
	mw "github.com/zoneheat/zoneheat/internal/api/middleware"
	"github.com/zoneheat/zoneheat/internal/auth"
	"github.com/zoneheat/zoneheat/internal/errors"
	"github.com/zoneheat/zoneheat/internal/logger"
	"github.com/zoneheat/zoneheat/internal/observability"
)

// Server is the zoneheat HTTP server.
type Server struct {
	echo       *echo.Echo
	config     *Config
	controller *handlers.Controller
	metrics    *observability.Metrics
	health     handlers.HealthCheck
	log        logger.Logger
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithMetrics exposes m on /metrics and records request metrics.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) { s.metrics = m }
}

// WithHealthCheck sets the database probe behind /api/health.
func WithHealthCheck(h handlers.HealthCheck) ServerOption {
	return func(s *Server) { s.health = h }
}

// WithLogger sets the parent logger.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// New builds the server around svc.
func New(cfg *Config, svc handlers.Service, opts ...ServerOption) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{config: cfg, log: logger.Global().Module("api")}
	for _, opt := range opts {
		opt(s)
	}

	verifier, err := auth.NewTokenVerifier(cfg.AdminTokenHash)
	if err != nil {
		return nil, err
	}
	if verifier.Open() {
		s.log.Warn("admin token hash not configured, exhibit curation is open to every caller")
	}

	s.controller, err = handlers.New(svc,
		handlers.WithLogger(s.log),
		handlers.WithHealthCheck(s.health))
	if err != nil {
		return nil, err
	}

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Debug = cfg.Debug
	s.echo.Server.ReadTimeout = cfg.ReadTimeout
	s.echo.Server.WriteTimeout = cfg.WriteTimeout
	s.echo.Server.IdleTimeout = cfg.IdleTimeout

	s.setupMiddleware(verifier)
	s.setupRoutes()

	s.log.Info("HTTP server initialized",
		logger.String("address", cfg.Address()),
		logger.Bool("debug", cfg.Debug),
		logger.Bool("rate_limit", cfg.RateLimit.Enabled))
	return s, nil
}

// setupMiddleware configures the echo middleware stack. Order matters: the
// request id must exist before logging and error bodies read it.
func (s *Server) setupMiddleware(verifier *auth.TokenVerifier) {
	s.echo.Use(echomw.Recover())
	s.echo.Use(mw.NewRequestID())
	s.echo.Use(mw.NewRequestLogger(s.log.Module("http")))
	if s.metrics != nil {
		s.echo.Use(mw.NewMetrics(s.metrics.HTTP))
	}

	sec := mw.DefaultSecurityConfig()
	sec.AllowedOrigins = s.config.AllowedOrigins
	s.echo.Use(mw.NewCORS(sec))
	s.echo.Use(mw.NewSecureHeaders(sec))
	s.echo.Use(mw.NewBodyLimit(s.config.BodyLimit))
	s.echo.Use(echomw.ContextTimeout(s.config.RequestTimeout))
	s.echo.Use(mw.NewCapability(verifier))
}

func (s *Server) setupRoutes() {
	var classifyMW []echo.MiddlewareFunc
	if limiter := mw.NewRateLimiter(s.config.RateLimit, s.controller.Deny); limiter != nil {
		classifyMW = append(classifyMW, limiter)
	}
	s.controller.RegisterRoutes(s.echo, classifyMW...)

	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server", logger.String("address", s.config.Address()))
		if err := s.echo.Start(s.config.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return errors.New(err).
				Component("api").
				Category(errors.CategoryNetwork).
				Context("address", s.config.Address()).
				Build()
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutdown signal received, draining requests")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(ctx); err != nil {
		s.log.Error("error during server shutdown", logger.Error(err))
		return err
	}
	s.log.Info("server shutdown complete")
	return nil
}

// Echo returns the underlying echo instance.
func (s *Server) Echo() *echo.Echo { return s.echo }

// ServeHTTP lets tests drive the full stack without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
