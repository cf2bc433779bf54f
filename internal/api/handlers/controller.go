// Package handlers implements the JSON endpoints of the zoneheat API.
// Handlers bind requests, call the heatmap service, and encode results;
// error categories decide the status code.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/zoneheat/zoneheat/internal/auth"
	"github.com/zoneheat/zoneheat/internal/classifier"
	"github.com/zoneheat/zoneheat/internal/datastore"
	"github.com/zoneheat/zoneheat/internal/errors"
	"github.com/zoneheat/zoneheat/internal/logger"
	"github.com/zoneheat/zoneheat/internal/zone"
)

// Service is the application boundary the handlers drive.
type Service interface {
	GetOccupancy(ctx context.Context) ([]zone.Occupancy, error)
	Snapshot(ctx context.Context) (zone.Snapshot, error)
	SetOccupancy(ctx context.Context, zoneID string, visitors int) error
	GetExhibits(ctx context.Context, zoneID string) ([]datastore.Exhibit, error)
	ReplaceExhibits(ctx context.Context, c auth.Capability, zoneID string, names []string) ([]datastore.Exhibit, error)
	AddExhibit(ctx context.Context, c auth.Capability, zoneID, name string) (*datastore.Exhibit, error)
	RemoveExhibit(ctx context.Context, c auth.Capability, zoneID string, id uint) error
	ClassifyInterest(ctx context.Context, query string) (classifier.Result, error)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Controller owns the API routes.
type Controller struct {
	svc       Service
	health    HealthCheck
	log       logger.Logger
	startTime time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithHealthCheck sets the database probe used by /api/health.
func WithHealthCheck(h HealthCheck) Option {
	return func(c *Controller) { c.health = h }
}

// WithLogger sets the parent logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Controller for svc.
func New(svc Service, opts ...Option) (*Controller, error) {
	if svc == nil {
		return nil, errors.InvariantError("api controller requires a service")
	}
	c := &Controller{
		svc:       svc,
		log:       logger.Global().Module("api"),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Module("handlers")
	return c, nil
}

// RegisterRoutes mounts every endpoint on e. classifyMW wraps only the
// search endpoint, which is the one that may call out to a paid service.
func (c *Controller) RegisterRoutes(e *echo.Echo, classifyMW ...echo.MiddlewareFunc) {
	e.GET("/", c.Root)

	g := e.Group("/api")
	g.GET("/health", c.Health)

	g.GET("/zones", c.ListOccupancy)
	g.GET("/zones/load", c.LoadSnapshot)
	g.POST("/zones/:zoneId", c.UpdateOccupancy)

	g.GET("/zone-info/:zoneName", c.GetZoneInfo)
	g.POST("/zone-info/:zoneName", c.ReplaceZoneInfo)
	g.POST("/zone-info/:zoneName/exhibit", c.AddExhibit)
	g.DELETE("/zone-info/:zoneName/exhibit/:id", c.DeleteExhibit)

	g.POST("/search-zone", c.SearchZone, classifyMW...)
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// StatusFor maps an error category to an HTTP status.
func StatusFor(err error) int {
	switch errors.KindOf(err) {
	case errors.CategoryValidation:
		return http.StatusBadRequest
	case errors.CategoryForbidden:
		return http.StatusForbidden
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryDatabase, errors.CategoryTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes an ErrorResponse for err. Server-side failures expose
// only message; the cause goes to the log under the correlation id.
func (c *Controller) HandleError(ctx echo.Context, err error, message string) error {
	code := StatusFor(err)
	resp := ErrorResponse{
		Error:         message,
		Message:       message,
		Code:          code,
		CorrelationID: correlationID(ctx),
	}
	if code < http.StatusInternalServerError && err != nil {
		resp.Error = err.Error()
	}

	log := c.log.WithContext(ctx.Request().Context())
	fields := []logger.Field{
		logger.String("correlation_id", resp.CorrelationID),
		logger.String("path", ctx.Path()),
		logger.Int("status", code),
		logger.String("ip", ctx.RealIP()),
		logger.Error(err),
	}
	if code >= http.StatusInternalServerError {
		log.Error(message, fields...)
	} else {
		log.Debug(message, fields...)
	}
	return ctx.JSON(code, resp)
}

// Deny answers requests rejected by the rate limiter.
func (c *Controller) Deny(ctx echo.Context, _ string, _ error) error {
	return ctx.JSON(http.StatusTooManyRequests, ErrorResponse{
		Error:         "rate limit exceeded",
		Message:       "Too many requests, slow down",
		Code:          http.StatusTooManyRequests,
		CorrelationID: correlationID(ctx),
	})
}

// correlationID reuses the request id so error bodies match log lines.
func correlationID(ctx echo.Context) string {
	if id := ctx.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return uuid.NewString()
}

func badRequest(msg string) error {
	return errors.New(errors.NewStd(msg)).
		Component("api").
		Category(errors.CategoryValidation).
		Build()
}
