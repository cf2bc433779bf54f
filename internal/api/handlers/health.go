package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zoneheat/zoneheat/internal/logger"
)

// Root handles GET /.
func (c *Controller) Root(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Backend is running!")
}

// Health handles GET /api/health.
func (c *Controller) Health(ctx echo.Context) error {
	uptime := time.Since(c.startTime)
	body := map[string]any{
		"status":         "healthy",
		"database":       "ok",
		"uptime":         uptime.Round(time.Second).String(),
		"uptime_seconds": uptime.Seconds(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}
	if c.health != nil {
		if err := c.health(ctx.Request().Context()); err != nil {
			c.log.Warn("health check failed", logger.Error(err))
			body["status"] = "unhealthy"
			body["database"] = "unavailable"
			return ctx.JSON(http.StatusServiceUnavailable, body)
		}
	}
	return ctx.JSON(http.StatusOK, body)
}
