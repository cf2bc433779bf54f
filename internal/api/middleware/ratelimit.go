package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/zoneheat/zoneheat/internal/conf"
)

// DenyFunc writes the response for a throttled or unidentifiable request.
type DenyFunc func(c echo.Context, identifier string, err error) error

// NewRateLimiter throttles per client IP with a token bucket. It returns nil
// when limiting is disabled; callers skip nil middleware.
func NewRateLimiter(cfg conf.RateLimitSettings, deny DenyFunc) echo.MiddlewareFunc {
	if !cfg.Enabled || cfg.RequestsPerSecond <= 0 {
		return nil
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.RequestsPerSecond),
		Burst:     cfg.Burst,
		ExpiresIn: cfg.ExpiresIn,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return deny(c, "", err)
		},
		DenyHandler: deny,
	})
}
