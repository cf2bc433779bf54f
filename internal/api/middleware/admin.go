package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/zoneheat/zoneheat/internal/auth"
)

// NewCapability derives the caller's curation capability from the admin
// token header and stores it in the request context. It never rejects a
// request; write operations check the capability themselves.
func NewCapability(v *auth.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			capability := v.Verify(req.Header.Get(AdminTokenHeader))
			c.SetRequest(req.WithContext(auth.WithCapability(req.Context(), capability)))
			return next(c)
		}
	}
}
