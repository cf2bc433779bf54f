package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// AdminTokenHeader carries the curator token.
const AdminTokenHeader = "X-Admin-Token"

// oneYear is the HSTS max-age used when none is configured.
const oneYear = 365 * 24 * 60 * 60

// SecurityConfig controls CORS origins and the HSTS max-age.
type SecurityConfig struct {
	AllowedOrigins []string
	HSTSMaxAge     int
}

func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{AllowedOrigins: []string{"*"}, HSTSMaxAge: oneYear}
}

var (
	corsMethods = []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodDelete, http.MethodOptions}
	corsHeaders = []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID, AdminTokenHeader}
)

// NewCORS never allows credentials: curation authenticates with a header, not cookies.
func NewCORS(config SecurityConfig) echo.MiddlewareFunc {
	cfg := middleware.CORSConfig{
		AllowOrigins:  config.AllowedOrigins,
		AllowMethods:  corsMethods,
		AllowHeaders:  corsHeaders,
		ExposeHeaders: []string{echo.HeaderXRequestID},
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"*"}
	}
	return middleware.CORSWithConfig(cfg)
}

func NewSecureHeaders(config SecurityConfig) echo.MiddlewareFunc {
	maxAge := config.HSTSMaxAge
	if maxAge == 0 {
		maxAge = oneYear
	}
	return middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		HSTSMaxAge:         maxAge,
	})
}

// NewBodyLimit rejects bodies above limit ("1M", "16B") with 413.
func NewBodyLimit(limit string) echo.MiddlewareFunc {
	return middleware.BodyLimit(limit)
}
