package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// NewCORSMiddleware builds the CORS policy for the configured frontend
// origins. The session cookie travels cross-site, so responses carry
// Access-Control-Allow-Credentials and each origin must be listed
// explicitly. Wildcard origins are incompatible with credentialed
// requests and are never used here.
func NewCORSMiddleware(allowedOrigins []string) echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{
			echo.GET,
			echo.POST,
			echo.OPTIONS,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
		},
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	})
}
