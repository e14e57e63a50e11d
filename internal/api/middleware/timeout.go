package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SelectiveTimeoutConfig applies a short timeout to most endpoints and a
// longer one to the generation endpoints, which spend minutes in model
// calls. Streaming responses are exempt; they manage their own deadline.
func SelectiveTimeoutConfig(defaultTimeout, generationTimeout time.Duration) echo.MiddlewareFunc {
	short := middleware.TimeoutWithConfig(middleware.TimeoutConfig{Timeout: defaultTimeout})
	long := middleware.TimeoutWithConfig(middleware.TimeoutConfig{Timeout: generationTimeout})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		shortNext := short(next)
		longNext := long(next)
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if strings.HasSuffix(path, "/generate/stream") {
				return next(c)
			}
			if strings.HasSuffix(path, "/generate") || strings.HasSuffix(path, "/feedback") {
				return longNext(c)
			}
			return shortNext(c)
		}
	}
}
