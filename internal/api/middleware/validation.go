package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"letterchain/pkg/models"
	"letterchain/pkg/utils"
)

// RequestValidation assigns each request an ID and bounds POST body sizes.
// maxBody should leave headroom above the upload limit for multipart
// framing overhead.
func RequestValidation(maxBody int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := utils.GenerateRequestID()
			c.Set("request_id", requestID)
			c.Response().Header().Set("X-Request-ID", requestID)

			if c.Request().Method == http.MethodPost {
				if contentLength := c.Request().ContentLength; contentLength > maxBody {
					return c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
						Error:     "request_too_large",
						Message:   "Request body too large",
						RequestID: requestID,
						Timestamp: time.Now(),
					})
				}
			}

			return next(c)
		}
	}
}

// RequestID returns the request ID assigned by RequestValidation, minting
// one if the middleware did not run
func RequestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok && id != "" {
		return id
	}
	return utils.GenerateRequestID()
}
