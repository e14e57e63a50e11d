package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"letterchain/internal/api/middleware"
	"letterchain/internal/logging"
	"letterchain/pkg/models"
	"letterchain/pkg/utils"
)

// ErrorHandler renders every error that escapes a handler as a uniform
// ErrorResponse. CustomError carries its own status; echo's HTTPError keeps
// its code; everything else is a 500 with the detail kept out of the body.
func ErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		requestID := middleware.RequestID(c)
		code := http.StatusInternalServerError
		label := "internal_error"
		message := "An unexpected error occurred"

		var custom *utils.CustomError
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &custom):
			code = custom.Code
			label = "request_failed"
			message = custom.Error()
		case errors.As(err, &httpErr):
			code = httpErr.Code
			label = http.StatusText(code)
			if msg, ok := httpErr.Message.(string); ok {
				message = msg
			} else {
				message = http.StatusText(code)
			}
		default:
			logging.GetGlobalLogger().Error("Unhandled request error", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
		}

		_ = c.JSON(code, models.ErrorResponse{
			Error:     label,
			Message:   message,
			RequestID: requestID,
			Timestamp: time.Now(),
		})
	}
}
