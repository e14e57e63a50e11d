package utils

import (
	"fmt"
	"net/http"
)

// CustomError is an application error that knows its HTTP status. Handlers
// return these and the central error handler renders them.
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// NewBadRequestError returns a 400 error with the given message
func NewBadRequestError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// NewInternalServerError returns a 500 error with the given message
func NewInternalServerError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Message: message,
	}
}

// NewUnavailableError returns a 503 error with the given message
func NewUnavailableError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusServiceUnavailable,
		Message: message,
	}
}
