package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/anthropics/anthropic-sdk-go"
)

// ErrExhaustedRetries is returned once every retry attempt has failed with a
// retryable error
var ErrExhaustedRetries = errors.New("llm: retries exhausted")

// ErrNoStructuredOutput is returned when a response contains no JSON payload
var ErrNoStructuredOutput = errors.New("llm: no structured output in response")

// NonRetryableError wraps a backend failure outside the retryable set.
// It propagates immediately without consuming further attempts.
type NonRetryableError struct {
	Err error
}

func (e *NonRetryableError) Error() string {
	return fmt.Sprintf("llm: non-retryable backend error: %v", e.Err)
}

func (e *NonRetryableError) Unwrap() error {
	return e.Err
}

// MalformedOutputError is returned when extracted text is not valid JSON.
// Raw carries the model's response for diagnostics.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("llm: malformed structured output: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Err
}

// IsRetryable classifies a backend error by its structured status code
// rather than message text. Retryable: overload (529), rate limit (429),
// service unavailable (503) and timeouts.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case 429, 503, 529:
			return true
		}
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}
