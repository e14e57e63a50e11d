package llm

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"letterchain/internal/logging"
)

// Invoker wraps a provider with retry, backoff and per-attempt reporting.
// Retryable failures (overload, rate limit, timeout) are retried with
// exponential backoff plus jitter; everything else propagates immediately.
type Invoker struct {
	provider    Provider
	maxRetries  int
	baseDelay   time.Duration
	callTimeout time.Duration
	logger      logging.Logger
}

// InvokerOption configures an Invoker
type InvokerOption func(*Invoker)

// WithMaxRetries sets the maximum number of attempts (including the first)
func WithMaxRetries(n int) InvokerOption {
	return func(iv *Invoker) {
		if n > 0 {
			iv.maxRetries = n
		}
	}
}

// WithBaseDelay sets the base backoff delay
func WithBaseDelay(d time.Duration) InvokerOption {
	return func(iv *Invoker) {
		if d > 0 {
			iv.baseDelay = d
		}
	}
}

// WithCallTimeout sets the per-attempt timeout applied to each backend call
func WithCallTimeout(d time.Duration) InvokerOption {
	return func(iv *Invoker) {
		iv.callTimeout = d
	}
}

// WithLogger overrides the logger used for the attempt reports
func WithLogger(logger logging.Logger) InvokerOption {
	return func(iv *Invoker) {
		iv.logger = logger
	}
}

// NewInvoker creates an invoker around the given provider
func NewInvoker(provider Provider, opts ...InvokerOption) *Invoker {
	iv := &Invoker{
		provider:   provider,
		maxRetries: 3,
		baseDelay:  1 * time.Second,
		logger:     logging.GetGlobalLogger(),
	}
	for _, opt := range opts {
		opt(iv)
	}
	return iv
}

// Invoke calls the model configured for role, retrying retryable failures.
// Returns ErrExhaustedRetries (wrapping the last error) once attempts run
// out, or a NonRetryableError immediately for anything outside the
// retryable set.
func (iv *Invoker) Invoke(ctx context.Context, role string, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < iv.maxRetries; attempt++ {
		start := time.Now()
		response, err := iv.complete(ctx, role, prompt)
		elapsed := time.Since(start)

		iv.report(role, attempt+1, elapsed, len(prompt), len(response), err)

		if err == nil {
			return response, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return "", &NonRetryableError{Err: err}
		}

		if attempt == iv.maxRetries-1 {
			break
		}

		delay := iv.backoff(attempt)
		iv.logger.Warn("Model invocation retry", map[string]interface{}{
			"model":    iv.provider.ModelID(role),
			"attempt":  attempt + 1,
			"max":      iv.maxRetries,
			"delay_ms": delay.Milliseconds(),
		})

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: cancelled during backoff: %v", ErrExhaustedRetries, ctx.Err())
		case <-time.After(delay):
		}
	}

	return "", fmt.Errorf("%w after %d attempts: %v", ErrExhaustedRetries, iv.maxRetries, lastErr)
}

func (iv *Invoker) complete(ctx context.Context, role string, prompt string) (string, error) {
	if iv.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, iv.callTimeout)
		defer cancel()
	}
	return iv.provider.Complete(ctx, role, prompt)
}

// backoff returns baseDelay * 2^attempt plus up to one second of jitter
func (iv *Invoker) backoff(attempt int) time.Duration {
	delay := iv.baseDelay * time.Duration(1<<uint(attempt))
	jitter := time.Duration(rand.Float64() * float64(time.Second))
	return delay + jitter
}

// report emits the per-attempt observability record. Reporting must never
// influence control flow; failures inside the sink are the logger's problem.
func (iv *Invoker) report(role string, attempt int, elapsed time.Duration, promptLen, responseLen int, err error) {
	fields := map[string]interface{}{
		"model":         iv.provider.ModelID(role),
		"role":          role,
		"attempt":       attempt,
		"elapsed_ms":    elapsed.Milliseconds(),
		"prompt_size":   promptLen,
		"response_size": responseLen,
	}
	if err != nil {
		fields["error"] = err.Error()
		iv.logger.Error("Model invocation failed", fields)
		return
	}
	iv.logger.Info("Model invocation succeeded", fields)
}
