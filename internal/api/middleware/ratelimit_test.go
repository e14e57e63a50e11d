package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letterchain/internal/config"
)

func testLimiter(t *testing.T, rpm float64, burst int) *RateLimiter {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.RateLimit.RequestsPerMinute = rpm
	cfg.RateLimit.Burst = burst
	rl := NewRateLimiter(cfg)
	t.Cleanup(rl.Stop)
	return rl
}

func TestRateLimiterAllowsBurstThenRejects(t *testing.T) {
	rl := testLimiter(t, 1, 2)

	assert.True(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"), "burst of 2 exhausted")

	// Each client gets its own bucket.
	assert.True(t, rl.allow("10.0.0.2"))
}

func TestRateLimiterEvictsStaleClients(t *testing.T) {
	rl := testLimiter(t, 60, 5)

	require.True(t, rl.allow("10.0.0.1"))
	require.True(t, rl.allow("10.0.0.2"))

	rl.mu.Lock()
	rl.clients["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)
	rl.mu.Unlock()

	rl.evictStale(time.Now().Add(-10 * time.Minute))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.clients, "10.0.0.1")
	assert.Contains(t, rl.clients, "10.0.0.2")
}

func TestRateLimiterStopIsIdempotent(t *testing.T) {
	cfg := config.DefaultConfig()
	rl := NewRateLimiter(cfg)

	rl.Stop()
	rl.Stop()
}

func TestRateLimiterMiddlewareReturns429(t *testing.T) {
	rl := testLimiter(t, 1, 1)

	e := echo.New()
	handler := rl.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	call := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		return rec
	}

	assert.Equal(t, http.StatusOK, call().Code)
	rec := call()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate_limited")
}
