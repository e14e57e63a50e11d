package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"letterchain/internal/cache"
	"letterchain/internal/llm"
	"letterchain/pkg/models"
)

const serviceVersion = "1.0.0"

// HealthHandler answers basic health checks
func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   serviceVersion,
		Checks:    map[string]string{"api": "ok"},
	})
}

// ReadinessHandler reports whether the service can take traffic: the model
// backend must be reachable; redis is reported but not required, since the
// pipeline runs without it.
func ReadinessHandler(llmManager *llm.Manager, redisCache *cache.RedisCache) echo.HandlerFunc {
	return func(c echo.Context) error {
		checks := map[string]string{"api": "ok"}
		ready := true

		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		if llmManager.IsHealthy() {
			checks["llm"] = "ok"
		} else {
			checks["llm"] = "unavailable"
			ready = false
		}

		if redisCache != nil {
			if err := redisCache.Ping(ctx); err != nil {
				checks["redis"] = "unavailable"
			} else {
				checks["redis"] = "ok"
			}
		} else {
			checks["redis"] = "disabled"
		}

		status := "ready"
		code := http.StatusOK
		if !ready {
			status = "not_ready"
			code = http.StatusServiceUnavailable
		}

		return c.JSON(code, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   serviceVersion,
			Checks:    checks,
		})
	}
}

// LivenessHandler answers liveness probes
func LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   serviceVersion,
	})
}
