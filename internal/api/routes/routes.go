package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"letterchain/internal/api/handlers"
	"letterchain/internal/api/middleware"
	"letterchain/internal/cache"
	"letterchain/internal/config"
	"letterchain/internal/llm"
	"letterchain/internal/pipeline"
	"letterchain/internal/textract"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, wf *pipeline.Workflow, llmManager *llm.Manager, redisCache *cache.RedisCache, ts *textract.Service) {
	e.HTTPErrorHandler = handlers.ErrorHandler()

	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig(cfg))
	// Two documents plus multipart framing overhead
	e.Use(middleware.RequestValidation(2*cfg.Uploads.MaxFileSize + 1024*1024))
	// Short timeout for most endpoints; generation spends minutes in model calls
	e.Use(middleware.SelectiveTimeoutConfig(cfg.Server.ReadTimeout, cfg.Pipeline.Deadline+30*time.Second))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(llmManager, redisCache))
		health.GET("/live", handlers.LivenessHandler)
	}

	// API v1 routes
	v1 := e.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		v1.Use(middleware.NewRateLimiter(cfg).Middleware())
	}
	{
		v1.POST("/generate", handlers.GenerateHandler(cfg, wf, ts))
		v1.POST("/generate/stream", handlers.GenerateStreamHandler(cfg, wf, ts))
		v1.POST("/feedback", handlers.FeedbackHandler(cfg, wf))

		cacheGroup := v1.Group("/cache")
		{
			cacheGroup.GET("/stats", handlers.CacheStatsHandler(redisCache))
		}
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "LetterChain",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
