package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"letterchain/internal/api/routes"
	"letterchain/internal/cache"
	"letterchain/internal/config"
	"letterchain/internal/llm"
	"letterchain/internal/logging"
	"letterchain/internal/pipeline"
	"letterchain/internal/textract"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logging
	adapters := make([]logging.AdapterConfig, 0, len(cfg.Logging.Adapters))
	for _, a := range cfg.Logging.Adapters {
		adapters = append(adapters, logging.AdapterConfig{
			Name:    a.Name,
			Type:    a.Type,
			Enabled: a.Enabled,
			Options: a.Options,
		})
	}
	if err := logging.Initialize(cfg.Logging.Level, adapters); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Shutdown()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting LetterChain")

	// Initialize LLM manager
	llmManager := llm.NewManager(cfg)
	if err := llmManager.Start(); err != nil {
		logger.Fatal("Failed to start LLM manager", map[string]interface{}{"error": err.Error()})
	}

	provider, err := llmManager.Provider()
	if err != nil {
		logger.Fatal("No LLM provider available", map[string]interface{}{"error": err.Error()})
	}

	invoker := llm.NewInvoker(provider,
		llm.WithMaxRetries(cfg.Pipeline.MaxRetries),
		llm.WithBaseDelay(cfg.Pipeline.BaseDelay),
		llm.WithCallTimeout(cfg.LLM.Timeout),
	)

	// Initialize the parse cache; the pipeline runs without it if redis is
	// unreachable
	var parseCache pipeline.ParseCache
	redisCache := cache.NewRedisCache(cfg)
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisCache.Ping(pingCtx); err != nil {
		logger.Warn("Redis unavailable, running without parse cache", map[string]interface{}{"error": err.Error()})
	} else {
		parseCache = redisCache
	}
	pingCancel()

	// Assemble the workflow
	wf := pipeline.NewWorkflow(
		&pipeline.Deps{Models: invoker, Cache: parseCache, Logger: logger},
		pipeline.WithMaxRevisions(cfg.Pipeline.MaxRevisions),
	)

	extractor := textract.NewService(cfg)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	routes.SetupRoutes(e, cfg, wf, llmManager, redisCache, extractor)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{"error": err.Error()})
		}

		if err := llmManager.Stop(); err != nil {
			logger.Error("Error stopping LLM manager", map[string]interface{}{"error": err.Error()})
		}

		if err := redisCache.Close(); err != nil {
			logger.Error("Error closing redis connection", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Server shutdown complete")
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if err := e.Start(address); err != nil {
		logger.Info("Server stopped", map[string]interface{}{"reason": err.Error()})
	}
}
