package logging

import (
	"fmt"
	"sync"

	"letterchain/internal/logging/adapters"
	"letterchain/internal/logging/types"
)

var (
	globalLogger *MultiLogger
	globalMu     sync.RWMutex
)

// Initialize builds the global logger from adapter configurations.
// With no enabled adapters it falls back to a JSON stdout adapter.
func Initialize(level string, configs []AdapterConfig) error {
	logger := NewMultiLogger()
	logger.SetLevel(types.ParseLevel(level))

	enabled := 0
	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		adapter, err := createAdapter(cfg)
		if err != nil {
			return fmt.Errorf("failed to create %s adapter: %w", cfg.Type, err)
		}
		logger.AddAdapter(adapter)
		enabled++
	}

	if enabled == 0 {
		logger.AddAdapter(adapters.NewStdoutAdapter("stdout", adapters.StdoutConfig{Format: "json"}))
	}

	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
	return nil
}

// GetGlobalLogger returns the process-wide logger, initializing a default
// stdout logger if Initialize has not been called yet
func GetGlobalLogger() Logger {
	globalMu.RLock()
	logger := globalLogger
	globalMu.RUnlock()

	if logger != nil {
		return logger
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = NewMultiLogger()
		globalLogger.AddAdapter(adapters.NewStdoutAdapter("stdout", adapters.StdoutConfig{Format: "json"}))
	}
	return globalLogger
}

// Shutdown closes all adapters on the global logger
func Shutdown() {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger != nil {
		globalLogger.Close()
	}
}

func createAdapter(cfg AdapterConfig) (LogAdapter, error) {
	switch cfg.Type {
	case "stdout":
		return adapters.NewStdoutAdapter(cfg.Name, adapters.StdoutConfig{
			Format: stringOption(cfg.Options, "format", "json"),
		}), nil
	case "file":
		return adapters.NewFileAdapter(cfg.Name, adapters.FileConfig{
			FilePath:   stringOption(cfg.Options, "file_path", ""),
			Format:     stringOption(cfg.Options, "format", "json"),
			MaxSize:    int64Option(cfg.Options, "max_size", 0),
			CreateDirs: boolOption(cfg.Options, "create_dirs", true),
		})
	default:
		return nil, fmt.Errorf("unsupported adapter type: %s", cfg.Type)
	}
}

func stringOption(options map[string]interface{}, key, fallback string) string {
	if v, ok := options[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func boolOption(options map[string]interface{}, key string, fallback bool) bool {
	if v, ok := options[key].(bool); ok {
		return v
	}
	return fallback
}

func int64Option(options map[string]interface{}, key string, fallback int64) int64 {
	switch v := options[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return fallback
}
