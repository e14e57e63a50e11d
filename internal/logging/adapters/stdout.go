package adapters

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"letterchain/internal/logging/types"
)

// StdoutConfig configures the stdout adapter
type StdoutConfig struct {
	Format string // "json" or "text"
}

// StdoutAdapter writes log entries to standard output
type StdoutAdapter struct {
	name   string
	config StdoutConfig
	mu     sync.Mutex
}

// NewStdoutAdapter creates a new stdout adapter
func NewStdoutAdapter(name string, config StdoutConfig) *StdoutAdapter {
	if config.Format == "" {
		config.Format = "json"
	}
	return &StdoutAdapter{
		name:   name,
		config: config,
	}
}

// Write writes a log entry to stdout
func (a *StdoutAdapter) Write(entry *types.LogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.config.Format == "text" {
		line := fmt.Sprintf("%s [%s] %s", entry.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"), entry.Level, entry.Message)
		for k, v := range entry.Fields {
			line += fmt.Sprintf(" %s=%v", k, v)
		}
		_, err := fmt.Fprintln(os.Stdout, line)
		return err
	}

	payload := map[string]interface{}{
		"timestamp": entry.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
		"level":     entry.Level.String(),
		"message":   entry.Message,
	}
	if len(entry.Fields) > 0 {
		payload["fields"] = entry.Fields
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}

// Close is a no-op for stdout
func (a *StdoutAdapter) Close() error {
	return nil
}

// Name returns the adapter name
func (a *StdoutAdapter) Name() string {
	return a.name
}
