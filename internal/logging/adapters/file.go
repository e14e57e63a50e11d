package adapters

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"letterchain/internal/logging/types"
)

// FileConfig configures the file adapter
type FileConfig struct {
	FilePath   string
	Format     string // "json" or "text"
	MaxSize    int64  // bytes before rotation, 0 disables rotation
	CreateDirs bool
	FileMode   os.FileMode
}

// FileAdapter writes log entries to a file with size-based rotation
type FileAdapter struct {
	name    string
	config  FileConfig
	file    *os.File
	written int64
	mu      sync.Mutex
}

// NewFileAdapter creates a new file adapter and opens the target file
func NewFileAdapter(name string, config FileConfig) (*FileAdapter, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("file adapter requires a file path")
	}
	if config.Format == "" {
		config.Format = "json"
	}
	if config.FileMode == 0 {
		config.FileMode = 0644
	}

	if config.CreateDirs {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	a := &FileAdapter{name: name, config: config}
	if err := a.open(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *FileAdapter) open() error {
	file, err := os.OpenFile(a.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, a.config.FileMode)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	a.file = file
	a.written = info.Size()
	return nil
}

// Write writes a log entry to the file, rotating first if the size cap is hit
func (a *FileAdapter) Write(entry *types.LogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil {
		return fmt.Errorf("file adapter %s is closed", a.name)
	}

	var line string
	if a.config.Format == "text" {
		line = fmt.Sprintf("%s [%s] %s", entry.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"), entry.Level, entry.Message)
		for k, v := range entry.Fields {
			line += fmt.Sprintf(" %s=%v", k, v)
		}
	} else {
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
		line = string(data)
	}

	if a.config.MaxSize > 0 && a.written+int64(len(line))+1 > a.config.MaxSize {
		if err := a.rotate(); err != nil {
			return err
		}
	}

	n, err := fmt.Fprintln(a.file, line)
	a.written += int64(n)
	return err
}

// rotate renames the current file with a .1 suffix and reopens a fresh one
func (a *FileAdapter) rotate() error {
	if err := a.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file for rotation: %w", err)
	}

	backup := a.config.FilePath + ".1"
	if err := os.Rename(a.config.FilePath, backup); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	return a.open()
}

// Close closes the underlying file
func (a *FileAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}

// Name returns the adapter name
func (a *FileAdapter) Name() string {
	return a.name
}
