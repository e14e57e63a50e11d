package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.Pipeline.MaxRevisions)
	assert.Equal(t, 3, cfg.Pipeline.MaxRetries)
	assert.Equal(t, time.Second, cfg.Pipeline.BaseDelay)
	assert.Equal(t, 5*time.Minute, cfg.Pipeline.Deadline)
	assert.Equal(t, 24*time.Hour, cfg.Redis.CacheTTL)
	assert.Equal(t, int64(5*1024*1024), cfg.Uploads.MaxFileSize)
	assert.Equal(t, 100, cfg.Uploads.MinTextLength)

	// Each role has its own model profile.
	assert.InDelta(t, 0.0, cfg.LLM.Classifier.Temperature, 0.001)
	assert.Equal(t, int64(256), cfg.LLM.Classifier.MaxTokens)
	assert.InDelta(t, 0.2, cfg.LLM.Analyst.Temperature, 0.001)
	assert.InDelta(t, 0.6, cfg.LLM.Writer.Temperature, 0.001)
	assert.Equal(t, int64(1024), cfg.LLM.Writer.MaxTokens)
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9090
pipeline:
  max_revisions: 1
llm:
  writer:
    model: test-writer-model
    temperature: 0.4
    max_tokens: 2048
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 1, cfg.Pipeline.MaxRevisions)
	assert.Equal(t, "test-writer-model", cfg.LLM.Writer.Model)
	assert.Equal(t, int64(2048), cfg.LLM.Writer.MaxTokens)
	// Untouched sections keep their defaults.
	assert.Equal(t, "claude", cfg.LLM.Provider)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("PIPELINE_MAX_REVISIONS", "2")
	t.Setenv("REDIS_URL", "redis://cache.internal:6379")
	t.Setenv("CACHE_TTL", "1h")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, 2, cfg.Pipeline.MaxRevisions)
	assert.Equal(t, "redis://cache.internal:6379", cfg.Redis.URL)
	assert.Equal(t, time.Hour, cfg.Redis.CacheTTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestYAMLEnvExpansion(t *testing.T) {
	t.Setenv("TEST_REDIS_HOST", "redis.internal")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "redis:\n  url: redis://${TEST_REDIS_HOST}:6379\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "redis://redis.internal:6379", cfg.Redis.URL)
}
