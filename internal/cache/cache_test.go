package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyDeterminism(t *testing.T) {
	text := "Jane Doe\nSoftware Engineer with five years of experience."
	assert.Equal(t, Key("resume", text), Key("resume", text))
}

func TestKeySensitivity(t *testing.T) {
	text := "Jane Doe\nSoftware Engineer with five years of experience."
	changed := strings.Replace(text, "five", "six", 1)
	assert.NotEqual(t, Key("resume", text), Key("resume", changed),
		"a single character change must produce a different key")
}

func TestKeyTypePrefix(t *testing.T) {
	text := "identical document body"
	resumeKey := Key("resume", text)
	jobKey := Key("job", text)

	assert.NotEqual(t, resumeKey, jobKey)
	assert.True(t, strings.HasPrefix(resumeKey, "resume:"))
	assert.True(t, strings.HasPrefix(jobKey, "job:"))

	// Suffix is the same content hash in both.
	assert.Equal(t,
		strings.TrimPrefix(resumeKey, "resume:"),
		strings.TrimPrefix(jobKey, "job:"))
	assert.Len(t, strings.TrimPrefix(resumeKey, "resume:"), 64)
}

func TestParseInfo(t *testing.T) {
	payload := "# Clients\r\nconnected_clients:3\r\n# Stats\r\nkeyspace_hits:120\r\nkeyspace_misses:14\r\nused_memory_human:1.2M\r\n"

	fields := parseInfo(payload)
	assert.Equal(t, "3", fields["connected_clients"])
	assert.Equal(t, "120", fields["keyspace_hits"])
	assert.Equal(t, "1.2M", fields["used_memory_human"])
	assert.NotContains(t, fields, "# Clients")
}
