package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONFencedBlock(t *testing.T) {
	raw := "Here is the analysis:\n```json\n{\"valid\": true, \"score\": 8}\n```\nLet me know if you need anything else."

	data, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"valid": true, "score": 8}`, string(data))
}

func TestExtractJSONBareFence(t *testing.T) {
	raw := "```\n{\"title\": \"Engineer\"}\n```"

	data, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title": "Engineer"}`, string(data))
}

func TestExtractJSONBalancedSpan(t *testing.T) {
	raw := `Sure! The parsed result is {"name": "Jane Doe", "skills": ["Go", "SQL"]} as requested.`

	data, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "Jane Doe", "skills": ["Go", "SQL"]}`, string(data))
}

func TestExtractJSONNestedBraces(t *testing.T) {
	raw := `{"outer": {"inner": {"deep": 1}}, "note": "a } inside a string"}`

	data, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(data))
}

func TestExtractJSONBracesInsideStrings(t *testing.T) {
	raw := `prefix {"text": "uses { and } and \" freely", "n": 2} suffix`

	data, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"text": "uses { and } and \" freely", "n": 2}`, string(data))
}

func TestExtractJSONNoPayload(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"I could not produce a structured answer, sorry.",
	} {
		_, err := ExtractJSON(raw)
		assert.ErrorIs(t, err, ErrNoStructuredOutput, "input: %q", raw)
	}
}

func TestExtractJSONMalformedCandidate(t *testing.T) {
	raw := "```json\n{\"valid\": true,}\n```"

	_, err := ExtractJSON(raw)
	require.Error(t, err)

	var malformed *MalformedOutputError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Raw, `"valid": true`)
}

func TestExtractInto(t *testing.T) {
	raw := "```json\n{\"valid\": false, \"issues\": [\"too generic\"], \"score\": 4}\n```"

	var result struct {
		Valid  bool     `json:"valid"`
		Issues []string `json:"issues"`
		Score  int      `json:"score"`
	}
	require.NoError(t, ExtractInto(raw, &result))
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"too generic"}, result.Issues)
	assert.Equal(t, 4, result.Score)
}

func TestExtractIntoTypeMismatch(t *testing.T) {
	raw := `{"score": "not a number"}`

	var result struct {
		Score int `json:"score"`
	}
	err := ExtractInto(raw, &result)
	require.Error(t, err)

	var malformed *MalformedOutputError
	assert.ErrorAs(t, err, &malformed)
}
