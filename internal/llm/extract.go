package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls a JSON object out of a model response. Models wrap
// their output in prose or markdown fences more often than not, so the
// search order is: fenced ```json block, any fenced block, then the first
// balanced top-level {...} span. Returns ErrNoStructuredOutput when no
// candidate parses, or MalformedOutputError when a candidate was found
// but is not valid JSON.
func ExtractJSON(raw string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrNoStructuredOutput
	}

	if block := fencedBlock(trimmed); block != "" {
		if json.Valid([]byte(block)) {
			return json.RawMessage(block), nil
		}
		return nil, &MalformedOutputError{Raw: block, Err: firstJSONError(block)}
	}

	if span := balancedSpan(trimmed); span != "" {
		if json.Valid([]byte(span)) {
			return json.RawMessage(span), nil
		}
		return nil, &MalformedOutputError{Raw: span, Err: firstJSONError(span)}
	}

	return nil, ErrNoStructuredOutput
}

// ExtractInto extracts a JSON object from raw and unmarshals it into v
func ExtractInto(raw string, v interface{}) error {
	data, err := ExtractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &MalformedOutputError{Raw: string(data), Err: err}
	}
	return nil
}

// fencedBlock returns the contents of the first markdown code fence,
// preferring a ```json fence over a bare one
func fencedBlock(s string) string {
	for _, marker := range []string{"```json", "```"} {
		start := strings.Index(s, marker)
		if start == -1 {
			continue
		}
		rest := s[start+len(marker):]
		end := strings.Index(rest, "```")
		if end == -1 {
			continue
		}
		content := strings.TrimSpace(rest[:end])
		if content != "" {
			return content
		}
	}
	return ""
}

// balancedSpan returns the first top-level balanced {...} span, tracking
// string literals so braces inside values do not break the count
func balancedSpan(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// firstJSONError surfaces the decoder's actual complaint for diagnostics
func firstJSONError(s string) error {
	var v interface{}
	return json.Unmarshal([]byte(s), &v)
}
