package extract

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON reports that no parseable JSON object was found in the text.
var ErrNoJSON = errors.New("no JSON object found in model output")

var fenceExpr = regexp.MustCompile("(?s)```.*?```")

// JSONObject recovers a single JSON object from free-form model output.
// Fenced code blocks are discarded first, then the whole text is tried as
// JSON, then every top-level balanced-brace span in order of appearance.
func JSONObject(text string) (map[string]any, error) {
	text = fenceExpr.ReplaceAllString(text, "")

	if obj, ok := tryObject(strings.TrimSpace(text)); ok {
		return obj, nil
	}

	for _, candidate := range braceSpans(text) {
		if obj, ok := tryObject(candidate); ok {
			return obj, nil
		}
	}

	return nil, ErrNoJSON
}

func tryObject(candidate string) (map[string]any, bool) {
	if candidate == "" {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// braceSpans collects every maximal substring between a '{' that opens
// nesting depth 1 and the '}' that closes it back to 0, left to right.
// Braces inside JSON string literals do not affect the depth count.
func braceSpans(text string) []string {
	var (
		spans    []string
		depth    int
		start    int
		inString bool
		escaped  bool
	)

	for i, ch := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					spans = append(spans, text[start:i+1])
				}
			}
		}
	}

	return spans
}
