package answer

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?i)```(?:json)?\\s*([\\s\\S]+?)\\s*```")

// ExtractJSON recovers a single JSON object from raw model text. The model
// is instructed to emit pure JSON but may still wrap it in prose or code
// fences. Returns nil, false when no parseable object is found.
func ExtractJSON(raw string) (map[string]any, bool) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return nil, false
	}

	if m := fencePattern.FindStringSubmatch(content); m != nil {
		content = strings.TrimSpace(m[1])
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(content), &parsed); err == nil {
		return parsed, true
	}

	candidate, ok := firstJSONObject(content)
	if !ok {
		return nil, false
	}
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}

// firstJSONObject finds the first balanced top-level {...} in text. The
// scan is string-and-escape aware: braces inside string literals do not
// affect nesting depth.
func firstJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escape := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if c == '\\' && !escape {
			escape = true
			continue
		}
		if c == '"' && !escape {
			inString = !inString
		}
		escape = false
		if inString {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
