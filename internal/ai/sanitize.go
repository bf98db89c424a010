package ai

import (
	"encoding/json"
	"strings"
)

// ExtractJSON recovers a parsable JSON document from free-form backend
// output. It strips Markdown code fences, locates the first structural
// delimiter and then shrinks the candidate substring from the right until
// something parses. The shrink loop tolerates trailing prose backends like
// to append after otherwise valid JSON. When nothing parses the canonical
// empty array is returned.
func ExtractJSON(raw string) string {
	t := strings.TrimSpace(raw)
	if t == "" {
		return "[]"
	}

	if strings.HasPrefix(t, "```") {
		t = strings.Trim(t, "`")
		t = strings.TrimSpace(t)
		// After removing the backticks a language tag may remain.
		if len(t) >= 4 && strings.EqualFold(t[:4], "json") {
			t = strings.TrimSpace(t[4:])
		}
	}

	start := -1
	for i := 0; i < len(t); i++ {
		if t[i] == '[' || t[i] == '{' {
			start = i
			break
		}
	}
	if start == -1 {
		return "[]"
	}

	for end := len(t); end > start; end-- {
		candidate := strings.TrimSpace(t[start:end])
		if candidate == "" {
			continue
		}
		if json.Valid([]byte(candidate)) {
			return candidate
		}
	}
	return "[]"
}
