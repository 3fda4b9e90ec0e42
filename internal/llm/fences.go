package llm

import (
	"regexp"
	"strings"
)

var reJSONFence = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ExtractJSONPayload pulls the JSON document out of a chat completion. Models
// often wrap output in ```json fences or pad it with prose; we take the fenced
// block when present, otherwise the outermost bracketed span. Returns nil when
// no candidate payload is found.
func ExtractJSONPayload(content string) []byte {
	s := strings.TrimSpace(content)
	if s == "" {
		return nil
	}
	if m := reJSONFence.FindStringSubmatch(s); m != nil {
		return []byte(strings.TrimSpace(m[1]))
	}
	for _, pair := range [][2]byte{{'[', ']'}, {'{', '}'}} {
		start := strings.IndexByte(s, pair[0])
		end := strings.LastIndexByte(s, pair[1])
		if start >= 0 && end > start {
			return []byte(s[start : end+1])
		}
	}
	return nil
}
