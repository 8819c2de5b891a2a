package extract

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	fencedJSON = regexp.MustCompile("(?is)```json\\s*(.*?)```")
	fencedAny  = regexp.MustCompile("(?s)```\\s*(.*?)```")
)

// JSONBlock recovers the first JSON object in a model reply. It tries a
// fenced code block, then the whole reply, then scans for the first
// balanced {...} that parses. Returns an empty map when nothing does.
func JSONBlock(input string) map[string]any {
	trimmed := strings.TrimSpace(input)

	fence := fencedJSON.FindStringSubmatch(trimmed)
	if fence == nil {
		fence = fencedAny.FindStringSubmatch(trimmed)
	}
	if fence != nil {
		if obj, ok := parseObject(fence[1]); ok {
			return obj
		}
	}

	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		if obj, ok := parseObject(trimmed); ok {
			return obj
		}
	}

	if obj, ok := scanBalanced(trimmed); ok {
		return obj
	}
	return map[string]any{}
}

// scanBalanced walks the input tracking brace depth outside string
// literals. Each closed top-level object is tried in turn.
func scanBalanced(s string) (map[string]any, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

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
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
			if depth == 0 && start >= 0 {
				if obj, ok := parseObject(s[start : i+1]); ok {
					return obj, true
				}
				start = -1
			}
		}
	}
	return nil, false
}

func parseObject(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	if !gjson.Valid(s) {
		return nil, false
	}
	result := gjson.Parse(s)
	if !result.IsObject() {
		return nil, false
	}
	obj, ok := result.Value().(map[string]any)
	return obj, ok
}
