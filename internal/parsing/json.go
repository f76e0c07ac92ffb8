// Package parsing turns free-form model output into wine records.
package parsing

import (
	"encoding/json"
	"strings"
)

// Shape is the outer JSON value a response is expected to carry.
type Shape int

const (
	// ShapeObject expects a single {...} record.
	ShapeObject Shape = iota
	// ShapeArray expects a [...] list of records.
	ShapeArray
)

func (s Shape) open() byte {
	if s == ShapeArray {
		return '['
	}
	return '{'
}

// CleanJSONBlock removes markdown code fences that models add even when told not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	// Skip a language identifier on the first line
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := text[:idx]
		if len(firstLine) < 20 && !strings.ContainsAny(firstLine, " {[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// FindJSON returns the first syntactically valid JSON value of the given shape in text,
// ignoring any prose around it. Braces inside string values do not affect matching.
func FindJSON(text string, shape Shape) (string, bool) {
	span, start := findJSON(CleanJSONBlock(text), shape)
	return span, start >= 0
}

// findJSON is FindJSON over already cleaned text; start is -1 when nothing matched.
func findJSON(text string, shape Shape) (span string, start int) {
	open := shape.open()

	for start = strings.IndexByte(text, open); start >= 0; {
		if span := balancedSpan(text[start:]); span != "" && json.Valid([]byte(span)) {
			return span, start
		}
		next := strings.IndexByte(text[start+1:], open)
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", -1
}

// balancedSpan returns the prefix of s that closes the bracket s starts with,
// or "" when it never closes.
func balancedSpan(s string) string {
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
