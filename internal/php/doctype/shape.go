package doctype

import (
	"strconv"
	"strings"
)

// ShapeEntry is one key of an array or object shape expression.
type ShapeEntry struct {
	Key      string
	Type     string
	Optional bool
}

// IsShape reports whether expr is a structural array/object shape, i.e.
// "array{...}" or "object{...}". A bare "array" or "object" without braces
// is not a shape.
func IsShape(expr string) bool {
	expr = strings.TrimSpace(expr)
	lower := strings.ToLower(expr)

	return (strings.HasPrefix(lower, "array{") || strings.HasPrefix(lower, "object{") ||
		strings.HasPrefix(lower, "list{")) && strings.HasSuffix(expr, "}")
}

// ShapeEntries parses the entries of an array/object shape expression.
// Quoted, unquoted and numeric keys are supported, as is the trailing "?"
// optional-entry marker. Entries without an explicit key get 0-based
// positional keys. Malformed entries are skipped.
func ShapeEntries(expr string) []ShapeEntry {
	if !IsShape(expr) {
		return nil
	}

	expr = strings.TrimSpace(expr)
	open := strings.Index(expr, "{")
	inner := expr[open+1 : len(expr)-1]
	if strings.TrimSpace(inner) == "" {
		return nil
	}

	var entries []ShapeEntry
	position := 0

	for _, raw := range splitTopLevel(inner, ',') {
		if raw == "" {
			continue
		}

		key, typ, optional, ok := parseShapeEntry(raw, position)
		if !ok {
			continue
		}

		entries = append(entries, ShapeEntry{Key: key, Type: typ, Optional: optional})
		position++
	}

	return entries
}

func parseShapeEntry(raw string, position int) (key, typ string, optional, ok bool) {
	colon := topLevelIndex(raw, ':')
	if colon < 0 {
		// Keyless entry, positional key.
		typ = strings.TrimSpace(raw)
		if typ == "" {
			return "", "", false, false
		}
		return strconv.Itoa(position), typ, false, true
	}

	key = strings.TrimSpace(raw[:colon])
	typ = strings.TrimSpace(raw[colon+1:])
	if typ == "" {
		return "", "", false, false
	}

	if strings.HasSuffix(key, "?") {
		optional = true
		key = strings.TrimSpace(strings.TrimSuffix(key, "?"))
	}

	key = strings.Trim(key, "'\"")
	if key == "" {
		return "", "", false, false
	}

	return key, typ, optional, true
}

// topLevelIndex returns the index of the first sep outside nested braces,
// angle brackets and parentheses, or -1.
func topLevelIndex(expr string, sep byte) int {
	var curly, angle, paren int
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '{':
			curly++
		case '}':
			curly--
		case '<':
			angle++
		case '>':
			angle--
		case '(':
			paren++
		case ')':
			paren--
		case sep:
			if curly == 0 && angle == 0 && paren == 0 {
				return i
			}
		}
	}
	return -1
}

// ExtractArrayShapeValueType returns the type of the given key in an array
// or object shape expression, or "" when the expression is not a shape or
// the key is unknown.
func ExtractArrayShapeValueType(expr, key string) string {
	for _, entry := range ShapeEntries(expr) {
		if entry.Key == key {
			return entry.Type
		}
	}
	return ""
}

// ExtractObjectShapeValueType is the object{...} counterpart of
// ExtractArrayShapeValueType. Shapes share one entry syntax, so this is an
// alias kept for call-site clarity.
func ExtractObjectShapeValueType(expr, key string) string {
	return ExtractArrayShapeValueType(expr, key)
}
