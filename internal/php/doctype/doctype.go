// Package doctype implements the type-expression language used inside PHP
// docblock annotations (@param, @return, @var, @property, @method, @throws
// and their phpstan-/psalm- variants). All functions are pure and total:
// malformed input yields an empty result, never an error.
package doctype

import (
	"strings"
)

// scalarTypes is the fixed set of PHP scalar/keyword type names. These never
// resolve to a class and carry nothing to complete on.
var scalarTypes = map[string]bool{
	"int":      true,
	"integer":  true,
	"float":    true,
	"double":   true,
	"string":   true,
	"bool":     true,
	"boolean":  true,
	"array":    true,
	"object":   true,
	"callable": true,
	"iterable": true,
	"mixed":    true,
	"void":     true,
	"never":    true,
	"null":     true,
	"false":    true,
	"true":     true,
	"self":     true,
	"parent":   true,
	"static":   true,
}

// IsScalar reports whether the given type name is a PHP scalar or keyword
// type. The check is case-insensitive.
func IsScalar(typeName string) bool {
	return scalarTypes[strings.ToLower(strings.TrimSpace(typeName))]
}

// splitTopLevel splits expr on sep, ignoring separators nested inside curly
// braces, angle brackets or parentheses. An expression like "object{x: A&B}"
// is a single token for '&'.
func splitTopLevel(expr string, sep byte) []string {
	var parts []string
	var curly, angle, paren int
	start := 0

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
				parts = append(parts, strings.TrimSpace(expr[start:i]))
				start = i + 1
			}
		}
	}

	parts = append(parts, strings.TrimSpace(expr[start:]))
	return parts
}

// SplitUnion splits a type expression on top-level "|" separators.
func SplitUnion(expr string) []string {
	return splitTopLevel(expr, '|')
}

// SplitIntersection splits a type expression on top-level "&" separators.
func SplitIntersection(expr string) []string {
	return splitTopLevel(expr, '&')
}

// CleanType reduces an arbitrary type expression to a bare class name usable
// for an index lookup: the leading namespace root marker is removed, a
// trailing generic argument list is stripped, everything after the first
// union separator is dropped and trailing punctuation is trimmed.
func CleanType(expr string) string {
	expr = strings.TrimSpace(expr)
	expr = strings.TrimPrefix(expr, "\\")

	if idx := strings.Index(expr, "|"); idx >= 0 {
		expr = expr[:idx]
	}

	if idx := strings.Index(expr, "<"); idx >= 0 {
		expr = expr[:idx]
	}

	expr = strings.TrimRight(expr, ".,;:?!)")
	return strings.TrimSpace(expr)
}

// ExtractGenericValueType returns the element (value) type of a generic or
// bracket type expression: "array<int, User>" and "User[]" both yield
// "User". The result is empty when the element type is scalar or the
// expression carries no generic form at all.
func ExtractGenericValueType(expr string) string {
	value := genericValue(expr)
	if value == "" || IsScalar(CleanType(value)) {
		return ""
	}
	return value
}

// ExtractGenericKeyType returns the key type of a two-argument generic such
// as "array<Request, Response>". Single-argument generics and bracket
// shorthand have no explicit key type.
func ExtractGenericKeyType(expr string) string {
	expr = strings.TrimSpace(expr)

	args := genericArguments(expr)
	if len(args) < 2 {
		return ""
	}
	return args[0]
}

// genericValue extracts the raw element type without scalar filtering.
func genericValue(expr string) string {
	expr = strings.TrimSpace(expr)

	if strings.HasSuffix(expr, "[]") {
		return strings.TrimSpace(strings.TrimSuffix(expr, "[]"))
	}

	args := genericArguments(expr)
	switch len(args) {
	case 0:
		return ""
	case 1:
		return args[0]
	default:
		// Two-argument forms are key, value.
		return args[len(args)-1]
	}
}

// genericArguments returns the comma-separated top-level arguments of a
// "Name<...>" expression, or nil when the expression has no generic suffix.
func genericArguments(expr string) []string {
	open := strings.Index(expr, "<")
	if open < 0 || !strings.HasSuffix(expr, ">") {
		return nil
	}

	inner := expr[open+1 : len(expr)-1]
	if strings.TrimSpace(inner) == "" {
		return nil
	}

	var args []string
	for _, arg := range splitTopLevel(inner, ',') {
		if arg != "" {
			args = append(args, arg)
		}
	}
	return args
}
