package php

import (
	"strings"
)

// AliasResolver resolves PHP type names to fully qualified class names
// (FQCN) based on the current namespace, use statements and use aliases of
// one file.
type AliasResolver struct {
	// Map of alias name to fully qualified class name
	aliases map[string]string
	// Map of class name to fully qualified class name
	useStatements map[string]string
	// Current namespace
	currentNamespace string
}

// NewAliasResolver creates a new alias resolver for a file's namespace, use
// statements and aliases.
func NewAliasResolver(namespace string, useStatements, aliases map[string]string) *AliasResolver {
	return &AliasResolver{
		aliases:          aliases,
		useStatements:    useStatements,
		currentNamespace: namespace,
	}
}

// ResolveType resolves a PHP type name to its fully qualified class name.
// Primitive and special types pass through unchanged, as do names that
// already carry a namespace separator. Otherwise aliases win over use
// statements, and an unresolved name is assumed to live in the current
// namespace.
func (r *AliasResolver) ResolveType(typeName string) string {
	if isPrimitiveType(typeName) || isSpecialType(typeName) {
		return typeName
	}

	if strings.HasPrefix(typeName, "\\") {
		return strings.TrimPrefix(typeName, "\\")
	}

	if strings.Contains(typeName, "\\") {
		return typeName
	}

	if fqcn, ok := r.aliases[typeName]; ok {
		return fqcn
	}

	if fqcn, ok := r.useStatements[typeName]; ok {
		return fqcn
	}

	if r.currentNamespace != "" {
		return r.currentNamespace + "\\" + typeName
	}

	return typeName
}

// ResolveTypeExpression resolves every class-like name inside a docblock
// type expression while leaving the expression's structure (unions,
// generics, shapes, brackets) intact.
func (r *AliasResolver) ResolveTypeExpression(expr string) string {
	return r.ResolveTypeExpressionExcept(expr, nil)
}

// ResolveTypeExpressionExcept is ResolveTypeExpression with a set of names
// to leave untouched, used for template parameters.
func (r *AliasResolver) ResolveTypeExpressionExcept(expr string, skip map[string]bool) string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return ""
	}

	var out strings.Builder
	i := 0
	for i < len(expr) {
		b := expr[i]
		if isWordStart(b) {
			j := i
			for j < len(expr) && isWordPart(expr[j]) {
				j++
			}
			word := expr[i:j]

			isShapeKey := j < len(expr) && !strings.Contains(word, "\\") &&
				(expr[j] == ':' || (expr[j] == '?' && j+1 < len(expr) && expr[j+1] == ':'))
			isVariable := i > 0 && expr[i-1] == '$'

			// Shape keys ("name:"), variables and type-grammar keywords
			// stay as-is.
			if isShapeKey || isVariable || skip[word] || word == "is" ||
				word == "class-string" || word == "array-key" || word == "list" ||
				word == "key-of" || word == "value-of" {
				out.WriteString(word)
			} else {
				out.WriteString(r.ResolveType(word))
			}
			i = j
			continue
		}
		out.WriteByte(b)
		i++
	}
	return out.String()
}

func isWordStart(b byte) bool {
	return b == '_' || b == '\\' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isWordPart(b byte) bool {
	return isWordStart(b) || (b >= '0' && b <= '9') || b == '-'
}

// isPrimitiveType checks if the given type is a PHP primitive type.
// Primitive types never resolve to an FQCN.
func isPrimitiveType(typeName string) bool {
	switch strings.ToLower(typeName) {
	case "string", "int", "integer", "float", "double", "bool", "boolean",
		"array", "object", "callable", "iterable", "void", "null",
		"mixed", "never", "resource", "false", "true", "number", "scalar",
		"list", "non-empty-string", "array-key", "positive-int", "negative-int":
		return true
	default:
		return false
	}
}

// isSpecialType checks if the given type is a PHP special type, i.e. a
// keyword that refers to the current class context.
func isSpecialType(typeName string) bool {
	switch typeName {
	case "self", "static", "parent", "$this", "class-string", "key-of", "value-of":
		return true
	default:
		return false
	}
}
