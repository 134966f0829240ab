package php

import (
	"regexp"
	"strings"

	"github.com/phpls/phpls/internal/php/doctype"
)

// Docblock is the parsed annotation overlay of one documentation comment.
// Malformed tags are skipped individually; the rest of the comment still
// contributes.
type Docblock struct {
	Return       string
	Params       map[string]string
	Vars         []VarTag
	Properties   []PropertyInfo
	Methods      []MethodInfo
	Mixins       []string
	Templates    []string
	TypeAliases  map[string]string
	GenericArgs  map[string][]string
	Throws       []string
	Deprecated   bool
}

// VarTag is one "@var Type [$name]" annotation.
type VarTag struct {
	Type string
	Name string
}

var (
	paramTagRe    = regexp.MustCompile(`^@(?:phpstan-|psalm-)?param\s+(.+?)\s+(?:\.\.\.)?\$([A-Za-z_][A-Za-z0-9_]*)`)
	varTagRe      = regexp.MustCompile(`^@(?:phpstan-|psalm-)?var\s+(\S+)(?:\s+\$([A-Za-z_][A-Za-z0-9_]*))?`)
	propertyTagRe = regexp.MustCompile(`^@(?:phpstan-|psalm-)?property(-read|-write)?\s+(\S+)\s+\$([A-Za-z_][A-Za-z0-9_]*)`)
	methodTagRe   = regexp.MustCompile(`^@(?:phpstan-|psalm-)?method\s+(static\s+)?(?:(\S+)\s+)?([A-Za-z_][A-Za-z0-9_]*)\s*\(([^)]*)\)`)
	mixinTagRe    = regexp.MustCompile(`^@mixin\s+(\S+)`)
	templateTagRe = regexp.MustCompile(`^@(?:phpstan-|psalm-)?template(?:-covariant|-contravariant)?\s+([A-Za-z_][A-Za-z0-9_]*)`)
	typeTagRe     = regexp.MustCompile(`^@(?:phpstan|psalm)-type\s+([A-Za-z_][A-Za-z0-9_]*)\s*=?\s*(.+)$`)
	importTypeRe  = regexp.MustCompile(`^@(?:phpstan|psalm)-import-type\s+([A-Za-z_][A-Za-z0-9_]*)\s+from\s+(\S+)(?:\s+as\s+([A-Za-z_][A-Za-z0-9_]*))?`)
	genericArgRe  = regexp.MustCompile(`^@(?:phpstan-|psalm-|template-)?(extends|implements|use)\s+(\S+?)<(.+)>`)
	throwsTagRe   = regexp.MustCompile(`^@(?:phpstan-|psalm-)?throws\s+(\S+)`)
	methodParamRe = regexp.MustCompile(`(?:(\S+)\s+)?\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// IsDocComment reports whether a comment node's text is a docblock.
func IsDocComment(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/**")
}

// ParseDocblock parses the text of a "/** ... */" comment into its overlay.
func ParseDocblock(text string) *Docblock {
	doc := &Docblock{
		Params:      map[string]string{},
		TypeAliases: map[string]string{},
		GenericArgs: map[string][]string{},
	}

	lines := docblockLines(text)

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !strings.HasPrefix(line, "@") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "@param") ||
			strings.HasPrefix(line, "@phpstan-param") ||
			strings.HasPrefix(line, "@psalm-param"):
			if m := paramTagRe.FindStringSubmatch(line); m != nil {
				doc.Params[m[2]] = m[1]
			}

		case strings.HasPrefix(line, "@return") ||
			strings.HasPrefix(line, "@phpstan-return") ||
			strings.HasPrefix(line, "@psalm-return"):
			expr, consumed := returnExpression(line, lines[i+1:])
			if expr != "" {
				doc.Return = expr
			}
			i += consumed

		case strings.HasPrefix(line, "@var") ||
			strings.HasPrefix(line, "@phpstan-var") ||
			strings.HasPrefix(line, "@psalm-var"):
			if m := varTagRe.FindStringSubmatch(line); m != nil {
				doc.Vars = append(doc.Vars, VarTag{Type: m[1], Name: m[2]})
			}

		case strings.HasPrefix(line, "@property") ||
			strings.HasPrefix(line, "@phpstan-property") ||
			strings.HasPrefix(line, "@psalm-property"):
			if m := propertyTagRe.FindStringSubmatch(line); m != nil {
				doc.Properties = append(doc.Properties, PropertyInfo{
					Name:       m[3],
					Type:       m[2],
					Visibility: Public,
					Virtual:    true,
				})
			}

		case strings.HasPrefix(line, "@method") ||
			strings.HasPrefix(line, "@phpstan-method") ||
			strings.HasPrefix(line, "@psalm-method"):
			if method, ok := parseMethodTag(line); ok {
				doc.Methods = append(doc.Methods, method)
			}

		case strings.HasPrefix(line, "@mixin"):
			if m := mixinTagRe.FindStringSubmatch(line); m != nil {
				doc.Mixins = append(doc.Mixins, m[1])
			}

		case strings.HasPrefix(line, "@template") ||
			strings.HasPrefix(line, "@phpstan-template") ||
			strings.HasPrefix(line, "@psalm-template"):
			if m := templateTagRe.FindStringSubmatch(line); m != nil {
				doc.Templates = append(doc.Templates, m[1])
			}

		case importTypeRe.MatchString(line):
			m := importTypeRe.FindStringSubmatch(line)
			name := m[1]
			if m[3] != "" {
				name = m[3]
			}
			doc.TypeAliases[name] = "from:" + m[2] + ":" + m[1]

		case typeTagRe.MatchString(line):
			m := typeTagRe.FindStringSubmatch(line)
			doc.TypeAliases[m[1]] = strings.TrimSpace(m[2])

		case genericArgRe.MatchString(line):
			m := genericArgRe.FindStringSubmatch(line)
			args := splitGenericArgs(m[3])
			if len(args) > 0 {
				doc.GenericArgs[m[2]] = args
			}

		case strings.HasPrefix(line, "@throws"):
			if m := throwsTagRe.FindStringSubmatch(line); m != nil {
				doc.Throws = append(doc.Throws, m[1])
			}

		case strings.HasPrefix(line, "@deprecated"):
			doc.Deprecated = true
		}
	}

	return doc
}

// docblockLines strips the comment frame and leading "*" of each line.
func docblockLines(text string) []string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimSuffix(text, "*/")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// returnExpression extracts the type expression of a @return tag. A
// conditional return may wrap across lines; following lines are consumed
// until its parentheses balance.
func returnExpression(line string, rest []string) (string, int) {
	fields := strings.SplitN(line, " ", 2)
	if len(fields) < 2 {
		return "", 0
	}
	expr := strings.TrimSpace(fields[1])
	if expr == "" {
		return "", 0
	}

	if !strings.HasPrefix(expr, "(") {
		// A plain expression ends at the first space (the remainder is
		// prose).
		if idx := strings.IndexAny(expr, " \t"); idx >= 0 {
			expr = expr[:idx]
		}
		return expr, 0
	}

	consumed := 0
	for parenDepth(expr) > 0 && consumed < len(rest) {
		expr += " " + rest[consumed]
		consumed++
	}

	if parenDepth(expr) != 0 {
		return "", consumed
	}
	return expr, consumed
}

func parenDepth(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	return depth
}

// parseMethodTag parses "@method [static] [ReturnType] name(params)".
func parseMethodTag(line string) (MethodInfo, bool) {
	m := methodTagRe.FindStringSubmatch(line)
	if m == nil {
		return MethodInfo{}, false
	}

	method := MethodInfo{
		Name:       m[3],
		Visibility: Public,
		Static:     m[1] != "",
		Virtual:    true,
	}

	if m[2] != "" {
		method.ReturnType = doctype.ConcreteReturn(m[2])
	}

	for _, pm := range methodParamRe.FindAllStringSubmatch(m[4], -1) {
		method.Parameters = append(method.Parameters, ParameterInfo{
			Name: pm[2],
			Type: pm[1],
		})
	}

	return method, true
}

// splitGenericArgs splits "A, B" style generic argument lists, leaving
// commas nested in generics or shapes alone.
func splitGenericArgs(inner string) []string {
	var args []string
	depth := 0
	start := 0

	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '<', '{', '(':
			depth++
		case '>', '}', ')':
			depth--
		case ',':
			if depth == 0 {
				if arg := strings.TrimSpace(inner[start:i]); arg != "" {
					args = append(args, arg)
				}
				start = i + 1
			}
		}
	}
	if arg := strings.TrimSpace(inner[start:]); arg != "" {
		args = append(args, arg)
	}
	return args
}
