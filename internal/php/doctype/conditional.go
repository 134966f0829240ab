package doctype

import (
	"strings"
)

// ConditionKind describes what a conditional return type tests on the
// parameter it is keyed to.
type ConditionKind int

const (
	// CondClassString matches when the argument is a class-string literal
	// such as User::class.
	CondClassString ConditionKind = iota
	// CondIsNull matches when the argument is the null literal.
	CondIsNull
	// CondIsType matches when the argument's type is the named type.
	CondIsType
)

// ReturnType is a method return type that is either concrete or conditional
// on one of the method's parameters. Exactly one of Concrete and Cond is
// set.
type ReturnType struct {
	Concrete string
	Cond     *Conditional
}

// Conditional is one "($param is <condition> ? <then> : <else>)" node. The
// else branch may itself be conditional, nesting is finite by construction.
type Conditional struct {
	Param    string
	Kind     ConditionKind
	CondType string // T of class-string<T>, or the bare type name for CondIsType
	Then     ReturnType
	Else     ReturnType
}

// IsConditional reports whether the return type carries a condition.
func (rt ReturnType) IsConditional() bool {
	return rt.Cond != nil
}

// IsZero reports whether the return type is entirely absent.
func (rt ReturnType) IsZero() bool {
	return rt.Cond == nil && rt.Concrete == ""
}

// String renders the return type back as a docblock-style expression.
func (rt ReturnType) String() string {
	if rt.Cond == nil {
		return rt.Concrete
	}

	var cond string
	switch rt.Cond.Kind {
	case CondClassString:
		cond = "class-string<" + rt.Cond.CondType + ">"
	case CondIsNull:
		cond = "null"
	default:
		cond = rt.Cond.CondType
	}

	return "($" + rt.Cond.Param + " is " + cond + " ? " + rt.Cond.Then.String() + " : " + rt.Cond.Else.String() + ")"
}

// ConcreteReturn wraps a plain type expression.
func ConcreteReturn(expr string) ReturnType {
	return ReturnType{Concrete: strings.TrimSpace(expr)}
}

// ParseReturnType parses a @return expression into a ReturnType, detecting
// the conditional form. Anything that does not parse as a conditional is
// treated as a concrete type expression.
func ParseReturnType(expr string) ReturnType {
	if cond := ParseConditional(expr); cond != nil {
		return ReturnType{Cond: cond}
	}
	return ConcreteReturn(expr)
}

// ParseConditional parses "($param is <condition> ? <then> : <else>)" with
// arbitrary whitespace and line wrapping. It returns nil when expr is not a
// well-formed conditional.
func ParseConditional(expr string) *Conditional {
	expr = normalizeSpace(expr)

	if !strings.HasPrefix(expr, "(") || !strings.HasSuffix(expr, ")") {
		return nil
	}
	inner := strings.TrimSpace(expr[1 : len(expr)-1])

	if !strings.HasPrefix(inner, "$") {
		return nil
	}

	isIdx := strings.Index(inner, " is ")
	if isIdx < 0 {
		return nil
	}

	param := strings.TrimSpace(inner[1:isIdx])
	rest := strings.TrimSpace(inner[isIdx+len(" is "):])

	question := topLevelIndex(rest, '?')
	if question < 0 {
		return nil
	}

	condition := strings.TrimSpace(rest[:question])
	branches := strings.TrimSpace(rest[question+1:])

	colon := topLevelIndex(branches, ':')
	if colon < 0 {
		return nil
	}

	thenExpr := strings.TrimSpace(branches[:colon])
	elseExpr := strings.TrimSpace(branches[colon+1:])
	if param == "" || condition == "" || thenExpr == "" || elseExpr == "" {
		return nil
	}

	cond := &Conditional{
		Param: param,
		Then:  ParseReturnType(thenExpr),
		Else:  ParseReturnType(elseExpr),
	}

	switch {
	case strings.HasPrefix(condition, "class-string"):
		cond.Kind = CondClassString
		cond.CondType = CleanType(strings.TrimPrefix(genericValue(condition), "\\"))
	case strings.EqualFold(condition, "null"):
		cond.Kind = CondIsNull
	default:
		cond.Kind = CondIsType
		cond.CondType = CleanType(condition)
	}

	return cond
}

// normalizeSpace collapses all whitespace runs (including newlines and the
// leading "*" of wrapped docblock lines) into single spaces.
func normalizeSpace(expr string) string {
	fields := strings.FieldsFunc(expr, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	var kept []string
	for _, f := range fields {
		if f == "*" {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// Argument describes one actual call argument as far as the caller could
// determine it. Zero values mean "unknown".
type Argument struct {
	// ClassLiteral is the class name when the argument is a Foo::class
	// literal.
	ClassLiteral string
	// IsNull is set when the argument is the null literal.
	IsNull bool
	// TypeName is the resolved type of the argument when neither literal
	// form applies.
	TypeName string
}

// Evaluate resolves a return type against the actual arguments of one call
// site. args maps parameter names (without "$") to what is known about the
// matching argument. The result is a concrete type expression, or "" when
// nothing could be determined.
func (rt ReturnType) Evaluate(args map[string]Argument) string {
	if rt.Cond == nil {
		return rt.Concrete
	}
	return rt.Cond.evaluate(args)
}

func (c *Conditional) evaluate(args map[string]Argument) string {
	arg, known := args[c.Param]

	matched := false
	substitute := ""

	if known {
		switch c.Kind {
		case CondClassString:
			if arg.ClassLiteral != "" {
				matched = true
				substitute = arg.ClassLiteral
			}
		case CondIsNull:
			matched = arg.IsNull
		case CondIsType:
			name := arg.TypeName
			if name == "" {
				name = arg.ClassLiteral
			}
			matched = name != "" && strings.EqualFold(CleanType(name), c.CondType)
		}
	}

	branch := c.Else
	if matched {
		branch = c.Then
	}

	result := branch.Evaluate(args)

	// A class-string<T> condition binds T to the argument's class literal
	// inside the taken branch.
	if matched && c.Kind == CondClassString && c.CondType != "" && substitute != "" {
		result = substituteTemplate(result, c.CondType, substitute)
	}

	return result
}

// substituteTemplate replaces standalone occurrences of the template
// parameter name in a type expression.
func substituteTemplate(expr, param, replacement string) string {
	if expr == param {
		return replacement
	}

	var out strings.Builder
	for i := 0; i < len(expr); {
		if strings.HasPrefix(expr[i:], param) && isBoundary(expr, i, len(param)) {
			out.WriteString(replacement)
			i += len(param)
			continue
		}
		out.WriteByte(expr[i])
		i++
	}
	return out.String()
}

func isBoundary(expr string, start, length int) bool {
	before := start == 0 || !isWordByte(expr[start-1])
	end := start + length
	after := end >= len(expr) || !isWordByte(expr[end])
	return before && after
}

func isWordByte(b byte) bool {
	return b == '_' || b == '\\' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// SynthesizeConditional builds the conditional a @template method implies
// when no explicit conditional annotation exists: a parameter annotated as
// class-string<T> (or bare T) combined with a return type mentioning T
// behaves like ($param is class-string<T> ? T-substituted : declared
// return). paramTypes maps parameter names (without "$") to their annotated
// types.
func SynthesizeConditional(templates []string, paramTypes map[string]string, returnType string) *Conditional {
	returnType = strings.TrimSpace(returnType)
	if returnType == "" {
		return nil
	}

	for _, tpl := range templates {
		if !mentionsTemplate(returnType, tpl) {
			continue
		}

		for param, pType := range paramTypes {
			bound := false
			for _, part := range SplitUnion(pType) {
				part = strings.TrimSpace(part)
				if strings.HasPrefix(part, "class-string") && CleanType(genericValue(part)) == tpl {
					bound = true
				} else if part == tpl {
					bound = true
				}
			}
			if !bound {
				continue
			}

			return &Conditional{
				Param:    param,
				Kind:     CondClassString,
				CondType: tpl,
				Then:     ConcreteReturn(returnType),
				Else:     ConcreteReturn(returnType),
			}
		}
	}

	return nil
}

func mentionsTemplate(expr, tpl string) bool {
	idx := 0
	for {
		pos := strings.Index(expr[idx:], tpl)
		if pos < 0 {
			return false
		}
		if isBoundary(expr, idx+pos, len(tpl)) {
			return true
		}
		idx += pos + 1
	}
}
