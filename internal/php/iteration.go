package php

import (
	"strconv"
	"strings"

	"github.com/phpls/phpls/internal/php/doctype"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// elementOrigins determines what iterating a subject expression yields per
// element: literal arrays resolve structurally, annotated types through
// their generic value argument, collection classes through the generic
// arguments they pass to the iteration interfaces.
func (ctx *ResolutionContext) elementOrigins(subject *tree_sitter.Node) []origin {
	return ctx.iterationOrigins(subject, false)
}

// keyOrigins determines what iterating a subject yields as keys.
func (ctx *ResolutionContext) keyOrigins(subject *tree_sitter.Node) []origin {
	return ctx.iterationOrigins(subject, true)
}

func (ctx *ResolutionContext) iterationOrigins(subject *tree_sitter.Node, wantKey bool) []origin {
	if subject == nil || ctx.depth > maxFlowDepth {
		return nil
	}

	switch subject.Kind() {
	case "variable_name":
		name := ctx.variableName(subject)

		sub := *ctx
		sub.Symbol = name
		sub.Offset = subject.StartByte()
		sub.depth = ctx.depth + 1

		var origins []origin
		for _, o := range resolveOrigins(&sub, ctx.root) {
			if o.expr != nil && o.expr.Kind() == "array_creation_expression" {
				origins = append(origins, ctx.arrayLiteralOrigins(o.expr, wantKey)...)
				origins = append(origins, ctx.appendedElementOrigins(subject, name, wantKey)...)
				continue
			}
			origins = append(origins, ctx.originIterationOrigins(o, wantKey)...)
		}
		return origins

	case "array_creation_expression":
		return ctx.arrayLiteralOrigins(subject, wantKey)

	case "parenthesized_expression":
		return ctx.iterationOrigins(subject.NamedChild(0), wantKey)
	}

	raw := ctx.rawTypeOfExpression(subject)
	if raw != "" {
		return ctx.typeIterationOrigins(raw, wantKey)
	}
	return nil
}

func (ctx *ResolutionContext) originIterationOrigins(o origin, wantKey bool) []origin {
	raw := o.typ
	if raw == "" {
		raw = ctx.rawTypeOfExpression(o.expr)
	}
	if raw == "" {
		return nil
	}
	return ctx.typeIterationOrigins(raw, wantKey)
}

// typeIterationOrigins derives the per-element type of a type expression.
func (ctx *ResolutionContext) typeIterationOrigins(raw string, wantKey bool) []origin {
	var origins []origin

	for _, part := range doctype.SplitUnion(raw) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if doctype.IsShape(part) {
			if wantKey {
				continue
			}
			for _, entry := range doctype.ShapeEntries(part) {
				if entry.Type != "" {
					origins = append(origins, origin{typ: entry.Type})
				}
			}
			continue
		}

		var elem string
		if wantKey {
			elem = doctype.ExtractGenericKeyType(part)
		} else {
			elem = doctype.ExtractGenericValueType(part)
		}
		if elem != "" {
			origins = append(origins, origin{typ: elem})
			continue
		}

		name := doctype.CleanType(part)
		if name == "" || doctype.IsScalar(name) {
			continue
		}
		if class := ctx.lookupClassName(name); class != nil {
			origins = append(origins, ctx.collectionOrigins(class, wantKey)...)
		}
	}

	return origins
}

// collectionOrigins inspects a collection class's hierarchy for the
// generic arguments it hands to the iteration interfaces.
func (ctx *ResolutionContext) collectionOrigins(class *ClassInfo, wantKey bool) []origin {
	var origins []origin
	visited := make(map[string]bool)

	var walk func(c *ClassInfo, depth int)
	walk = func(c *ClassInfo, depth int) {
		if c == nil || depth > maxHierarchyDepth || visited[c.Name] {
			return
		}
		visited[c.Name] = true

		for target, args := range c.GenericArguments {
			base := shortName(doctype.CleanType(target))
			if !collectionInterfaces[base] || len(args) == 0 {
				continue
			}
			if wantKey {
				if len(args) >= 2 {
					origins = append(origins, origin{typ: args[0]})
				}
				continue
			}
			origins = append(origins, origin{typ: args[len(args)-1]})
		}

		if c.Parent != "" {
			walk(ctx.loadClass(c.Parent), depth+1)
		}
		for _, iface := range c.Interfaces {
			walk(ctx.loadClass(iface), depth+1)
		}
	}

	walk(class, 0)
	return origins
}

// arrayLiteralOrigins resolves the element (or key) expressions of an
// array literal, unioning spread sources into the result.
func (ctx *ResolutionContext) arrayLiteralOrigins(lit *tree_sitter.Node, wantKey bool) []origin {
	var origins []origin

	for i := uint(0); i < lit.NamedChildCount(); i++ {
		element := lit.NamedChild(i)
		if element == nil {
			continue
		}

		if element.Kind() == "variadic_unpacking" {
			if inner := element.NamedChild(0); inner != nil {
				origins = append(origins, ctx.iterationOrigins(inner, wantKey)...)
			}
			continue
		}
		if element.Kind() != "array_element_initializer" {
			continue
		}

		if spread := findDirectChildOfKind(element, "variadic_unpacking"); spread != nil {
			if inner := spread.NamedChild(0); inner != nil {
				origins = append(origins, ctx.iterationOrigins(inner, wantKey)...)
			}
			continue
		}

		if wantKey {
			if element.NamedChildCount() >= 2 {
				origins = append(origins, origin{expr: element.NamedChild(0)})
			}
			continue
		}
		origins = append(origins, origin{expr: element.NamedChild(element.NamedChildCount() - 1)})
	}

	return origins
}

// appendedElementOrigins folds later "$v[] = expr" statements into a
// literal array's element type.
func (ctx *ResolutionContext) appendedElementOrigins(near *tree_sitter.Node, name string, wantKey bool) []origin {
	if wantKey {
		return nil
	}

	scope := near
	for scope != nil && !isFunctionBoundary(scope) && scope.Kind() != "program" {
		scope = scope.Parent()
	}
	if scope == nil {
		return nil
	}

	var origins []origin
	var visit func(n *tree_sitter.Node)
	visit = func(n *tree_sitter.Node) {
		if n == nil || n.StartByte() >= ctx.Offset {
			return
		}
		if isFunctionBoundary(n) && n != scope {
			return
		}

		if n.Kind() == "assignment_expression" {
			left := n.ChildByFieldName("left")
			right := n.ChildByFieldName("right")
			if left != nil && right != nil && left.Kind() == "subscript_expression" {
				target := left.NamedChild(0)
				if target != nil && target.Kind() == "variable_name" &&
					ctx.variableName(target) == name && left.NamedChildCount() == 1 {
					origins = append(origins, origin{expr: right})
				}
			}
		}

		for i := uint(0); i < n.NamedChildCount(); i++ {
			visit(n.NamedChild(i))
		}
	}
	visit(scope)

	return origins
}

// arrayEntryByKey finds the value expression of one literal array entry by
// its string key or 0-based position.
func (ctx *ResolutionContext) arrayEntryByKey(lit *tree_sitter.Node, key string) *tree_sitter.Node {
	position := 0

	for i := uint(0); i < lit.NamedChildCount(); i++ {
		element := lit.NamedChild(i)
		if element == nil || element.Kind() != "array_element_initializer" {
			continue
		}
		if findDirectChildOfKind(element, "variadic_unpacking") != nil {
			continue
		}

		if element.NamedChildCount() >= 2 {
			keyNode := element.NamedChild(0)
			keyText := strings.Trim(string(keyNode.Utf8Text(ctx.Content)), "'\"")
			if keyText == key {
				return element.NamedChild(element.NamedChildCount() - 1)
			}
			continue
		}

		if strconv.Itoa(position) == key {
			return element.NamedChild(0)
		}
		position++
	}

	return nil
}

// rawTypeOfExpression derives a type expression string for an expression,
// used where member chains need the annotated rather than the resolved
// view.
func (ctx *ResolutionContext) rawTypeOfExpression(expr *tree_sitter.Node) string {
	if expr == nil || ctx.depth > maxFlowDepth {
		return ""
	}

	switch expr.Kind() {
	case "variable_name":
		name := ctx.variableName(expr)
		if name == "this" {
			if ctx.EnclosingClass != nil {
				return ctx.EnclosingClass.Name
			}
			return ""
		}
		sub := *ctx
		sub.Symbol = name
		sub.Offset = expr.StartByte()
		sub.depth = ctx.depth + 1
		for _, o := range resolveOrigins(&sub, ctx.root) {
			if o.typ != "" {
				return o.typ
			}
			if raw := sub.rawTypeOfExpression(o.expr); raw != "" {
				return raw
			}
		}
		return ""

	case "parenthesized_expression", "clone_expression":
		return ctx.rawTypeOfExpression(expr.NamedChild(0))

	case "assignment_expression":
		return ctx.rawTypeOfExpression(expr.ChildByFieldName("right"))

	case "object_creation_expression":
		for i := uint(0); i < expr.NamedChildCount(); i++ {
			child := expr.NamedChild(i)
			if child != nil && (child.Kind() == "name" || child.Kind() == "qualified_name") {
				if class := ctx.lookupClassName(string(child.Utf8Text(ctx.Content))); class != nil {
					return class.Name
				}
				return ctx.resolveDocTypeString(string(child.Utf8Text(ctx.Content)))
			}
		}
		return ""

	case "member_call_expression", "nullsafe_member_call_expression", "scoped_call_expression":
		static := expr.Kind() == "scoped_call_expression"
		nameNode := expr.ChildByFieldName("name")
		if nameNode == nil {
			return ""
		}
		for _, subject := range ctx.callSubjects(expr, static) {
			method, declaring := ctx.lookupMethod(subject, string(nameNode.Utf8Text(ctx.Content)))
			if method == nil {
				continue
			}
			if raw := ctx.evaluateReturn(expr, subject, declaring, method); raw != "" {
				return ExpandTypeAliases(ctx.loadClass, declaring, raw)
			}
		}
		return ""

	case "function_call_expression":
		fnNode := expr.ChildByFieldName("function")
		if fnNode == nil || ctx.LoadFunction == nil {
			return ""
		}
		if fnNode.Kind() != "name" && fnNode.Kind() != "qualified_name" {
			return ""
		}
		fn := ctx.LoadFunction(string(fnNode.Utf8Text(ctx.Content)))
		if fn == nil {
			return ""
		}
		if fn.ReturnType.IsConditional() {
			return fn.ReturnType.Evaluate(ctx.callArguments(expr, fn))
		}
		return fn.ReturnType.Concrete

	case "member_access_expression", "nullsafe_member_access_expression", "scoped_property_access_expression":
		static := expr.Kind() == "scoped_property_access_expression"
		nameNode := expr.ChildByFieldName("name")
		if nameNode == nil {
			return ""
		}
		propName := strings.TrimPrefix(string(nameNode.Utf8Text(ctx.Content)), "$")

		var subjects []*ClassInfo
		if static {
			if scope := expr.ChildByFieldName("scope"); scope != nil {
				subjects = ctx.subjectFromScopeText(string(scope.Utf8Text(ctx.Content)))
			}
		} else if object := expr.ChildByFieldName("object"); object != nil {
			subjects = ctx.resolveExpressionTypes(object)
		}
		for _, subject := range subjects {
			property, declaring := ctx.lookupProperty(subject, propName)
			if property != nil && property.Type != "" {
				return ExpandTypeAliases(ctx.loadClass, declaring, property.Type)
			}
		}
		return ""

	case "class_constant_access_expression":
		if expr.NamedChildCount() < 2 {
			return ""
		}
		scope := expr.NamedChild(0)
		member := expr.NamedChild(expr.NamedChildCount() - 1)
		constName := string(member.Utf8Text(ctx.Content))
		if constName == "class" {
			return "class-string"
		}
		for _, subject := range ctx.subjectFromScopeText(string(scope.Utf8Text(ctx.Content))) {
			declaring := FindDeclaringClassOfKind(ctx.loadClass, subject, constName, MemberConstant)
			if declaring != nil {
				return declaring.Constants[constName].Type
			}
		}
		return ""

	case "array_creation_expression":
		return "array"
	}

	return ""
}
