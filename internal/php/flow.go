package php

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/phpls/phpls/internal/php/doctype"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// maxFlowDepth bounds recursive variable-to-variable hops so reference
// cycles ($a = $b; $b = $a) terminate.
const maxFlowDepth = 15

// collectionInterfaces is the fixed interface set whose generic arguments
// describe what a concrete collection class yields during iteration.
var collectionInterfaces = map[string]bool{
	"Iterator":          true,
	"IteratorAggregate": true,
	"Traversable":       true,
	"ArrayAccess":       true,
	"Enumerable":        true,
}

// ResolutionContext carries one resolution query: a symbol at a cursor
// offset plus everything the engine may consult. It is created per request
// and discarded afterwards.
type ResolutionContext struct {
	// Symbol is the variable name without its "$" prefix.
	Symbol string
	// Offset is the byte offset of the query position.
	Offset uint
	// EnclosingClass is the class whose body contains the cursor, if any.
	EnclosingClass *ClassInfo
	// FileClasses are all classes declared in the current file.
	FileClasses []*ClassInfo
	// Content is the raw file text.
	Content []byte

	LoadClass    ClassLoader
	LoadFunction FunctionLoader

	root  *tree_sitter.Node
	scope *FileScope
	depth int
}

// origin is one place a variable's value provably comes from: either a
// syntactic right-hand side or an annotated/declared type expression.
type origin struct {
	expr *tree_sitter.Node
	typ  string
}

// scanOutcome is the result of inspecting one statement during the
// backward scan.
type scanOutcome struct {
	origins []origin
	// matched is set when the statement assigns or clears the symbol.
	matched bool
	// stop is set for unconditional matches: the scan ends at this
	// binding, keeping branch candidates collected on the way up.
	stop bool
}

var inlineVarRe = regexp.MustCompile(`@var\s+(\S+)\s+\$([A-Za-z_][A-Za-z0-9_]*)`)

// ParseInlineVar extracts the (type, variable) pair of an inline
// "/** @var Type $name */" annotation.
func ParseInlineVar(comment string) (typ string, name string, ok bool) {
	m := inlineVarRe.FindStringSubmatch(comment)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// ResolveVariable determines the candidate classes the context's symbol may
// hold at the cursor, by scanning the enclosing function body backwards.
// The result is ordered and de-duplicated by class name; absence of any
// binding yields an empty result.
func ResolveVariable(ctx *ResolutionContext, root *tree_sitter.Node) []*ClassInfo {
	origins := resolveOrigins(ctx, root)

	var classes []*ClassInfo
	for _, o := range origins {
		classes = append(classes, ctx.originClasses(o)...)
	}
	return dedupeClasses(classes)
}

// ResolveVariableType returns the best-effort raw type expression of the
// symbol at the cursor, for hover-style consumers. Empty when unknown.
func ResolveVariableType(ctx *ResolutionContext, root *tree_sitter.Node) string {
	origins := resolveOrigins(ctx, root)
	for _, o := range origins {
		if o.typ != "" {
			return o.typ
		}
		if t := ctx.rawTypeOfExpression(o.expr); t != "" {
			return t
		}
	}
	return ""
}

func resolveOrigins(ctx *ResolutionContext, root *tree_sitter.Node) []origin {
	if ctx.depth > maxFlowDepth || root == nil || ctx.Symbol == "" {
		return nil
	}
	ctx.root = root

	if ctx.Symbol == "this" {
		if ctx.EnclosingClass != nil {
			return []origin{{typ: ctx.EnclosingClass.Name}}
		}
		return nil
	}

	cursor := root.NamedDescendantForByteRange(ctx.Offset, ctx.Offset)
	if cursor == nil {
		cursor = root
	}

	var conditional []origin

	node := cursor
	for {
		parent := node.Parent()
		if parent == nil {
			break
		}

		if isBlockNode(parent) {
			origins, stopped := ctx.scanBlock(parent, node)
			conditional = append(conditional, origins...)
			if stopped {
				// Branch assignments after the binding stay possible.
				return conditional
			}
		}

		// Bindings introduced by enclosing constructs apply inside their
		// bodies.
		switch parent.Kind() {
		case "foreach_statement":
			if origins, ok := ctx.foreachBinding(parent); ok {
				return append(conditional, origins...)
			}
		case "catch_clause":
			if origins, ok := ctx.catchBinding(parent); ok {
				return append(conditional, origins...)
			}
		}

		if isFunctionBoundary(parent) {
			// Parameters are the outermost binding of a scope.
			if origins, ok := ctx.parameterBinding(parent); ok {
				conditional = append(conditional, origins...)
			}
			return conditional
		}

		node = parent
	}

	return conditional
}

// scanBlock walks the statements of one block that precede upTo, in
// reverse source order.
func (ctx *ResolutionContext) scanBlock(block, upTo *tree_sitter.Node) ([]origin, bool) {
	var conditional []origin

	for i := int(block.NamedChildCount()) - 1; i >= 0; i-- {
		stmt := block.NamedChild(uint(i))
		if stmt == nil || stmt.StartByte() >= upTo.StartByte() {
			continue
		}

		outcome := ctx.scanStatement(stmt)
		if outcome.stop {
			return append(conditional, outcome.origins...), true
		}
		conditional = append(conditional, outcome.origins...)
	}

	return conditional, false
}

// scanStatement classifies one statement of the cursor's block chain. A
// direct assignment or unset is unconditional; branch constructs
// contribute their nested assignments as conditional candidates.
func (ctx *ResolutionContext) scanStatement(stmt *tree_sitter.Node) scanOutcome {
	switch stmt.Kind() {
	case "expression_statement":
		if expr := stmt.NamedChild(0); expr != nil {
			return ctx.scanExpressionStatement(expr)
		}

	case "unset_statement":
		if ctx.unsetClears(stmt) {
			return scanOutcome{matched: true, stop: true}
		}

	case "comment":
		text := string(stmt.Utf8Text(ctx.Content))
		if typ, name, ok := ParseInlineVar(text); ok && name == ctx.Symbol {
			return scanOutcome{origins: []origin{{typ: ctx.resolveDocTypeString(typ)}}, matched: true, stop: true}
		}

	case "foreach_statement":
		if origins, ok := ctx.foreachBinding(stmt); ok {
			return scanOutcome{origins: origins, matched: true, stop: true}
		}
		return scanOutcome{origins: ctx.scanNested(stmt)}

	case "if_statement", "try_statement", "while_statement", "for_statement",
		"switch_statement", "do_statement":
		return scanOutcome{origins: ctx.scanNested(stmt)}
	}

	return scanOutcome{}
}

func (ctx *ResolutionContext) scanExpressionStatement(expr *tree_sitter.Node) scanOutcome {
	switch expr.Kind() {
	case "assignment_expression":
		left := expr.ChildByFieldName("left")
		right := expr.ChildByFieldName("right")
		if left == nil || right == nil {
			return scanOutcome{}
		}

		switch left.Kind() {
		case "variable_name":
			if ctx.variableName(left) == ctx.Symbol {
				return scanOutcome{origins: []origin{{expr: right}}, matched: true, stop: true}
			}
		case "list_literal":
			if origins, ok := ctx.destructureBinding(left, right); ok {
				return scanOutcome{origins: origins, matched: true, stop: true}
			}
		}

	case "unset_statement":
		if ctx.unsetClears(expr) {
			return scanOutcome{matched: true, stop: true}
		}
	}

	return scanOutcome{}
}

// unsetClears reports whether an unset(...) names the bare symbol. Clearing
// a property or array entry leaves the variable's type alone.
func (ctx *ResolutionContext) unsetClears(node *tree_sitter.Node) bool {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		arg := node.NamedChild(i)
		if arg != nil && arg.Kind() == "variable_name" && ctx.variableName(arg) == ctx.Symbol {
			return true
		}
	}
	return false
}

// scanNested collects assignments to the symbol anywhere inside a branch
// construct, without crossing into nested closures. Unsets inside a branch
// do not clear state for code after the branch.
func (ctx *ResolutionContext) scanNested(node *tree_sitter.Node) []origin {
	var origins []origin

	var visit func(n *tree_sitter.Node)
	visit = func(n *tree_sitter.Node) {
		if n == nil || n.StartByte() >= ctx.Offset {
			return
		}
		if isFunctionBoundary(n) {
			return
		}

		switch n.Kind() {
		case "assignment_expression":
			left := n.ChildByFieldName("left")
			right := n.ChildByFieldName("right")
			if left != nil && right != nil {
				if left.Kind() == "variable_name" && ctx.variableName(left) == ctx.Symbol {
					origins = append(origins, origin{expr: right})
				} else if left.Kind() == "list_literal" {
					if o, ok := ctx.destructureBinding(left, right); ok {
						origins = append(origins, o...)
					}
				}
			}
		case "foreach_statement":
			if o, ok := ctx.foreachBinding(n); ok {
				origins = append(origins, o...)
			}
		}

		for i := uint(0); i < n.NamedChildCount(); i++ {
			visit(n.NamedChild(i))
		}
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		visit(node.NamedChild(i))
	}

	return origins
}

func (ctx *ResolutionContext) variableName(node *tree_sitter.Node) string {
	return strings.TrimPrefix(string(node.Utf8Text(ctx.Content)), "$")
}

// foreachBinding resolves the element (or key) type binding a foreach
// introduces for the symbol.
func (ctx *ResolutionContext) foreachBinding(stmt *tree_sitter.Node) ([]origin, bool) {
	subject, key, value := foreachParts(stmt)
	if subject == nil {
		return nil, false
	}

	if value != nil {
		if inner := unwrapForeachValue(value); inner != nil && ctx.variableName(inner) == ctx.Symbol {
			return ctx.elementOrigins(subject), true
		}
		// Destructuring directly in the foreach head.
		if value.Kind() == "list_literal" {
			if entryKey, found := ctx.listEntryKey(value); found {
				elems := ctx.elementOrigins(subject)
				return ctx.narrowOriginsByKey(elems, entryKey), true
			}
		}
	}

	if key != nil && key.Kind() == "variable_name" && ctx.variableName(key) == ctx.Symbol {
		return ctx.keyOrigins(subject), true
	}

	return nil, false
}

// foreachParts splits a foreach statement into its subject expression and
// the key/value binding nodes.
func foreachParts(stmt *tree_sitter.Node) (subject, key, value *tree_sitter.Node) {
	for i := uint(0); i < stmt.NamedChildCount(); i++ {
		child := stmt.NamedChild(i)
		if child == nil {
			continue
		}

		switch child.Kind() {
		case "compound_statement", "colon_block":
			return
		case "pair":
			if child.NamedChildCount() >= 2 {
				key = child.NamedChild(0)
				value = child.NamedChild(child.NamedChildCount() - 1)
			}
		case "variable_name", "by_ref", "list_literal":
			if subject == nil {
				subject = child
			} else {
				value = child
			}
		default:
			if subject == nil {
				subject = child
			}
		}
	}
	return
}

func unwrapForeachValue(value *tree_sitter.Node) *tree_sitter.Node {
	switch value.Kind() {
	case "variable_name":
		return value
	case "by_ref":
		for i := uint(0); i < value.NamedChildCount(); i++ {
			if child := value.NamedChild(i); child != nil && child.Kind() == "variable_name" {
				return child
			}
		}
	}
	return nil
}

// catchBinding resolves "catch (FooError|BarError $e)".
func (ctx *ResolutionContext) catchBinding(clause *tree_sitter.Node) ([]origin, bool) {
	varNode := findDirectChildOfKind(clause, "variable_name")
	if varNode == nil || ctx.variableName(varNode) != ctx.Symbol {
		return nil, false
	}

	var origins []origin
	for i := uint(0); i < clause.NamedChildCount(); i++ {
		child := clause.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "type_list", "named_type", "qualified_name", "name", "union_type":
			origins = append(origins, origin{typ: ctx.resolveDocTypeString(string(child.Utf8Text(ctx.Content)))})
		}
	}
	return origins, len(origins) > 0
}

// parameterBinding resolves the symbol against the enclosing callable's
// parameter list, preferring @param annotations over weak native hints.
func (ctx *ResolutionContext) parameterBinding(fn *tree_sitter.Node) ([]origin, bool) {
	params := findDirectChildOfKind(fn, "formal_parameters")
	if params == nil {
		return nil, false
	}

	doc := docCommentFor(fn, ctx.Content)
	var docParams map[string]string
	if doc != nil {
		docParams = doc.Params
	}

	for i := uint(0); i < params.NamedChildCount(); i++ {
		param := params.NamedChild(i)
		if param == nil {
			continue
		}

		varNode := findFirstNodeOfKind(param, "variable_name")
		if varNode == nil || ctx.variableName(varNode) != ctx.Symbol {
			continue
		}

		native := ""
		for j := uint(0); j < param.NamedChildCount(); j++ {
			child := param.NamedChild(j)
			if child != nil && typeNodeKinds[child.Kind()] {
				native = string(child.Utf8Text(ctx.Content))
				break
			}
		}

		merged := mergeDocType(ctx.resolveDocTypeString(native), ctx.resolveDocTypeString(docParams[ctx.Symbol]))
		if merged == "" {
			return nil, false
		}
		return []origin{{typ: merged}}, true
	}

	return nil, false
}

// destructureBinding handles "[$a, 'k' => $b] = $rhs" when the symbol is
// one of the targets: the matching key prefers an array-shape entry on the
// right-hand side's type, falling back to the generic element type.
func (ctx *ResolutionContext) destructureBinding(list, rhs *tree_sitter.Node) ([]origin, bool) {
	key, found := ctx.listEntryKey(list)
	if !found {
		return nil, false
	}

	// A literal array on the right resolves structurally.
	if rhs.Kind() == "array_creation_expression" {
		if entry := ctx.arrayEntryByKey(rhs, key); entry != nil {
			return []origin{{expr: entry}}, true
		}
	}

	raw := ctx.rawTypeOfExpression(rhs)
	if raw != "" {
		if shapeType := doctype.ExtractArrayShapeValueType(raw, key); shapeType != "" {
			return []origin{{typ: shapeType}}, true
		}
	}

	return ctx.elementOrigins(rhs), true
}

// listEntryKey locates the symbol inside a destructuring target and
// returns its lookup key: the literal key when present, the 0-based
// position otherwise.
func (ctx *ResolutionContext) listEntryKey(list *tree_sitter.Node) (string, bool) {
	position := 0

	for i := uint(0); i < list.NamedChildCount(); i++ {
		entry := list.NamedChild(i)
		if entry == nil {
			continue
		}

		switch entry.Kind() {
		case "variable_name":
			if ctx.variableName(entry) == ctx.Symbol {
				return strconv.Itoa(position), true
			}
			position++

		case "array_element_initializer":
			if entry.NamedChildCount() >= 2 {
				keyNode := entry.NamedChild(0)
				valueNode := entry.NamedChild(entry.NamedChildCount() - 1)
				if valueNode != nil && valueNode.Kind() == "variable_name" &&
					ctx.variableName(valueNode) == ctx.Symbol {
					return strings.Trim(string(keyNode.Utf8Text(ctx.Content)), "'\""), true
				}
			} else if entry.NamedChildCount() == 1 {
				valueNode := entry.NamedChild(0)
				if valueNode != nil && valueNode.Kind() == "variable_name" &&
					ctx.variableName(valueNode) == ctx.Symbol {
					return strconv.Itoa(position), true
				}
			}
			position++

		default:
			position++
		}
	}

	return "", false
}

// narrowOriginsByKey applies a shape-key lookup on annotated origins.
func (ctx *ResolutionContext) narrowOriginsByKey(origins []origin, key string) []origin {
	var narrowed []origin
	for _, o := range origins {
		if o.typ != "" {
			if t := doctype.ExtractArrayShapeValueType(o.typ, key); t != "" {
				narrowed = append(narrowed, origin{typ: t})
				continue
			}
		}
		narrowed = append(narrowed, o)
	}
	return narrowed
}

// originClasses resolves one origin to candidate classes.
func (ctx *ResolutionContext) originClasses(o origin) []*ClassInfo {
	if o.expr != nil {
		return ctx.resolveExpressionTypes(o.expr)
	}
	return ctx.typesFromTypeString(nil, o.typ)
}

// ResolveExpression determines the candidate classes of an arbitrary
// expression node, e.g. the subject of a member access chain.
func ResolveExpression(ctx *ResolutionContext, root *tree_sitter.Node, expr *tree_sitter.Node) []*ClassInfo {
	ctx.root = root
	return dedupeClasses(ctx.resolveExpressionTypes(expr))
}

func (ctx *ResolutionContext) resolveExpressionTypes(expr *tree_sitter.Node) []*ClassInfo {
	if expr == nil || ctx.depth > maxFlowDepth {
		return nil
	}

	switch expr.Kind() {
	case "object_creation_expression":
		for i := uint(0); i < expr.NamedChildCount(); i++ {
			child := expr.NamedChild(i)
			if child == nil {
				continue
			}
			if child.Kind() == "name" || child.Kind() == "qualified_name" {
				if class := ctx.lookupClassName(string(child.Utf8Text(ctx.Content))); class != nil {
					return []*ClassInfo{class}
				}
				return nil
			}
		}
		return nil

	case "variable_name":
		name := ctx.variableName(expr)
		if name == "this" {
			if ctx.EnclosingClass != nil {
				return []*ClassInfo{ctx.EnclosingClass}
			}
			return nil
		}
		sub := *ctx
		sub.Symbol = name
		sub.Offset = expr.StartByte()
		sub.depth = ctx.depth + 1
		return ResolveVariable(&sub, ctx.root)

	case "parenthesized_expression", "clone_expression":
		return ctx.resolveExpressionTypes(expr.NamedChild(0))

	case "assignment_expression":
		return ctx.resolveExpressionTypes(expr.ChildByFieldName("right"))

	case "member_call_expression", "nullsafe_member_call_expression":
		return ctx.resolveCallTypes(expr, false)

	case "scoped_call_expression":
		return ctx.resolveCallTypes(expr, true)

	case "function_call_expression":
		return ctx.resolveFunctionCallTypes(expr)

	case "member_access_expression", "nullsafe_member_access_expression":
		return ctx.resolvePropertyTypes(expr, false)

	case "scoped_property_access_expression":
		return ctx.resolvePropertyTypes(expr, true)

	case "class_constant_access_expression":
		return ctx.resolveConstantTypes(expr)

	case "match_expression":
		return ctx.resolveMatchTypes(expr)

	case "conditional_expression":
		var classes []*ClassInfo
		if body := expr.ChildByFieldName("body"); body != nil {
			classes = append(classes, ctx.resolveExpressionTypes(body)...)
		}
		if alt := expr.ChildByFieldName("alternative"); alt != nil {
			classes = append(classes, ctx.resolveExpressionTypes(alt)...)
		}
		return classes

	case "binary_expression":
		// Only null-coalescing joins object types.
		if op := expr.ChildByFieldName("operator"); op != nil && string(op.Utf8Text(ctx.Content)) == "??" {
			var classes []*ClassInfo
			for i := uint(0); i < expr.NamedChildCount(); i++ {
				classes = append(classes, ctx.resolveExpressionTypes(expr.NamedChild(i))...)
			}
			return classes
		}
		return nil
	}

	return nil
}

// resolveMatchTypes unions the resolved type of every match arm body.
func (ctx *ResolutionContext) resolveMatchTypes(expr *tree_sitter.Node) []*ClassInfo {
	block := findDirectChildOfKind(expr, "match_block")
	if block == nil {
		return nil
	}

	var classes []*ClassInfo
	for i := uint(0); i < block.NamedChildCount(); i++ {
		arm := block.NamedChild(i)
		if arm == nil {
			continue
		}
		if arm.Kind() != "match_conditional_expression" && arm.Kind() != "match_default_expression" {
			continue
		}

		body := arm.ChildByFieldName("return_expression")
		if body == nil {
			body = arm.NamedChild(arm.NamedChildCount() - 1)
		}
		classes = append(classes, ctx.resolveExpressionTypes(body)...)
	}
	return classes
}

// resolveCallTypes resolves the return type of a method call, evaluating
// conditional return trees against the actual arguments.
func (ctx *ResolutionContext) resolveCallTypes(call *tree_sitter.Node, static bool) []*ClassInfo {
	nameNode := call.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	methodName := string(nameNode.Utf8Text(ctx.Content))

	subjects := ctx.callSubjects(call, static)

	for _, subject := range subjects {
		method, declaring := ctx.lookupMethod(subject, methodName)
		if method == nil {
			continue
		}

		raw := ctx.evaluateReturn(call, subject, declaring, method)
		if raw == "" {
			continue
		}
		if classes := ctx.typesFromContextualType(subject, declaring, raw); len(classes) > 0 {
			return classes
		}
	}

	return nil
}

// callSubjects resolves what a call's receiver may be.
func (ctx *ResolutionContext) callSubjects(call *tree_sitter.Node, static bool) []*ClassInfo {
	if static {
		scope := call.ChildByFieldName("scope")
		if scope == nil {
			return nil
		}
		return ctx.subjectFromScopeText(string(scope.Utf8Text(ctx.Content)))
	}

	object := call.ChildByFieldName("object")
	if object == nil {
		return nil
	}
	return ctx.resolveExpressionTypes(object)
}

// subjectFromScopeText resolves self/static/parent or a class name.
func (ctx *ResolutionContext) subjectFromScopeText(text string) []*ClassInfo {
	switch text {
	case "self", "static", "$this":
		if ctx.EnclosingClass != nil {
			return []*ClassInfo{ctx.EnclosingClass}
		}
		return nil
	case "parent":
		if ctx.EnclosingClass != nil && ctx.EnclosingClass.Parent != "" {
			if parent := ctx.loadClass(ctx.EnclosingClass.Parent); parent != nil {
				return []*ClassInfo{parent}
			}
		}
		return nil
	default:
		if class := ctx.lookupClassName(text); class != nil {
			return []*ClassInfo{class}
		}
		return nil
	}
}

// lookupMethod finds a method through the full hierarchy, honoring trait
// aliases.
func (ctx *ResolutionContext) lookupMethod(class *ClassInfo, name string) (*MethodInfo, *ClassInfo) {
	if class == nil {
		return nil, nil
	}

	target := name
	if method, sourceTrait, ok := ResolveTraitAlias(class, name); ok {
		target = method
		if sourceTrait != "" {
			if trait := ctx.loadClass(sourceTrait); trait != nil {
				class = trait
			}
		}
	}

	declaring := FindDeclaringClassOfKind(ctx.loadClass, class, target, MemberMethod)
	if declaring == nil {
		return nil, nil
	}
	method := declaring.Methods[target]
	return &method, declaring
}

func (ctx *ResolutionContext) lookupProperty(class *ClassInfo, name string) (*PropertyInfo, *ClassInfo) {
	declaring := FindDeclaringClassOfKind(ctx.loadClass, class, name, MemberProperty)
	if declaring == nil {
		return nil, nil
	}
	property := declaring.Properties[name]
	return &property, declaring
}

// evaluateReturn turns a method's return type into a concrete type
// expression for one call site.
func (ctx *ResolutionContext) evaluateReturn(call *tree_sitter.Node, subject, declaring *ClassInfo, method *MethodInfo) string {
	if method.ReturnType.IsConditional() {
		return method.ReturnType.Evaluate(ctx.callArguments(call, method))
	}
	return method.ReturnType.Concrete
}

// callArguments maps actual arguments onto parameter names, both
// positionally and for named arguments.
func (ctx *ResolutionContext) callArguments(call *tree_sitter.Node, method *MethodInfo) map[string]doctype.Argument {
	args := make(map[string]doctype.Argument)

	argumentsNode := call.ChildByFieldName("arguments")
	if argumentsNode == nil {
		argumentsNode = findDirectChildOfKind(call, "arguments")
	}
	if argumentsNode == nil {
		return args
	}

	position := 0
	for i := uint(0); i < argumentsNode.NamedChildCount(); i++ {
		argNode := argumentsNode.NamedChild(i)
		if argNode == nil || argNode.Kind() != "argument" {
			continue
		}

		paramName := ""
		valueNode := argNode.NamedChild(argNode.NamedChildCount() - 1)

		if argNode.NamedChildCount() > 1 {
			if nameNode := argNode.NamedChild(0); nameNode != nil && nameNode.Kind() == "name" {
				paramName = string(nameNode.Utf8Text(ctx.Content))
			}
		}
		if paramName == "" {
			if position < len(method.Parameters) {
				paramName = method.Parameters[position].Name
			}
			position++
		}

		if paramName != "" && valueNode != nil {
			args[paramName] = ctx.describeArgument(valueNode)
		}
	}

	return args
}

// describeArgument classifies one actual argument for conditional-return
// evaluation.
func (ctx *ResolutionContext) describeArgument(expr *tree_sitter.Node) doctype.Argument {
	text := string(expr.Utf8Text(ctx.Content))

	switch expr.Kind() {
	case "null":
		return doctype.Argument{IsNull: true}

	case "class_constant_access_expression":
		if expr.NamedChildCount() >= 2 {
			member := expr.NamedChild(expr.NamedChildCount() - 1)
			if member != nil && string(member.Utf8Text(ctx.Content)) == "class" {
				scope := expr.NamedChild(0)
				if scope != nil {
					name := string(scope.Utf8Text(ctx.Content))
					if class := ctx.lookupClassName(name); class != nil {
						return doctype.Argument{ClassLiteral: class.Name}
					}
					return doctype.Argument{ClassLiteral: ctx.resolveDocTypeString(name)}
				}
			}
		}

	case "string", "encapsed_string":
		return doctype.Argument{TypeName: "string"}
	case "integer":
		return doctype.Argument{TypeName: "int"}
	case "float":
		return doctype.Argument{TypeName: "float"}
	case "boolean", "true", "false":
		return doctype.Argument{TypeName: "bool"}
	case "array_creation_expression":
		return doctype.Argument{TypeName: "array"}
	}

	if strings.EqualFold(text, "null") {
		return doctype.Argument{IsNull: true}
	}

	if classes := ctx.resolveExpressionTypes(expr); len(classes) > 0 {
		return doctype.Argument{TypeName: classes[0].Name}
	}
	return doctype.Argument{}
}

// resolveFunctionCallTypes resolves a free function call through the
// function loader.
func (ctx *ResolutionContext) resolveFunctionCallTypes(call *tree_sitter.Node) []*ClassInfo {
	fnNode := call.ChildByFieldName("function")
	if fnNode == nil {
		fnNode = call.NamedChild(0)
	}
	if fnNode == nil || ctx.LoadFunction == nil {
		return nil
	}

	switch fnNode.Kind() {
	case "name", "qualified_name":
	default:
		return nil
	}

	name := string(fnNode.Utf8Text(ctx.Content))
	fn := ctx.LoadFunction(name)
	if fn == nil {
		fn = ctx.LoadFunction(ctx.resolveDocTypeString(name))
	}
	if fn == nil {
		return nil
	}

	raw := fn.ReturnType.Concrete
	if fn.ReturnType.IsConditional() {
		raw = fn.ReturnType.Evaluate(ctx.callArguments(call, fn))
	}
	return ctx.typesFromTypeString(nil, raw)
}

// resolvePropertyTypes resolves "$subject->prop" and "Class::$prop".
func (ctx *ResolutionContext) resolvePropertyTypes(access *tree_sitter.Node, static bool) []*ClassInfo {
	nameNode := access.ChildByFieldName("name")
	if nameNode == nil {
		nameNode = access.NamedChild(access.NamedChildCount() - 1)
	}
	if nameNode == nil {
		return nil
	}
	propName := strings.TrimPrefix(string(nameNode.Utf8Text(ctx.Content)), "$")

	var subjects []*ClassInfo
	if static {
		if scope := access.ChildByFieldName("scope"); scope != nil {
			subjects = ctx.subjectFromScopeText(string(scope.Utf8Text(ctx.Content)))
		}
	} else {
		if object := access.ChildByFieldName("object"); object != nil {
			subjects = ctx.resolveExpressionTypes(object)
		}
	}

	for _, subject := range subjects {
		property, declaring := ctx.lookupProperty(subject, propName)
		if property == nil {
			continue
		}
		if classes := ctx.typesFromContextualType(subject, declaring, property.Type); len(classes) > 0 {
			return classes
		}
	}
	return nil
}

// resolveConstantTypes resolves "Class::CONST"; enum cases resolve to the
// enum itself.
func (ctx *ResolutionContext) resolveConstantTypes(access *tree_sitter.Node) []*ClassInfo {
	if access.NamedChildCount() < 2 {
		return nil
	}
	scope := access.NamedChild(0)
	member := access.NamedChild(access.NamedChildCount() - 1)
	if scope == nil || member == nil {
		return nil
	}

	constName := string(member.Utf8Text(ctx.Content))
	if constName == "class" {
		return nil
	}

	for _, subject := range ctx.subjectFromScopeText(string(scope.Utf8Text(ctx.Content))) {
		declaring := FindDeclaringClassOfKind(ctx.loadClass, subject, constName, MemberConstant)
		if declaring == nil {
			continue
		}
		constant := declaring.Constants[constName]
		if classes := ctx.typesFromContextualType(subject, declaring, constant.Type); len(classes) > 0 {
			return classes
		}
	}
	return nil
}

// typesFromContextualType resolves a type expression in the context of a
// call: local aliases of the declaring class expand first, then self/static
// map to the subject and parent to the declaring class's parent.
func (ctx *ResolutionContext) typesFromContextualType(subject, declaring *ClassInfo, expr string) []*ClassInfo {
	expr = ExpandTypeAliases(ctx.loadClass, declaring, expr)

	var classes []*ClassInfo
	for _, part := range doctype.SplitUnion(expr) {
		name := doctype.CleanType(part)
		if name == "" || doctype.IsScalar(name) {
			switch strings.ToLower(name) {
			case "self", "static":
				if subject != nil {
					classes = append(classes, subject)
				} else if declaring != nil {
					classes = append(classes, declaring)
				}
			case "parent":
				if declaring != nil && declaring.Parent != "" {
					if parent := ctx.loadClass(declaring.Parent); parent != nil {
						classes = append(classes, parent)
					}
				}
			}
			continue
		}
		if name == "$this" {
			if subject != nil {
				classes = append(classes, subject)
			}
			continue
		}
		if class := ctx.lookupClassName(name); class != nil {
			classes = append(classes, class)
		}
	}
	return classes
}

// typesFromTypeString resolves a plain type expression without a call
// context.
func (ctx *ResolutionContext) typesFromTypeString(declaring *ClassInfo, expr string) []*ClassInfo {
	return ctx.typesFromContextualType(ctx.EnclosingClass, declaring, expr)
}

// lookupClassName resolves a (possibly short) class name to a ClassInfo,
// preferring classes declared in the current file.
func (ctx *ResolutionContext) lookupClassName(name string) *ClassInfo {
	name = doctype.CleanType(name)
	if name == "" || doctype.IsScalar(name) {
		return nil
	}

	switch name {
	case "self", "static", "$this":
		return ctx.EnclosingClass
	case "parent":
		if ctx.EnclosingClass != nil && ctx.EnclosingClass.Parent != "" {
			return ctx.loadClass(ctx.EnclosingClass.Parent)
		}
		return nil
	}

	for _, class := range ctx.FileClasses {
		if strings.EqualFold(class.Name, name) || strings.EqualFold(class.ShortName(), name) {
			return class
		}
	}

	resolved := ctx.resolveDocTypeString(name)
	if class := ctx.loadClass(resolved); class != nil {
		return class
	}
	if resolved != name {
		return ctx.loadClass(name)
	}
	return nil
}

// loadClass guards the nil loader case.
func (ctx *ResolutionContext) loadClass(name string) *ClassInfo {
	if ctx.LoadClass == nil || name == "" {
		return nil
	}
	return ctx.LoadClass(name)
}

// resolveDocTypeString resolves names in a type string against the file's
// imports.
func (ctx *ResolutionContext) resolveDocTypeString(expr string) string {
	if expr == "" {
		return ""
	}
	if ctx.scope == nil && ctx.root != nil {
		ctx.scope = CollectFileScope(ctx.root, ctx.Content)
	}
	if ctx.scope == nil {
		return expr
	}
	return ctx.scope.Resolver.ResolveTypeExpression(expr)
}

func dedupeClasses(classes []*ClassInfo) []*ClassInfo {
	var result []*ClassInfo
	seen := make(map[string]bool, len(classes))
	for _, class := range classes {
		if class == nil || seen[class.Name] {
			continue
		}
		seen[class.Name] = true
		result = append(result, class)
	}
	return result
}

func isBlockNode(node *tree_sitter.Node) bool {
	switch node.Kind() {
	case "compound_statement", "program", "case_statement", "default_statement", "colon_block":
		return true
	default:
		return false
	}
}

func isFunctionBoundary(node *tree_sitter.Node) bool {
	switch node.Kind() {
	case "method_declaration", "function_definition",
		"anonymous_function_creation_expression", "anonymous_function",
		"arrow_function":
		return true
	default:
		return false
	}
}
