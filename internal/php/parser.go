package php

import (
	"strings"

	"github.com/phpls/phpls/internal/php/doctype"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// typeNodeKinds are the direct-child node kinds that carry a native type
// hint. Parameter types nested inside formal_parameters are not direct
// children, so scanning stays local to the declaration.
var typeNodeKinds = map[string]bool{
	"named_type":        true,
	"optional_type":     true,
	"primitive_type":    true,
	"union_type":        true,
	"intersection_type": true,
	"disjunctive_normal_form_type": true,
}

// FileScope is the namespace/import environment of one PHP file, used to
// resolve short class names anywhere in that file.
type FileScope struct {
	Namespace string
	Resolver  *AliasResolver
}

// CollectFileScope walks the top level of a parse tree and gathers the
// namespace, use statements and aliases.
func CollectFileScope(root *tree_sitter.Node, content []byte) *FileScope {
	namespace := ""
	useStatements := make(map[string]string)
	aliases := make(map[string]string)

	for i := uint(0); i < root.NamedChildCount(); i++ {
		node := root.NamedChild(i)
		if node == nil {
			continue
		}

		switch node.Kind() {
		case "namespace_definition":
			if nameNode := node.NamedChild(0); nameNode != nil {
				namespace = string(nameNode.Utf8Text(content))
			}
		case "namespace_use_declaration":
			collectUseDeclaration(node, content, useStatements, aliases)
		}
	}

	return &FileScope{
		Namespace: namespace,
		Resolver:  NewAliasResolver(namespace, useStatements, aliases),
	}
}

// collectUseDeclaration handles both plain and group use statements,
// including "as" aliases.
func collectUseDeclaration(node *tree_sitter.Node, content []byte, useStatements, aliases map[string]string) {
	namespaceNameNode := findDirectChildOfKind(node, "namespace_name")
	groupNode := findDirectChildOfKind(node, "namespace_use_group")

	if namespaceNameNode != nil && groupNode != nil {
		// Group use, e.g. use Symfony\Component\{HttpFoundation\Request, ...}
		baseNamespace := string(namespaceNameNode.Utf8Text(content))

		for i := uint(0); i < groupNode.NamedChildCount(); i++ {
			clause := groupNode.NamedChild(i)
			if clause == nil || clause.Kind() != "namespace_use_clause" {
				continue
			}
			collectUseClause(clause, content, baseNamespace, useStatements, aliases)
		}
		return
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		clause := node.NamedChild(i)
		if clause != nil && clause.Kind() == "namespace_use_clause" {
			collectUseClause(clause, content, "", useStatements, aliases)
		}
	}
}

func collectUseClause(clause *tree_sitter.Node, content []byte, baseNamespace string, useStatements, aliases map[string]string) {
	var fullPath, className, aliasName string

	if qualified := findDirectChildOfKind(clause, "qualified_name"); qualified != nil {
		fullPath = string(qualified.Utf8Text(content))
		if nameNode := qualified.NamedChild(qualified.NamedChildCount() - 1); nameNode != nil {
			className = string(nameNode.Utf8Text(content))
		}
		if aliasNode := findDirectChildOfKind(clause, "name"); aliasNode != nil {
			aliasName = string(aliasNode.Utf8Text(content))
		}
	} else {
		// Unqualified import: either a global class or "Name as Alias"
		// inside a group use.
		var names []string
		for i := uint(0); i < clause.NamedChildCount(); i++ {
			child := clause.NamedChild(i)
			if child != nil && child.Kind() == "name" {
				names = append(names, string(child.Utf8Text(content)))
			}
		}
		if len(names) == 0 {
			return
		}
		className = names[0]
		fullPath = names[0]
		if len(names) > 1 {
			aliasName = names[1]
		}
	}

	if baseNamespace != "" {
		fullPath = baseNamespace + "\\" + fullPath
	}
	fullPath = strings.TrimPrefix(fullPath, "\\")

	if aliasName != "" {
		aliases[aliasName] = fullPath
	} else if className != "" {
		useStatements[className] = fullPath
	}
}

// CollectClasses extracts every class, interface, trait and enum declared
// at the top level of a file into merged ClassInfo values.
func CollectClasses(path string, root *tree_sitter.Node, content []byte) map[string]*ClassInfo {
	classes := make(map[string]*ClassInfo)
	scope := CollectFileScope(root, content)

	for i := uint(0); i < root.NamedChildCount(); i++ {
		node := root.NamedChild(i)
		if node == nil {
			continue
		}

		var kind ClassKind
		switch node.Kind() {
		case "class_declaration":
			kind = KindClass
		case "interface_declaration":
			kind = KindInterface
		case "trait_declaration":
			kind = KindTrait
		case "enum_declaration":
			kind = KindEnum
		default:
			continue
		}

		if class := buildClass(path, node, kind, content, scope); class != nil {
			classes[class.Name] = class
		}
	}

	return classes
}

// CollectFunctions extracts top-level function definitions.
func CollectFunctions(root *tree_sitter.Node, content []byte) map[string]MethodInfo {
	functions := make(map[string]MethodInfo)
	scope := CollectFileScope(root, content)

	for i := uint(0); i < root.NamedChildCount(); i++ {
		node := root.NamedChild(i)
		if node == nil || node.Kind() != "function_definition" {
			continue
		}

		nameNode := findDirectChildOfKind(node, "name")
		if nameNode == nil {
			continue
		}

		doc := docCommentFor(node, content)
		method := buildCallable(node, nameNode, content, scope.Resolver, doc)

		name := string(nameNode.Utf8Text(content))
		if scope.Namespace != "" {
			name = scope.Namespace + "\\" + name
		}
		method.Name = name
		functions[name] = method
	}

	return functions
}

func buildClass(path string, node *tree_sitter.Node, kind ClassKind, content []byte, scope *FileScope) *ClassInfo {
	nameNode := findDirectChildOfKind(node, "name")
	if nameNode == nil {
		return nil
	}

	className := string(nameNode.Utf8Text(content))
	if scope.Namespace != "" {
		className = scope.Namespace + "\\" + className
	}

	class := &ClassInfo{
		Name:       className,
		Kind:       kind,
		Path:       path,
		Line:       int(nameNode.Range().StartPoint.Row) + 1,
		Methods:    make(map[string]MethodInfo),
		Properties: make(map[string]PropertyInfo),
		Constants:  make(map[string]ConstantInfo),
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "abstract_modifier":
			class.IsAbstract = true
		case "final_modifier":
			class.IsFinal = true
		}
	}

	resolver := scope.Resolver

	if kind == KindInterface {
		// base_clause lists the interfaces an interface extends.
		if base := findDirectChildOfKind(node, "base_clause"); base != nil {
			class.Interfaces = append(class.Interfaces, clauseNames(base, content, resolver)...)
		}
	} else {
		if base := findDirectChildOfKind(node, "base_clause"); base != nil {
			parents := clauseNames(base, content, resolver)
			if len(parents) > 0 {
				// PHP has single inheritance, at most one parent.
				class.Parent = parents[0]
			}
		}
		if impl := findDirectChildOfKind(node, "class_interface_clause"); impl != nil {
			class.Interfaces = append(class.Interfaces, clauseNames(impl, content, resolver)...)
		}
	}

	if kind == KindEnum {
		if backing := findDirectChildOfKind(node, "primitive_type"); backing != nil {
			class.BackingType = string(backing.Utf8Text(content))
		}
		// Enum built-in members resolve through the implicit enum
		// interface.
		if class.BackingType != "" {
			class.Interfaces = append(class.Interfaces, "BackedEnum")
		} else {
			class.Interfaces = append(class.Interfaces, "UnitEnum")
		}
	}

	body := findDirectChildOfKind(node, "declaration_list")
	if body == nil {
		body = findDirectChildOfKind(node, "enum_declaration_list")
	}
	if body != nil {
		collectMembers(class, body, content, resolver)
	}

	applyClassDocblock(class, docCommentFor(node, content), resolver)

	return class
}

// clauseNames resolves every name in a base/implements clause to an FQCN.
func clauseNames(clause *tree_sitter.Node, content []byte, resolver *AliasResolver) []string {
	var names []string
	for i := uint(0); i < clause.NamedChildCount(); i++ {
		child := clause.NamedChild(i)
		if child == nil {
			continue
		}
		if child.Kind() == "name" || child.Kind() == "qualified_name" {
			names = append(names, resolver.ResolveType(string(child.Utf8Text(content))))
		}
	}
	return names
}

func collectMembers(class *ClassInfo, body *tree_sitter.Node, content []byte, resolver *AliasResolver) {
	for i := uint(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		if child == nil {
			continue
		}

		switch child.Kind() {
		case "property_declaration":
			collectProperty(class, child, content, resolver)
		case "method_declaration":
			collectMethod(class, child, content, resolver)
		case "const_declaration":
			collectConstant(class, child, content, resolver)
		case "use_declaration":
			collectTraitUse(class, child, content, resolver)
		case "enum_case":
			if nameNode := findDirectChildOfKind(child, "name"); nameNode != nil {
				name := string(nameNode.Utf8Text(content))
				class.Constants[name] = ConstantInfo{
					Name:       name,
					Line:       int(nameNode.Range().StartPoint.Row) + 1,
					Visibility: Public,
					Type:       class.Name,
				}
			}
		}
	}
}

func collectProperty(class *ClassInfo, node *tree_sitter.Node, content []byte, resolver *AliasResolver) {
	visibility, static, readOnly, _ := memberModifiers(node, content)

	nativeType := nativeTypeOf(node, content, resolver)
	doc := docCommentFor(node, content)

	docType := ""
	deprecated := false
	if doc != nil {
		deprecated = doc.Deprecated
		if len(doc.Vars) > 0 {
			docType = resolver.ResolveTypeExpression(doc.Vars[0].Type)
		}
	}
	propType := mergeDocType(nativeType, docType)

	// One declaration can define several properties at once.
	for j := uint(0); j < node.NamedChildCount(); j++ {
		element := node.NamedChild(j)
		if element == nil || element.Kind() != "property_element" {
			continue
		}

		varNode := findFirstNodeOfKind(element, "variable_name")
		if varNode == nil {
			continue
		}

		propName := strings.TrimPrefix(string(varNode.Utf8Text(content)), "$")
		class.Properties[propName] = PropertyInfo{
			Name:       propName,
			Line:       int(varNode.Range().StartPoint.Row) + 1,
			Visibility: visibility,
			Static:     static,
			ReadOnly:   readOnly,
			Deprecated: deprecated,
			Type:       propType,
		}
	}
}

func collectMethod(class *ClassInfo, node *tree_sitter.Node, content []byte, resolver *AliasResolver) {
	nameNode := findDirectChildOfKind(node, "name")
	if nameNode == nil {
		return
	}

	doc := docCommentFor(node, content)
	method := buildCallable(node, nameNode, content, resolver, doc)
	class.Methods[method.Name] = method

	if method.Name == "__construct" {
		collectPromotedProperties(class, node, content, resolver)
	}
}

// buildCallable extracts the shared shape of methods and functions:
// modifiers, parameters and the merged return type, including conditional
// returns and template-implied conditionals.
func buildCallable(node *tree_sitter.Node, nameNode *tree_sitter.Node, content []byte, resolver *AliasResolver, doc *Docblock) MethodInfo {
	visibility, static, _, abstract := memberModifiers(node, content)

	method := MethodInfo{
		Name:       string(nameNode.Utf8Text(content)),
		Line:       int(nameNode.Range().StartPoint.Row) + 1,
		Visibility: visibility,
		Static:     static,
		Abstract:   abstract,
	}

	var docParams map[string]string
	if doc != nil {
		method.Deprecated = doc.Deprecated
		method.Templates = doc.Templates
		docParams = doc.Params
	}

	// Template parameter names must survive resolution verbatim so later
	// substitution can still find them.
	templates := make(map[string]bool, len(method.Templates))
	for _, t := range method.Templates {
		templates[t] = true
	}

	if params := findDirectChildOfKind(node, "formal_parameters"); params != nil {
		method.Parameters = collectParameters(params, content, resolver, docParams, templates)
	}

	nativeReturn := nativeTypeOf(node, content, resolver)

	docReturn := ""
	if doc != nil && doc.Return != "" {
		docReturn = doc.Return
	}

	if cond := doctype.ParseConditional(docReturn); cond != nil {
		resolveConditionalTypes(cond, resolver, templates)
		method.ReturnType = doctype.ReturnType{Cond: cond}
		return method
	}

	resolvedDoc := resolver.ResolveTypeExpressionExcept(docReturn, templates)
	merged := mergeDocType(nativeReturn, resolvedDoc)
	if templates[resolvedDoc] {
		// A bare template return beats any native hint.
		merged = resolvedDoc
	}

	// A @template method with a class-string parameter behaves like a
	// conditional even without an explicit annotation.
	if len(method.Templates) > 0 {
		paramTypes := make(map[string]string, len(method.Parameters))
		for _, p := range method.Parameters {
			paramTypes[p.Name] = p.Type
		}
		if cond := doctype.SynthesizeConditional(method.Templates, paramTypes, merged); cond != nil {
			method.ReturnType = doctype.ReturnType{Cond: cond}
			return method
		}
	}

	method.ReturnType = doctype.ConcreteReturn(merged)
	return method
}

// resolveConditionalTypes resolves class names inside a parsed conditional
// tree against the file's imports.
func resolveConditionalTypes(cond *doctype.Conditional, resolver *AliasResolver, templates map[string]bool) {
	if cond == nil {
		return
	}
	if cond.Kind == doctype.CondIsType && !templates[cond.CondType] {
		cond.CondType = resolver.ResolveType(cond.CondType)
	}
	resolveReturnTypes(&cond.Then, resolver, templates)
	resolveReturnTypes(&cond.Else, resolver, templates)
}

func resolveReturnTypes(rt *doctype.ReturnType, resolver *AliasResolver, templates map[string]bool) {
	if rt.Cond != nil {
		resolveConditionalTypes(rt.Cond, resolver, templates)
		return
	}
	rt.Concrete = resolver.ResolveTypeExpressionExcept(rt.Concrete, templates)
}

func collectParameters(params *tree_sitter.Node, content []byte, resolver *AliasResolver, docParams map[string]string, templates map[string]bool) []ParameterInfo {
	var result []ParameterInfo

	for i := uint(0); i < params.NamedChildCount(); i++ {
		param := params.NamedChild(i)
		if param == nil {
			continue
		}

		switch param.Kind() {
		case "simple_parameter", "variadic_parameter", "property_promotion_parameter":
		default:
			continue
		}

		varNode := findFirstNodeOfKind(param, "variable_name")
		if varNode == nil {
			continue
		}
		paramName := strings.TrimPrefix(string(varNode.Utf8Text(content)), "$")

		nativeType := nativeTypeOf(param, content, resolver)
		paramType := mergeDocType(nativeType, resolveDocParam(docParams, paramName, resolver, templates))

		result = append(result, ParameterInfo{
			Name:     paramName,
			Type:     paramType,
			Optional: param.ChildByFieldName("default_value") != nil,
		})
	}

	return result
}

func resolveDocParam(docParams map[string]string, name string, resolver *AliasResolver, templates map[string]bool) string {
	if docParams == nil {
		return ""
	}
	return resolver.ResolveTypeExpressionExcept(docParams[name], templates)
}

func collectPromotedProperties(class *ClassInfo, node *tree_sitter.Node, content []byte, resolver *AliasResolver) {
	params := findDirectChildOfKind(node, "formal_parameters")
	if params == nil {
		return
	}

	for i := uint(0); i < params.NamedChildCount(); i++ {
		param := params.NamedChild(i)
		if param == nil || param.Kind() != "property_promotion_parameter" {
			continue
		}

		varNode := findFirstNodeOfKind(param, "variable_name")
		if varNode == nil {
			continue
		}

		visibility, static, readOnly, _ := memberModifiers(param, content)
		propName := strings.TrimPrefix(string(varNode.Utf8Text(content)), "$")

		class.Properties[propName] = PropertyInfo{
			Name:       propName,
			Line:       int(varNode.Range().StartPoint.Row) + 1,
			Visibility: visibility,
			Static:     static,
			ReadOnly:   readOnly,
			Type:       nativeTypeOf(param, content, resolver),
		}
	}
}

func collectConstant(class *ClassInfo, node *tree_sitter.Node, content []byte, resolver *AliasResolver) {
	visibility, _, _, _ := memberModifiers(node, content)

	doc := docCommentFor(node, content)
	deprecated := doc != nil && doc.Deprecated

	for i := uint(0); i < node.NamedChildCount(); i++ {
		element := node.NamedChild(i)
		if element == nil || element.Kind() != "const_element" {
			continue
		}

		nameNode := element.NamedChild(0)
		if nameNode == nil {
			continue
		}
		name := string(nameNode.Utf8Text(content))

		constant := ConstantInfo{
			Name:       name,
			Line:       int(nameNode.Range().StartPoint.Row) + 1,
			Visibility: visibility,
			Deprecated: deprecated,
		}

		if valueNode := element.NamedChild(element.NamedChildCount() - 1); valueNode != nil && valueNode != nameNode {
			constant.Value = string(valueNode.Utf8Text(content))
			constant.Type = literalTypeName(valueNode.Kind())
		}

		class.Constants[name] = constant
	}
}

// literalTypeName maps a literal node kind to a type name.
func literalTypeName(kind string) string {
	switch kind {
	case "string", "encapsed_string", "heredoc", "nowdoc":
		return "string"
	case "integer":
		return "int"
	case "float":
		return "float"
	case "boolean", "true", "false":
		return "bool"
	case "array_creation_expression":
		return "array"
	case "null":
		return "null"
	default:
		return ""
	}
}

// collectTraitUse records used traits plus their insteadof/as adaptation
// clauses.
func collectTraitUse(class *ClassInfo, node *tree_sitter.Node, content []byte, resolver *AliasResolver) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}

		switch child.Kind() {
		case "name", "qualified_name":
			class.Traits = append(class.Traits, resolver.ResolveType(string(child.Utf8Text(content))))
		case "use_list":
			collectTraitAdaptations(class, child, content, resolver)
		}
	}
}

func collectTraitAdaptations(class *ClassInfo, list *tree_sitter.Node, content []byte, resolver *AliasResolver) {
	for i := uint(0); i < list.NamedChildCount(); i++ {
		clause := list.NamedChild(i)
		if clause == nil {
			continue
		}

		switch clause.Kind() {
		case "use_as_clause":
			alias := TraitAlias{}
			for j := uint(0); j < clause.NamedChildCount(); j++ {
				part := clause.NamedChild(j)
				if part == nil {
					continue
				}
				switch part.Kind() {
				case "class_constant_access_expression":
					trait, method := scopedName(part, content, resolver)
					alias.SourceTrait = trait
					alias.Method = method
				case "name":
					if alias.Method == "" {
						alias.Method = string(part.Utf8Text(content))
					} else {
						alias.Alias = string(part.Utf8Text(content))
					}
				case "visibility_modifier":
					v := parseVisibility(string(part.Utf8Text(content)))
					alias.Visibility = &v
				}
			}
			if alias.Method != "" {
				class.TraitAliases = append(class.TraitAliases, alias)
			}

		case "use_instead_of_clause":
			precedence := TraitPrecedence{}
			for j := uint(0); j < clause.NamedChildCount(); j++ {
				part := clause.NamedChild(j)
				if part == nil {
					continue
				}
				switch part.Kind() {
				case "class_constant_access_expression":
					precedence.Trait, precedence.Method = scopedName(part, content, resolver)
				case "name", "qualified_name":
					precedence.InsteadOf = append(precedence.InsteadOf,
						resolver.ResolveType(string(part.Utf8Text(content))))
				}
			}
			if precedence.Method != "" {
				class.TraitPrecedences = append(class.TraitPrecedences, precedence)
			}
		}
	}
}

// scopedName splits a Trait::member node into its resolved trait name and
// member name.
func scopedName(node *tree_sitter.Node, content []byte, resolver *AliasResolver) (string, string) {
	if node.NamedChildCount() < 2 {
		return "", ""
	}
	scope := node.NamedChild(0)
	member := node.NamedChild(node.NamedChildCount() - 1)
	if scope == nil || member == nil {
		return "", ""
	}
	return resolver.ResolveType(string(scope.Utf8Text(content))), string(member.Utf8Text(content))
}

// applyClassDocblock merges the class-level docblock overlay: virtual
// members, mixins, templates, type aliases and generic arguments.
func applyClassDocblock(class *ClassInfo, doc *Docblock, resolver *AliasResolver) {
	if doc == nil {
		return
	}

	class.IsDeprecated = doc.Deprecated
	class.Templates = doc.Templates

	for _, mixin := range doc.Mixins {
		class.Mixins = append(class.Mixins, resolver.ResolveType(doctype.CleanType(mixin)))
	}

	// Virtual members never shadow a real declaration of the same name.
	for _, prop := range doc.Properties {
		if _, exists := class.Properties[prop.Name]; exists {
			continue
		}
		prop.Type = resolver.ResolveTypeExpression(prop.Type)
		prop.Line = class.Line
		class.Properties[prop.Name] = prop
	}

	for _, method := range doc.Methods {
		if _, exists := class.Methods[method.Name]; exists {
			continue
		}
		method.ReturnType = doctype.ConcreteReturn(resolver.ResolveTypeExpression(method.ReturnType.Concrete))
		method.Line = class.Line
		class.Methods[method.Name] = method
	}

	if len(doc.TypeAliases) > 0 {
		class.TypeAliases = make(map[string]string, len(doc.TypeAliases))
		for name, def := range doc.TypeAliases {
			if strings.HasPrefix(def, "from:") {
				// Resolve the source class of an import, keep the
				// indirection itself lazy.
				parts := strings.SplitN(def, ":", 3)
				if len(parts) == 3 {
					def = "from:" + resolver.ResolveType(parts[1]) + ":" + parts[2]
				}
			}
			class.TypeAliases[name] = def
		}
	}

	if len(doc.GenericArgs) > 0 {
		templates := make(map[string]bool, len(class.Templates))
		for _, t := range class.Templates {
			templates[t] = true
		}

		class.GenericArguments = make(map[string][]string, len(doc.GenericArgs))
		for name, args := range doc.GenericArgs {
			resolved := make([]string, len(args))
			for i, arg := range args {
				resolved[i] = resolver.ResolveTypeExpressionExcept(arg, templates)
			}
			class.GenericArguments[resolver.ResolveType(name)] = resolved
		}
	}
}

// memberModifiers extracts visibility/static/readonly/abstract flags from a
// declaration's modifier children.
func memberModifiers(node *tree_sitter.Node, content []byte) (Visibility, bool, bool, bool) {
	visibility := Public
	static := false
	readOnly := false
	abstract := false

	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}

		switch child.Kind() {
		case "visibility_modifier":
			visibility = parseVisibility(string(child.Utf8Text(content)))
		case "static_modifier":
			static = true
		case "readonly_modifier":
			readOnly = true
		case "abstract_modifier":
			abstract = true
		}
	}

	return visibility, static, readOnly, abstract
}

func parseVisibility(text string) Visibility {
	switch text {
	case "private":
		return Private
	case "protected":
		return Protected
	default:
		return Public
	}
}

// nativeTypeOf returns the resolved native type hint declared directly on a
// node, or "".
func nativeTypeOf(node *tree_sitter.Node, content []byte, resolver *AliasResolver) string {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		if typeNodeKinds[child.Kind()] {
			return resolver.ResolveTypeExpression(string(child.Utf8Text(content)))
		}
	}
	return ""
}

// mergeDocType decides between a native type hint and a documented type:
// the documented type wins only when the native hint is too generic to be
// useful (object, mixed, self, static), is a union carrying a non-scalar
// member, or names the same class the doc refines with generics. A concrete
// scalar or scalar-only union keeps the native hint.
func mergeDocType(native, doc string) string {
	if doc == "" {
		return native
	}
	if native == "" {
		return doc
	}

	bare := strings.TrimPrefix(strings.TrimSpace(native), "?")
	switch strings.ToLower(bare) {
	case "object", "mixed", "self", "static":
		return doc
	case "array", "iterable":
		// A bare array hint carries no element information, a structured
		// annotation does.
		if doctype.IsShape(doc) || strings.ContainsAny(doc, "<[") {
			return doc
		}
		return native
	case "string":
		// class-string refines a native string hint.
		if strings.HasPrefix(doc, "class-string") {
			return doc
		}
		return native
	}

	parts := doctype.SplitUnion(bare)
	if len(parts) > 1 {
		for _, part := range parts {
			if !doctype.IsScalar(doctype.CleanType(part)) {
				return doc
			}
		}
		return native
	}

	// Same class refined with generics, e.g. Collection vs
	// Collection<Product>.
	if doctype.CleanType(doc) == doctype.CleanType(bare) && doc != bare {
		return doc
	}

	return native
}

// docCommentFor parses the docblock immediately preceding a declaration.
func docCommentFor(node *tree_sitter.Node, content []byte) *Docblock {
	prev := node.PrevNamedSibling()
	if prev == nil || prev.Kind() != "comment" {
		return nil
	}

	text := string(prev.Utf8Text(content))
	if !IsDocComment(text) {
		return nil
	}
	return ParseDocblock(text)
}

// findDirectChildOfKind finds a direct named child of the given kind.
func findDirectChildOfKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// findFirstNodeOfKind finds the first node of the given kind in depth-first
// order.
func findFirstNodeOfKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	if node == nil {
		return nil
	}

	stack := []*tree_sitter.Node{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.Kind() == kind {
			return n
		}

		for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
			child := n.NamedChild(uint(i))
			if child != nil {
				stack = append(stack, child)
			}
		}
	}

	return nil
}
