package php

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// NewResolutionContext builds the per-request query context for the cursor
// node. Classes declared in the current file win over the workspace loader
// so unsaved edits resolve against the open buffer, not the index.
func NewResolutionContext(path string, root *tree_sitter.Node, node *tree_sitter.Node, content []byte, loadClass ClassLoader, loadFunction FunctionLoader) *ResolutionContext {
	classes := CollectClasses(path, root, content)
	functions := CollectFunctions(root, content)

	var fileClasses []*ClassInfo
	for _, class := range classes {
		fileClasses = append(fileClasses, class)
	}

	ctx := &ResolutionContext{
		Offset:      node.StartByte(),
		FileClasses: fileClasses,
		Content:     content,
		LoadClass: func(name string) *ClassInfo {
			if class, ok := classes[strings.TrimPrefix(name, "\\")]; ok {
				return class
			}
			if loadClass != nil {
				return loadClass(name)
			}
			return nil
		},
		LoadFunction: func(name string) *MethodInfo {
			if fn, ok := functions[strings.TrimPrefix(name, "\\")]; ok {
				return &fn
			}
			if loadFunction != nil {
				return loadFunction(name)
			}
			return nil
		},
	}
	ctx.EnclosingClass = enclosingClassAt(node, content, classes)
	return ctx
}

// WithSymbol returns a copy of the context querying the given variable name
// (without the $ sigil).
func (ctx *ResolutionContext) WithSymbol(symbol string) *ResolutionContext {
	clone := *ctx
	clone.Symbol = symbol
	clone.scope = nil
	return &clone
}

// ResolveSubject resolves the classes an access subject can be. Scope names
// (self, static, parent, a written-out class name) and arbitrary expressions
// both work.
func (ctx *ResolutionContext) ResolveSubject(root, subject *tree_sitter.Node) []*ClassInfo {
	if subject == nil {
		return nil
	}
	ctx.root = root
	switch subject.Kind() {
	case "name", "qualified_name", "relative_scope":
		return dedupeClasses(ctx.subjectFromScopeText(string(subject.Utf8Text(ctx.Content))))
	}
	return ResolveExpression(ctx, root, subject)
}

// LookupClass resolves a class name written in source against the current
// file's classes, its imports and the workspace loader.
func (ctx *ResolutionContext) LookupClass(root *tree_sitter.Node, name string) *ClassInfo {
	ctx.root = root
	return ctx.lookupClassName(name)
}

func enclosingClassAt(node *tree_sitter.Node, content []byte, classes map[string]*ClassInfo) *ClassInfo {
	for current := node; current != nil; current = current.Parent() {
		switch current.Kind() {
		case "class_declaration", "interface_declaration", "trait_declaration", "enum_declaration":
			name := current.ChildByFieldName("name")
			if name == nil {
				return nil
			}
			short := string(name.Utf8Text(content))
			for fqcn, class := range classes {
				if shortName(fqcn) == short {
					return class
				}
			}
			return nil
		}
	}
	return nil
}
