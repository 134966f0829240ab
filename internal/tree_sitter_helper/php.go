package treesitterhelper

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

func GetNodeText(node *tree_sitter.Node, docText []byte) string {
	return strings.Trim(strings.Trim(node.Utf8Text(docText), "\""), "'")
}

func GetFirstNodeOfKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == kind {
			return child
		}
	}
	return nil
}

// PHPMemberAccessContext resolves the access expression the node belongs to.
// It returns the subject expression (the $obj in $obj->foo, the Foo in
// Foo::bar) and whether the access uses the static operator. The cursor node
// may be the member name, the operator, or the access expression itself.
func PHPMemberAccessContext(node *tree_sitter.Node) (subject *tree_sitter.Node, static bool, ok bool) {
	current := node
	for depth := 0; current != nil && depth < 3; depth++ {
		switch current.Kind() {
		case "member_access_expression", "member_call_expression",
			"nullsafe_member_access_expression", "nullsafe_member_call_expression":
			return current.ChildByFieldName("object"), false, true
		case "scoped_call_expression", "scoped_property_access_expression":
			return current.ChildByFieldName("scope"), true, true
		case "class_constant_access_expression":
			if current.NamedChildCount() > 0 {
				return current.NamedChild(0), true, true
			}
			return nil, true, false
		}
		current = current.Parent()
	}
	return nil, false, false
}

// IsPHPVariable reports whether the node is a variable reference like $foo.
func IsPHPVariable(node *tree_sitter.Node) bool {
	if node.Kind() == "variable_name" {
		return true
	}
	parent := node.Parent()
	return parent != nil && parent.Kind() == "variable_name"
}

// PHPVariableName returns the variable name without the leading $ sigil.
func PHPVariableName(node *tree_sitter.Node, content []byte) string {
	current := node
	if current.Kind() != "variable_name" {
		if parent := current.Parent(); parent != nil && parent.Kind() == "variable_name" {
			current = parent
		}
	}
	return strings.TrimPrefix(string(current.Utf8Text(content)), "$")
}

// PHPClassNameAtNode returns the class-like name the node refers to when the
// cursor is on a type position: a name, qualified_name or named_type node.
func PHPClassNameAtNode(node *tree_sitter.Node, content []byte) (string, bool) {
	switch node.Kind() {
	case "name", "qualified_name":
		text := string(node.Utf8Text(content))
		if parent := node.Parent(); parent != nil && parent.Kind() == "qualified_name" {
			text = string(parent.Utf8Text(content))
		}
		return text, text != ""
	case "named_type":
		return string(node.Utf8Text(content)), true
	}
	return "", false
}
