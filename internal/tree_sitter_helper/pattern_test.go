package treesitterhelper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

func parsePHP(t *testing.T, code string) (*tree_sitter.Tree, []byte) {
	t.Helper()
	parser := tree_sitter.NewParser()
	assert.NoError(t, parser.SetLanguage(tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP())))
	content := []byte(code)
	tree := parser.Parse(content, nil)
	t.Cleanup(func() {
		tree.Close()
		parser.Close()
	})
	return tree, content
}

func TestPHPMethodCallPatterns(t *testing.T) {
	tree, phpCode := parsePHP(t, `<?php
	$repository->find("product-id");

	$repository->search("other-id");
	`)

	findPattern := And(
		NodeKind("string_content"),
		Ancestor(PHPMethodCallPattern("find"), 4),
	)

	matches := FindAll(tree.RootNode(), findPattern, phpCode)
	assert.Equal(t, 1, len(matches), "Should find exactly one find() argument")
	assert.Equal(t, "product-id", string(matches[0].Utf8Text(phpCode)))

	// Not() fences off the other call
	otherPattern := And(
		NodeKind("string_content"),
		Not(Ancestor(PHPMethodCallPattern("find"), 4)),
	)

	otherMatches := FindAll(tree.RootNode(), otherPattern, phpCode)
	assert.Equal(t, 1, len(otherMatches))
	assert.Equal(t, "other-id", string(otherMatches[0].Utf8Text(phpCode)))
}

func TestPHPStringInMethodCallPattern(t *testing.T) {
	tree, phpCode := parsePHP(t, `<?php
	$container->get("App\\ProductService");
	$container->has("App\\OrderService");
	$logger->info("just a message");
	`)

	pattern := PHPStringInMethodCallPattern("get", "has")

	matches := FindAll(tree.RootNode(), pattern, phpCode)
	assert.Equal(t, 2, len(matches), "Should match get() and has() arguments only")
}

func TestPHPStringInFunctionPattern(t *testing.T) {
	tree, phpCode := parsePHP(t, `<?php
	class_exists("App\\Product");
	\function_exists("App\\helper");
	strlen("not a reference");
	`)

	pattern := PHPStringInFunctionPattern("class_exists", "function_exists")

	matches := FindAll(tree.RootNode(), pattern, phpCode)
	assert.Equal(t, 2, len(matches))
}

func TestPHPMemberNamePattern(t *testing.T) {
	tree, phpCode := parsePHP(t, `<?php
	$product->getName();
	$product?->price;
	Product::create();
	`)

	memberMatches := FindAll(tree.RootNode(), PHPMemberNamePattern, phpCode)
	var names []string
	for _, node := range memberMatches {
		names = append(names, string(node.Utf8Text(phpCode)))
	}
	assert.ElementsMatch(t, []string{"getName", "price"}, names)

	scopedMatches := FindAll(tree.RootNode(), PHPScopedNamePattern, phpCode)
	names = names[:0]
	for _, node := range scopedMatches {
		names = append(names, string(node.Utf8Text(phpCode)))
	}
	assert.ElementsMatch(t, []string{"create"}, names)
}

func TestPHPMemberAccessContext(t *testing.T) {
	tree, phpCode := parsePHP(t, `<?php
	$product->getName();
	Product::create();
	`)

	memberName := FindFirst(tree.RootNode(), PHPMemberNamePattern, phpCode)
	assert.NotNil(t, memberName)

	subject, static, ok := PHPMemberAccessContext(memberName)
	assert.True(t, ok)
	assert.False(t, static)
	assert.NotNil(t, subject)
	assert.Equal(t, "$product", string(subject.Utf8Text(phpCode)))

	scopedName := FindFirst(tree.RootNode(), PHPScopedNamePattern, phpCode)
	assert.NotNil(t, scopedName)

	subject, static, ok = PHPMemberAccessContext(scopedName)
	assert.True(t, ok)
	assert.True(t, static)
	assert.NotNil(t, subject)
	assert.Equal(t, "Product", string(subject.Utf8Text(phpCode)))
}

func TestPHPVariableHelpers(t *testing.T) {
	tree, phpCode := parsePHP(t, `<?php
	$order = 1;
	`)

	variable := FindFirst(tree.RootNode(), NodeKind("variable_name"), phpCode)
	assert.NotNil(t, variable)
	assert.True(t, IsPHPVariable(variable))
	assert.Equal(t, "order", PHPVariableName(variable, phpCode))
}

func TestPatternComposition(t *testing.T) {
	tree, phpCode := parsePHP(t, `<?php
	$a->foo();
	$a->bar();
	`)

	// Or() unions independent method matchers
	pattern := And(
		NodeKind("member_call_expression"),
		Or(
			HasChild(NodeText("foo")),
			HasChild(NodeText("bar")),
		),
	)

	matches := FindAll(tree.RootNode(), pattern, phpCode)
	assert.Equal(t, 2, len(matches))

	capture := Capture("call", pattern)
	assert.True(t, capture.Matches(matches[0], phpCode))
	assert.Equal(t, matches[0], capture.GetCapturedNode())
}
