package php

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

// Parse parses PHP source text. The caller owns the returned tree and
// closes it when done.
func Parse(content []byte) *tree_sitter.Tree {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP())); err != nil {
		return nil
	}

	return parser.Parse(content, nil)
}
