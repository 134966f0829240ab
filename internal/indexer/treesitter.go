package indexer

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

var scannedFileTypes = []string{
	".php",
}

// CreateTreesitterParsers builds one parser per scanned file extension.
// Parsers are not safe for concurrent use, so each worker creates its own set.
func CreateTreesitterParsers() map[string]*tree_sitter.Parser {
	parsers := make(map[string]*tree_sitter.Parser)

	parsers[".php"] = tree_sitter.NewParser()
	parsers[".php"].SetLanguage(tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP()))

	return parsers
}

func CloseTreesitterParsers(parsers map[string]*tree_sitter.Parser) {
	for _, parser := range parsers {
		parser.Close()
	}
}
