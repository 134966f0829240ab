package php

import (
	"fmt"
	"os"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// DebugAST parses a PHP file and prints the AST structure
func DebugAST(filePath string) {
	fileContent, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	tree := Parse(fileContent)
	if tree == nil {
		fmt.Println("Error parsing file")
		return
	}
	defer tree.Close()

	printNodeStructure(tree.RootNode(), fileContent, 0)
}

// printNodeStructure recursively prints the node structure
func printNodeStructure(node *tree_sitter.Node, fileContent []byte, depth int) {
	if node == nil {
		return
	}

	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}

	nodeText := ""
	if node.NamedChildCount() == 0 {
		nodeText = string(node.Utf8Text(fileContent))
	}

	fmt.Printf("%sNode: %s, Text: %s\n", indent, node.Kind(), nodeText)

	for i := uint(0); i < node.NamedChildCount(); i++ {
		printNodeStructure(node.NamedChild(i), fileContent, depth+1)
	}
}
