package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/phpls/phpls/internal/index"
	"github.com/phpls/phpls/internal/indexer"
)

func main() {
	// Get the project root from command line or use current directory
	projectRoot := "."
	if len(os.Args) > 1 {
		projectRoot = os.Args[1]
	}

	// Get absolute path
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		log.Fatalf("Failed to get absolute path: %v", err)
	}

	// Create a temporary directory for the cache
	tempDir, err := os.MkdirTemp("", "index-dump-*")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	scanner, err := indexer.NewFileScanner(absRoot, filepath.Join(tempDir, "files.db"))
	if err != nil {
		log.Fatalf("Failed to create file scanner: %v", err)
	}
	defer func() {
		if err := scanner.Close(); err != nil {
			log.Printf("Failed to close scanner: %v", err)
		}
	}()

	phpIndex, err := index.NewPHPIndex(tempDir)
	if err != nil {
		log.Fatalf("Failed to create PHP index: %v", err)
	}
	defer phpIndex.Close()

	scanner.AddIndexer(phpIndex)

	fmt.Printf("Indexing %s...\n", absRoot)
	if err := scanner.IndexAll(context.Background()); err != nil {
		log.Fatalf("Failed to index project: %v", err)
	}

	classes, err := phpIndex.AllClassNames()
	if err != nil {
		log.Fatalf("Failed to list classes: %v", err)
	}
	functions, err := phpIndex.AllFunctionNames()
	if err != nil {
		log.Fatalf("Failed to list functions: %v", err)
	}

	fmt.Printf("Found %d classes and %d functions\n", len(classes), len(functions))

	// Sample a few classes if available
	maxSample := 5
	if len(classes) < maxSample {
		maxSample = len(classes)
	}

	if maxSample > 0 {
		fmt.Println("\nSample classes:")
		for i := 0; i < maxSample; i++ {
			class := phpIndex.GetClass(classes[i])
			if class != nil {
				fmt.Printf("  - %s (%s, %d methods)\n", class.Name, class.Kind, len(class.Methods))
			}
		}
	}
}
