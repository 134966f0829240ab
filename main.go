package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/phpls/phpls/internal/index"
	"github.com/phpls/phpls/internal/indexer"
	"github.com/phpls/phpls/internal/lsp"
	"github.com/phpls/phpls/internal/lsp/completion"
	"github.com/phpls/phpls/internal/lsp/definition"
	"github.com/phpls/phpls/internal/lsp/hover"
	"github.com/phpls/phpls/internal/project"
)

func main() {
	log.SetFlags(0)

	// Get the current working directory as project root
	projectRoot, err := os.Getwd()
	if err != nil {
		log.Fatalf("Failed to get working directory: %v", err)
	}

	configDir, err := getProjectConfigFolder(projectRoot)
	if err != nil {
		log.Fatalf("Failed to prepare config directory: %v", err)
	}

	// Clear stale caches written by older builds
	if _, err := indexer.CheckAndMigrateCache(configDir); err != nil {
		log.Printf("Warning: Failed to migrate cache: %v", err)
	}

	scanner, err := indexer.NewFileScanner(projectRoot, filepath.Join(configDir, "files.db"))
	if err != nil {
		log.Fatalf("Failed to create file scanner: %v", err)
	}

	config, err := project.LoadConfig(projectRoot)
	if err != nil {
		log.Printf("Warning: Ignoring invalid project config: %v", err)
	} else {
		scanner.AddSkipDirs(config.Exclude...)
	}

	phpIndex, err := index.NewPHPIndex(configDir)
	if err != nil {
		log.Fatalf("Failed to create PHP index: %v", err)
	}
	scanner.AddIndexer(phpIndex)

	server := lsp.NewServer(scanner)
	server.RegisterIndexer(phpIndex)

	server.RegisterCompletionProvider(completion.NewPHPCompletionProvider(server))
	server.RegisterDefinitionProvider(definition.NewPHPDefinitionProvider(server))
	server.RegisterHoverProvider(hover.NewPHPHoverProvider(server))
	server.RegisterCommandProvider(index.NewCommandProvider(server))
	server.RegisterCommandProvider(project.NewConfigCommandProvider(server))

	if err := scanner.StartWatcher(); err != nil {
		log.Printf("Warning: Failed to start file watcher: %v", err)
	}

	if err := server.Start(os.Stdin, os.Stdout); err != nil {
		log.Fatalf("LSP server error: %v", err)
	}
}
