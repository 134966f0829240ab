package lsp

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/phpls/phpls/internal/indexer"
	"github.com/phpls/phpls/internal/lsp/protocol"
	"github.com/sourcegraph/jsonrpc2"
)

// Server represents the LSP server
type Server struct {
	rootPath            string
	conn                *jsonrpc2.Conn
	completionProviders []CompletionProvider
	definitionProviders []GotoDefinitionProvider
	hoverProviders      []HoverProvider
	commands            map[string]CommandFunc
	indexers            map[string]indexer.Indexer
	indexerMu           sync.RWMutex
	documentManager     *DocumentManager
	FileScanner         *indexer.FileScanner
}

// NewServer creates a new LSP server
func NewServer(filescanner *indexer.FileScanner) *Server {
	return &Server{
		completionProviders: make([]CompletionProvider, 0),
		definitionProviders: make([]GotoDefinitionProvider, 0),
		hoverProviders:      make([]HoverProvider, 0),
		commands:            make(map[string]CommandFunc),
		indexers:            make(map[string]indexer.Indexer),
		documentManager:     NewDocumentManager(),
		FileScanner:         filescanner,
	}
}

// RegisterCompletionProvider registers a completion provider with the server
func (s *Server) RegisterCompletionProvider(provider CompletionProvider) {
	s.completionProviders = append(s.completionProviders, provider)
}

// RegisterDefinitionProvider registers a definition provider with the server
func (s *Server) RegisterDefinitionProvider(provider GotoDefinitionProvider) {
	s.definitionProviders = append(s.definitionProviders, provider)
}

// RegisterHoverProvider registers a hover provider with the server
func (s *Server) RegisterHoverProvider(provider HoverProvider) {
	s.hoverProviders = append(s.hoverProviders, provider)
}

// RegisterCommandProvider registers all commands of a provider
func (s *Server) RegisterCommandProvider(provider CommandProvider) {
	for name, command := range provider.GetCommands(context.Background()) {
		s.commands[name] = command
	}
}

// RegisterIndexer adds an indexer to the registry
func (s *Server) RegisterIndexer(idx indexer.Indexer) {
	s.indexerMu.Lock()
	defer s.indexerMu.Unlock()
	s.indexers[idx.ID()] = idx
}

// GetIndexer retrieves an indexer by ID
func (s *Server) GetIndexer(id string) (indexer.Indexer, bool) {
	s.indexerMu.RLock()
	defer s.indexerMu.RUnlock()
	idx, ok := s.indexers[id]
	return idx, ok
}

// RootPath returns the workspace root announced by the client
func (s *Server) RootPath() string {
	return s.rootPath
}

// indexAll builds or updates all registered indexes
// If forceReindex is true, it will clear the existing index before rebuilding
func (s *Server) indexAll(ctx context.Context, forceReindex bool) error {
	startTime := time.Now()

	// Send notification that indexing has started
	if s.conn != nil {
		if err := s.conn.Notify(ctx, "phpls/indexingStarted", map[string]interface{}{
			"message": "Indexing started",
		}); err != nil {
			return err
		}
	}

	if forceReindex {
		if err := s.FileScanner.ClearHashes(); err != nil {
			return err
		}
	}

	if err := s.FileScanner.IndexAll(ctx); err != nil {
		return err
	}

	elapsedTime := time.Since(startTime)

	// Send notification that indexing has completed
	if s.conn != nil {
		if err := s.conn.Notify(ctx, "phpls/indexingCompleted", map[string]interface{}{
			"message":       "Indexing completed",
			"timeInSeconds": elapsedTime.Seconds(),
		}); err != nil {
			return err
		}
	}

	return nil
}

// CloseAll closes all registered indexers and resources
func (s *Server) CloseAll() error {
	// Close document manager first
	if s.documentManager != nil {
		s.documentManager.Close()
	}

	// Then close all indexers
	s.indexerMu.RLock()
	defer s.indexerMu.RUnlock()

	for _, idx := range s.indexers {
		if err := idx.Close(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) Start(in io.Reader, out io.Writer) error {
	// Create a new JSON-RPC connection
	stream := jsonrpc2.NewBufferedStream(rwc{in, out}, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(context.Background(), stream, jsonrpc2.HandlerWithError(s.handle))
	s.conn = conn

	// Wait for the connection to close
	<-conn.DisconnectNotify()
	return nil
}

// rwc combines a reader and writer into a single ReadWriteCloser
type rwc struct {
	io.Reader
	io.Writer
}

// Close implements io.Closer
func (rwc) Close() error {
	return nil
}

// handle processes incoming JSON-RPC requests and notifications
func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	// Handle exit notification after shutdown
	if req.Method == "exit" {
		log.Println("Received exit notification, exiting")
		if err := conn.Close(); err != nil {
			log.Printf("error closing connection: %v", err)
		}
		return nil, nil
	}

	switch req.Method {
	case "initialize":
		var params protocol.InitializeParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeParseError, Message: err.Error()}
		}
		return s.initialize(ctx, &params), nil

	case "initialized":
		// Build the index when the client is initialized
		go func() {
			if err := s.indexAll(context.Background(), false); err != nil {
				log.Printf("Error indexing: %v", err)
			}
		}()
		return nil, nil

	case "textDocument/didOpen":
		var params struct {
			TextDocument struct {
				URI     string `json:"uri"`
				Text    string `json:"text"`
				Version int    `json:"version"`
			} `json:"textDocument"`
		}
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}
		s.documentManager.OpenDocument(params.TextDocument.URI, params.TextDocument.Text, params.TextDocument.Version)
		return nil, nil

	case "textDocument/didChange":
		var params struct {
			TextDocument struct {
				URI     string `json:"uri"`
				Version int    `json:"version"`
			} `json:"textDocument"`
			ContentChanges []struct {
				Text string `json:"text"`
			} `json:"contentChanges"`
		}
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}
		if len(params.ContentChanges) > 0 {
			s.documentManager.UpdateDocument(params.TextDocument.URI, params.ContentChanges[0].Text, params.TextDocument.Version)
		}
		return nil, nil

	case "textDocument/didClose":
		var params struct {
			TextDocument struct {
				URI string `json:"uri"`
			} `json:"textDocument"`
		}
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}
		s.documentManager.CloseDocument(params.TextDocument.URI)
		return nil, nil

	case "textDocument/completion":
		var params protocol.CompletionParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}
		return s.completion(ctx, &params), nil

	case "textDocument/definition":
		var params protocol.DefinitionParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}
		return s.definition(ctx, &params), nil

	case "textDocument/hover":
		var params protocol.HoverParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}
		return s.hover(ctx, &params)

	case "phpls/forceReindex":
		// Force reindex all indexers
		go func() {
			if err := s.indexAll(context.Background(), true); err != nil {
				log.Printf("Error force reindexing: %v", err)
			}
		}()
		return map[string]interface{}{
			"message": "Force reindexing started",
		}, nil

	case "shutdown":
		// Clean up resources
		if err := s.CloseAll(); err != nil {
			log.Printf("Error closing indexers: %v", err)
		}

		log.Println("Received shutdown request, waiting for exit notification")
		return nil, nil

	case "workspace/didCreateFiles":
		var params protocol.CreateFilesParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}

		files := make([]string, len(params.Files))
		for i, file := range params.Files {
			files[i] = uriToPath(file.URI)
		}
		if err := s.FileScanner.IndexFiles(ctx, files); err != nil {
			log.Printf("Error indexing new files: %v", err)
		}
		return nil, nil

	case "workspace/didRenameFiles":
		var params protocol.RenameFilesParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}

		oldFiles := make([]string, len(params.Files))
		newFiles := make([]string, len(params.Files))
		for i, file := range params.Files {
			oldFiles[i] = uriToPath(file.OldURI)
			newFiles[i] = uriToPath(file.NewURI)
		}

		if err := s.FileScanner.IndexFiles(ctx, newFiles); err != nil {
			log.Printf("Error indexing new files: %v", err)
		}
		if err := s.FileScanner.RemoveFiles(ctx, oldFiles); err != nil {
			log.Printf("Error removing old files: %v", err)
		}

		return nil, nil

	case "workspace/didDeleteFiles":
		var params protocol.DeleteFilesParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}

		files := make([]string, len(params.Files))
		for i, file := range params.Files {
			files[i] = uriToPath(file.URI)
		}
		if err := s.FileScanner.RemoveFiles(ctx, files); err != nil {
			log.Printf("Error removing old files: %v", err)
		}
		return nil, nil

	case "workspace/didChangeWatchedFiles":
		var params protocol.DidChangeWatchedFilesParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}

		var changed, deleted []string
		for _, change := range params.Changes {
			switch change.Type {
			case int(protocol.FileCreated), int(protocol.FileChanged):
				changed = append(changed, uriToPath(change.URI))
			case int(protocol.FileDeleted):
				deleted = append(deleted, uriToPath(change.URI))
			}
		}

		if len(changed) > 0 {
			if err := s.FileScanner.IndexFiles(ctx, changed); err != nil {
				log.Printf("Error indexing changed files: %v", err)
			}
		}
		if len(deleted) > 0 {
			if err := s.FileScanner.RemoveFiles(ctx, deleted); err != nil {
				log.Printf("Error removing deleted files: %v", err)
			}
		}

		return nil, nil

	default:
		if command, ok := s.commands[req.Method]; ok {
			return command(ctx, req.Params)
		}

		// Check if this is a notification (no ID)
		if req.ID == (jsonrpc2.ID{}) {
			// This is a notification, no response needed
			return nil, nil
		}
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "Method not implemented: " + req.Method}
	}
}

// initialize handles the LSP initialize request
func (s *Server) initialize(ctx context.Context, params *protocol.InitializeParams) interface{} {
	// Extract root path from params
	s.extractRootPath(params)

	// Collect all trigger characters from providers
	triggerChars := s.collectTriggerCharacters()

	phpFilter := []map[string]interface{}{
		{"pattern": map[string]interface{}{"glob": "**/*.php"}},
	}

	// Define server capabilities
	return map[string]interface{}{
		"capabilities": map[string]interface{}{
			"textDocumentSync": map[string]interface{}{
				"openClose": true,
				"change":    1, // Full sync
			},
			"completionProvider": map[string]interface{}{
				"triggerCharacters": triggerChars,
			},
			"definitionProvider": true,
			"hoverProvider":      true,
			"workspace": map[string]interface{}{
				"fileOperations": map[string]interface{}{
					"didCreate": map[string]interface{}{"filters": phpFilter},
					"didRename": map[string]interface{}{"filters": phpFilter},
					"didDelete": map[string]interface{}{"filters": phpFilter},
				},
			},
		},
	}
}

// extractRootPath extracts the root path from the initialize params
func (s *Server) extractRootPath(params *protocol.InitializeParams) {
	// Try to get from RootPath
	if params.RootPath != "" {
		s.rootPath = params.RootPath
		return
	}

	// Try to get from RootURI
	if params.RootURI != "" {
		s.rootPath = uriToPath(params.RootURI)
		return
	}

	// Try to get from WorkspaceFolders
	if len(params.WorkspaceFolders) > 0 {
		s.rootPath = uriToPath(params.WorkspaceFolders[0].URI)
		return
	}

	// Fall back to current directory
	s.rootPath, _ = os.Getwd()
}

// collectTriggerCharacters collects all trigger characters from registered providers
func (s *Server) collectTriggerCharacters() []string {
	// Use a map to deduplicate trigger characters
	triggerCharsMap := make(map[string]bool)

	for _, provider := range s.completionProviders {
		for _, char := range provider.GetTriggerCharacters() {
			triggerCharsMap[char] = true
		}
	}

	// Convert map keys to slice
	triggerChars := make([]string, 0, len(triggerCharsMap))
	for char := range triggerCharsMap {
		triggerChars = append(triggerChars, char)
	}

	return triggerChars
}

func (s *Server) DocumentManager() *DocumentManager {
	return s.documentManager
}

func uriToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
