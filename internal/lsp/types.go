package lsp

import (
	"context"
	"encoding/json"

	"github.com/phpls/phpls/internal/lsp/protocol"
)

// CompletionProvider is an interface for providing completion items
type CompletionProvider interface {
	// GetCompletions returns completion items for the given parameters
	GetCompletions(ctx context.Context, params *protocol.CompletionParams) []protocol.CompletionItem
	// GetTriggerCharacters returns the characters that trigger this completion provider
	GetTriggerCharacters() []string
}

// GotoDefinitionProvider is an interface for providing definition locations
type GotoDefinitionProvider interface {
	// GetDefinition returns location(s) for the definition of the symbol at the given position
	GetDefinition(ctx context.Context, params *protocol.DefinitionParams) []protocol.Location
}

// HoverProvider is an interface for providing hover information
type HoverProvider interface {
	// GetHover returns hover information for the symbol at the given position
	GetHover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error)
}

// CommandFunc handles one custom workspace command
type CommandFunc func(ctx context.Context, args *json.RawMessage) (interface{}, error)

// CommandProvider exposes custom workspace commands keyed by method name
type CommandProvider interface {
	GetCommands(ctx context.Context) map[string]CommandFunc
}
