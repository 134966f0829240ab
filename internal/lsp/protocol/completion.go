package protocol

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// CompletionList represents a list of completion items
type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

// InitializeParams represents the parameters for the 'initialize' request
type InitializeParams struct {
	RootPath         string            `json:"rootPath,omitempty"`
	RootURI          string            `json:"rootUri,omitempty"`
	WorkspaceFolders []WorkspaceFolder `json:"workspaceFolders,omitempty"`
}

// WorkspaceFolder represents a workspace folder
type WorkspaceFolder struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// CompletionParams represents the parameters for a completion request
type CompletionParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	Position struct {
		Line      int `json:"line"`
		Character int `json:"character"`
	} `json:"position"`
	// Custom fields for internal use (not part of LSP spec)
	// These fields are used to pass document content to completion providers
	DocumentContent []byte            `json:"-"`
	Node            *tree_sitter.Node `json:"-"`
}

// CompletionItemKind constants used by the server
const (
	CompletionKindMethod     = 2
	CompletionKindFunction   = 3
	CompletionKindField      = 5
	CompletionKindClass      = 7
	CompletionKindProperty   = 10
	CompletionKindEnumMember = 20
	CompletionKindConstant   = 21
)

// CompletionItem represents a completion item
type CompletionItem struct {
	Label            string `json:"label"`
	Kind             int    `json:"kind"`
	Detail           string `json:"detail,omitempty"`
	InsertText       string `json:"insertText,omitempty"`
	InsertTextFormat int    `json:"insertTextFormat,omitempty"`
	Documentation    struct {
		Kind  string `json:"kind"`
		Value string `json:"value"`
	} `json:"documentation"`
}
