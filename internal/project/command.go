package project

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/phpls/phpls/internal/lsp"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// ConfigCommandProvider exposes the project settings file over custom
// workspace commands.
type ConfigCommandProvider struct {
	lsp *lsp.Server
}

func NewConfigCommandProvider(lspServer *lsp.Server) *ConfigCommandProvider {
	return &ConfigCommandProvider{
		lsp: lspServer,
	}
}

func (c *ConfigCommandProvider) GetCommands(ctx context.Context) map[string]lsp.CommandFunc {
	return map[string]lsp.CommandFunc{
		"phpls/config/get": c.getConfig,
		"phpls/config/set": c.setConfig,
	}
}

func (c *ConfigCommandProvider) getConfig(ctx context.Context, args *json.RawMessage) (interface{}, error) {
	config, err := LoadConfig(c.lsp.RootPath())
	if err != nil {
		return nil, err
	}

	return config, nil
}

func (c *ConfigCommandProvider) setConfig(ctx context.Context, args *json.RawMessage) (interface{}, error) {
	var params struct {
		Key   string      `json:"key"`
		Value interface{} `json:"value"`
	}

	if err := json.Unmarshal(*args, &params); err != nil {
		return nil, fmt.Errorf("invalid arguments for setConfig: %w", err)
	}

	if params.Key == "" {
		return nil, fmt.Errorf("setConfig requires a key")
	}

	configPath := filepath.Join(c.lsp.RootPath(), ConfigFileName)

	content, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
		}
		content = []byte("{}")
	}

	newContent, err := sjson.SetBytes(content, params.Key, params.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to set %s in %s: %w", params.Key, ConfigFileName, err)
	}

	if err := os.WriteFile(configPath, pretty.Pretty(newContent), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", ConfigFileName, err)
	}

	return map[string]interface{}{
		"success": true,
	}, nil
}
