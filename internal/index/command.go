package index

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/phpls/phpls/internal/lsp"
)

// CommandProvider exposes workspace symbol listings over custom commands.
type CommandProvider struct {
	phpIndex *PHPIndex
}

func NewCommandProvider(lspServer *lsp.Server) *CommandProvider {
	phpIndex, _ := lspServer.GetIndexer("php.index")

	return &CommandProvider{
		phpIndex: phpIndex.(*PHPIndex),
	}
}

func (c *CommandProvider) GetCommands(ctx context.Context) map[string]lsp.CommandFunc {
	return map[string]lsp.CommandFunc{
		"phpls/classes/all":   c.allClasses,
		"phpls/functions/all": c.allFunctions,
		"phpls/class/members": c.classMembers,
	}
}

func (c *CommandProvider) allClasses(ctx context.Context, args *json.RawMessage) (interface{}, error) {
	return c.phpIndex.AllClassNames()
}

func (c *CommandProvider) allFunctions(ctx context.Context, args *json.RawMessage) (interface{}, error) {
	return c.phpIndex.AllFunctionNames()
}

func (c *CommandProvider) classMembers(ctx context.Context, args *json.RawMessage) (interface{}, error) {
	var params struct {
		ClassName string `json:"className"`
	}

	if err := json.Unmarshal(*args, &params); err != nil {
		return nil, fmt.Errorf("invalid arguments for classMembers: %w", err)
	}

	class := c.phpIndex.GetClass(params.ClassName)
	if class == nil {
		return nil, fmt.Errorf("class %s is not indexed", params.ClassName)
	}

	return class, nil
}
