package definition

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/phpls/phpls/internal/index"
	"github.com/phpls/phpls/internal/lsp"
	"github.com/phpls/phpls/internal/lsp/protocol"
	"github.com/phpls/phpls/internal/php"
	treesitterhelper "github.com/phpls/phpls/internal/tree_sitter_helper"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// PHPDefinitionProvider jumps to class, member and variable-type
// declarations.
type PHPDefinitionProvider struct {
	phpIndex *index.PHPIndex
}

func NewPHPDefinitionProvider(lspServer *lsp.Server) *PHPDefinitionProvider {
	phpIndex, _ := lspServer.GetIndexer("php.index")

	return &PHPDefinitionProvider{
		phpIndex: phpIndex.(*index.PHPIndex),
	}
}

func (p *PHPDefinitionProvider) GetDefinition(ctx context.Context, params *protocol.DefinitionParams) []protocol.Location {
	if params.Node == nil || strings.ToLower(filepath.Ext(params.TextDocument.URI)) != ".php" {
		return []protocol.Location{}
	}

	root := rootOf(params.Node)
	path := strings.TrimPrefix(params.TextDocument.URI, "file://")
	rctx := php.NewResolutionContext(path, root, params.Node, params.DocumentContent, p.phpIndex.GetClass, p.phpIndex.GetFunction)

	if treesitterhelper.PHPMemberNamePattern.Matches(params.Node, params.DocumentContent) ||
		treesitterhelper.PHPScopedNamePattern.Matches(params.Node, params.DocumentContent) ||
		isStaticPropertyName(params.Node) {
		return p.memberDefinitions(rctx, root, params)
	}

	if treesitterhelper.IsPHPVariable(params.Node) {
		return p.variableDefinitions(rctx, root, params)
	}

	if name, ok := treesitterhelper.PHPClassNameAtNode(params.Node, params.DocumentContent); ok {
		if class := rctx.LookupClass(root, name); class != nil {
			return []protocol.Location{classLocation(class)}
		}
	}

	return []protocol.Location{}
}

func (p *PHPDefinitionProvider) memberDefinitions(rctx *php.ResolutionContext, root *tree_sitter.Node, params *protocol.DefinitionParams) []protocol.Location {
	subject, _, ok := treesitterhelper.PHPMemberAccessContext(params.Node)
	if !ok || subject == nil {
		return []protocol.Location{}
	}

	name := strings.TrimPrefix(treesitterhelper.GetNodeText(params.Node, params.DocumentContent), "$")
	hint := php.HintNoCall
	if parent := params.Node.Parent(); parent != nil && strings.Contains(parent.Kind(), "call") {
		hint = php.HintCall
	}

	var locations []protocol.Location
	for _, class := range rctx.ResolveSubject(root, subject) {
		kind, declaring, found := php.ClassifyMember(rctx.LoadClass, class, name, hint)
		if !found {
			continue
		}
		if line, ok := memberLine(declaring, name, kind); ok {
			locations = append(locations, location(declaring.Path, line))
		}
	}

	return locations
}

func (p *PHPDefinitionProvider) variableDefinitions(rctx *php.ResolutionContext, root *tree_sitter.Node, params *protocol.DefinitionParams) []protocol.Location {
	name := treesitterhelper.PHPVariableName(params.Node, params.DocumentContent)
	if name == "" || name == "this" {
		return []protocol.Location{}
	}

	var locations []protocol.Location
	for _, class := range php.ResolveVariable(rctx.WithSymbol(name), root) {
		locations = append(locations, classLocation(class))
	}

	return locations
}

// isStaticPropertyName reports whether the node is the $prop in Foo::$prop.
func isStaticPropertyName(node *tree_sitter.Node) bool {
	current := node
	if current.Kind() != "variable_name" {
		if parent := current.Parent(); parent != nil && parent.Kind() == "variable_name" {
			current = parent
		} else {
			return false
		}
	}
	parent := current.Parent()
	return parent != nil && parent.Kind() == "scoped_property_access_expression"
}

// memberLine finds the declaration line of a member on its declaring
// class, honoring trait aliases for methods.
func memberLine(class *php.ClassInfo, name string, kind php.MemberKind) (int, bool) {
	if class == nil {
		return 0, false
	}

	switch kind {
	case php.MemberMethod:
		target := name
		if method, _, ok := php.ResolveTraitAlias(class, name); ok {
			target = method
		}
		if method, ok := class.Methods[target]; ok {
			return method.Line, true
		}
	case php.MemberProperty:
		if property, ok := class.Properties[name]; ok {
			return property.Line, true
		}
	case php.MemberConstant:
		if constant, ok := class.Constants[name]; ok {
			return constant.Line, true
		}
	}

	return class.Line, true
}

func classLocation(class *php.ClassInfo) protocol.Location {
	return location(class.Path, class.Line)
}

func location(path string, line int) protocol.Location {
	if line < 1 {
		line = 1
	}
	return protocol.Location{
		URI: fmt.Sprintf("file://%s", path),
		Range: protocol.Range{
			Start: protocol.Position{Line: line - 1, Character: 0},
			End:   protocol.Position{Line: line - 1, Character: 0},
		},
	}
}

func rootOf(node *tree_sitter.Node) *tree_sitter.Node {
	current := node
	for current.Parent() != nil {
		current = current.Parent()
	}
	return current
}
