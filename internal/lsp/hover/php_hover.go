package hover

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

// PHPHoverProvider renders type information for variables, members and
// class names.
type PHPHoverProvider struct {
	phpIndex *index.PHPIndex
}

func NewPHPHoverProvider(lspServer *lsp.Server) *PHPHoverProvider {
	phpIndex, _ := lspServer.GetIndexer("php.index")

	return &PHPHoverProvider{
		phpIndex: phpIndex.(*index.PHPIndex),
	}
}

func (p *PHPHoverProvider) GetHover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	if params.Node == nil || strings.ToLower(filepath.Ext(params.TextDocument.URI)) != ".php" {
		return nil, nil
	}

	root := rootOf(params.Node)
	path := strings.TrimPrefix(params.TextDocument.URI, "file://")
	rctx := php.NewResolutionContext(path, root, params.Node, params.DocumentContent, p.phpIndex.GetClass, p.phpIndex.GetFunction)

	if treesitterhelper.PHPMemberNamePattern.Matches(params.Node, params.DocumentContent) ||
		treesitterhelper.PHPScopedNamePattern.Matches(params.Node, params.DocumentContent) {
		return p.memberHover(rctx, root, params)
	}

	if treesitterhelper.IsPHPVariable(params.Node) {
		return p.variableHover(rctx, root, params)
	}

	if name, ok := treesitterhelper.PHPClassNameAtNode(params.Node, params.DocumentContent); ok {
		if class := rctx.LookupClass(root, name); class != nil {
			return markdownHover(classMarkdown(class), params.Node), nil
		}
	}

	return nil, nil
}

func (p *PHPHoverProvider) memberHover(rctx *php.ResolutionContext, root *tree_sitter.Node, params *protocol.HoverParams) (*protocol.Hover, error) {
	subject, _, ok := treesitterhelper.PHPMemberAccessContext(params.Node)
	if !ok || subject == nil {
		return nil, nil
	}

	name := treesitterhelper.GetNodeText(params.Node, params.DocumentContent)
	hint := php.HintNoCall
	if parent := params.Node.Parent(); parent != nil && strings.Contains(parent.Kind(), "call") {
		hint = php.HintCall
	}

	for _, class := range rctx.ResolveSubject(root, subject) {
		kind, declaring, found := php.ClassifyMember(rctx.LoadClass, class, name, hint)
		if !found {
			continue
		}
		if content := memberMarkdown(declaring, name, kind); content != "" {
			return markdownHover(content, params.Node), nil
		}
	}

	return nil, nil
}

func (p *PHPHoverProvider) variableHover(rctx *php.ResolutionContext, root *tree_sitter.Node, params *protocol.HoverParams) (*protocol.Hover, error) {
	name := treesitterhelper.PHPVariableName(params.Node, params.DocumentContent)
	if name == "" {
		return nil, nil
	}

	if name == "this" {
		if rctx.EnclosingClass != nil {
			return markdownHover(classMarkdown(rctx.EnclosingClass), params.Node), nil
		}
		return nil, nil
	}

	typeName := php.ResolveVariableType(rctx.WithSymbol(name), root)
	if typeName == "" {
		return nil, nil
	}

	return markdownHover(fmt.Sprintf("```php\n$%s: %s\n```", name, typeName), params.Node), nil
}

func memberMarkdown(class *php.ClassInfo, name string, kind php.MemberKind) string {
	if class == nil {
		return ""
	}

	var signature string
	var deprecated bool

	switch kind {
	case php.MemberMethod:
		target := name
		if method, _, ok := php.ResolveTraitAlias(class, name); ok {
			target = method
		}
		method, ok := class.Methods[target]
		if !ok {
			return ""
		}
		signature = methodSignature(&method)
		deprecated = method.Deprecated
	case php.MemberProperty:
		property, ok := class.Properties[name]
		if !ok {
			return ""
		}
		signature = propertySignature(&property)
		deprecated = property.Deprecated
	case php.MemberConstant:
		constant, ok := class.Constants[name]
		if !ok {
			return ""
		}
		signature = constantSignature(&constant)
		deprecated = constant.Deprecated
	}

	var md strings.Builder
	md.WriteString(fmt.Sprintf("```php\n%s\n```\n\n", signature))
	md.WriteString(fmt.Sprintf("Declared in `%s`", class.Name))
	if deprecated {
		md.WriteString("\n\n**Deprecated**")
	}
	return md.String()
}

func methodSignature(method *php.MethodInfo) string {
	params := make([]string, 0, len(method.Parameters))
	for _, param := range method.Parameters {
		part := "$" + param.Name
		if param.Type != "" {
			part = param.Type + " " + part
		}
		params = append(params, part)
	}

	signature := fmt.Sprintf("%s function %s(%s)", method.Visibility, method.Name, strings.Join(params, ", "))
	if method.Static {
		signature = "static " + signature
	}
	if ret := method.ReturnType.String(); ret != "" {
		signature += ": " + ret
	}
	return signature
}

func propertySignature(property *php.PropertyInfo) string {
	signature := fmt.Sprintf("%s $%s", property.Visibility, property.Name)
	if property.Static {
		signature = "static " + signature
	}
	if property.Type != "" {
		signature += ": " + property.Type
	}
	return signature
}

func constantSignature(constant *php.ConstantInfo) string {
	signature := fmt.Sprintf("const %s", constant.Name)
	if constant.Value != "" {
		signature += " = " + constant.Value
	}
	return signature
}

func classMarkdown(class *php.ClassInfo) string {
	var header strings.Builder
	if class.IsAbstract {
		header.WriteString("abstract ")
	}
	if class.IsFinal {
		header.WriteString("final ")
	}
	header.WriteString(string(class.Kind))
	header.WriteString(" ")
	header.WriteString(class.Name)
	if class.BackingType != "" {
		header.WriteString(": " + class.BackingType)
	}
	if class.Parent != "" {
		header.WriteString(" extends " + class.Parent)
	}
	if len(class.Interfaces) > 0 {
		header.WriteString(" implements " + strings.Join(class.Interfaces, ", "))
	}

	md := fmt.Sprintf("```php\n%s\n```", header.String())
	if class.IsDeprecated {
		md += "\n\n**Deprecated**"
	}
	return md
}

func markdownHover(content string, node *tree_sitter.Node) *protocol.Hover {
	start := node.Range().StartPoint
	end := node.Range().EndPoint

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: content,
		},
		Range: &protocol.Range{
			Start: protocol.Position{Line: int(start.Row), Character: int(start.Column)},
			End:   protocol.Position{Line: int(end.Row), Character: int(end.Column)},
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
