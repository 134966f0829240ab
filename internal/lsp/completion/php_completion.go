package completion

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

// PHPCompletionProvider offers class members after "->" and "::".
type PHPCompletionProvider struct {
	phpIndex *index.PHPIndex
}

func NewPHPCompletionProvider(lspServer *lsp.Server) *PHPCompletionProvider {
	phpIndex, _ := lspServer.GetIndexer("php.index")

	return &PHPCompletionProvider{
		phpIndex: phpIndex.(*index.PHPIndex),
	}
}

func (p *PHPCompletionProvider) GetCompletions(ctx context.Context, params *protocol.CompletionParams) []protocol.CompletionItem {
	if params.Node == nil || strings.ToLower(filepath.Ext(params.TextDocument.URI)) != ".php" {
		return []protocol.CompletionItem{}
	}

	subject, static, ok := treesitterhelper.PHPMemberAccessContext(params.Node)
	if !ok || subject == nil {
		return []protocol.CompletionItem{}
	}

	root := rootOf(params.Node)
	path := strings.TrimPrefix(params.TextDocument.URI, "file://")
	rctx := php.NewResolutionContext(path, root, params.Node, params.DocumentContent, p.phpIndex.GetClass, p.phpIndex.GetFunction)

	access := php.AccessContext{
		Operator:              php.AccessArrow,
		SubjectIsClassKeyword: isClassKeyword(subject, params.DocumentContent, rctx.EnclosingClass),
		InsideClass:           rctx.EnclosingClass,
	}
	if static {
		access.Operator = php.AccessStatic
	}

	var items []protocol.CompletionItem
	for _, class := range rctx.ResolveSubject(root, subject) {
		members := php.CollectMembers(rctx.LoadClass, class)
		for _, member := range php.FilterMembers(rctx.LoadClass, members, class, access) {
			items = append(items, completionItem(member, class, static))
		}
	}

	return items
}

func (p *PHPCompletionProvider) GetTriggerCharacters() []string {
	return []string{">", ":"}
}

func completionItem(member php.Member, class *php.ClassInfo, static bool) protocol.CompletionItem {
	item := protocol.CompletionItem{
		Label:  member.Name,
		Detail: member.DeclaringClass,
	}

	switch member.Kind {
	case php.MemberMethod:
		item.Kind = protocol.CompletionKindMethod
		if member.Method != nil {
			item.Detail = methodDetail(member.Method)
		}
		item.InsertText = member.Name + "($1)$0"
		item.InsertTextFormat = int(protocol.SnippetTextFormat)
		if member.Method != nil && len(member.Method.Parameters) == 0 {
			item.InsertText = member.Name + "()$0"
		}
	case php.MemberProperty:
		item.Kind = protocol.CompletionKindProperty
		if member.Property != nil && member.Property.Type != "" {
			item.Detail = member.Property.Type
		}
		if static {
			// Static properties keep the sigil after "::".
			item.Label = "$" + member.Name
			item.InsertText = "$" + member.Name
		}
	case php.MemberConstant:
		item.Kind = protocol.CompletionKindConstant
		if class.Kind == php.KindEnum || isEnumCase(member) {
			item.Kind = protocol.CompletionKindEnumMember
		}
		if member.Constant != nil && member.Constant.Type != "" {
			item.Detail = member.Constant.Type
		}
	}

	if member.Deprecated {
		item.Documentation.Kind = string(protocol.Markdown)
		item.Documentation.Value = "**Deprecated**"
	}

	return item
}

// isEnumCase detects a case surfaced through an enum ancestor of a
// non-enum subject, e.g. an interface extended by enums.
func isEnumCase(member php.Member) bool {
	return member.Constant != nil && member.Constant.Type == member.DeclaringClass
}

func methodDetail(method *php.MethodInfo) string {
	params := make([]string, 0, len(method.Parameters))
	for _, param := range method.Parameters {
		name := "$" + param.Name
		if param.Type != "" {
			name = param.Type + " " + name
		}
		if param.Optional {
			name += "?"
		}
		params = append(params, name)
	}

	detail := fmt.Sprintf("(%s)", strings.Join(params, ", "))
	if ret := method.ReturnType.String(); ret != "" {
		detail += ": " + ret
	}
	return detail
}

func isClassKeyword(subject *tree_sitter.Node, content []byte, enclosing *php.ClassInfo) bool {
	switch subject.Kind() {
	case "relative_scope":
		return true
	case "name", "qualified_name":
		text := string(subject.Utf8Text(content))
		switch text {
		case "self", "static", "parent":
			return true
		}
		return enclosing != nil && (strings.EqualFold(text, enclosing.Name) || strings.EqualFold(text, enclosing.ShortName()))
	case "variable_name":
		return string(subject.Utf8Text(content)) == "$this"
	}
	return false
}

func rootOf(node *tree_sitter.Node) *tree_sitter.Node {
	current := node
	for current.Parent() != nil {
		current = current.Parent()
	}
	return current
}
