package definition

import (
	"context"
	"testing"

	"github.com/phpls/phpls/internal/index"
	"github.com/phpls/phpls/internal/lsp"
	"github.com/phpls/phpls/internal/lsp/protocol"
	"github.com/phpls/phpls/internal/php"
	treesitterhelper "github.com/phpls/phpls/internal/tree_sitter_helper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, files map[string]string) *PHPDefinitionProvider {
	t.Helper()

	idx, err := index.NewPHPIndex(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, idx.Close())
	})

	for path, src := range files {
		content := []byte(src)
		tree := php.Parse(content)
		require.NoError(t, idx.Index(path, tree.RootNode(), content))
		tree.Close()
	}

	server := lsp.NewServer(nil)
	server.RegisterIndexer(idx)

	return NewPHPDefinitionProvider(server)
}

func definitionParams(t *testing.T, uri, src string, pattern treesitterhelper.Pattern) *protocol.DefinitionParams {
	t.Helper()

	content := []byte(src)
	tree := php.Parse(content)
	t.Cleanup(func() { tree.Close() })

	node := treesitterhelper.FindFirst(tree.RootNode(), pattern, content)
	require.NotNil(t, node, "cursor node not found")

	params := &protocol.DefinitionParams{
		DocumentContent: content,
		Node:            node,
	}
	params.TextDocument.URI = uri
	return params
}

func TestMethodDefinitionJumpsToDeclaringClass(t *testing.T) {
	provider := newTestProvider(t, map[string]string{
		"/project/src/Product.php": `<?php
namespace App;

class Product
{
    public function getName(): string
    {
        return 'x';
    }
}
`,
	})

	params := definitionParams(t, "file:///project/src/order.php", `<?php
namespace App;

$product = new Product();
$product->getName();
`, treesitterhelper.And(
		treesitterhelper.NodeText("getName"),
		treesitterhelper.PHPMemberNamePattern,
	))

	locations := provider.GetDefinition(context.Background(), params)
	require.Len(t, locations, 1)
	assert.Equal(t, "file:///project/src/Product.php", locations[0].URI)
	// getName is declared on line 6 of the fixture.
	assert.Equal(t, 5, locations[0].Range.Start.Line)
}

func TestInheritedMethodDefinitionFindsParent(t *testing.T) {
	provider := newTestProvider(t, map[string]string{
		"/project/src/Entity.php": `<?php
namespace App;

class Entity
{
    public function getId(): int
    {
        return 1;
    }
}
`,
		"/project/src/Product.php": `<?php
namespace App;

class Product extends Entity
{
}
`,
	})

	params := definitionParams(t, "file:///project/src/run.php", `<?php
namespace App;

$product = new Product();
$product->getId();
`, treesitterhelper.And(
		treesitterhelper.NodeText("getId"),
		treesitterhelper.PHPMemberNamePattern,
	))

	locations := provider.GetDefinition(context.Background(), params)
	require.Len(t, locations, 1)
	assert.Equal(t, "file:///project/src/Entity.php", locations[0].URI)
}

func TestClassNameDefinition(t *testing.T) {
	provider := newTestProvider(t, map[string]string{
		"/project/src/Product.php": `<?php
namespace App;

class Product
{
}
`,
	})

	params := definitionParams(t, "file:///project/src/run.php", `<?php
namespace App;

$product = new Product();
`, treesitterhelper.And(
		treesitterhelper.NodeKind("name"),
		treesitterhelper.NodeText("Product"),
	))

	locations := provider.GetDefinition(context.Background(), params)
	require.Len(t, locations, 1)
	assert.Equal(t, "file:///project/src/Product.php", locations[0].URI)
	assert.Equal(t, 3, locations[0].Range.Start.Line)
}

func TestConstantDefinition(t *testing.T) {
	provider := newTestProvider(t, map[string]string{
		"/project/src/Status.php": `<?php
namespace App;

class Status
{
    public const ACTIVE = 'active';
}
`,
	})

	params := definitionParams(t, "file:///project/src/run.php", `<?php
namespace App;

echo Status::ACTIVE;
`, treesitterhelper.And(
		treesitterhelper.NodeText("ACTIVE"),
		treesitterhelper.PHPScopedNamePattern,
	))

	locations := provider.GetDefinition(context.Background(), params)
	require.Len(t, locations, 1)
	assert.Equal(t, "file:///project/src/Status.php", locations[0].URI)
	assert.Equal(t, 5, locations[0].Range.Start.Line)
}

func TestVariableDefinitionResolvesToClass(t *testing.T) {
	provider := newTestProvider(t, map[string]string{
		"/project/src/Product.php": `<?php
namespace App;

class Product
{
}
`,
	})

	params := definitionParams(t, "file:///project/src/run.php", `<?php
namespace App;

$product = new Product();
echo $product;
`, treesitterhelper.And(
		treesitterhelper.NodeKind("variable_name"),
		treesitterhelper.ParentOfKind("echo_statement", 1),
	))

	locations := provider.GetDefinition(context.Background(), params)
	require.Len(t, locations, 1)
	assert.Equal(t, "file:///project/src/Product.php", locations[0].URI)
}
