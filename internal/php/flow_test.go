package php

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cursorMarker = "/*cursor*/"

// resolveSymbol parses src, places the query at the cursor marker and
// resolves the symbol against the classes and functions of the same file.
func resolveSymbol(t *testing.T, src, symbol string, enclosing string) []string {
	t.Helper()

	offset := strings.Index(src, cursorMarker)
	require.GreaterOrEqual(t, offset, 0, "source must contain the cursor marker")

	content := []byte(src)
	tree := Parse(content)
	require.NotNil(t, tree)
	t.Cleanup(tree.Close)
	root := tree.RootNode()

	classes := CollectClasses("test.php", root, content)
	functions := CollectFunctions(root, content)

	var fileClasses []*ClassInfo
	for _, class := range classes {
		fileClasses = append(fileClasses, class)
	}

	ctx := &ResolutionContext{
		Symbol:      symbol,
		Offset:      uint(offset),
		FileClasses: fileClasses,
		Content:     content,
		LoadClass: func(name string) *ClassInfo {
			return classes[name]
		},
		LoadFunction: func(name string) *MethodInfo {
			if fn, ok := functions[name]; ok {
				return &fn
			}
			return nil
		},
	}
	if enclosing != "" {
		ctx.EnclosingClass = classes[enclosing]
		require.NotNil(t, ctx.EnclosingClass)
	}

	var names []string
	for _, class := range ResolveVariable(ctx, root) {
		names = append(names, class.Name)
	}
	return names
}

func TestResolveNewAndReassignment(t *testing.T) {
	src := `<?php
class Foo {}
class Bar {}

$x = new Foo();
$x = new Bar();
` + cursorMarker + `
`
	assert.Equal(t, []string{"Bar"}, resolveSymbol(t, src, "x", ""))
}

func TestResolveVariableChain(t *testing.T) {
	src := `<?php
class Foo {}

$b = new Foo();
$a = $b;
` + cursorMarker + `
`
	assert.Equal(t, []string{"Foo"}, resolveSymbol(t, src, "a", ""))
}

func TestUnsetClearsAndReassignRestores(t *testing.T) {
	cleared := `<?php
class Foo {}

$x = new Foo();
unset($x);
` + cursorMarker + `
`
	assert.Empty(t, resolveSymbol(t, cleared, "x", ""))

	restored := `<?php
class Foo {}
class Bar {}

$x = new Foo();
unset($x);
$x = new Bar();
` + cursorMarker + `
`
	assert.Equal(t, []string{"Bar"}, resolveSymbol(t, restored, "x", ""))
}

func TestConditionalUnsetIsIgnored(t *testing.T) {
	src := `<?php
class Foo {}

$x = new Foo();
if ($flag) {
    unset($x);
}
` + cursorMarker + `
`
	assert.Equal(t, []string{"Foo"}, resolveSymbol(t, src, "x", ""))
}

func TestBranchAssignmentsAccumulate(t *testing.T) {
	src := `<?php
class A {}
class B {}

if ($c) {
    $v = new A();
} else {
    $v = new B();
}
` + cursorMarker + `
`
	names := resolveSymbol(t, src, "v", "")
	assert.ElementsMatch(t, []string{"A", "B"}, names)
}

func TestUnconditionalReplacesBranches(t *testing.T) {
	src := `<?php
class A {}
class B {}
class C {}

if ($c) {
    $v = new A();
} else {
    $v = new B();
}
$v = new C();
` + cursorMarker + `
`
	assert.Equal(t, []string{"C"}, resolveSymbol(t, src, "v", ""))
}

func TestBranchAfterBindingStaysPossible(t *testing.T) {
	src := `<?php
class A {}
class B {}

$v = new A();
if ($c) {
    $v = new B();
}
` + cursorMarker + `
`
	names := resolveSymbol(t, src, "v", "")
	assert.ElementsMatch(t, []string{"A", "B"}, names)
}

func TestMatchArmsUnion(t *testing.T) {
	src := `<?php
class A {}
class B {}

$v = match($x) {
    1 => new A(),
    default => new B(),
};
` + cursorMarker + `
`
	names := resolveSymbol(t, src, "v", "")
	assert.ElementsMatch(t, []string{"A", "B"}, names)
}

func TestMethodScopeIsolatedFromTopLevel(t *testing.T) {
	src := `<?php
class Foo {}

class Runner
{
    public function run(): void
    {
        ` + cursorMarker + `
    }
}

$x = new Foo();
`
	assert.Empty(t, resolveSymbol(t, src, "x", "Runner"))
}

func TestParameterFallback(t *testing.T) {
	src := `<?php
class Product {}

class Handler
{
    public function handle(Product $item): void
    {
        ` + cursorMarker + `
    }
}
`
	assert.Equal(t, []string{"Product"}, resolveSymbol(t, src, "item", "Handler"))
}

func TestDocParamBeatsWeakNativeHint(t *testing.T) {
	src := `<?php
class Request {}

class Handler
{
    /** @param Request $input */
    public function handle(object $input): void
    {
        ` + cursorMarker + `
    }
}
`
	assert.Equal(t, []string{"Request"}, resolveSymbol(t, src, "input", "Handler"))
}

func TestInlineVarAnnotation(t *testing.T) {
	src := `<?php
class Logger {}

/** @var Logger $log */
` + cursorMarker + `
`
	assert.Equal(t, []string{"Logger"}, resolveSymbol(t, src, "log", ""))
}

func TestThisResolvesToEnclosingClass(t *testing.T) {
	src := `<?php
class Service
{
    public function run(): void
    {
        ` + cursorMarker + `
    }
}
`
	assert.Equal(t, []string{"Service"}, resolveSymbol(t, src, "this", "Service"))
}

func TestMethodCallReturnType(t *testing.T) {
	src := `<?php
class Product {}

class Repo
{
    public function first(): Product
    {
        return new Product();
    }
}

$repo = new Repo();
$p = $repo->first();
` + cursorMarker + `
`
	assert.Equal(t, []string{"Product"}, resolveSymbol(t, src, "p", ""))
}

func TestTemplateClassStringCall(t *testing.T) {
	src := `<?php
class User {}

class Container
{
    /**
     * @template T
     * @param class-string<T> $cls
     * @return T
     */
    public function find(string $cls): object
    {
        return new $cls();
    }
}

$c = new Container();
$u = $c->find(User::class);
` + cursorMarker + `
`
	assert.Equal(t, []string{"User"}, resolveSymbol(t, src, "u", ""))
}

func TestConditionalReturnNullBranch(t *testing.T) {
	src := `<?php
class Session {}
class NullSession {}

class Factory
{
    /**
     * @return ($id is null ? NullSession : Session)
     */
    public function make(?string $id): object
    {
        return $id === null ? new NullSession() : new Session();
    }
}

$f = new Factory();
$s = $f->make(null);
` + cursorMarker + `
`
	assert.Equal(t, []string{"NullSession"}, resolveSymbol(t, src, "s", ""))
}

func TestForeachGenericAnnotation(t *testing.T) {
	src := `<?php
class Product {}

class Repo
{
    /** @return list<Product> */
    public function all(): array
    {
        return [];
    }
}

$repo = new Repo();
$products = $repo->all();
foreach ($products as $p) {
    ` + cursorMarker + `
}
`
	assert.Equal(t, []string{"Product"}, resolveSymbol(t, src, "p", ""))
}

func TestForeachKeyType(t *testing.T) {
	src := `<?php
class Request {}
class Response {}

class Router
{
    /** @return array<Request, Response> */
    public function table(): array
    {
        return [];
    }
}

$router = new Router();
foreach ($router->table() as $req => $resp) {
    ` + cursorMarker + `
}
`
	assert.Equal(t, []string{"Request"}, resolveSymbol(t, src, "req", ""))
	assert.Equal(t, []string{"Response"}, resolveSymbol(t, src, "resp", ""))
}

func TestForeachCollectionGenericArguments(t *testing.T) {
	src := `<?php
class Product {}

/** @implements IteratorAggregate<int, Product> */
class ProductCollection implements IteratorAggregate {}

$collection = new ProductCollection();
foreach ($collection as $item) {
    ` + cursorMarker + `
}
`
	assert.Equal(t, []string{"Product"}, resolveSymbol(t, src, "item", ""))
}

func TestForeachArrayLiteral(t *testing.T) {
	src := `<?php
class A {}
class B {}

$all = [new A(), new B()];
foreach ($all as $one) {
    ` + cursorMarker + `
}
`
	names := resolveSymbol(t, src, "one", "")
	assert.ElementsMatch(t, []string{"A", "B"}, names)
}

func TestSpreadMergeWithAppends(t *testing.T) {
	src := `<?php
class A {}
class B {}
class C {}

$first = [new A()];
$second = [new B()];
$all = [...$first, ...$second];
$all[] = new C();
foreach ($all as $entry) {
    ` + cursorMarker + `
}
`
	names := resolveSymbol(t, src, "entry", "")
	assert.ElementsMatch(t, []string{"A", "B", "C"}, names)
}

func TestDestructuringByKey(t *testing.T) {
	src := `<?php
class User {}

/** @return array{user: User, count: int} */
function fetch(): array
{
    return [];
}

['user' => $u] = fetch();
` + cursorMarker + `
`
	assert.Equal(t, []string{"User"}, resolveSymbol(t, src, "u", ""))
}

func TestDestructuringByPosition(t *testing.T) {
	src := `<?php
class First {}
class Second {}

/** @return array{0: First, 1: Second} */
function pair(): array
{
    return [];
}

[$a, $b] = pair();
` + cursorMarker + `
`
	assert.Equal(t, []string{"First"}, resolveSymbol(t, src, "a", ""))
	assert.Equal(t, []string{"Second"}, resolveSymbol(t, src, "b", ""))
}

func TestDestructuringArrayLiteral(t *testing.T) {
	src := `<?php
class Conn {}

['db' => $db] = ['db' => new Conn(), 'ttl' => 60];
` + cursorMarker + `
`
	assert.Equal(t, []string{"Conn"}, resolveSymbol(t, src, "db", ""))
}

func TestCatchClauseBinding(t *testing.T) {
	src := `<?php
class AppError {}
class IoError {}

try {
    work();
} catch (AppError | IoError $e) {
    ` + cursorMarker + `
}
`
	names := resolveSymbol(t, src, "e", "")
	assert.ElementsMatch(t, []string{"AppError", "IoError"}, names)
}

func TestEnumCaseResolvesToEnum(t *testing.T) {
	src := `<?php
enum Status: string
{
    case Active = 'active';
}

$s = Status::Active;
` + cursorMarker + `
`
	assert.Equal(t, []string{"Status"}, resolveSymbol(t, src, "s", ""))
}

func TestIdenticalQueriesAreStable(t *testing.T) {
	src := `<?php
class A {}
class B {}

if ($c) {
    $v = new A();
} else {
    $v = new B();
}
` + cursorMarker + `
`
	first := resolveSymbol(t, src, "v", "")
	second := resolveSymbol(t, src, "v", "")
	assert.Equal(t, first, second)
}

func TestParseInlineVar(t *testing.T) {
	typ, name, ok := ParseInlineVar("/** @var list<Product> $items */")
	require.True(t, ok)
	assert.Equal(t, "list<Product>", typ)
	assert.Equal(t, "items", name)

	_, _, ok = ParseInlineVar("/** just a comment */")
	assert.False(t, ok)
}
