package php

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classesOf(t *testing.T, src string) map[string]*ClassInfo {
	t.Helper()

	content := []byte(src)
	tree := Parse(content)
	require.NotNil(t, tree)
	t.Cleanup(tree.Close)

	return CollectClasses("test.php", tree.RootNode(), content)
}

func TestCollectClassesBasics(t *testing.T) {
	classes := classesOf(t, `<?php

namespace App\Service;

use App\Repository\ProductRepository;
use Psr\Log\LoggerInterface as Logger;

class ProductLoader extends AbstractLoader implements LoaderInterface
{
    private ProductRepository $repository;
    protected Logger $logger;
    public const BATCH_SIZE = 50;

    public function load(string $id): Product
    {
        return $this->repository->get($id);
    }

    private static function create(): self
    {
        return new self();
    }
}
`)

	require.Contains(t, classes, "App\\Service\\ProductLoader")
	class := classes["App\\Service\\ProductLoader"]

	assert.Equal(t, KindClass, class.Kind)
	assert.Equal(t, "App\\Service\\AbstractLoader", class.Parent)
	assert.Equal(t, []string{"App\\Service\\LoaderInterface"}, class.Interfaces)
	assert.Equal(t, "test.php", class.Path)

	require.Contains(t, class.Properties, "repository")
	assert.Equal(t, "App\\Repository\\ProductRepository", class.Properties["repository"].Type)
	assert.Equal(t, Private, class.Properties["repository"].Visibility)

	require.Contains(t, class.Properties, "logger")
	assert.Equal(t, "Psr\\Log\\LoggerInterface", class.Properties["logger"].Type)
	assert.Equal(t, Protected, class.Properties["logger"].Visibility)

	require.Contains(t, class.Constants, "BATCH_SIZE")
	assert.Equal(t, Public, class.Constants["BATCH_SIZE"].Visibility)
	assert.Equal(t, "50", class.Constants["BATCH_SIZE"].Value)

	require.Contains(t, class.Methods, "load")
	assert.Equal(t, "App\\Service\\Product", class.Methods["load"].ReturnType.Concrete)
	assert.False(t, class.Methods["load"].Static)

	require.Contains(t, class.Methods, "create")
	assert.True(t, class.Methods["create"].Static)
	assert.Equal(t, Private, class.Methods["create"].Visibility)
}

func TestConstructorPromotedProperties(t *testing.T) {
	classes := classesOf(t, `<?php

namespace App;

class Order
{
    public function __construct(
        private readonly OrderRepository $repository,
        protected int $version = 1,
    ) {
    }
}
`)

	class := classes["App\\Order"]
	require.NotNil(t, class)

	require.Contains(t, class.Properties, "repository")
	assert.Equal(t, "App\\OrderRepository", class.Properties["repository"].Type)
	assert.Equal(t, Private, class.Properties["repository"].Visibility)
	assert.True(t, class.Properties["repository"].ReadOnly)

	require.Contains(t, class.Properties, "version")
	assert.Equal(t, Protected, class.Properties["version"].Visibility)

	params := class.Methods["__construct"].Parameters
	require.Len(t, params, 2)
	assert.Equal(t, "repository", params[0].Name)
	assert.False(t, params[0].Optional)
	assert.True(t, params[1].Optional)
}

func TestDocblockTypeOverlay(t *testing.T) {
	classes := classesOf(t, `<?php

namespace App;

class Basket
{
    /** @var list<LineItem> */
    private array $items;

    /** @var Customer */
    private object $customer;

    /** @var Collection<Product> */
    private Collection $products;

    /** @var string */
    private int $count;
}
`)

	class := classes["App\\Basket"]
	require.NotNil(t, class)

	// array is iterable-shaped, the annotation refines it.
	assert.Equal(t, "list<App\\LineItem>", class.Properties["items"].Type)

	// object is weak, the annotation wins.
	assert.Equal(t, "App\\Customer", class.Properties["customer"].Type)

	// The generic annotation refines the same class.
	assert.Equal(t, "App\\Collection<App\\Product>", class.Properties["products"].Type)

	// A concrete scalar native type beats a contradicting annotation.
	assert.Equal(t, "int", class.Properties["count"].Type)
}

func TestEnumExtraction(t *testing.T) {
	classes := classesOf(t, `<?php

namespace App;

enum Status: string implements HasLabel
{
    case Active = 'active';
    case Archived = 'archived';

    public function label(): string
    {
        return $this->value;
    }
}
`)

	class := classes["App\\Status"]
	require.NotNil(t, class)

	assert.Equal(t, KindEnum, class.Kind)
	assert.Equal(t, "string", class.BackingType)
	assert.Contains(t, class.Interfaces, "App\\HasLabel")
	assert.Contains(t, class.Interfaces, "BackedEnum")

	require.Contains(t, class.Constants, "Active")
	assert.Equal(t, "App\\Status", class.Constants["Active"].Type)
	assert.Contains(t, class.Methods, "label")
}

func TestPureEnumImplementsUnitEnumOnly(t *testing.T) {
	classes := classesOf(t, `<?php

enum Direction
{
    case North;
    case South;
}
`)

	class := classes["Direction"]
	require.NotNil(t, class)

	assert.Contains(t, class.Interfaces, "UnitEnum")
	assert.NotContains(t, class.Interfaces, "BackedEnum")
	assert.Empty(t, class.BackingType)
}

func TestTraitUseWithAdaptations(t *testing.T) {
	classes := classesOf(t, `<?php

namespace App;

class Importer
{
    use CsvReader, XmlReader {
        CsvReader::read insteadof XmlReader;
        XmlReader::read as protected readXml;
    }
}
`)

	class := classes["App\\Importer"]
	require.NotNil(t, class)

	assert.Equal(t, []string{"App\\CsvReader", "App\\XmlReader"}, class.Traits)

	require.Len(t, class.TraitPrecedences, 1)
	assert.Equal(t, "App\\CsvReader", class.TraitPrecedences[0].Trait)
	assert.Equal(t, "read", class.TraitPrecedences[0].Method)
	assert.Equal(t, []string{"App\\XmlReader"}, class.TraitPrecedences[0].InsteadOf)

	require.Len(t, class.TraitAliases, 1)
	alias := class.TraitAliases[0]
	assert.Equal(t, "App\\XmlReader", alias.SourceTrait)
	assert.Equal(t, "read", alias.Method)
	assert.Equal(t, "readXml", alias.Alias)
	require.NotNil(t, alias.Visibility)
	assert.Equal(t, Protected, *alias.Visibility)
}

func TestClassDocblockVirtualMembers(t *testing.T) {
	classes := classesOf(t, `<?php

namespace App;

/**
 * @property string $title
 * @property-read int $id
 * @method static self make(array $attributes)
 * @method Product find(string $id)
 * @mixin QueryBuilder
 */
class Model
{
    public function find(string $id): object
    {
        return $this->resolve($id);
    }
}
`)

	class := classes["App\\Model"]
	require.NotNil(t, class)

	require.Contains(t, class.Properties, "title")
	assert.True(t, class.Properties["title"].Virtual)
	assert.Equal(t, "string", class.Properties["title"].Type)

	require.Contains(t, class.Properties, "id")
	assert.True(t, class.Properties["id"].ReadOnly)

	require.Contains(t, class.Methods, "make")
	assert.True(t, class.Methods["make"].Static)
	assert.True(t, class.Methods["make"].Virtual)
	require.Len(t, class.Methods["make"].Parameters, 1)
	assert.Equal(t, "attributes", class.Methods["make"].Parameters[0].Name)

	// An @method tag never shadows a real declaration.
	assert.False(t, class.Methods["find"].Virtual)
	assert.Equal(t, "object", class.Methods["find"].ReturnType.Concrete)

	assert.Equal(t, []string{"App\\QueryBuilder"}, class.Mixins)
}

func TestTemplatesAndGenericArguments(t *testing.T) {
	classes := classesOf(t, `<?php

namespace App;

/**
 * @template T
 * @extends AbstractCollection<T>
 * @implements \IteratorAggregate<int, T>
 */
class Collection extends AbstractCollection implements \IteratorAggregate
{
}
`)

	class := classes["App\\Collection"]
	require.NotNil(t, class)

	assert.Equal(t, []string{"T"}, class.Templates)
	assert.Contains(t, class.GenericArguments, "App\\AbstractCollection")
	assert.Equal(t, []string{"T"}, class.GenericArguments["App\\AbstractCollection"])
	assert.Contains(t, class.GenericArguments, "IteratorAggregate")
	assert.Equal(t, []string{"int", "T"}, class.GenericArguments["IteratorAggregate"])
}

func TestConditionalReturnParsing(t *testing.T) {
	classes := classesOf(t, `<?php

namespace App;

class Container
{
    /**
     * @template T of object
     * @param class-string<T>|string $id
     * @return ($id is class-string<T> ? T : object)
     */
    public function get(string $id): object
    {
        return $this->services[$id];
    }
}
`)

	class := classes["App\\Container"]
	require.NotNil(t, class)

	method := class.Methods["get"]
	require.True(t, method.ReturnType.IsConditional())
	assert.Equal(t, "id", method.ReturnType.Cond.Param)
	assert.Equal(t, "T", method.ReturnType.Cond.Then.Concrete)
	assert.Equal(t, "object", method.ReturnType.Cond.Else.Concrete)
}

func TestCollectFunctions(t *testing.T) {
	content := []byte(`<?php

namespace App;

/** @return list<Product> */
function load_products(string $category): array
{
    return [];
}
`)
	tree := Parse(content)
	require.NotNil(t, tree)
	defer tree.Close()

	functions := CollectFunctions(tree.RootNode(), content)

	require.Contains(t, functions, "App\\load_products")
	fn := functions["App\\load_products"]
	assert.Equal(t, "list<App\\Product>", fn.ReturnType.Concrete)
	require.Len(t, fn.Parameters, 1)
	assert.Equal(t, "category", fn.Parameters[0].Name)
}

func TestAbstractFinalDeprecated(t *testing.T) {
	classes := classesOf(t, `<?php

namespace App;

/** @deprecated use NewHandler */
abstract class LegacyHandler
{
    abstract protected function handle(): void;
}

final class NewHandler
{
}
`)

	legacy := classes["App\\LegacyHandler"]
	require.NotNil(t, legacy)
	assert.True(t, legacy.IsAbstract)
	assert.True(t, legacy.IsDeprecated)
	require.Contains(t, legacy.Methods, "handle")
	assert.True(t, legacy.Methods["handle"].Abstract)

	require.NotNil(t, classes["App\\NewHandler"])
	assert.True(t, classes["App\\NewHandler"].IsFinal)
}
