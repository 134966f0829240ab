package doctype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitUnion(t *testing.T) {
	testCases := []struct {
		name     string
		expr     string
		expected []string
	}{
		{
			name:     "simple union",
			expr:     "string|int",
			expected: []string{"string", "int"},
		},
		{
			name:     "union with class names",
			expr:     "Foo|\\Bar\\Baz|null",
			expected: []string{"Foo", "\\Bar\\Baz", "null"},
		},
		{
			name:     "separator nested in generic does not split",
			expr:     "array<string|int>|null",
			expected: []string{"array<string|int>", "null"},
		},
		{
			name:     "separator nested in shape does not split",
			expr:     "array{a: string|int}|Foo",
			expected: []string{"array{a: string|int}", "Foo"},
		},
		{
			name:     "no separator",
			expr:     "Foo",
			expected: []string{"Foo"},
		},
		{
			name:     "whitespace around parts",
			expr:     "Foo | Bar",
			expected: []string{"Foo", "Bar"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SplitUnion(tc.expr))
		})
	}
}

func TestSplitIntersection(t *testing.T) {
	testCases := []struct {
		name     string
		expr     string
		expected []string
	}{
		{
			name:     "simple intersection",
			expr:     "Countable&Traversable",
			expected: []string{"Countable", "Traversable"},
		},
		{
			name:     "intersection inside object shape stays whole",
			expr:     "object{x: A&B}",
			expected: []string{"object{x: A&B}"},
		},
		{
			name:     "intersection inside parens stays whole",
			expr:     "(A&B)|C",
			expected: []string{"(A&B)|C"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SplitIntersection(tc.expr))
		})
	}
}

func TestCleanType(t *testing.T) {
	testCases := []struct {
		name     string
		expr     string
		expected string
	}{
		{
			name:     "leading namespace root marker",
			expr:     "\\App\\Entity\\Product",
			expected: "App\\Entity\\Product",
		},
		{
			name:     "generic suffix stripped",
			expr:     "Collection<Product>",
			expected: "Collection",
		},
		{
			name:     "union cut at first separator",
			expr:     "Product|null",
			expected: "Product",
		},
		{
			name:     "trailing punctuation trimmed",
			expr:     "Product.",
			expected: "Product",
		},
		{
			name:     "combination",
			expr:     "\\App\\Collection<int, Product>|null",
			expected: "App\\Collection",
		},
		{
			name:     "empty input",
			expr:     "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CleanType(tc.expr))
		})
	}
}

func TestIsScalar(t *testing.T) {
	assert.True(t, IsScalar("int"))
	assert.True(t, IsScalar("STRING"))
	assert.True(t, IsScalar(" bool "))
	assert.True(t, IsScalar("never"))
	assert.False(t, IsScalar("Product"))
	assert.False(t, IsScalar("class-string"))
}

func TestExtractGenericValueType(t *testing.T) {
	testCases := []struct {
		name     string
		expr     string
		expected string
	}{
		{
			name:     "two argument generic",
			expr:     "array<int, User>",
			expected: "User",
		},
		{
			name:     "single argument list",
			expr:     "list<User>",
			expected: "User",
		},
		{
			name:     "scalar element has nothing to complete on",
			expr:     "list<int>",
			expected: "",
		},
		{
			name:     "bracket shorthand",
			expr:     "User[]",
			expected: "User",
		},
		{
			name:     "scalar bracket shorthand",
			expr:     "string[]",
			expected: "",
		},
		{
			name:     "iterable generic",
			expr:     "iterable<Product>",
			expected: "Product",
		},
		{
			name:     "arbitrary generic class",
			expr:     "Collection<Product>",
			expected: "Product",
		},
		{
			name:     "no generic form",
			expr:     "array",
			expected: "",
		},
		{
			name:     "nested generic value",
			expr:     "array<int, Collection<Product>>",
			expected: "Collection<Product>",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExtractGenericValueType(tc.expr))
		})
	}
}

func TestExtractGenericKeyType(t *testing.T) {
	assert.Equal(t, "Request", ExtractGenericKeyType("array<Request, Response>"))
	assert.Equal(t, "int", ExtractGenericKeyType("array<int, User>"))
	assert.Equal(t, "", ExtractGenericKeyType("list<User>"))
	assert.Equal(t, "", ExtractGenericKeyType("User[]"))
	assert.Equal(t, "", ExtractGenericKeyType("array"))
}

func TestShapeEntries(t *testing.T) {
	entries := ShapeEntries("array{name: string, user: User, 'meta-data'?: array<string, mixed>, 0: Foo}")

	assert.Len(t, entries, 4)
	assert.Equal(t, ShapeEntry{Key: "name", Type: "string"}, entries[0])
	assert.Equal(t, ShapeEntry{Key: "user", Type: "User"}, entries[1])
	assert.Equal(t, ShapeEntry{Key: "meta-data", Type: "array<string, mixed>", Optional: true}, entries[2])
	assert.Equal(t, ShapeEntry{Key: "0", Type: "Foo"}, entries[3])
}

func TestShapeEntriesPositionalKeys(t *testing.T) {
	entries := ShapeEntries("array{Foo, Bar}")

	assert.Len(t, entries, 2)
	assert.Equal(t, ShapeEntry{Key: "0", Type: "Foo"}, entries[0])
	assert.Equal(t, ShapeEntry{Key: "1", Type: "Bar"}, entries[1])
}

func TestExtractArrayShapeValueType(t *testing.T) {
	testCases := []struct {
		name     string
		expr     string
		key      string
		expected string
	}{
		{
			name:     "known key",
			expr:     "array{name: string, user: User}",
			key:      "user",
			expected: "User",
		},
		{
			name:     "unknown key",
			expr:     "array{name: string, user: User}",
			key:      "missing",
			expected: "",
		},
		{
			name:     "quoted key",
			expr:     "array{'user': User}",
			key:      "user",
			expected: "User",
		},
		{
			name:     "object shape",
			expr:     "object{user: User}",
			key:      "user",
			expected: "User",
		},
		{
			name:     "bare array is not a shape",
			expr:     "array",
			key:      "user",
			expected: "",
		},
		{
			name:     "nested shape type stays whole",
			expr:     "array{user: array{id: int}}",
			key:      "user",
			expected: "array{id: int}",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExtractArrayShapeValueType(tc.expr, tc.key))
		})
	}
}
