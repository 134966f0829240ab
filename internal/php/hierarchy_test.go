package php

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loaderFor(classes ...*ClassInfo) ClassLoader {
	byName := make(map[string]*ClassInfo, len(classes))
	for _, class := range classes {
		byName[class.Name] = class
	}
	return func(name string) *ClassInfo {
		return byName[name]
	}
}

func method(name string, visibility Visibility) MethodInfo {
	return MethodInfo{Name: name, Visibility: visibility}
}

func TestTraitBeatsInheritedMethod(t *testing.T) {
	a := &ClassInfo{
		Name: "A", Kind: KindClass,
		Methods:    map[string]MethodInfo{"f": method("f", Public)},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}
	trait := &ClassInfo{
		Name: "T", Kind: KindTrait,
		Methods:    map[string]MethodInfo{"f": method("f", Public)},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}
	b := &ClassInfo{
		Name: "B", Kind: KindClass, Parent: "A", Traits: []string{"T"},
		Methods:    map[string]MethodInfo{},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}
	c := &ClassInfo{
		Name: "C", Kind: KindClass, Parent: "B",
		Methods:    map[string]MethodInfo{},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}

	load := loaderFor(a, trait, b, c)

	declaring := FindDeclaringClass(load, c, "f")
	require.NotNil(t, declaring)
	assert.Equal(t, "T", declaring.Name)
}

func TestInsteadOfSkipsOverriddenTrait(t *testing.T) {
	csv := &ClassInfo{
		Name: "CsvReader", Kind: KindTrait,
		Methods:    map[string]MethodInfo{"read": method("read", Public)},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}
	xml := &ClassInfo{
		Name: "XmlReader", Kind: KindTrait,
		Methods:    map[string]MethodInfo{"read": method("read", Public)},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}
	importer := &ClassInfo{
		Name: "Importer", Kind: KindClass,
		Traits: []string{"XmlReader", "CsvReader"},
		TraitPrecedences: []TraitPrecedence{
			{Trait: "CsvReader", Method: "read", InsteadOf: []string{"XmlReader"}},
		},
		Methods:    map[string]MethodInfo{},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}

	load := loaderFor(csv, xml, importer)

	declaring := FindDeclaringClass(load, importer, "read")
	require.NotNil(t, declaring)
	assert.Equal(t, "CsvReader", declaring.Name)
}

func TestTraitAliasResolvesBeforeSearch(t *testing.T) {
	xml := &ClassInfo{
		Name: "XmlReader", Kind: KindTrait,
		Methods:    map[string]MethodInfo{"read": method("read", Public)},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}
	importer := &ClassInfo{
		Name: "Importer", Kind: KindClass,
		Traits: []string{"XmlReader"},
		TraitAliases: []TraitAlias{
			{SourceTrait: "XmlReader", Method: "read", Alias: "readXml"},
		},
		Methods:    map[string]MethodInfo{},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}

	load := loaderFor(xml, importer)

	// The aliased name exists only post-composition.
	declaring := FindMember(load, importer, "readXml")
	require.NotNil(t, declaring)
	assert.Equal(t, "XmlReader", declaring.Name)

	methodName, sourceTrait, ok := ResolveTraitAlias(importer, "readXml")
	require.True(t, ok)
	assert.Equal(t, "read", methodName)
	assert.Equal(t, "XmlReader", sourceTrait)
}

func TestMixinsComeAfterParentChain(t *testing.T) {
	builder := &ClassInfo{
		Name: "QueryBuilder", Kind: KindClass,
		Methods:    map[string]MethodInfo{"where": method("where", Public)},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}
	base := &ClassInfo{
		Name: "Base", Kind: KindClass,
		Methods:    map[string]MethodInfo{"where": method("where", Public)},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}
	model := &ClassInfo{
		Name: "Model", Kind: KindClass, Parent: "Base", Mixins: []string{"QueryBuilder"},
		Methods:    map[string]MethodInfo{},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}

	load := loaderFor(builder, base, model)

	declaring := FindDeclaringClass(load, model, "where")
	require.NotNil(t, declaring)
	assert.Equal(t, "Base", declaring.Name)

	// Once the parent stops providing it, the mixin takes over.
	delete(base.Methods, "where")
	declaring = FindDeclaringClass(load, model, "where")
	require.NotNil(t, declaring)
	assert.Equal(t, "QueryBuilder", declaring.Name)
}

func TestUnloadableParentFailsClosed(t *testing.T) {
	orphan := &ClassInfo{
		Name: "Orphan", Kind: KindClass, Parent: "Vendor\\Missing",
		Methods:    map[string]MethodInfo{},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}

	load := loaderFor(orphan)

	assert.Nil(t, FindDeclaringClass(load, orphan, "anything"))
	assert.False(t, IsSubclassOf(load, orphan, "Throwable"))
}

func TestIsSubclassOfThroughInterfaces(t *testing.T) {
	throwable := &ClassInfo{
		Name: "Throwable", Kind: KindInterface,
		Methods:    map[string]MethodInfo{},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}
	exception := &ClassInfo{
		Name: "Exception", Kind: KindClass, Interfaces: []string{"Throwable"},
		Methods:    map[string]MethodInfo{},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}
	domain := &ClassInfo{
		Name: "DomainException", Kind: KindClass, Parent: "Exception",
		Methods:    map[string]MethodInfo{},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}

	load := loaderFor(throwable, exception, domain)

	assert.True(t, IsSubclassOf(load, domain, "Exception"))
	assert.True(t, IsSubclassOf(load, domain, "Throwable"))
	assert.False(t, IsSubclassOf(load, exception, "DomainException"))
}

func TestCyclicHierarchyTerminates(t *testing.T) {
	first := &ClassInfo{
		Name: "First", Kind: KindClass, Parent: "Second",
		Methods:    map[string]MethodInfo{},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}
	second := &ClassInfo{
		Name: "Second", Kind: KindClass, Parent: "First",
		Methods:    map[string]MethodInfo{},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}

	load := loaderFor(first, second)

	assert.Nil(t, FindDeclaringClass(load, first, "missing"))
	assert.NotPanics(t, func() {
		CollectMembers(load, first)
	})
}

func TestClassifyMemberHints(t *testing.T) {
	class := &ClassInfo{
		Name: "Config", Kind: KindClass,
		Methods:    map[string]MethodInfo{"value": method("value", Public)},
		Properties: map[string]PropertyInfo{"value": {Name: "value", Visibility: Public}},
		Constants:  map[string]ConstantInfo{"value": {Name: "value", Visibility: Public}},
	}

	load := loaderFor(class)

	kind, _, ok := ClassifyMember(load, class, "value", HintCall)
	require.True(t, ok)
	assert.Equal(t, MemberMethod, kind)

	kind, _, ok = ClassifyMember(load, class, "value", HintNoCall)
	require.True(t, ok)
	assert.Equal(t, MemberProperty, kind)

	kind, _, ok = ClassifyMember(load, class, "value", HintNone)
	require.True(t, ok)
	assert.Equal(t, MemberMethod, kind)

	_, _, ok = ClassifyMember(load, class, "missing", HintNone)
	assert.False(t, ok)
}

func TestCollectMembersSupersedesAncestors(t *testing.T) {
	parent := &ClassInfo{
		Name: "ParentClass", Kind: KindClass,
		Methods: map[string]MethodInfo{
			"save": method("save", Public),
			"load": method("load", Public),
		},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}
	child := &ClassInfo{
		Name: "ChildClass", Kind: KindClass, Parent: "ParentClass",
		Methods:    map[string]MethodInfo{"save": method("save", Protected)},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}

	load := loaderFor(parent, child)

	members := CollectMembers(load, child)

	var saves []Member
	for _, m := range members {
		if m.Name == "save" {
			saves = append(saves, m)
		}
	}
	require.Len(t, saves, 1)
	assert.Equal(t, "ChildClass", saves[0].DeclaringClass)
	assert.Equal(t, Protected, saves[0].Visibility)

	var loads int
	for _, m := range members {
		if m.Name == "load" {
			loads++
		}
	}
	assert.Equal(t, 1, loads)
}

func TestResolveTypeAliasImportChain(t *testing.T) {
	source := &ClassInfo{
		Name: "Shapes", Kind: KindClass,
		TypeAliases: map[string]string{"UserRow": "array{id: int, name: string}"},
		Methods:     map[string]MethodInfo{},
		Properties:  map[string]PropertyInfo{},
		Constants:   map[string]ConstantInfo{},
	}
	consumer := &ClassInfo{
		Name: "Repository", Kind: KindClass,
		TypeAliases: map[string]string{"Row": "from:Shapes:UserRow"},
		Methods:     map[string]MethodInfo{},
		Properties:  map[string]PropertyInfo{},
		Constants:   map[string]ConstantInfo{},
	}

	load := loaderFor(source, consumer)

	assert.Equal(t, "array{id: int, name: string}", ResolveTypeAlias(load, consumer, "Row"))
	assert.Equal(t, "", ResolveTypeAlias(load, consumer, "Unknown"))

	// A self-referential import chain ends as absence, not a hang.
	cyclic := &ClassInfo{
		Name: "Cyclic", Kind: KindClass,
		TypeAliases: map[string]string{"Loop": "from:Cyclic:Loop"},
		Methods:     map[string]MethodInfo{},
		Properties:  map[string]PropertyInfo{},
		Constants:   map[string]ConstantInfo{},
	}
	assert.Equal(t, "", ResolveTypeAlias(loaderFor(cyclic), cyclic, "Loop"))

	expanded := ExpandTypeAliases(load, consumer, "Row|null")
	assert.Equal(t, "array{id: int, name: string}|null", expanded)
}
