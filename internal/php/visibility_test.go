package php

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseChildFixture() (ClassLoader, *ClassInfo, *ClassInfo) {
	base := &ClassInfo{
		Name: "Base", Kind: KindClass,
		Methods: map[string]MethodInfo{},
		Properties: map[string]PropertyInfo{
			"secret": {Name: "secret", Visibility: Private},
			"level":  {Name: "level", Visibility: Protected},
			"label":  {Name: "label", Visibility: Public},
		},
		Constants: map[string]ConstantInfo{},
	}
	child := &ClassInfo{
		Name: "Child", Kind: KindClass, Parent: "Base",
		Methods:    map[string]MethodInfo{},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}
	return loaderFor(base, child), base, child
}

func memberNames(members []Member) []string {
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
	}
	return names
}

func TestVisibilityMatrix(t *testing.T) {
	load, base, child := baseChildFixture()
	unrelated := &ClassInfo{Name: "Unrelated", Kind: KindClass}

	tests := []struct {
		name       string
		visibility Visibility
		site       *ClassInfo
		visible    bool
	}{
		{"public from nowhere", Public, nil, true},
		{"public from unrelated", Public, unrelated, true},
		{"protected from top level", Protected, nil, false},
		{"protected from declaring class", Protected, base, true},
		{"protected from subclass", Protected, child, true},
		{"protected from unrelated", Protected, unrelated, false},
		{"private from declaring class", Private, base, true},
		{"private from subclass", Private, child, false},
		{"private from unrelated", Private, unrelated, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.visible, IsVisible(load, "Base", tt.visibility, tt.site))
		})
	}
}

func TestProtectedVisibleFromAncestor(t *testing.T) {
	load, base, child := baseChildFixture()
	child.Properties["extra"] = PropertyInfo{Name: "extra", Visibility: Protected}

	// The declaring class sits below the access site.
	assert.True(t, IsVisible(load, "Child", Protected, base))
}

func TestFilterMembersInstanceAccess(t *testing.T) {
	load, _, child := baseChildFixture()
	members := CollectMembers(load, child)

	// From inside Child: protected level visible, private secret never.
	filtered := FilterMembers(load, members, child, AccessContext{
		Operator:    AccessArrow,
		InsideClass: child,
	})
	names := memberNames(filtered)
	assert.Contains(t, names, "level")
	assert.Contains(t, names, "label")
	assert.NotContains(t, names, "secret")

	// From inside Base: everything.
	base := load("Base")
	filtered = FilterMembers(load, members, base, AccessContext{
		Operator:    AccessArrow,
		InsideClass: base,
	})
	names = memberNames(filtered)
	assert.Contains(t, names, "secret")
	assert.Contains(t, names, "level")

	// From the outside: public only.
	filtered = FilterMembers(load, members, child, AccessContext{Operator: AccessArrow})
	assert.Equal(t, []string{"label"}, memberNames(filtered))
}

func TestFilterMembersStaticAccess(t *testing.T) {
	class := &ClassInfo{
		Name: "Service", Kind: KindClass,
		Methods: map[string]MethodInfo{
			"create":      {Name: "create", Visibility: Public, Static: true},
			"handle":      {Name: "handle", Visibility: Public},
			"__construct": {Name: "__construct", Visibility: Public},
		},
		Properties: map[string]PropertyInfo{
			"instance": {Name: "instance", Visibility: Public, Static: true},
			"state":    {Name: "state", Visibility: Public},
		},
		Constants: map[string]ConstantInfo{
			"VERSION": {Name: "VERSION", Visibility: Public},
		},
	}
	load := loaderFor(class)
	members := CollectMembers(load, class)

	// Service:: from an unrelated site: statics and constants only, no
	// constructor.
	outside := FilterMembers(load, members, class, AccessContext{Operator: AccessStatic})
	names := memberNames(outside)
	assert.Contains(t, names, "create")
	assert.Contains(t, names, "instance")
	assert.Contains(t, names, "VERSION")
	assert.NotContains(t, names, "handle")
	assert.NotContains(t, names, "state")
	assert.NotContains(t, names, "__construct")

	// self:: from inside also reaches instance members and the
	// constructor.
	inside := FilterMembers(load, members, class, AccessContext{
		Operator:              AccessStatic,
		SubjectIsClassKeyword: true,
		InsideClass:           class,
	})
	names = memberNames(inside)
	assert.Contains(t, names, "handle")
	assert.Contains(t, names, "state")
	assert.Contains(t, names, "__construct")
}

func TestFilterMembersArrowHidesStatics(t *testing.T) {
	class := &ClassInfo{
		Name: "Repo", Kind: KindClass,
		Methods: map[string]MethodInfo{
			"find":    {Name: "find", Visibility: Public},
			"factory": {Name: "factory", Visibility: Public, Static: true},
			"__get":   {Name: "__get", Visibility: Public},
		},
		Properties: map[string]PropertyInfo{},
		Constants: map[string]ConstantInfo{
			"TABLE": {Name: "TABLE", Visibility: Public},
		},
	}
	load := loaderFor(class)
	members := CollectMembers(load, class)

	// $repo-> from outside: instance members only, no constants, no
	// magic methods.
	outside := FilterMembers(load, members, class, AccessContext{Operator: AccessArrow})
	assert.Equal(t, []string{"find"}, memberNames(outside))

	// $this-> style access inside the class reaches statics too.
	inside := FilterMembers(load, members, class, AccessContext{
		Operator:              AccessArrow,
		SubjectIsClassKeyword: true,
		InsideClass:           class,
	})
	names := memberNames(inside)
	assert.Contains(t, names, "find")
	assert.Contains(t, names, "factory")
	assert.NotContains(t, names, "TABLE")
}

func TestMagicMethodsResolvableByName(t *testing.T) {
	class := &ClassInfo{
		Name: "Proxy", Kind: KindClass,
		Methods: map[string]MethodInfo{
			"__call": {Name: "__call", Visibility: Public},
		},
		Properties: map[string]PropertyInfo{},
		Constants:  map[string]ConstantInfo{},
	}
	load := loaderFor(class)

	// Withheld from listings, but a direct lookup still works.
	declaring := FindDeclaringClassOfKind(load, class, "__call", MemberMethod)
	require.NotNil(t, declaring)
	assert.Equal(t, "Proxy", declaring.Name)
}
