package doctype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConditionalClassString(t *testing.T) {
	cond := ParseConditional("($class is class-string<T> ? T : object)")
	require.NotNil(t, cond)

	assert.Equal(t, "class", cond.Param)
	assert.Equal(t, CondClassString, cond.Kind)
	assert.Equal(t, "T", cond.CondType)
	assert.Equal(t, "T", cond.Then.Concrete)
	assert.Equal(t, "object", cond.Else.Concrete)
}

func TestParseConditionalIsNull(t *testing.T) {
	cond := ParseConditional("($id is null ? Collection : Entity)")
	require.NotNil(t, cond)

	assert.Equal(t, "id", cond.Param)
	assert.Equal(t, CondIsNull, cond.Kind)
	assert.Equal(t, "Collection", cond.Then.Concrete)
	assert.Equal(t, "Entity", cond.Else.Concrete)
}

func TestParseConditionalIsType(t *testing.T) {
	cond := ParseConditional("($value is string ? StringResult : MixedResult)")
	require.NotNil(t, cond)

	assert.Equal(t, CondIsType, cond.Kind)
	assert.Equal(t, "string", cond.CondType)
}

func TestParseConditionalNested(t *testing.T) {
	cond := ParseConditional("($a is null ? NullResult : ($a is string ? StringResult : OtherResult))")
	require.NotNil(t, cond)

	assert.Equal(t, CondIsNull, cond.Kind)
	assert.Equal(t, "NullResult", cond.Then.Concrete)

	nested := cond.Else.Cond
	require.NotNil(t, nested)
	assert.Equal(t, CondIsType, nested.Kind)
	assert.Equal(t, "StringResult", nested.Then.Concrete)
	assert.Equal(t, "OtherResult", nested.Else.Concrete)
}

func TestParseConditionalMultiline(t *testing.T) {
	cond := ParseConditional(`($definition is class-string<EntityDefinition>
	 *     ? EntityRepository
	 *     : Connection)`)
	require.NotNil(t, cond)

	assert.Equal(t, "definition", cond.Param)
	assert.Equal(t, CondClassString, cond.Kind)
	assert.Equal(t, "EntityRepository", cond.Then.Concrete)
	assert.Equal(t, "Connection", cond.Else.Concrete)
}

func TestParseConditionalMalformed(t *testing.T) {
	testCases := []string{
		"",
		"User",
		"($a ? b : c)",
		"($a is x ? b)",
		"$a is x ? b : c",
		"(is null ? A : B)",
	}

	for _, expr := range testCases {
		assert.Nil(t, ParseConditional(expr), "expected nil for %q", expr)
	}
}

func TestEvaluateClassString(t *testing.T) {
	rt := ParseReturnType("($class is class-string<T> ? T : object)")
	require.True(t, rt.IsConditional())

	result := rt.Evaluate(map[string]Argument{
		"class": {ClassLiteral: "App\\Entity\\User"},
	})
	assert.Equal(t, "App\\Entity\\User", result)

	// No class literal falls through to the else branch.
	result = rt.Evaluate(map[string]Argument{
		"class": {TypeName: "string"},
	})
	assert.Equal(t, "object", result)
}

func TestEvaluateIsNull(t *testing.T) {
	rt := ParseReturnType("($id is null ? Collection : Entity)")

	assert.Equal(t, "Collection", rt.Evaluate(map[string]Argument{"id": {IsNull: true}}))
	assert.Equal(t, "Entity", rt.Evaluate(map[string]Argument{"id": {TypeName: "int"}}))
	assert.Equal(t, "Entity", rt.Evaluate(nil))
}

func TestEvaluateNested(t *testing.T) {
	rt := ParseReturnType("($a is null ? NullResult : ($a is string ? StringResult : OtherResult))")

	assert.Equal(t, "NullResult", rt.Evaluate(map[string]Argument{"a": {IsNull: true}}))
	assert.Equal(t, "StringResult", rt.Evaluate(map[string]Argument{"a": {TypeName: "string"}}))
	assert.Equal(t, "OtherResult", rt.Evaluate(map[string]Argument{"a": {TypeName: "int"}}))
}

func TestEvaluateConcrete(t *testing.T) {
	rt := ParseReturnType("User")
	assert.Equal(t, "User", rt.Evaluate(nil))
}

func TestSynthesizeConditional(t *testing.T) {
	cond := SynthesizeConditional(
		[]string{"T"},
		map[string]string{"cls": "class-string<T>"},
		"T",
	)
	require.NotNil(t, cond)

	assert.Equal(t, "cls", cond.Param)
	assert.Equal(t, CondClassString, cond.Kind)

	rt := ReturnType{Cond: cond}
	result := rt.Evaluate(map[string]Argument{"cls": {ClassLiteral: "App\\Entity\\User"}})
	assert.Equal(t, "App\\Entity\\User", result)
}

func TestSynthesizeConditionalBareTemplateParam(t *testing.T) {
	cond := SynthesizeConditional(
		[]string{"T"},
		map[string]string{"subject": "T"},
		"Wrapper<T>",
	)
	require.NotNil(t, cond)
	assert.Equal(t, "subject", cond.Param)
}

func TestSynthesizeConditionalNoBinding(t *testing.T) {
	assert.Nil(t, SynthesizeConditional([]string{"T"}, map[string]string{"x": "string"}, "T"))
	assert.Nil(t, SynthesizeConditional([]string{"T"}, map[string]string{"x": "class-string<T>"}, "User"))
	assert.Nil(t, SynthesizeConditional(nil, map[string]string{"x": "class-string<T>"}, "T"))
}

func TestSubstituteTemplateWordBoundary(t *testing.T) {
	// "T" must not replace inside "Type".
	assert.Equal(t, "Type<User>", substituteTemplate("Type<T>", "T", "User"))
	assert.Equal(t, "User|null", substituteTemplate("T|null", "T", "User"))
}
