package php

import (
	"github.com/phpls/phpls/internal/php/doctype"
)

// ClassKind distinguishes the four PHP class-like declarations.
type ClassKind string

const (
	KindClass     ClassKind = "class"
	KindInterface ClassKind = "interface"
	KindTrait     ClassKind = "trait"
	KindEnum      ClassKind = "enum"
)

// Visibility of a class member. PHP has exactly these three.
type Visibility int

const (
	Public Visibility = iota
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return "public"
	}
}

// MemberKind classifies what a member name refers to on a class.
type MemberKind int

const (
	MemberMethod MemberKind = iota
	MemberProperty
	MemberConstant
)

func (k MemberKind) String() string {
	switch k {
	case MemberProperty:
		return "property"
	case MemberConstant:
		return "constant"
	default:
		return "method"
	}
}

// ParameterInfo is one declared parameter of a method or function.
type ParameterInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

// MethodInfo describes one method (or top-level function). ReturnType holds
// the merged native/docblock type and may carry a conditional tree.
type MethodInfo struct {
	Name       string              `json:"name"`
	Line       int                 `json:"line"`
	Visibility Visibility          `json:"visibility"`
	Static     bool                `json:"static,omitempty"`
	Abstract   bool                `json:"abstract,omitempty"`
	Deprecated bool                `json:"deprecated,omitempty"`
	Virtual    bool                `json:"virtual,omitempty"`
	ReturnType doctype.ReturnType  `json:"returnType"`
	Parameters []ParameterInfo     `json:"parameters,omitempty"`
	Templates  []string            `json:"templates,omitempty"`
}

// PropertyInfo describes one property. Type is a docblock type expression.
type PropertyInfo struct {
	Name       string     `json:"name"`
	Line       int        `json:"line"`
	Visibility Visibility `json:"visibility"`
	Static     bool       `json:"static,omitempty"`
	ReadOnly   bool       `json:"readOnly,omitempty"`
	Deprecated bool       `json:"deprecated,omitempty"`
	Virtual    bool       `json:"virtual,omitempty"`
	Type       string     `json:"type,omitempty"`
}

// ConstantInfo describes one class constant or enum case.
type ConstantInfo struct {
	Name       string     `json:"name"`
	Line       int        `json:"line"`
	Visibility Visibility `json:"visibility"`
	Deprecated bool       `json:"deprecated,omitempty"`
	// Type is the value type; enum cases carry their enum's name.
	Type  string `json:"type,omitempty"`
	Value string `json:"value,omitempty"`
}

// TraitAlias is one "use ... { [Trait::]method as [visibility] [alias]; }"
// clause.
type TraitAlias struct {
	SourceTrait string      `json:"sourceTrait,omitempty"`
	Method      string      `json:"method"`
	Alias       string      `json:"alias,omitempty"`
	Visibility  *Visibility `json:"visibility,omitempty"`
}

// TraitPrecedence is one "Trait::method insteadof Other" clause.
type TraitPrecedence struct {
	Trait     string   `json:"trait"`
	Method    string   `json:"method"`
	InsteadOf []string `json:"insteadOf"`
}

// ClassInfo is the merged description of one class, interface, trait or
// enum: native declaration data combined with its docblock overlay. Built
// once per declaration and treated as immutable afterwards.
type ClassInfo struct {
	Name string    `json:"name"`
	Kind ClassKind `json:"kind"`
	Path string    `json:"path"`
	Line int       `json:"line"`

	Parent     string   `json:"parent,omitempty"`
	Interfaces []string `json:"interfaces,omitempty"`
	Traits     []string `json:"traits,omitempty"`
	Mixins     []string `json:"mixins,omitempty"`

	TraitAliases     []TraitAlias      `json:"traitAliases,omitempty"`
	TraitPrecedences []TraitPrecedence `json:"traitPrecedences,omitempty"`

	Methods    map[string]MethodInfo   `json:"methods"`
	Properties map[string]PropertyInfo `json:"properties"`
	Constants  map[string]ConstantInfo `json:"constants"`

	// Templates are the class-level @template parameter names.
	Templates []string `json:"templates,omitempty"`
	// GenericArguments maps an extended/implemented/used name to the
	// generic arguments the docblock binds for it, e.g.
	// "@extends Collection<Product>".
	GenericArguments map[string][]string `json:"genericArguments,omitempty"`
	// TypeAliases maps a local alias name to its definition, or to a
	// "from:OtherClass:Name" indirection for imported aliases.
	TypeAliases map[string]string `json:"typeAliases,omitempty"`

	IsAbstract   bool `json:"isAbstract,omitempty"`
	IsFinal      bool `json:"isFinal,omitempty"`
	IsDeprecated bool `json:"isDeprecated,omitempty"`

	// BackingType is set for backed enums ("string" or "int").
	BackingType string `json:"backingType,omitempty"`
}

// ClassLoader resolves a fully qualified class name to its ClassInfo. A nil
// result is ordinary absence, never an error.
type ClassLoader func(name string) *ClassInfo

// FunctionLoader resolves a top-level function name to its signature.
type FunctionLoader func(name string) *MethodInfo

// HasMember reports whether the class itself (virtuals included, no
// inheritance) declares a member of the given name and kind.
func (c *ClassInfo) HasMember(name string, kind MemberKind) bool {
	switch kind {
	case MemberProperty:
		_, ok := c.Properties[name]
		return ok
	case MemberConstant:
		_, ok := c.Constants[name]
		return ok
	default:
		_, ok := c.Methods[name]
		return ok
	}
}

// ShortName returns the class name without its namespace.
func (c *ClassInfo) ShortName() string {
	return shortName(c.Name)
}

func shortName(fqcn string) string {
	for i := len(fqcn) - 1; i >= 0; i-- {
		if fqcn[i] == '\\' {
			return fqcn[i+1:]
		}
	}
	return fqcn
}
