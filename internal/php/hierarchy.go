package php

import (
	"sort"
	"strings"

	"github.com/phpls/phpls/internal/php/doctype"
)

// Recursion caps keep every hierarchy walk bounded. Hitting a cap is an
// ordinary end-of-search, not an error: class graphs in the wild can be
// cyclic or reference classes that never load.
const (
	maxHierarchyDepth = 20
	maxMixinDepth     = 10
	maxAliasDepth     = 10
)

// AccessHint tells ClassifyMember how the member name is used at the access
// site.
type AccessHint int

const (
	// HintNone means the access site gives no usable signal.
	HintNone AccessHint = iota
	// HintCall means the name is followed by an argument list.
	HintCall
	// HintNoCall means the name is definitely not called.
	HintNoCall
)

// FindDeclaringClass walks the inheritance graph of class and returns the
// class that declares the named member, or nil. Search order: the class
// itself (virtual members included), its traits (recursively, including a
// trait's own parents), the parent chain (repeating the trait step per
// ancestor), the class's mixins, then mixins declared on ancestors.
func FindDeclaringClass(load ClassLoader, class *ClassInfo, member string) *ClassInfo {
	return findDeclaringClass(load, class, member, func(c *ClassInfo) bool {
		return c.HasMember(member, MemberMethod) ||
			c.HasMember(member, MemberProperty) ||
			c.HasMember(member, MemberConstant)
	})
}

// FindDeclaringClassOfKind restricts the search to one member kind.
func FindDeclaringClassOfKind(load ClassLoader, class *ClassInfo, member string, kind MemberKind) *ClassInfo {
	return findDeclaringClass(load, class, member, func(c *ClassInfo) bool {
		return c.HasMember(member, kind)
	})
}

func findDeclaringClass(load ClassLoader, class *ClassInfo, member string, has func(*ClassInfo) bool) *ClassInfo {
	if class == nil {
		return nil
	}

	if found := searchTraitsAndParents(load, class, member, has, 0); found != nil {
		return found
	}

	if found := searchMixins(load, class, member, has, 0); found != nil {
		return found
	}

	// Mixins declared on ancestors come last.
	current := class
	for depth := 0; depth < maxHierarchyDepth && current.Parent != ""; depth++ {
		parent := load(current.Parent)
		if parent == nil {
			// Fail closed: an unloadable parent never contributes
			// members.
			break
		}
		if found := searchMixins(load, parent, member, has, 0); found != nil {
			return found
		}
		current = parent
	}

	return nil
}

// searchTraitsAndParents covers the non-mixin part of the precedence order:
// own members, used traits (recursively), interfaces, then the parent chain
// repeating the same steps.
func searchTraitsAndParents(load ClassLoader, class *ClassInfo, member string, has func(*ClassInfo) bool, depth int) *ClassInfo {
	if class == nil || depth > maxHierarchyDepth {
		return nil
	}

	if has(class) {
		return class
	}

	for _, traitName := range class.Traits {
		if traitOverridden(class, traitName, member) {
			continue
		}
		trait := load(traitName)
		if trait == nil {
			continue
		}
		if found := searchTraitsAndParents(load, trait, member, has, depth+1); found != nil {
			return found
		}
	}

	for _, interfaceName := range class.Interfaces {
		iface := load(interfaceName)
		if iface == nil {
			continue
		}
		if found := searchTraitsAndParents(load, iface, member, has, depth+1); found != nil {
			return found
		}
	}

	if class.Parent != "" {
		if parent := load(class.Parent); parent != nil {
			return searchTraitsAndParents(load, parent, member, has, depth+1)
		}
	}

	return nil
}

// traitOverridden reports whether an insteadof clause takes member away
// from the given trait.
func traitOverridden(class *ClassInfo, traitName, member string) bool {
	for _, precedence := range class.TraitPrecedences {
		if precedence.Method != member {
			continue
		}
		for _, overridden := range precedence.InsteadOf {
			if overridden == traitName {
				return true
			}
		}
	}
	return false
}

// searchMixins searches a class's declared mixins, each through its full
// hierarchy and its own mixins in turn.
func searchMixins(load ClassLoader, class *ClassInfo, member string, has func(*ClassInfo) bool, depth int) *ClassInfo {
	if class == nil || depth > maxMixinDepth {
		return nil
	}

	for _, mixinName := range class.Mixins {
		mixin := load(mixinName)
		if mixin == nil {
			continue
		}
		if found := searchTraitsAndParents(load, mixin, member, has, 0); found != nil {
			return found
		}
		if found := searchMixins(load, mixin, member, has, depth+1); found != nil {
			return found
		}
	}

	return nil
}

// ResolveTraitAlias maps a trait "as" alias back to the original method
// name and, when the clause names one, its source trait. It must run before
// the declaring-class search so an aliased name that only exists
// post-composition is still found.
func ResolveTraitAlias(class *ClassInfo, name string) (method string, sourceTrait string, ok bool) {
	if class == nil {
		return "", "", false
	}
	for _, alias := range class.TraitAliases {
		if alias.Alias == name {
			return alias.Method, alias.SourceTrait, true
		}
	}
	return "", "", false
}

// FindMember resolves a member name on a class to its declaring class,
// applying trait aliases first.
func FindMember(load ClassLoader, class *ClassInfo, name string) *ClassInfo {
	if method, sourceTrait, ok := ResolveTraitAlias(class, name); ok {
		if sourceTrait != "" {
			if trait := load(sourceTrait); trait != nil {
				if found := findDeclaringClass(load, trait, method, func(c *ClassInfo) bool {
					return c.HasMember(method, MemberMethod)
				}); found != nil {
					return found
				}
			}
		}
		name = method
	}
	return FindDeclaringClass(load, class, name)
}

// ClassifyMember disambiguates a name that exists as more than one member
// kind, using the access-site hint to order the candidates.
func ClassifyMember(load ClassLoader, class *ClassInfo, name string, hint AccessHint) (MemberKind, *ClassInfo, bool) {
	var order []MemberKind
	switch hint {
	case HintCall:
		order = []MemberKind{MemberMethod, MemberProperty, MemberConstant}
	case HintNoCall:
		order = []MemberKind{MemberProperty, MemberConstant, MemberMethod}
	default:
		order = []MemberKind{MemberMethod, MemberProperty, MemberConstant}
	}

	for _, kind := range order {
		if declaring := FindDeclaringClassOfKind(load, class, name, kind); declaring != nil {
			return kind, declaring, true
		}
	}

	return MemberMethod, nil, false
}

// IsSubclassOf reports whether class definitely inherits from ancestor
// (by parent chain or interface). Unloadable links fail closed: no
// ancestry is assumed beyond what was confirmed.
func IsSubclassOf(load ClassLoader, class *ClassInfo, ancestor string) bool {
	return isSubclassOf(load, class, ancestor, 0)
}

func isSubclassOf(load ClassLoader, class *ClassInfo, ancestor string, depth int) bool {
	if class == nil || depth > maxHierarchyDepth {
		return false
	}

	if strings.EqualFold(class.Parent, ancestor) {
		return true
	}
	for _, iface := range class.Interfaces {
		if strings.EqualFold(iface, ancestor) {
			return true
		}
	}

	for _, iface := range class.Interfaces {
		if loaded := load(iface); loaded != nil {
			if isSubclassOf(load, loaded, ancestor, depth+1) {
				return true
			}
		}
	}

	if class.Parent != "" {
		if parent := load(class.Parent); parent != nil {
			return isSubclassOf(load, parent, ancestor, depth+1)
		}
	}

	return false
}

// Member is one entry of an aggregated member listing, tagged with the
// class that declares it.
type Member struct {
	Kind           MemberKind
	Name           string
	DeclaringClass string
	Static         bool
	Visibility     Visibility
	Deprecated     bool
	Method         *MethodInfo
	Property       *PropertyInfo
	Constant       *ConstantInfo
}

// CollectMembers aggregates every member visible on a class across its
// hierarchy, in precedence order. A subclass redeclaration supersedes an
// ancestor's member of the same name; the listing never carries duplicates.
func CollectMembers(load ClassLoader, class *ClassInfo) []Member {
	var members []Member
	seen := map[MemberKind]map[string]bool{
		MemberMethod:   {},
		MemberProperty: {},
		MemberConstant: {},
	}

	collectInto := func(c *ClassInfo) bool {
		addClassMembers(c, &members, seen)
		return false // never stop early, we want the full listing
	}

	walkHierarchy(load, class, collectInto, 0, map[string]bool{})

	return members
}

// walkHierarchy visits the class graph in member-precedence order: class,
// traits, interfaces, parent chain, then mixins. visited guards against
// cycles in addition to the depth cap.
func walkHierarchy(load ClassLoader, class *ClassInfo, visit func(*ClassInfo) bool, depth int, visited map[string]bool) {
	if class == nil || depth > maxHierarchyDepth || visited[class.Name] {
		return
	}
	visited[class.Name] = true

	if visit(class) {
		return
	}

	for _, traitName := range class.Traits {
		walkHierarchy(load, load(traitName), visit, depth+1, visited)
	}
	for _, interfaceName := range class.Interfaces {
		walkHierarchy(load, load(interfaceName), visit, depth+1, visited)
	}
	if class.Parent != "" {
		walkHierarchy(load, load(class.Parent), visit, depth+1, visited)
	}
	for _, mixinName := range class.Mixins {
		walkHierarchy(load, load(mixinName), visit, depth+1, visited)
	}
}

func addClassMembers(class *ClassInfo, members *[]Member, seen map[MemberKind]map[string]bool) {
	for _, name := range sortedKeys(class.Methods) {
		if seen[MemberMethod][name] {
			continue
		}
		seen[MemberMethod][name] = true
		method := class.Methods[name]
		*members = append(*members, Member{
			Kind:           MemberMethod,
			Name:           name,
			DeclaringClass: class.Name,
			Static:         method.Static,
			Visibility:     method.Visibility,
			Deprecated:     method.Deprecated,
			Method:         &method,
		})
	}

	for _, name := range sortedKeys(class.Properties) {
		if seen[MemberProperty][name] {
			continue
		}
		seen[MemberProperty][name] = true
		property := class.Properties[name]
		*members = append(*members, Member{
			Kind:           MemberProperty,
			Name:           name,
			DeclaringClass: class.Name,
			Static:         property.Static,
			Visibility:     property.Visibility,
			Deprecated:     property.Deprecated,
			Property:       &property,
		})
	}

	for _, name := range sortedKeys(class.Constants) {
		if seen[MemberConstant][name] {
			continue
		}
		seen[MemberConstant][name] = true
		constant := class.Constants[name]
		*members = append(*members, Member{
			Kind:           MemberConstant,
			Name:           name,
			DeclaringClass: class.Name,
			Static:         true,
			Visibility:     constant.Visibility,
			Deprecated:     constant.Deprecated,
			Constant:       &constant,
		})
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ResolveTypeAlias resolves a class-local @phpstan-type alias, following
// "from:Class:Name" import indirections with a bounded hop count so
// self-referential imports terminate.
func ResolveTypeAlias(load ClassLoader, class *ClassInfo, name string) string {
	return resolveTypeAlias(load, class, name, 0)
}

func resolveTypeAlias(load ClassLoader, class *ClassInfo, name string, depth int) string {
	if class == nil || depth > maxAliasDepth {
		return ""
	}

	def, ok := class.TypeAliases[name]
	if !ok {
		return ""
	}

	if !strings.HasPrefix(def, "from:") {
		return def
	}

	parts := strings.SplitN(def, ":", 3)
	if len(parts) != 3 {
		return ""
	}

	source := load(parts[1])
	return resolveTypeAlias(load, source, parts[2], depth+1)
}

// ExpandTypeAliases replaces alias names in a type expression with their
// definitions, leaving unknown names alone.
func ExpandTypeAliases(load ClassLoader, class *ClassInfo, expr string) string {
	if class == nil || len(class.TypeAliases) == 0 {
		return expr
	}

	parts := doctype.SplitUnion(expr)
	changed := false
	for i, part := range parts {
		if def := ResolveTypeAlias(load, class, strings.TrimSpace(part)); def != "" {
			parts[i] = def
			changed = true
		}
	}
	if !changed {
		return expr
	}
	return strings.Join(parts, "|")
}
