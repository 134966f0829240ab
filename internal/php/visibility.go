package php

import (
	"strings"
)

// AccessOperator is the member access operator at the query site.
type AccessOperator int

const (
	// AccessArrow is "->" (and "?->", which behaves identically here).
	AccessArrow AccessOperator = iota
	// AccessStatic is "::".
	AccessStatic
)

// AccessContext describes the site from which members are accessed.
type AccessContext struct {
	Operator AccessOperator
	// SubjectIsClassKeyword is set when the subject is self, static,
	// parent or the class's own name written out inside its hierarchy.
	SubjectIsClassKeyword bool
	// InsideClass is the class whose body contains the access site; nil
	// at file top level.
	InsideClass *ClassInfo
}

// IsVisible applies PHP member visibility from the given access-site class:
// public always, protected within the declaring class's hierarchy in either
// direction, private only in the declaring class itself.
func IsVisible(load ClassLoader, declaringClass string, visibility Visibility, site *ClassInfo) bool {
	switch visibility {
	case Public:
		return true
	case Private:
		return site != nil && strings.EqualFold(site.Name, declaringClass)
	case Protected:
		if site == nil {
			return false
		}
		if strings.EqualFold(site.Name, declaringClass) {
			return true
		}
		if IsSubclassOf(load, site, declaringClass) {
			return true
		}
		// The declaring class may also sit below the access site.
		if declaring := load(declaringClass); declaring != nil {
			return IsSubclassOf(load, declaring, site.Name)
		}
		return false
	default:
		return false
	}
}

// insideHierarchyOf reports whether the access site is the subject class or
// one of its descendants.
func insideHierarchyOf(load ClassLoader, site *ClassInfo, subject *ClassInfo) bool {
	if site == nil || subject == nil {
		return false
	}
	if strings.EqualFold(site.Name, subject.Name) {
		return true
	}
	return IsSubclassOf(load, site, subject.Name) || IsSubclassOf(load, subject, site.Name)
}

// FilterMembers reduces an aggregated member listing to what the access
// site may legitimately see:
//
//   - "->" hides static-only members unless the subject is a class keyword
//     used inside the class's own hierarchy;
//   - "::" from outside the hierarchy offers only static members and
//     constants, and never the constructor;
//   - visibility applies per declaring class;
//   - "__"-magic methods are withheld from listings.
func FilterMembers(load ClassLoader, members []Member, subject *ClassInfo, access AccessContext) []Member {
	inside := insideHierarchyOf(load, access.InsideClass, subject)

	var filtered []Member
	for _, member := range members {
		if !IsVisible(load, member.DeclaringClass, member.Visibility, access.InsideClass) {
			continue
		}

		if member.Kind == MemberMethod && strings.HasPrefix(member.Name, "__") {
			// Magic methods stay out of listings; the constructor
			// reappears for static-style access inside the hierarchy.
			if !(member.Name == "__construct" && access.Operator == AccessStatic && inside) {
				continue
			}
		}

		switch access.Operator {
		case AccessArrow:
			if member.Kind == MemberConstant {
				continue
			}
			if member.Static && !(access.SubjectIsClassKeyword && inside) {
				continue
			}
		case AccessStatic:
			// Inside the hierarchy, static-style access also reaches
			// instance members.
			if !member.Static && member.Kind != MemberConstant && !inside {
				continue
			}
		}

		filtered = append(filtered, member)
	}

	return filtered
}
