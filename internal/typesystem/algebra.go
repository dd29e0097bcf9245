package typesystem

import (
	"reflect"

	"github.com/funvibe/flowtype/internal/config"
)

// Hierarchy is the nominal class database consulted by the algebra.
// IsSubclass must be reflexive and transitive, and treats "implements" edges
// to interfaces the same as superclass edges.
type Hierarchy interface {
	IsSubclass(sub, super string) bool
	IsFinal(name string) bool
	IsInterface(name string) bool
	HaveCommonSubclass(a, b string) bool
}

// Algebra bundles the type operations that need the class hierarchy:
// subtyping, overlap, and the union/intersection/difference constructors
// used by environment narrowing.
type Algebra struct {
	hierarchy Hierarchy
}

func NewAlgebra(h Hierarchy) *Algebra {
	return &Algebra{hierarchy: h}
}

func (a *Algebra) Hierarchy() Hierarchy {
	return a.hierarchy
}

// Union builds a normalized union and drops members subsumed by another
// member.
func (a *Algebra) Union(types ...Type) Type {
	u := NormalizeUnion(types)
	members := Members(u)
	if len(members) < 2 {
		return u
	}

	kept := []Type{}
	for i, m := range members {
		subsumed := false
		for j, n := range members {
			if i == j || !a.Subtype(m, n) {
				continue
			}
			// Mutual subtypes (e.g. the class Nil and the value nil): keep the first.
			if !a.Subtype(n, m) || j < i {
				subsumed = true
				break
			}
		}
		if !subsumed {
			kept = append(kept, m)
		}
	}
	return NormalizeUnion(kept)
}

// Intersect computes the type of a value known to inhabit both s and t.
// It is the operation applied by a TypeAt proposition.
func (a *Algebra) Intersect(s, t Type) Type {
	if IsBottom(s) || IsBottom(t) {
		return Nothing
	}
	if IsTop(s) {
		return t
	}
	if IsTop(t) {
		return s
	}
	if _, ok := s.(TError); ok {
		return t
	}
	if _, ok := t.(TError); ok {
		return s
	}
	if !a.Overlap(s, t) {
		return Nothing
	}

	if su, ok := s.(TUnion); ok {
		parts := make([]Type, 0, len(su.Types))
		for _, m := range su.Types {
			parts = append(parts, a.Intersect(m, t))
		}
		return a.Union(parts...)
	}
	if tu, ok := t.(TUnion); ok {
		parts := make([]Type, 0, len(tu.Types))
		for _, m := range tu.Types {
			parts = append(parts, a.Intersect(s, m))
		}
		return a.Union(parts...)
	}

	if a.Subtype(s, t) {
		return s
	}
	if a.Subtype(t, s) {
		return t
	}
	if expanded, ok := expandFiniteClass(s); ok {
		return a.Intersect(expanded, t)
	}
	if expanded, ok := expandFiniteClass(t); ok {
		return a.Intersect(s, expanded)
	}
	return NormalizeIntersection([]Type{s, t})
}

// Remove computes the type of a value known to inhabit s but not t.
// It is the operation applied by a NotTypeAt proposition; when the exact
// difference is not expressible, s is returned unchanged.
func (a *Algebra) Remove(s, t Type) Type {
	if IsBottom(s) {
		return s
	}
	if _, ok := s.(TError); ok {
		return s
	}
	if _, ok := t.(TError); ok {
		return s
	}
	if a.Subtype(s, t) {
		return Nothing
	}
	if !a.Overlap(s, t) {
		return s
	}
	if su, ok := s.(TUnion); ok {
		parts := make([]Type, 0, len(su.Types))
		for _, m := range su.Types {
			parts = append(parts, a.Remove(m, t))
		}
		return a.Union(parts...)
	}
	if expanded, ok := expandFiniteClass(s); ok {
		return a.Remove(expanded, t)
	}
	if it, ok := s.(TIntersection); ok {
		parts := make([]Type, 0, len(it.Types))
		for _, m := range it.Types {
			parts = append(parts, a.Remove(m, t))
		}
		return NormalizeIntersection(parts)
	}
	return s
}

// expandFiniteClass rewrites classes with a finite set of values as the
// union of those values.
func expandFiniteClass(t Type) (Type, bool) {
	con, ok := t.(TCon)
	if !ok || con.Module != "" {
		return nil, false
	}
	switch con.Name {
	case config.BooleanClassName:
		return NormalizeUnion([]Type{TrueVal, FalseVal}), true
	case config.NilClassName:
		return NilVal, true
	}
	return nil, false
}

func typesEqual(s, t Type) bool {
	if IsBottom(s) && IsBottom(t) {
		return true
	}
	return reflect.DeepEqual(s, t)
}
