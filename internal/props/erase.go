package props

import (
	"github.com/hashicorp/go-set/v3"
)

// Names builds the set of names handed to Erase.
func Names(names ...string) *set.Set[string] {
	return set.From(names)
}

// Mentions reports whether p refers to any of names.
func Mentions(p Prop, names *set.Set[string]) bool {
	for _, a := range Atoms(p) {
		switch a := a.(type) {
		case TypeProp:
			if names.Contains(a.Path.Root) {
				return true
			}
		case NotTypeProp:
			if names.Contains(a.Path.Root) {
				return true
			}
		}
	}
	return false
}

// EraseProp replaces every atom about one of names by Top. Weakening an
// atom to Top is sound on both sides of a connective.
func EraseProp(p Prop, names *set.Set[string]) Prop {
	switch p := p.(type) {
	case TypeProp:
		if names.Contains(p.Path.Root) {
			return Top
		}
		return p
	case NotTypeProp:
		if names.Contains(p.Path.Root) {
			return Top
		}
		return p
	case AndProp:
		out := make([]Prop, len(p.Props))
		for i, q := range p.Props {
			out[i] = EraseProp(q, names)
		}
		return And(out...)
	case OrProp:
		out := make([]Prop, len(p.Props))
		for i, q := range p.Props {
			out[i] = EraseProp(q, names)
		}
		return Or(out...)
	}
	return p
}

// EraseObject returns Empty for an object rooted at one of names.
func EraseObject(o Object, names *set.Set[string]) Object {
	if path, ok := o.(Path); ok && names.Contains(path.Root) {
		return Empty
	}
	return o
}

// EraseResult removes every reference to names from r. Types never refer
// to objects, so r.Type is kept as is.
func EraseResult(r TCResult, names *set.Set[string]) TCResult {
	if names.Size() == 0 {
		return r
	}
	return TCResult{
		Type: r.Type,
		Filters: FilterSet{
			Then: EraseProp(r.Filters.Then, names),
			Else: EraseProp(r.Filters.Else, names),
		},
		Object: EraseObject(r.Object, names),
	}
}

// ResultMentions reports whether the filters or object of r refer to names.
func ResultMentions(r TCResult, names *set.Set[string]) bool {
	if path, ok := r.Object.(Path); ok && names.Contains(path.Root) {
		return true
	}
	return Mentions(r.Filters.Then, names) || Mentions(r.Filters.Else, names)
}
