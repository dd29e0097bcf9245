package typesystem

import (
	"github.com/funvibe/flowtype/internal/config"
)

// Overlap reports whether s and t may share a runtime value. It answers
// false only when the two types are provably disjoint, and is symmetric.
func (a *Algebra) Overlap(s, t Type) bool {
	if typesEqual(s, t) {
		return true
	}
	if IsTop(s) || IsTop(t) || IsBottom(s) || IsBottom(t) {
		return true
	}
	if _, ok := s.(TError); ok {
		return true
	}
	if _, ok := t.(TError); ok {
		return true
	}
	if a.Subtype(s, t) || a.Subtype(t, s) {
		return true
	}

	if su, ok := s.(TUnion); ok {
		for _, m := range su.Types {
			if a.Overlap(m, t) {
				return true
			}
		}
		return false
	}
	if tu, ok := t.(TUnion); ok {
		for _, m := range tu.Types {
			if a.Overlap(s, m) {
				return true
			}
		}
		return false
	}
	if si, ok := s.(TIntersection); ok {
		for _, m := range si.Types {
			if !a.Overlap(m, t) {
				return false
			}
		}
		return true
	}
	if ti, ok := t.(TIntersection); ok {
		for _, m := range ti.Types {
			if !a.Overlap(s, m) {
				return false
			}
		}
		return true
	}

	if sv, ok := s.(TVar); ok {
		return a.varOverlap(sv, t)
	}
	if tv, ok := t.(TVar); ok {
		return a.varOverlap(tv, s)
	}

	if structuralRank(s) > structuralRank(t) {
		s, t = t, s
	}
	return a.overlapOrdered(s, t)
}

// varOverlap: a free variable may be instantiated to anything, except that a
// bounded variable cannot become a singleton outside its bound.
func (a *Algebra) varOverlap(v TVar, other Type) bool {
	if val, ok := other.(TVal); ok && v.Bound != nil {
		return a.Overlap(v.Bound, val)
	}
	return true
}

func structuralRank(t Type) int {
	switch t.(type) {
	case TVal:
		return 0
	case TCon:
		return 1
	case TApp:
		return 2
	case TTuple:
		return 3
	case TRecord:
		return 4
	case TKwArgs:
		return 5
	case TCountRange:
		return 6
	case TFunc:
		return 7
	}
	return 8
}

// overlapOrdered handles atom pairs with structuralRank(s) <= structuralRank(t).
func (a *Algebra) overlapOrdered(s, t Type) bool {
	switch sv := s.(type) {
	case TVal:
		switch tv := t.(type) {
		case TVal:
			return sv == tv
		case TCon:
			return a.isSubclass(sv.ClassName(), tv)
		}
		return false

	case TCon:
		switch tv := t.(type) {
		case TCon:
			return a.classOverlap(sv, tv)
		case TApp:
			return a.classOverlap(sv, tv.Constructor)
		case TTuple:
			return a.classOverlap(sv, TCon{Name: config.VectorTypeName})
		case TRecord:
			return a.classOverlap(sv, TCon{Name: config.MapTypeName})
		case TKwArgs, TCountRange:
			return a.classOverlap(sv, TCon{Name: config.SeqTypeName})
		case TFunc:
			return a.classOverlap(sv, TCon{Name: config.FnClassName})
		}
		return false

	case TApp:
		switch tv := t.(type) {
		case TApp:
			if !a.classOverlap(sv.Constructor, tv.Constructor) {
				return false
			}
			// Containers overlap covariantly, whatever their declared variance.
			if len(sv.Args) != len(tv.Args) {
				return true
			}
			for i := range sv.Args {
				if !a.Overlap(sv.Args[i], tv.Args[i]) {
					return false
				}
			}
			return true
		case TTuple:
			if !a.classOverlap(sv.Constructor, TCon{Name: config.VectorTypeName}) {
				return false
			}
			if len(sv.Args) != 1 {
				return true
			}
			for _, el := range tv.Elements {
				if !a.Overlap(el, sv.Args[0]) {
					return false
				}
			}
			return true
		case TRecord:
			return a.classOverlap(sv.Constructor, TCon{Name: config.MapTypeName})
		case TKwArgs:
			return a.classOverlap(sv.Constructor, TCon{Name: config.SeqTypeName}) &&
				impliedCountOf(sv).intersects(impliedCountOf(tv))
		case TCountRange:
			return a.classOverlap(sv.Constructor, TCon{Name: config.SeqTypeName})
		}
		return false

	case TTuple:
		switch tv := t.(type) {
		case TTuple:
			return a.tupleOverlap(sv, tv)
		case TKwArgs, TCountRange:
			return impliedCountOf(sv).intersects(impliedCountOf(tv))
		}
		return false

	case TRecord:
		switch tv := t.(type) {
		case TRecord:
			return a.entriesOverlap(sv.Fields, sv.Optional, sv.Complete, tv.Fields, tv.Optional, tv.Complete)
		case TCountRange:
			return impliedCountOf(sv).intersects(impliedCountOf(tv))
		}
		return false

	case TKwArgs:
		switch tv := t.(type) {
		case TKwArgs:
			return impliedCountOf(sv).intersects(impliedCountOf(tv)) &&
				a.entriesOverlap(sv.Mandatory, sv.Optional, sv.Complete, tv.Mandatory, tv.Optional, tv.Complete)
		case TCountRange:
			// Parity of keyword-argument sequences is checked here on purpose:
			// comparing them as records would accept odd counts.
			return impliedCountOf(sv).intersects(impliedCountOf(tv))
		}
		return false

	case TCountRange:
		if tv, ok := t.(TCountRange); ok {
			return impliedCountOf(sv).intersects(impliedCountOf(tv))
		}
		return false

	case TFunc:
		_, ok := t.(TFunc)
		return ok
	}
	return false
}

// classOverlap decides whether two nominal classes can share an instance.
func (a *Algebra) classOverlap(x, y TCon) bool {
	if x == y || a.isSubclass(x.Name, y) || a.isSubclass(y.Name, x) {
		return true
	}
	if x.Module != "" || y.Module != "" || a.hierarchy == nil {
		return false
	}
	h := a.hierarchy
	// A final class has no subclasses, so anything unrelated to it by
	// subclassing (including interfaces it does not implement) is disjoint.
	if h.IsFinal(x.Name) || h.IsFinal(y.Name) {
		return false
	}
	if h.IsInterface(x.Name) || h.IsInterface(y.Name) {
		return true
	}
	return h.HaveCommonSubclass(x.Name, y.Name)
}

func tupleElemAt(t TTuple, i int) (Type, bool) {
	if i < len(t.Elements) {
		return t.Elements[i], true
	}
	if t.Rest != nil {
		return t.Rest, true
	}
	return nil, false
}

func (a *Algebra) tupleOverlap(x, y TTuple) bool {
	n := len(x.Elements)
	if len(y.Elements) > n {
		n = len(y.Elements)
	}
	for i := 0; i < n; i++ {
		ex, okx := tupleElemAt(x, i)
		ey, oky := tupleElemAt(y, i)
		if !okx || !oky {
			return false
		}
		if !a.Overlap(ex, ey) {
			return false
		}
	}
	return true
}

// entriesOverlap: a key mandatory on one side must be allowed by the other
// and, where the other side types it, the value types must overlap.
func (a *Algebra) entriesOverlap(xMand, xOpt map[string]Type, xComplete bool, yMand, yOpt map[string]Type, yComplete bool) bool {
	check := func(mand map[string]Type, otherMand, otherOpt map[string]Type, otherComplete bool) bool {
		for k, v := range mand {
			if ov, ok := otherMand[k]; ok {
				if !a.Overlap(v, ov) {
					return false
				}
				continue
			}
			if ov, ok := otherOpt[k]; ok {
				if !a.Overlap(v, ov) {
					return false
				}
				continue
			}
			if otherComplete {
				return false
			}
		}
		return true
	}
	return check(xMand, yMand, yOpt, yComplete) && check(yMand, xMand, xOpt, xComplete)
}
