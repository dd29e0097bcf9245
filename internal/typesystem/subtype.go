package typesystem

import (
	"github.com/funvibe/flowtype/internal/config"
)

// Subtype reports whether every value of s is also a value of t.
// It is total: unknown combinations answer false.
func (a *Algebra) Subtype(s, t Type) bool {
	if typesEqual(s, t) {
		return true
	}
	if IsTop(t) {
		return true
	}
	if _, ok := s.(TError); ok {
		return true
	}
	if _, ok := t.(TError); ok {
		return true
	}

	// Union on the left: every member (vacuously true for Nothing).
	if su, ok := s.(TUnion); ok {
		for _, m := range su.Types {
			if !a.Subtype(m, t) {
				return false
			}
		}
		return true
	}
	if IsTop(s) {
		return false
	}
	if it, ok := t.(TIntersection); ok {
		for _, m := range it.Types {
			if !a.Subtype(s, m) {
				return false
			}
		}
		return true
	}
	if is, ok := s.(TIntersection); ok {
		for _, m := range is.Types {
			if a.Subtype(m, t) {
				return true
			}
		}
		return false
	}
	if tu, ok := t.(TUnion); ok {
		for _, m := range tu.Types {
			if a.Subtype(s, m) {
				return true
			}
		}
		if expanded, ok := expandFiniteClass(s); ok {
			return a.Subtype(expanded, t)
		}
		return false
	}

	if sv, ok := s.(TVar); ok {
		if sv.Bound != nil {
			return a.Subtype(sv.Bound, t)
		}
		return false
	}
	if _, ok := t.(TVar); ok {
		return false
	}

	switch sv := s.(type) {
	case TVal:
		if tc, ok := t.(TCon); ok {
			return a.isSubclass(sv.ClassName(), tc)
		}
		return false

	case TCon:
		switch tv := t.(type) {
		case TCon:
			return a.isSubclass(sv.Name, tv)
		case TVal:
			if expanded, ok := expandFiniteClass(sv); ok {
				return a.Subtype(expanded, tv)
			}
		}
		return false

	case TApp:
		switch tv := t.(type) {
		case TApp:
			if !a.isSubclass(sv.Constructor.Name, tv.Constructor) || len(sv.Args) != len(tv.Args) {
				return false
			}
			for i := range sv.Args {
				if !a.Subtype(sv.Args[i], tv.Args[i]) {
					return false
				}
			}
			return true
		case TCon:
			return a.isSubclass(sv.Constructor.Name, tv)
		case TCountRange:
			return a.isSeqClass(sv.Constructor.Name) && tv.Lower == 0 && tv.Upper == nil
		}
		return false

	case TTuple:
		switch tv := t.(type) {
		case TTuple:
			return a.tupleSubtype(sv, tv)
		case TApp:
			if len(tv.Args) != 1 || !a.isSubclass(config.VectorTypeName, tv.Constructor) {
				return false
			}
			for _, el := range sv.Elements {
				if !a.Subtype(el, tv.Args[0]) {
					return false
				}
			}
			return sv.Rest == nil || a.Subtype(sv.Rest, tv.Args[0])
		case TCon:
			return a.isSubclass(config.VectorTypeName, tv)
		case TCountRange:
			return countWithin(impliedCountOf(sv), tv)
		}
		return false

	case TRecord:
		switch tv := t.(type) {
		case TRecord:
			return a.entriesSubtype(sv.Fields, sv.Optional, sv.Complete, tv.Fields, tv.Optional, tv.Complete)
		case TCon:
			return a.isSubclass(config.MapTypeName, tv)
		case TCountRange:
			return countWithin(impliedCountOf(sv), tv)
		}
		return false

	case TKwArgs:
		switch tv := t.(type) {
		case TKwArgs:
			return a.entriesSubtype(sv.Mandatory, sv.Optional, sv.Complete, tv.Mandatory, tv.Optional, tv.Complete)
		case TCountRange:
			return countWithin(impliedCountOf(sv), tv)
		case TCon:
			return a.isSubclass(config.SeqTypeName, tv)
		case TApp:
			if len(tv.Args) != 1 || !a.isSubclass(config.SeqTypeName, tv.Constructor) {
				return false
			}
			if !sv.Complete {
				return IsTop(tv.Args[0])
			}
			elems := []Type{}
			for k, v := range sv.Mandatory {
				elems = append(elems, KeywordVal(k), v)
			}
			for k, v := range sv.Optional {
				elems = append(elems, KeywordVal(k), v)
			}
			return a.Subtype(NormalizeUnion(elems), tv.Args[0])
		}
		return false

	case TCountRange:
		switch tv := t.(type) {
		case TCountRange:
			return countWithin(impliedCountOf(sv), tv)
		case TCon:
			return a.isSubclass(config.SeqTypeName, tv)
		}
		return false

	case TFunc:
		switch tv := t.(type) {
		case TFunc:
			return a.funcSubtype(sv, tv)
		case TCon:
			return a.isSubclass(config.FnClassName, tv)
		}
		return false
	}

	return false
}

func (a *Algebra) isSubclass(sub string, super TCon) bool {
	if super.Module != "" {
		return false
	}
	if sub == super.Name {
		return true
	}
	if a.hierarchy == nil {
		return super.Name == config.ObjectClassName
	}
	return a.hierarchy.IsSubclass(sub, super.Name)
}

func (a *Algebra) isSeqClass(name string) bool {
	return a.isSubclass(name, TCon{Name: config.SeqTypeName})
}

func (a *Algebra) tupleSubtype(s, t TTuple) bool {
	if t.Rest == nil {
		if s.Rest != nil || len(s.Elements) != len(t.Elements) {
			return false
		}
		for i := range s.Elements {
			if !a.Subtype(s.Elements[i], t.Elements[i]) {
				return false
			}
		}
		return true
	}

	if len(s.Elements) < len(t.Elements) {
		return false
	}
	for i := range t.Elements {
		if !a.Subtype(s.Elements[i], t.Elements[i]) {
			return false
		}
	}
	for _, extra := range s.Elements[len(t.Elements):] {
		if !a.Subtype(extra, t.Rest) {
			return false
		}
	}
	return s.Rest == nil || a.Subtype(s.Rest, t.Rest)
}

// entriesSubtype implements width/depth subtyping for keyed types.
func (a *Algebra) entriesSubtype(sMand, sOpt map[string]Type, sComplete bool, tMand, tOpt map[string]Type, tComplete bool) bool {
	for k, tv := range tMand {
		sv, ok := sMand[k]
		if !ok || !a.Subtype(sv, tv) {
			return false
		}
	}
	for k, tv := range tOpt {
		if sv, ok := sMand[k]; ok && !a.Subtype(sv, tv) {
			return false
		}
		if sv, ok := sOpt[k]; ok && !a.Subtype(sv, tv) {
			return false
		}
		// An open source may carry k with any value.
		_, inMand := sMand[k]
		_, inOpt := sOpt[k]
		if !inMand && !inOpt && !sComplete && !IsTop(tv) {
			return false
		}
	}
	if !tComplete {
		return true
	}
	if !sComplete {
		return false
	}
	for _, m := range []map[string]Type{sMand, sOpt} {
		for k := range m {
			_, inMand := tMand[k]
			_, inOpt := tOpt[k]
			if !inMand && !inOpt {
				return false
			}
		}
	}
	return true
}

func (a *Algebra) funcSubtype(s, t TFunc) bool {
	if len(s.Params) != len(t.Params) {
		return false
	}
	for i := range s.Params {
		if !a.Subtype(t.Params[i], s.Params[i]) {
			return false
		}
	}
	if t.Rest != nil {
		if s.Rest == nil || !a.Subtype(t.Rest, s.Rest) {
			return false
		}
	}
	return a.Subtype(s.Return, t.Return)
}
