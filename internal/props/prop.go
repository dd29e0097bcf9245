package props

import (
	"strings"

	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/flowtype/internal/typesystem"
)

// Prop is a proposition about runtime values. Values are built with the
// smart constructors below so they are always partially simplified.
type Prop interface {
	isProp()
	String() string
}

// TypeProp states that the value at Path inhabits Type.
type TypeProp struct {
	Path Path
	Type typesystem.Type
}

// NotTypeProp states that the value at Path does not inhabit Type.
type NotTypeProp struct {
	Path Path
	Type typesystem.Type
}

type AndProp struct {
	Props []Prop
}

type OrProp struct {
	Props []Prop
}

// TopProp carries no information.
type TopProp struct{}

// BottomProp is a contradiction: the code path cannot execute.
type BottomProp struct{}

func (TypeProp) isProp()    {}
func (NotTypeProp) isProp() {}
func (AndProp) isProp()     {}
func (OrProp) isProp()      {}
func (TopProp) isProp()     {}
func (BottomProp) isProp()  {}

var (
	Top    Prop = TopProp{}
	Bottom Prop = BottomProp{}
)

func (p TypeProp) String() string    { return "(is " + p.Path.String() + " " + p.Type.String() + ")" }
func (p NotTypeProp) String() string { return "(! " + p.Path.String() + " " + p.Type.String() + ")" }
func (TopProp) String() string       { return "tt" }
func (BottomProp) String() string    { return "ff" }
func (p AndProp) String() string     { return joinProps("and", p.Props) }
func (p OrProp) String() string      { return joinProps("or", p.Props) }

func joinProps(op string, ps []Prop) string {
	parts := make([]string, 0, len(ps)+1)
	parts = append(parts, op)
	for _, p := range ps {
		parts = append(parts, p.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// TypeAt builds "the value at o inhabits t".
func TypeAt(o Object, t typesystem.Type) Prop {
	path, ok := o.(Path)
	if !ok || typesystem.IsTop(t) || isErrorType(t) {
		return Top
	}
	if typesystem.IsBottom(t) {
		return Bottom
	}
	return TypeProp{Path: path, Type: t}
}

// NotTypeAt builds "the value at o does not inhabit t".
func NotTypeAt(o Object, t typesystem.Type) Prop {
	path, ok := o.(Path)
	if !ok || typesystem.IsBottom(t) || isErrorType(t) {
		return Top
	}
	if typesystem.IsTop(t) {
		return Bottom
	}
	return NotTypeProp{Path: path, Type: t}
}

func isErrorType(t typesystem.Type) bool {
	_, ok := t.(typesystem.TError)
	return ok
}

// And conjoins ps. Nested conjunctions are flattened, Top is dropped, any
// Bottom or a proposition next to its own negation yields Bottom.
func And(ps ...Prop) Prop {
	flat := make([]Prop, 0, len(ps))
	for _, p := range ps {
		switch p := p.(type) {
		case nil, TopProp:
		case BottomProp:
			return Bottom
		case AndProp:
			flat = append(flat, p.Props...)
		default:
			flat = append(flat, p)
		}
	}
	out := dedupe(flat)
	if hasComplementaryPair(out) {
		return Bottom
	}
	switch len(out) {
	case 0:
		return Top
	case 1:
		return out[0]
	}
	return AndProp{Props: out}
}

// Or disjoins ps. Nested disjunctions are flattened, Bottom is dropped, any
// Top or a proposition next to its own negation yields Top.
func Or(ps ...Prop) Prop {
	flat := make([]Prop, 0, len(ps))
	for _, p := range ps {
		switch p := p.(type) {
		case nil, BottomProp:
		case TopProp:
			return Top
		case OrProp:
			flat = append(flat, p.Props...)
		default:
			flat = append(flat, p)
		}
	}
	out := dedupe(flat)
	if hasComplementaryPair(out) {
		return Top
	}
	switch len(out) {
	case 0:
		return Bottom
	case 1:
		return out[0]
	}
	return OrProp{Props: out}
}

// dedupe keeps the first occurrence of each proposition.
func dedupe(ps []Prop) []Prop {
	seen := set.New[string](len(ps))
	out := make([]Prop, 0, len(ps))
	for _, p := range ps {
		if seen.Insert(p.String()) {
			out = append(out, p)
		}
	}
	return out
}

func hasComplementaryPair(ps []Prop) bool {
	positive := set.New[string](0)
	for _, p := range ps {
		if tp, ok := p.(TypeProp); ok {
			positive.Insert(atomKey(tp.Path, tp.Type))
		}
	}
	for _, p := range ps {
		if np, ok := p.(NotTypeProp); ok && positive.Contains(atomKey(np.Path, np.Type)) {
			return true
		}
	}
	return false
}

func atomKey(p Path, t typesystem.Type) string {
	return p.String() + "\x00" + t.String()
}

// Atoms returns the TypeProp and NotTypeProp leaves of p, left to right.
func Atoms(p Prop) []Prop {
	switch p := p.(type) {
	case TypeProp, NotTypeProp:
		return []Prop{p}
	case AndProp:
		return atomsOf(p.Props)
	case OrProp:
		return atomsOf(p.Props)
	}
	return nil
}

func atomsOf(ps []Prop) []Prop {
	var out []Prop
	for _, q := range ps {
		out = append(out, Atoms(q)...)
	}
	return out
}

// PropsEqual compares propositions structurally.
func PropsEqual(a, b Prop) bool {
	return a.String() == b.String()
}
