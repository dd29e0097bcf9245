package props

import (
	"fmt"
	"strings"

	"github.com/funvibe/flowtype/internal/config"
)

type PathElemKind int

const (
	FirstElem PathElemKind = iota
	RestElem
	ClassElem
	CountElem
	KeyElem
	NthElem
)

// PathElem is one pure accessor applied to a value: (first v), (class v),
// (get v :k), (nth v i) and so on.
type PathElem struct {
	Kind  PathElemKind
	Key   string // KeyElem
	Index int    // NthElem
}

func (e PathElem) String() string {
	switch e.Kind {
	case FirstElem:
		return config.FirstAccessor
	case RestElem:
		return config.RestAccessor
	case ClassElem:
		return config.ClassAccessor
	case CountElem:
		return config.CountAccessor
	case KeyElem:
		return fmt.Sprintf("%s(:%s)", config.KeyAccessor, e.Key)
	case NthElem:
		return fmt.Sprintf("%s(%d)", config.NthAccessor, e.Index)
	}
	return "?"
}

// ParsePathElem maps an accessor name from the base environment to an
// element. Key and index arguments are filled in by the caller.
func ParsePathElem(name string) (PathElem, bool) {
	switch name {
	case config.FirstAccessor:
		return PathElem{Kind: FirstElem}, true
	case config.RestAccessor:
		return PathElem{Kind: RestElem}, true
	case config.ClassAccessor:
		return PathElem{Kind: ClassElem}, true
	case config.CountAccessor:
		return PathElem{Kind: CountElem}, true
	case config.KeyAccessor:
		return PathElem{Kind: KeyElem}, true
	case config.NthAccessor:
		return PathElem{Kind: NthElem}, true
	}
	return PathElem{}, false
}

// Object identifies which runtime location a result describes.
// It is either Empty or a Path.
type Object interface {
	isObject()
	String() string
}

// EmptyObject is the object of fresh values with no address.
type EmptyObject struct{}

func (EmptyObject) isObject()      {}
func (EmptyObject) String() string { return "-" }

var Empty Object = EmptyObject{}

// Path is a root variable plus accessors, innermost first.
type Path struct {
	Root  string
	Elems []PathElem
}

func (Path) isObject() {}

func NewPath(root string, elems ...PathElem) Path {
	return Path{Root: root, Elems: elems}
}

func (p Path) String() string {
	if len(p.Elems) == 0 {
		return p.Root
	}
	var b strings.Builder
	b.WriteString(p.Root)
	for _, e := range p.Elems {
		b.WriteByte('.')
		b.WriteString(e.String())
	}
	return b.String()
}

// IsLocal reports whether the path names a bound local directly.
func (p Path) IsLocal() bool {
	return len(p.Elems) == 0
}

// Extend returns a new path with e appended; p is not modified.
func (p Path) Extend(e PathElem) Path {
	elems := make([]PathElem, len(p.Elems), len(p.Elems)+1)
	copy(elems, p.Elems)
	return Path{Root: p.Root, Elems: append(elems, e)}
}

// Rebase replaces the root of p by the object o. The result is Empty when
// o is Empty.
func (p Path) Rebase(o Object) Object {
	base, ok := o.(Path)
	if !ok {
		return Empty
	}
	out := base
	for _, e := range p.Elems {
		out = out.Extend(e)
	}
	return out
}

func (p Path) Equal(q Path) bool {
	if p.Root != q.Root || len(p.Elems) != len(q.Elems) {
		return false
	}
	for i := range p.Elems {
		if p.Elems[i] != q.Elems[i] {
			return false
		}
	}
	return true
}

// ObjectsEqual is structural equality of objects.
func ObjectsEqual(a, b Object) bool {
	pa, okA := a.(Path)
	pb, okB := b.(Path)
	if okA && okB {
		return pa.Equal(pb)
	}
	return !okA && !okB
}

// IsEmpty reports whether o carries no address.
func IsEmpty(o Object) bool {
	_, ok := o.(Path)
	return !ok
}
