package props

import (
	"fmt"

	"github.com/funvibe/flowtype/internal/typesystem"
)

// FilterSet holds what is known when a value is used as true (Then) and
// when it is used as false (Else).
type FilterSet struct {
	Then Prop
	Else Prop
}

func (f FilterSet) String() string {
	return fmt.Sprintf("{%s | %s}", f.Then, f.Else)
}

var (
	TopFilters    = FilterSet{Then: Top, Else: Top}
	BottomFilters = FilterSet{Then: Bottom, Else: Bottom}
	// TruthyFilters: the value can never be false.
	TruthyFilters = FilterSet{Then: Top, Else: Bottom}
	// FalsyFilters: the value can never be true.
	FalsyFilters = FilterSet{Then: Bottom, Else: Top}
)

// TCResult is the inferred fact set of one checked expression.
type TCResult struct {
	Type    typesystem.Type
	Filters FilterSet
	Object  Object
}

// NewResult is a result of type t with no filters and no object.
func NewResult(t typesystem.Type) TCResult {
	return TCResult{Type: t, Filters: TopFilters, Object: Empty}
}

// Unreachable is the result of code that never returns normally: dead
// branches and non-local exits.
func Unreachable() TCResult {
	return TCResult{Type: typesystem.Nothing, Filters: BottomFilters, Object: Empty}
}

// IsUnreachable reports whether r is the fixed unreachable result.
func (r TCResult) IsUnreachable() bool {
	_, thenBot := r.Filters.Then.(BottomProp)
	_, elseBot := r.Filters.Else.(BottomProp)
	return typesystem.IsBottom(r.Type) && thenBot && elseBot
}

func (r TCResult) WithType(t typesystem.Type) TCResult {
	r.Type = t
	return r
}

func (r TCResult) WithFilters(f FilterSet) TCResult {
	r.Filters = f
	return r
}

func (r TCResult) WithObject(o Object) TCResult {
	r.Object = o
	return r
}

func (r TCResult) String() string {
	return fmt.Sprintf("%s : %s : %s", r.Type, r.Filters, r.Object)
}
