package env

import (
	"fmt"
	"testing"

	"github.com/funvibe/flowtype/internal/hierarchy"
	"github.com/funvibe/flowtype/internal/props"
	"github.com/funvibe/flowtype/internal/typesystem"
)

var (
	number  = typesystem.TCon{Name: "Number"}
	integer = typesystem.TCon{Name: "Integer"}
	str     = typesystem.TCon{Name: "String"}
	nilT    = typesystem.TCon{Name: "Nil"}
)

func algebra() *typesystem.Algebra {
	return typesystem.NewAlgebra(hierarchy.Default())
}

func u(ts ...typesystem.Type) typesystem.Type {
	return typesystem.NormalizeUnion(ts)
}

func expectBinding(t *testing.T, e PropEnv, name, want string) {
	t.Helper()
	b, ok := e.Lookup(name)
	if !ok {
		t.Fatalf("%s is not bound", name)
	}
	if b.Type.String() != want {
		t.Errorf("%s: got %s, want %s", name, b.Type, want)
	}
}

func TestNarrowLocal(t *testing.T) {
	alg := algebra()
	x := props.NewPath("x")

	tests := []struct {
		name      string
		xType     typesystem.Type
		prop      props.Prop
		reachable bool
		want      string
	}{
		{"intersect", u(number, str), props.TypeAt(x, integer), true, "Integer"},
		{"remove falsy", u(number, typesystem.NilVal), props.NotTypeAt(x, typesystem.Falsy), true, "Number"},
		{"keep falsy", u(number, typesystem.NilVal), props.TypeAt(x, typesystem.Falsy), true, "nil"},
		{"contradiction", number, props.TypeAt(x, str), false, ""},
		{"negated contradiction", integer, props.NotTypeAt(x, number), false, ""},
		{"top", number, props.Top, true, "Number"},
		{"bottom", number, props.Bottom, false, ""},
		{"error binding stays reachable", typesystem.Error, props.NotTypeAt(x, typesystem.Falsy), true, "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New().Extend("x", tt.xType, props.Empty)
			got, ok := Narrow(alg, e, tt.prop)
			if ok != tt.reachable {
				t.Fatalf("reachable = %v, want %v", ok, tt.reachable)
			}
			if ok {
				expectBinding(t, got, "x", tt.want)
			}
			// e is a value: narrowing never changes it.
			expectBinding(t, e, "x", tt.xType.String())
		})
	}
}

func TestNarrowAccessorPathsAreInformational(t *testing.T) {
	alg := algebra()
	first := props.NewPath("x", props.PathElem{Kind: props.FirstElem})
	e := New().Extend("x", typesystem.Any, props.Empty)

	e, ok := Narrow(alg, e, props.TypeAt(first, number))
	if !ok {
		t.Fatalf("accessor assertion made env unreachable")
	}
	if got := PathType(alg, e, first).String(); got != "Number" {
		t.Errorf("PathType = %s, want Number", got)
	}

	e, ok = Narrow(alg, e, props.TypeAt(first, str))
	if !ok {
		t.Fatalf("contradicting accessor assertion made env unreachable")
	}
	if got := PathType(alg, e, first); !typesystem.IsBottom(got) {
		t.Errorf("PathType = %s, want Nothing", got)
	}
	expectBinding(t, e, "x", "Any")
}

func TestRefinePathStartsFromKnownType(t *testing.T) {
	alg := algebra()
	first := props.NewPath("x", props.PathElem{Kind: props.FirstElem})
	e := New().Extend("x", typesystem.Any, props.Empty)

	e, ok := Narrow(alg, e, props.NotTypeAt(first, typesystem.NilVal))
	if !ok {
		t.Fatalf("narrowing made env unreachable")
	}
	if got := RefinePath(alg, e, first, u(number, typesystem.NilVal)).String(); got != "Number" {
		t.Errorf("RefinePath = %s, want Number", got)
	}
	if got := PathType(alg, e, first).String(); got != "Any" {
		t.Errorf("PathType = %s, want Any", got)
	}

	// Local paths intersect with the binding.
	e = e.Extend("y", u(number, str), props.Empty)
	if got := RefinePath(alg, e, props.NewPath("y"), u(integer, str, nilT)).String(); got != "Integer | String" {
		t.Errorf("RefinePath(y) = %s, want Integer | String", got)
	}
}

func TestNarrowOr(t *testing.T) {
	alg := algebra()
	x, y := props.NewPath("x"), props.NewPath("y")
	e := New().
		Extend("x", u(number, str, typesystem.NilVal), props.Empty).
		Extend("y", u(number, typesystem.NilVal), props.Empty)

	// Both disjuncts reachable: per-binding union.
	joined, ok := Narrow(alg, e, props.Or(props.TypeAt(x, integer), props.TypeAt(x, str)))
	if !ok {
		t.Fatalf("unexpected contradiction")
	}
	expectBinding(t, joined, "x", "Integer | String")
	expectBinding(t, joined, "y", "Number | nil")

	// One disjunct reachable: its env is used as is.
	e2 := New().
		Extend("x", number, props.Empty).
		Extend("y", u(number, typesystem.NilVal), props.Empty)
	one, ok := Narrow(alg, e2, props.Or(props.TypeAt(x, str), props.TypeAt(y, nilT)))
	if !ok {
		t.Fatalf("unexpected contradiction")
	}
	expectBinding(t, one, "x", "Number")
	expectBinding(t, one, "y", "nil")

	// No disjunct reachable.
	if _, ok := Narrow(alg, e2, props.Or(props.TypeAt(x, str), props.TypeAt(x, nilT))); ok {
		t.Errorf("expected contradiction")
	}
}

func TestNarrowAnd(t *testing.T) {
	alg := algebra()
	x, y := props.NewPath("x"), props.NewPath("y")
	e := New().
		Extend("x", u(number, str), props.Empty).
		Extend("y", u(number, typesystem.NilVal), props.Empty)

	got, ok := Narrow(alg, e, props.And(props.TypeAt(x, number), props.NotTypeAt(y, typesystem.Falsy)))
	if !ok {
		t.Fatalf("unexpected contradiction")
	}
	expectBinding(t, got, "x", "Number")
	expectBinding(t, got, "y", "Number")
	if n := len(got.Residual(e)); n != 2 {
		t.Errorf("residual has %d propositions, want 2", n)
	}
}

func TestNarrowFollowsAliases(t *testing.T) {
	alg := algebra()
	y := props.NewPath("y")
	e := New().
		Extend("x", u(number, str), props.Empty).
		Extend("y", u(number, str), props.NewPath("x"))

	got, ok := Narrow(alg, e, props.TypeAt(y, integer))
	if !ok {
		t.Fatalf("unexpected contradiction")
	}
	expectBinding(t, got, "y", "Integer")
	expectBinding(t, got, "x", "Integer")

	e2 := New().
		Extend("x", number, props.Empty).
		Extend("y", typesystem.Any, props.NewPath("x"))
	if _, ok := Narrow(alg, e2, props.TypeAt(y, str)); ok {
		t.Errorf("alias contradiction not detected")
	}
}

func TestExtendShadowingForgetsOldFacts(t *testing.T) {
	alg := algebra()
	first := props.NewPath("x", props.PathElem{Kind: props.FirstElem})
	e := New().
		Extend("x", typesystem.Any, props.Empty).
		Extend("y", typesystem.Any, props.NewPath("x"))
	e, _ = Narrow(alg, e, props.TypeAt(first, number))

	shadowed := e.Extend("x", str, props.Empty)
	if got := PathType(alg, shadowed, first); !typesystem.IsTop(got) {
		t.Errorf("stale fact about old x survived: %s", got)
	}
	b, _ := shadowed.Lookup("y")
	if !props.IsEmpty(b.Object) {
		t.Errorf("alias to the old x survived: %s", b.Object)
	}
	if got := PathType(alg, e, first).String(); got != "Number" {
		t.Errorf("original env changed: %s", got)
	}
}

func TestForgetUnbinds(t *testing.T) {
	alg := algebra()
	e := New().
		Extend("x", typesystem.Any, props.Empty).
		Extend("y", typesystem.Any, props.NewPath("x"))
	e, _ = Narrow(alg, e, props.TypeAt(props.NewPath("x"), number))

	gone := e.forget("x")
	if _, ok := gone.Lookup("x"); ok {
		t.Errorf("x is still bound")
	}
	if gone.Len() != 1 || len(gone.Props()) != 0 {
		t.Errorf("Len = %d, props = %v", gone.Len(), gone.Props())
	}
	if b, ok := gone.Lookup("y"); !ok || !props.IsEmpty(b.Object) {
		t.Errorf("y = %v, %v", b, ok)
	}
	if _, ok := e.Lookup("x"); !ok || e.Len() != 2 {
		t.Errorf("original env changed")
	}

	if shadowed := e.Extend("x", str, props.Empty); shadowed.Len() != 2 {
		t.Errorf("shadowing changed Len to %d", shadowed.Len())
	}
}

func TestSymbolMapPersistence(t *testing.T) {
	var m symbolMap[int]
	for i := 0; i < 2000; i++ {
		m = m.Put(fmt.Sprintf("k%d", i), i)
	}
	if m.Len() != 2000 {
		t.Fatalf("Len = %d, want 2000", m.Len())
	}

	updated := m.Put("k7", -7)
	removed := m
	for i := 0; i < 2000; i += 2 {
		removed = removed.Remove(fmt.Sprintf("k%d", i))
	}

	for i := 0; i < 2000; i++ {
		key := fmt.Sprintf("k%d", i)
		if v, ok := m.Get(key); !ok || v != i {
			t.Fatalf("original map lost %s", key)
		}
		_, ok := removed.Get(key)
		if ok != (i%2 == 1) {
			t.Fatalf("removed map: %s present = %v", key, ok)
		}
	}
	if v, _ := updated.Get("k7"); v != -7 {
		t.Errorf("update lost: %d", v)
	}
	if v, _ := m.Get("k7"); v != 7 {
		t.Errorf("update leaked into the original map: %d", v)
	}
	if removed.Len() != 1000 || updated.Len() != 2000 {
		t.Errorf("Len after updates: removed %d, updated %d", removed.Len(), updated.Len())
	}
	if keys := removed.Keys(); len(keys) != 1000 || keys[0] != "k1" {
		t.Errorf("unexpected keys: %d, first %q", len(keys), keys[0])
	}
}
