package typesystem

import (
	"testing"
)

// testHierarchy is a small class table shaped like the built-in one.
type testHierarchy struct {
	parents    map[string][]string
	final      map[string]bool
	interfaces map[string]bool
}

func newTestHierarchy() *testHierarchy {
	return &testHierarchy{
		parents: map[string][]string{
			"Object":       nil,
			"Number":       {"Object", "Comparable"},
			"Integer":      {"Number"},
			"Double":       {"Number"},
			"String":       {"Object", "CharSequence", "Comparable"},
			"Keyword":      {"Object", "Comparable"},
			"Boolean":      {"Object"},
			"Nil":          {"Object"},
			"Exception":    {"Object"},
			"CharSequence": {"Object"},
			"Comparable":   {"Object"},
			"Fn":           {"Object"},
			"Seq":          {"Object"},
			"Vector":       {"Object", "Seq"},
			"Map":          {"Object"},
		},
		final: map[string]bool{
			"Integer": true, "Double": true, "String": true, "Keyword": true,
			"Boolean": true, "Nil": true,
		},
		interfaces: map[string]bool{
			"CharSequence": true, "Comparable": true, "Fn": true, "Seq": true,
		},
	}
}

func (h *testHierarchy) IsSubclass(sub, super string) bool {
	if sub == super || super == "Object" {
		return true
	}
	for _, p := range h.parents[sub] {
		if h.IsSubclass(p, super) {
			return true
		}
	}
	return false
}

func (h *testHierarchy) IsFinal(name string) bool     { return h.final[name] }
func (h *testHierarchy) IsInterface(name string) bool { return h.interfaces[name] }

func (h *testHierarchy) HaveCommonSubclass(a, b string) bool {
	for c := range h.parents {
		if h.IsSubclass(c, a) && h.IsSubclass(c, b) {
			return true
		}
	}
	return false
}

func con(name string) TCon { return TCon{Name: name} }

func seqOf(t Type) TApp { return TApp{Constructor: con("Seq"), Args: []Type{t}} }

func union(ts ...Type) Type { return NormalizeUnion(ts) }

func testAlgebra() *Algebra { return NewAlgebra(newTestHierarchy()) }

// samplePool is used by the algebraic property tests.
func samplePool() []Type {
	return []Type{
		Any, Nothing, Error,
		con("Object"), con("Number"), con("Integer"), con("Double"), con("String"),
		con("Boolean"), con("Nil"), con("Comparable"), con("CharSequence"),
		con("Exception"), con("Seq"), con("Vector"), con("Map"), con("Fn"),
		NilVal, TrueVal, FalseVal, IntVal(1), IntVal(2), StringVal("a"), KeywordVal("k"),
		Falsy, union(con("Number"), con("String")), union(con("Integer"), NilVal),
		NormalizeIntersection([]Type{con("Number"), con("Comparable")}),
		seqOf(con("Number")), seqOf(con("String")), seqOf(con("Integer")),
		TTuple{Elements: []Type{con("Number"), con("String")}},
		TTuple{Elements: []Type{con("Integer")}, Rest: con("Integer")},
		TTuple{Elements: []Type{}, Rest: con("String")},
		TRecord{Fields: map[string]Type{"a": con("Number")}},
		TRecord{Fields: map[string]Type{"a": con("String")}, Complete: true},
		TRecord{Fields: map[string]Type{"b": con("String")}, Complete: true},
		TKwArgs{Optional: map[string]Type{"a": con("Number")}},
		TKwArgs{Mandatory: map[string]Type{"a": con("Number")}, Complete: true},
		CountRange(1, 1), CountRange(0, 3), CountAtLeast(2),
		TFunc{Params: []Type{con("Number")}, Return: con("Integer")},
		TFunc{Params: []Type{con("Integer")}, Return: con("Number")},
		TVar{Name: "a"}, TVar{Name: "n", Bound: con("Number")},
	}
}

func TestOverlap(t *testing.T) {
	a := testAlgebra()

	tests := []struct {
		name string
		s, t Type
		want bool
	}{
		{"final classes unrelated", con("Number"), con("String"), false},
		{"subclass", con("Number"), con("Integer"), true},
		{"sibling finals", con("Integer"), con("Double"), false},
		{"equal values", IntVal(1), IntVal(1), true},
		{"distinct values", IntVal(1), IntVal(2), false},
		{"value in class", IntVal(1), con("Number"), true},
		{"value outside class", StringVal("a"), con("Number"), false},
		{"nil value and Nil class", NilVal, con("Nil"), true},
		{"final implements interface", con("String"), con("CharSequence"), true},
		{"final does not implement interface", con("Boolean"), con("Comparable"), false},
		{"interface and non-final class", con("Exception"), con("CharSequence"), true},
		{"non-final classes without common subclass", con("Number"), con("Exception"), false},
		{"disjoint container elements", seqOf(con("Number")), seqOf(con("String")), false},
		{"overlapping container elements", seqOf(con("Number")), seqOf(con("Integer")), true},
		{"tuple position-wise", TTuple{Elements: []Type{con("Number"), con("String")}}, TTuple{Elements: []Type{con("Integer"), con("String")}}, true},
		{"tuple fixed length mismatch", TTuple{Elements: []Type{con("Number")}}, TTuple{Elements: []Type{con("Number"), con("Number")}}, false},
		{"tuple rest covers excess", TTuple{Elements: []Type{con("Number")}, Rest: con("Number")}, TTuple{Elements: []Type{con("Integer"), con("Integer"), con("Integer")}}, true},
		{"tuple rest disjoint from excess", TTuple{Elements: []Type{con("Number")}, Rest: con("String")}, TTuple{Elements: []Type{con("Number"), con("Number")}}, false},
		{"two empty-able rests", TTuple{Rest: con("Number")}, TTuple{Rest: con("String")}, true},
		{"tuple against vector", TTuple{Elements: []Type{con("Integer")}}, TApp{Constructor: con("Vector"), Args: []Type{con("String")}}, false},
		{"record values disjoint", TRecord{Fields: map[string]Type{"a": con("Number")}}, TRecord{Fields: map[string]Type{"a": con("String")}}, false},
		{"open records distinct keys", TRecord{Fields: map[string]Type{"a": con("Number")}}, TRecord{Fields: map[string]Type{"b": con("String")}}, true},
		{"key not allowed by complete record", TRecord{Fields: map[string]Type{"a": con("Number")}}, TRecord{Fields: map[string]Type{"b": con("String")}, Complete: true}, false},
		{"optional key values disjoint", TRecord{Fields: map[string]Type{"a": con("Number")}}, TRecord{Optional: map[string]Type{"a": con("String")}}, false},
		{"kwargs odd count", TKwArgs{Optional: map[string]Type{"a": con("Number")}}, CountRange(1, 1), false},
		{"kwargs count with even member", TKwArgs{Optional: map[string]Type{"a": con("Number")}}, CountRange(1, 2), true},
		{"kwargs empty count", TKwArgs{Optional: map[string]Type{"a": con("Number")}}, CountRange(0, 0), true},
		{"complete kwargs too long", TKwArgs{Mandatory: map[string]Type{"a": con("Number")}, Complete: true}, CountRange(3, 5), false},
		{"tuple count", TTuple{Elements: []Type{con("Number"), con("Number")}}, CountRange(3, 4), false},
		{"bounded var and value", TVar{Name: "n", Bound: con("Number")}, IntVal(1), true},
		{"bounded var and disjoint value", TVar{Name: "n", Bound: con("Number")}, StringVal("a"), false},
		{"free var", TVar{Name: "a"}, con("String"), true},
		{"union member", union(con("Number"), con("String")), con("Integer"), true},
		{"union disjoint", union(con("Integer"), NilVal), con("String"), false},
		{"function values", TFunc{Params: []Type{con("Number")}, Return: con("Number")}, TFunc{Return: con("String")}, true},
		{"function and final class", TFunc{Return: con("Number")}, con("String"), false},
		{"any", Any, con("String"), true},
		{"bottom", Nothing, con("String"), true},
		{"error", Error, IntVal(3), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlap(tt.s, tt.t); got != tt.want {
				t.Errorf("Overlap(%s, %s) = %v, want %v", tt.s, tt.t, got, tt.want)
			}
			if got := a.Overlap(tt.t, tt.s); got != tt.want {
				t.Errorf("Overlap(%s, %s) = %v, want %v", tt.t, tt.s, got, tt.want)
			}
		})
	}
}

func TestOverlapIsSymmetric(t *testing.T) {
	a := testAlgebra()
	pool := samplePool()
	for _, s := range pool {
		for _, u := range pool {
			if a.Overlap(s, u) != a.Overlap(u, s) {
				t.Errorf("asymmetric overlap: %s vs %s", s, u)
			}
		}
	}
}

func TestSubtypeImpliesOverlap(t *testing.T) {
	a := testAlgebra()
	pool := samplePool()
	for _, s := range pool {
		for _, u := range pool {
			if a.Subtype(s, u) && !a.Overlap(s, u) {
				t.Errorf("%s <: %s but the types do not overlap", s, u)
			}
		}
	}
}

func TestSubtype(t *testing.T) {
	a := testAlgebra()

	tests := []struct {
		name string
		s, t Type
		want bool
	}{
		{"class", con("Integer"), con("Number"), true},
		{"class reversed", con("Number"), con("Integer"), false},
		{"value", IntVal(1), con("Number"), true},
		{"bottom", Nothing, con("String"), true},
		{"any above", con("String"), Any, true},
		{"any below", Any, con("String"), false},
		{"finite class as union", con("Boolean"), union(TrueVal, FalseVal), true},
		{"union of values as class", union(TrueVal, FalseVal), con("Boolean"), true},
		{"interface", con("String"), con("CharSequence"), true},
		{"covariant container", seqOf(con("Integer")), seqOf(con("Number")), true},
		{"tuple as vector", TTuple{Elements: []Type{con("Integer"), con("Integer")}}, TApp{Constructor: con("Vector"), Args: []Type{con("Number")}}, true},
		{"tuple as count", TTuple{Elements: []Type{con("Integer")}}, CountRange(1, 2), true},
		{"tuple rest", TTuple{Elements: []Type{con("Integer"), con("Integer")}}, TTuple{Elements: []Type{con("Number")}, Rest: con("Number")}, true},
		{"tuple rest not fixed", TTuple{Elements: []Type{con("Integer")}, Rest: con("Integer")}, TTuple{Elements: []Type{con("Integer")}}, false},
		{"record width", TRecord{Fields: map[string]Type{"a": con("Integer"), "b": con("String")}}, TRecord{Fields: map[string]Type{"a": con("Number")}}, true},
		{"open record below complete", TRecord{Fields: map[string]Type{"a": con("Number")}}, TRecord{Fields: map[string]Type{"a": con("Number")}, Complete: true}, false},
		{"open record against optional key", TRecord{}, TRecord{Optional: map[string]Type{"a": con("Number")}}, false},
		{"complete record against optional key", TRecord{Complete: true}, TRecord{Optional: map[string]Type{"a": con("Number")}}, true},
		{"open record against optional any", TRecord{}, TRecord{Optional: map[string]Type{"a": Any}}, true},
		{"kwargs count", TKwArgs{Mandatory: map[string]Type{"a": con("Number")}, Complete: true}, CountRange(2, 2), true},
		{"function variance", TFunc{Params: []Type{con("Number")}, Return: con("Integer")}, TFunc{Params: []Type{con("Integer")}, Return: con("Number")}, true},
		{"function variance reversed", TFunc{Params: []Type{con("Integer")}, Return: con("Number")}, TFunc{Params: []Type{con("Number")}, Return: con("Integer")}, false},
		{"bounded var", TVar{Name: "n", Bound: con("Integer")}, con("Number"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Subtype(tt.s, tt.t); got != tt.want {
				t.Errorf("Subtype(%s, %s) = %v, want %v", tt.s, tt.t, got, tt.want)
			}
		})
	}
}

func TestIntersectAndRemove(t *testing.T) {
	a := testAlgebra()

	intersect := []struct {
		s, t Type
		want string
	}{
		{union(con("Number"), con("String")), con("Integer"), "Integer"},
		{con("Number"), con("String"), "Nothing"},
		{Any, con("String"), "String"},
		{con("Boolean"), Falsy, "false"},
		{con("Exception"), con("CharSequence"), "CharSequence & Exception"},
		{union(con("Integer"), NilVal), Falsy, "nil"},
	}
	for _, tt := range intersect {
		if got := a.Intersect(tt.s, tt.t).String(); got != tt.want {
			t.Errorf("Intersect(%s, %s) = %s, want %s", tt.s, tt.t, got, tt.want)
		}
	}

	remove := []struct {
		s, t Type
		want string
	}{
		{union(con("Number"), con("Nil")), con("Nil"), "Number"},
		{con("Boolean"), FalseVal, "true"},
		{Any, con("Nil"), "Any"},
		{union(con("Number"), con("String"), con("Nil")), Falsy, "Number | String"},
		{con("Integer"), con("Number"), "Nothing"},
		{con("String"), con("Number"), "String"},
	}
	for _, tt := range remove {
		if got := a.Remove(tt.s, tt.t).String(); got != tt.want {
			t.Errorf("Remove(%s, %s) = %s, want %s", tt.s, tt.t, got, tt.want)
		}
	}
	open := TRecord{}
	optional := TRecord{Optional: map[string]Type{"a": con("Number")}}
	if got := a.Remove(open, optional); got.String() == Nothing.String() {
		t.Errorf("Remove(%s, %s) = Nothing, want the open record kept", open, optional)
	}
}

func TestUnionDropsSubsumedMembers(t *testing.T) {
	a := testAlgebra()
	if got := a.Union(con("Integer"), con("Number")).String(); got != "Number" {
		t.Errorf("got %s, want Number", got)
	}
	if got := a.Union(Nothing, con("String")).String(); got != "String" {
		t.Errorf("got %s, want String", got)
	}
	if got := a.Union(IntVal(1), con("String"), IntVal(1)).String(); got != "1 | String" {
		t.Errorf("got %s, want 1 | String", got)
	}
}

func TestReplaceVars(t *testing.T) {
	fn := TFunc{
		Params: []Type{seqOf(TVar{Name: "a"})},
		Return: TVar{Name: "n", Bound: con("Number")},
	}
	got := ReplaceVars(fn).String()
	want := "(Seq<Any>) -> Number"
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
