package typesystem

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/funvibe/flowtype/internal/config"
)

// Type is the interface for all types in the algebra.
type Type interface {
	String() string
	FreeTypeVariables() []TVar
}

// TAny is the top type: every runtime value inhabits it.
type TAny struct{}

func (TAny) String() string             { return "Any" }
func (TAny) FreeTypeVariables() []TVar { return nil }

// TError is the degraded type given to an expression after a soft error.
// It is compatible with everything so that checking can continue.
type TError struct{}

func (TError) String() string             { return "Error" }
func (TError) FreeTypeVariables() []TVar { return nil }

var (
	Any     Type = TAny{}
	Nothing Type = TUnion{}
	Error   Type = TError{}
)

// TVar represents a free (unresolved) type variable.
// Bound, when set, is an upper bound used to rule out disjoint singletons.
type TVar struct {
	Name  string
	Bound Type
}

func (t TVar) String() string {
	// Normalize generated variables (t1, t14, ...) so test output is stable.
	if config.IsTestMode && strings.HasPrefix(t.Name, "t") {
		if _, err := strconv.Atoi(t.Name[1:]); err == nil {
			return "t?"
		}
	}
	return t.Name
}

func (t TVar) FreeTypeVariables() []TVar {
	return []TVar{t}
}

// TCon represents a nominal class (e.g. Number, String).
type TCon struct {
	Name   string
	Module string // Optional namespace of the declaring module
}

func (t TCon) String() string {
	if t.Module != "" {
		return t.Module + "." + t.Name
	}
	return t.Name
}

func (t TCon) FreeTypeVariables() []TVar {
	return []TVar{}
}

type LitKind int

const (
	LitNil LitKind = iota
	LitBool
	LitInt
	LitString
	LitKeyword
)

// TVal is a singleton type inhabited by exactly one literal value.
type TVal struct {
	Kind  LitKind
	Value string
}

var (
	NilVal   = TVal{Kind: LitNil, Value: "nil"}
	TrueVal  = TVal{Kind: LitBool, Value: "true"}
	FalseVal = TVal{Kind: LitBool, Value: "false"}
)

func IntVal(n int64) TVal       { return TVal{Kind: LitInt, Value: strconv.FormatInt(n, 10)} }
func StringVal(s string) TVal   { return TVal{Kind: LitString, Value: s} }
func KeywordVal(k string) TVal  { return TVal{Kind: LitKeyword, Value: k} }
func BoolVal(b bool) TVal {
	if b {
		return TrueVal
	}
	return FalseVal
}

// ClassName is the nominal class every value of this singleton belongs to.
func (t TVal) ClassName() string {
	switch t.Kind {
	case LitNil:
		return config.NilClassName
	case LitBool:
		return config.BooleanClassName
	case LitInt:
		return config.IntegerClassName
	case LitString:
		return config.StringClassName
	case LitKeyword:
		return config.KeywordClassName
	}
	return config.ObjectClassName
}

func (t TVal) String() string {
	switch t.Kind {
	case LitString:
		return strconv.Quote(t.Value)
	case LitKeyword:
		return ":" + t.Value
	}
	return t.Value
}

func (t TVal) FreeTypeVariables() []TVar { return nil }

// TApp represents a parametric container (e.g. Seq<Number>).
type TApp struct {
	Constructor TCon
	Args        []Type
}

func (t TApp) String() string {
	if len(t.Args) == 0 {
		return t.Constructor.String()
	}
	args := []string{}
	for _, arg := range t.Args {
		args = append(args, arg.String())
	}
	return fmt.Sprintf("%s<%s>", t.Constructor.String(), strings.Join(args, ", "))
}

func (t TApp) FreeTypeVariables() []TVar {
	vars := []TVar{}
	for _, arg := range t.Args {
		vars = append(vars, arg.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// TTuple represents a fixed-arity heterogeneous sequence (e.g. [Int, String]).
// Rest, if non-nil, is repeated zero or more times after Elements.
type TTuple struct {
	Elements []Type
	Rest     Type
}

func (t TTuple) String() string {
	args := []string{}
	for _, el := range t.Elements {
		args = append(args, el.String())
	}
	if t.Rest != nil {
		args = append(args, t.Rest.String()+"...")
	}
	return fmt.Sprintf("[%s]", strings.Join(args, ", "))
}

func (t TTuple) FreeTypeVariables() []TVar {
	vars := []TVar{}
	for _, el := range t.Elements {
		vars = append(vars, el.FreeTypeVariables()...)
	}
	if t.Rest != nil {
		vars = append(vars, t.Rest.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// TRecord represents a keyed record (e.g. { x: Int, y?: Bool }).
// A complete record admits no keys beyond Fields and Optional.
type TRecord struct {
	Fields   map[string]Type // Mandatory keys
	Optional map[string]Type
	Complete bool
}

// Lookup returns the value type for key and whether the key is mandatory.
func (t TRecord) Lookup(key string) (Type, bool, bool) {
	if v, ok := t.Fields[key]; ok {
		return v, true, true
	}
	if v, ok := t.Optional[key]; ok {
		return v, false, true
	}
	return nil, false, false
}

// Allows reports whether a value of this record type may carry key.
func (t TRecord) Allows(key string) bool {
	if !t.Complete {
		return true
	}
	_, _, ok := t.Lookup(key)
	return ok
}

func (t TRecord) String() string {
	return formatEntries("{", "}", "", t.Fields, t.Optional, t.Complete)
}

func (t TRecord) FreeTypeVariables() []TVar {
	return entriesFreeVars(t.Fields, t.Optional)
}

// TKwArgs is a keyword-argument sequence: alternating keywords and values.
type TKwArgs struct {
	Mandatory map[string]Type
	Optional  map[string]Type
	Complete  bool
}

func (t TKwArgs) Lookup(key string) (Type, bool, bool) {
	if v, ok := t.Mandatory[key]; ok {
		return v, true, true
	}
	if v, ok := t.Optional[key]; ok {
		return v, false, true
	}
	return nil, false, false
}

func (t TKwArgs) Allows(key string) bool {
	if !t.Complete {
		return true
	}
	_, _, ok := t.Lookup(key)
	return ok
}

func (t TKwArgs) String() string {
	return formatEntries("KwArgs{", "}", ":", t.Mandatory, t.Optional, t.Complete)
}

func (t TKwArgs) FreeTypeVariables() []TVar {
	return entriesFreeVars(t.Mandatory, t.Optional)
}

// TCountRange is any seqable value whose count lies in [Lower, Upper].
// A nil Upper means unbounded.
type TCountRange struct {
	Lower int
	Upper *int
}

func CountRange(lower int, upper int) TCountRange {
	return TCountRange{Lower: lower, Upper: &upper}
}

func CountAtLeast(lower int) TCountRange {
	return TCountRange{Lower: lower}
}

func (t TCountRange) String() string {
	if t.Upper == nil {
		return fmt.Sprintf("CountRange<%d>", t.Lower)
	}
	return fmt.Sprintf("CountRange<%d, %d>", t.Lower, *t.Upper)
}

func (t TCountRange) FreeTypeVariables() []TVar { return nil }

// TFunc represents a function value type (e.g. (Int, Int) -> Bool).
type TFunc struct {
	Params []Type
	Rest   Type // Variadic tail, optional
	Return Type
}

func (t TFunc) String() string {
	params := []string{}
	for _, p := range t.Params {
		params = append(params, p.String())
	}
	if t.Rest != nil {
		params = append(params, "..."+t.Rest.String())
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(params, ", "), t.Return.String())
}

func (t TFunc) FreeTypeVariables() []TVar {
	vars := []TVar{}
	for _, p := range t.Params {
		vars = append(vars, p.FreeTypeVariables()...)
	}
	if t.Rest != nil {
		vars = append(vars, t.Rest.FreeTypeVariables()...)
	}
	vars = append(vars, t.Return.FreeTypeVariables()...)
	return uniqueTVars(vars)
}

// TUnion represents a union type (e.g. Int | String | nil).
// Types are normalized: flattened, deduplicated, and sorted for comparison.
// The empty union is the bottom type.
type TUnion struct {
	Types []Type
}

func (t TUnion) String() string {
	if len(t.Types) == 0 {
		return "Nothing"
	}
	parts := []string{}
	for _, typ := range t.Types {
		parts = append(parts, typ.String())
	}
	return strings.Join(parts, " | ")
}

func (t TUnion) FreeTypeVariables() []TVar {
	vars := []TVar{}
	for _, typ := range t.Types {
		vars = append(vars, typ.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// TIntersection represents an intersection of at least two types.
type TIntersection struct {
	Types []Type
}

func (t TIntersection) String() string {
	parts := []string{}
	for _, typ := range t.Types {
		s := typ.String()
		if _, ok := typ.(TUnion); ok {
			s = "(" + s + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " & ")
}

func (t TIntersection) FreeTypeVariables() []TVar {
	vars := []TVar{}
	for _, typ := range t.Types {
		vars = append(vars, typ.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// IsBottom reports whether t is the uninhabited type.
func IsBottom(t Type) bool {
	u, ok := t.(TUnion)
	return ok && len(u.Types) == 0
}

// IsTop reports whether t is Any.
func IsTop(t Type) bool {
	_, ok := t.(TAny)
	return ok
}

// Members returns the members of a union, or t itself.
func Members(t Type) []Type {
	if u, ok := t.(TUnion); ok {
		return u.Types
	}
	return []Type{t}
}

// NormalizeUnion creates a normalized union type.
// It flattens nested unions, removes duplicates, and sorts types.
// Any member absorbs the union; no members yields Nothing.
func NormalizeUnion(types []Type) Type {
	flat := []Type{}
	for _, t := range types {
		if t == nil {
			continue
		}
		if u, ok := t.(TUnion); ok {
			flat = append(flat, u.Types...)
		} else {
			flat = append(flat, t)
		}
	}

	seen := make(map[string]bool)
	unique := []Type{}
	for _, t := range flat {
		if IsTop(t) {
			return Any
		}
		s := t.String()
		if !seen[s] {
			seen[s] = true
			unique = append(unique, t)
		}
	}

	if len(unique) == 0 {
		return Nothing
	}
	if len(unique) == 1 {
		return unique[0]
	}

	sort.Slice(unique, func(i, j int) bool {
		return unique[i].String() < unique[j].String()
	})

	return TUnion{Types: unique}
}

// NormalizeIntersection flattens nested intersections, drops Any, removes
// duplicates and sorts. A bottom member makes the whole intersection bottom.
func NormalizeIntersection(types []Type) Type {
	flat := []Type{}
	for _, t := range types {
		if t == nil {
			continue
		}
		if it, ok := t.(TIntersection); ok {
			flat = append(flat, it.Types...)
		} else {
			flat = append(flat, t)
		}
	}

	seen := make(map[string]bool)
	unique := []Type{}
	for _, t := range flat {
		if IsBottom(t) {
			return Nothing
		}
		if IsTop(t) {
			continue
		}
		s := t.String()
		if !seen[s] {
			seen[s] = true
			unique = append(unique, t)
		}
	}

	if len(unique) == 0 {
		return Any
	}
	if len(unique) == 1 {
		return unique[0]
	}

	sort.Slice(unique, func(i, j int) bool {
		return unique[i].String() < unique[j].String()
	})

	return TIntersection{Types: unique}
}

// Falsy is the set of values treated as false by conditionals.
var Falsy = NormalizeUnion([]Type{NilVal, FalseVal})

// Boolean is the class of true and false.
var Boolean = TCon{Name: config.BooleanClassName}

func formatEntries(open, close, keyPrefix string, mandatory, optional map[string]Type, complete bool) string {
	keys := []string{}
	for k := range mandatory {
		keys = append(keys, k)
	}
	for k := range optional {
		if _, dup := mandatory[k]; !dup {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	fields := []string{}
	for _, k := range keys {
		if v, ok := mandatory[k]; ok {
			fields = append(fields, fmt.Sprintf("%s%s: %s", keyPrefix, k, v.String()))
		} else {
			fields = append(fields, fmt.Sprintf("%s%s?: %s", keyPrefix, k, optional[k].String()))
		}
	}
	if !complete {
		fields = append(fields, "...")
	}
	return open + strings.Join(fields, ", ") + close
}

func entriesFreeVars(mandatory, optional map[string]Type) []TVar {
	vars := []TVar{}
	for _, m := range []map[string]Type{mandatory, optional} {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			vars = append(vars, m[k].FreeTypeVariables()...)
		}
	}
	return uniqueTVars(vars)
}

func uniqueTVars(vars []TVar) []TVar {
	unique := []TVar{}
	seen := map[string]bool{}
	for _, v := range vars {
		if !seen[v.Name] {
			seen[v.Name] = true
			unique = append(unique, v)
		}
	}
	return unique
}
