package checker

import (
	"fmt"

	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/config"
	"github.com/funvibe/flowtype/internal/props"
	"github.com/funvibe/flowtype/internal/typesystem"
)

// FnSig is the checker's view of a callable global.
type FnSig struct {
	Params []typesystem.Type
	Rest   typesystem.Type // Type of each extra argument; nil for fixed arity
	Return typesystem.Type

	// Test makes the function a type predicate: it returns true exactly
	// when its first argument inhabits Test.
	Test typesystem.Type

	// Accessor makes the function a pure accessor of its first argument.
	// For key and nth accessors the key/index comes from a literal second
	// argument.
	Accessor *props.PathElem

	// Negates makes the result's filters the swapped filters of the first
	// argument (logical not).
	Negates bool
}

// Arity reports whether n arguments are acceptable.
func (s FnSig) Arity(n int) bool {
	if n < len(s.Params) {
		return false
	}
	return s.Rest != nil || n == len(s.Params)
}

// ParamType is the expected type of the i-th argument.
func (s FnSig) ParamType(i int) typesystem.Type {
	if i < len(s.Params) {
		return s.Params[i]
	}
	if s.Rest != nil {
		return s.Rest
	}
	return typesystem.Any
}

func (s FnSig) Type() typesystem.TFunc {
	return typesystem.TFunc{Params: s.Params, Rest: s.Rest, Return: s.Return}
}

func (s FnSig) String() string {
	return s.Type().String()
}

// SigFromDecl converts a declared global into a signature.
func SigFromDecl(g ast.GlobalDecl) (FnSig, error) {
	sig := FnSig{Params: g.Params, Rest: g.Rest, Return: g.Return, Test: g.Test}
	if sig.Return == nil {
		sig.Return = typesystem.Any
	}
	if g.Accessor != "" {
		elem, ok := props.ParsePathElem(g.Accessor)
		if !ok {
			return FnSig{}, fmt.Errorf("unknown accessor %q for %s", g.Accessor, g.Name)
		}
		if (elem.Kind == props.KeyElem || elem.Kind == props.NthElem) && len(g.Params) < 2 {
			return FnSig{}, fmt.Errorf("%s accessor %s needs a second parameter", g.Accessor, g.Name)
		}
		sig.Accessor = &elem
	}
	return sig, nil
}

func class(name string) typesystem.TCon { return typesystem.TCon{Name: name} }

func seqOf(name string, elem typesystem.Type) typesystem.TApp {
	return typesystem.TApp{Constructor: class(name), Args: []typesystem.Type{elem}}
}

func predicate(test typesystem.Type) FnSig {
	return FnSig{Params: []typesystem.Type{typesystem.Any}, Return: typesystem.Boolean, Test: test}
}

func accessor(kind props.PathElemKind, ret typesystem.Type, params ...typesystem.Type) FnSig {
	return FnSig{Params: params, Return: ret, Accessor: &props.PathElem{Kind: kind}}
}

// BaseGlobals returns a fresh copy of the built-in function table.
func BaseGlobals() map[string]FnSig {
	anyT := typesystem.Any
	number := class(config.NumberClassName)
	integer := class(config.IntegerClassName)
	str := class(config.StringClassName)
	keyword := class(config.KeywordClassName)
	boolean := typesystem.Boolean
	numeric := func(n int) FnSig {
		params := make([]typesystem.Type, n)
		for i := range params {
			params[i] = number
		}
		return FnSig{Params: params, Return: boolean}
	}

	return map[string]FnSig{
		// Predicates
		"nil?":     predicate(class(config.NilClassName)),
		"number?":  predicate(number),
		"integer?": predicate(integer),
		"double?":  predicate(class(config.DoubleClassName)),
		"string?":  predicate(str),
		"keyword?": predicate(keyword),
		"boolean?": predicate(boolean),
		"fn?":      predicate(class(config.FnClassName)),
		"seq?":     predicate(class(config.SeqTypeName)),
		"vector?":  predicate(class(config.VectorTypeName)),
		"map?":     predicate(class(config.MapTypeName)),
		"set?":     predicate(class(config.SetTypeName)),

		// Opaque numeric tests
		"odd?":  numeric(1),
		"even?": numeric(1),
		"zero?": numeric(1),
		"pos?":  numeric(1),
		"neg?":  numeric(1),
		"<":     {Params: []typesystem.Type{number}, Rest: number, Return: boolean},
		">":     {Params: []typesystem.Type{number}, Rest: number, Return: boolean},

		// Arithmetic
		"inc": {Params: []typesystem.Type{number}, Return: number},
		"dec": {Params: []typesystem.Type{number}, Return: number},
		"+":   {Rest: number, Return: number},
		"-":   {Params: []typesystem.Type{number}, Rest: number, Return: number},
		"*":   {Rest: number, Return: number},

		// Logic and misc
		"not":      {Params: []typesystem.Type{anyT}, Return: boolean, Negates: true},
		"=":        {Params: []typesystem.Type{anyT}, Rest: anyT, Return: boolean},
		"str":      {Rest: anyT, Return: str},
		"println":  {Rest: anyT, Return: typesystem.NilVal},
		"vector":   {Rest: anyT, Return: seqOf(config.VectorTypeName, anyT)},
		"ex-info":  {Params: []typesystem.Type{str, anyT}, Return: class(config.ExceptionClassName)},
		"identity": {Params: []typesystem.Type{typesystem.TVar{Name: "a"}}, Return: typesystem.TVar{Name: "a"}},

		// Accessors
		"first": accessor(props.FirstElem, anyT, anyT),
		"rest":  accessor(props.RestElem, seqOf(config.SeqTypeName, anyT), anyT),
		"class": accessor(props.ClassElem, anyT, anyT),
		"count": accessor(props.CountElem, integer, anyT),
		"get":   accessor(props.KeyElem, anyT, anyT, keyword),
		"nth":   accessor(props.NthElem, anyT, anyT, integer),
	}
}
