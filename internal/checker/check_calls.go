package checker

import (
	"fmt"
	"strconv"

	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/diagnostics"
	"github.com/funvibe/flowtype/internal/env"
	"github.com/funvibe/flowtype/internal/props"
	"github.com/funvibe/flowtype/internal/typesystem"
)

func (c *Checker) refine(ctx Context, p props.Path, t typesystem.Type) typesystem.Type {
	return env.RefinePath(c.alg, ctx.Env, p, t)
}

func (c *Checker) checkCall(ctx Context, n *ast.Call) (ast.Expression, props.TCResult, error) {
	sig, known := c.globals[n.Fn]
	if !known {
		c.report(diagnostics.ErrA006, n.Token, "unknown function %s", n.Fn)
	} else if !sig.Arity(len(n.Args)) {
		c.report(diagnostics.ErrA007, n.Token, "%s expects %s, got %d", n.Fn, arityString(sig), len(n.Args))
	}
	valid := known && sig.Arity(len(n.Args))

	cp := *n
	cp.Args = make([]ast.Expression, len(n.Args))
	results := make([]props.TCResult, len(n.Args))
	argCtx := ctx.nonTail()
	dead := false
	for i, arg := range n.Args {
		if dead {
			cp.Args[i] = c.skip(arg)
			results[i] = props.Unreachable()
			continue
		}
		var expected *props.TCResult
		if valid {
			expected = expect(typesystem.ReplaceVars(sig.ParamType(i)))
		}
		out, r, err := c.checkChild(argCtx, arg, expected)
		if err != nil {
			return nil, props.TCResult{}, err
		}
		cp.Args[i] = out
		results[i] = r
		// An argument that never returns means the call never happens.
		if typesystem.IsBottom(r.Type) {
			dead = true
		}
	}

	switch {
	case dead:
		return &cp, props.Unreachable(), nil
	case !valid:
		return &cp, props.NewResult(typesystem.Error), nil
	}
	return &cp, c.callResult(ctx, n, sig, results), nil
}

func (c *Checker) callResult(ctx Context, n *ast.Call, sig FnSig, args []props.TCResult) props.TCResult {
	ret := typesystem.ReplaceVars(sig.Return)

	switch {
	case sig.Test != nil:
		arg := args[0]
		then := props.TypeAt(arg.Object, sig.Test)
		els := props.NotTypeAt(arg.Object, sig.Test)
		if _, isErr := arg.Type.(typesystem.TError); !isErr {
			if !c.alg.Overlap(arg.Type, sig.Test) {
				then = props.Bottom
			} else if c.alg.Subtype(arg.Type, sig.Test) {
				els = props.Bottom
			}
		}
		return props.TCResult{Type: ret, Filters: props.FilterSet{Then: then, Else: els}, Object: props.Empty}

	case sig.Negates:
		f := args[0].Filters
		return props.TCResult{Type: ret, Filters: props.FilterSet{Then: f.Else, Else: f.Then}, Object: props.Empty}

	case sig.Accessor != nil:
		elem, ok := accessorElem(*sig.Accessor, n.Args)
		if !ok {
			return props.TCResult{Type: ret, Filters: c.truthiness(props.Empty, ret), Object: props.Empty}
		}
		t := c.accessorType(elem, args[0].Type, ret)
		var obj props.Object = props.Empty
		if p, isPath := args[0].Object.(props.Path); isPath {
			path := p.Extend(elem)
			obj = path
			t = c.refine(ctx, path, t)
		}
		return props.TCResult{Type: t, Filters: c.truthiness(obj, t), Object: obj}
	}
	return props.TCResult{Type: ret, Filters: c.truthiness(props.Empty, ret), Object: props.Empty}
}

// accessorElem completes a key or nth element from its literal argument.
// A computed key or index has no path.
func accessorElem(elem props.PathElem, args []ast.Expression) (props.PathElem, bool) {
	if elem.Kind != props.KeyElem && elem.Kind != props.NthElem {
		return elem, true
	}
	if len(args) < 2 {
		return elem, false
	}
	lit, ok := args[1].(*ast.Literal)
	if !ok {
		return elem, false
	}
	switch {
	case elem.Kind == props.KeyElem && lit.Value.Kind == typesystem.LitKeyword:
		elem.Key = lit.Value.Value
		return elem, true
	case elem.Kind == props.NthElem && lit.Value.Kind == typesystem.LitInt:
		i, err := strconv.Atoi(lit.Value.Value)
		if err != nil || i < 0 {
			return elem, false
		}
		elem.Index = i
		return elem, true
	}
	return elem, false
}

// accessorType is the type of elem applied to a value of type t, falling
// back to the declared return type when the structure is unknown.
func (c *Checker) accessorType(elem props.PathElem, t, fallback typesystem.Type) typesystem.Type {
	if u, ok := t.(typesystem.TUnion); ok && len(u.Types) > 0 {
		parts := make([]typesystem.Type, 0, len(u.Types))
		for _, m := range u.Types {
			parts = append(parts, c.accessorType(elem, m, fallback))
		}
		return c.alg.Union(parts...)
	}

	switch t := t.(type) {
	case typesystem.TVal:
		if t == typesystem.NilVal {
			switch elem.Kind {
			case props.FirstElem, props.KeyElem, props.NthElem:
				return typesystem.NilVal
			case props.CountElem:
				return typesystem.IntVal(0)
			}
		}
	case typesystem.TTuple:
		switch elem.Kind {
		case props.FirstElem:
			if len(t.Elements) > 0 {
				return t.Elements[0]
			}
			if t.Rest != nil {
				return c.alg.Union(t.Rest, typesystem.NilVal)
			}
			return typesystem.NilVal
		case props.NthElem:
			if elem.Index < len(t.Elements) {
				return t.Elements[elem.Index]
			}
			if t.Rest != nil {
				return t.Rest
			}
		case props.CountElem:
			if t.Rest == nil {
				return typesystem.IntVal(int64(len(t.Elements)))
			}
		}
	case typesystem.TApp:
		if len(t.Args) == 1 {
			switch elem.Kind {
			case props.FirstElem:
				return c.alg.Union(t.Args[0], typesystem.NilVal)
			case props.NthElem:
				return t.Args[0]
			}
		}
	case typesystem.TRecord:
		if elem.Kind == props.KeyElem {
			return entryType(t.Lookup, t.Allows, elem.Key, fallback, c.alg)
		}
	case typesystem.TKwArgs:
		if elem.Kind == props.KeyElem {
			return entryType(t.Lookup, t.Allows, elem.Key, fallback, c.alg)
		}
	}
	return fallback
}

func entryType(lookup func(string) (typesystem.Type, bool, bool), allows func(string) bool, key string, fallback typesystem.Type, alg *typesystem.Algebra) typesystem.Type {
	if v, mandatory, ok := lookup(key); ok {
		if mandatory {
			return v
		}
		return alg.Union(v, typesystem.NilVal)
	}
	if !allows(key) {
		return typesystem.NilVal
	}
	return fallback
}

func arityString(sig FnSig) string {
	if sig.Rest != nil {
		return fmt.Sprintf("at least %d argument(s)", len(sig.Params))
	}
	return fmt.Sprintf("%d argument(s)", len(sig.Params))
}
