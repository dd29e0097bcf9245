package prettyprinter

import (
	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/diagnostics"
	"github.com/funvibe/flowtype/internal/props"
)

// entry is one key of an ordered object.
type entry struct {
	Key   string
	Value interface{} // string, bool, int, object or []interface{}
}

// object is a mapping that remembers key order; the YAML output relies on it.
type object []entry

func (o object) add(key string, value interface{}) object {
	return append(o, entry{Key: key, Value: value})
}

// Document is the artifact of checking one program file.
type Document struct {
	File        string
	Units       []*ast.Unit
	Diagnostics []*diagnostics.DiagnosticError
}

func (d Document) tree() object {
	units := make([]interface{}, 0, len(d.Units))
	for _, u := range d.Units {
		units = append(units, unitTree(u))
	}
	diags := make([]interface{}, 0, len(d.Diagnostics))
	for _, e := range d.Diagnostics {
		diags = append(diags, object{}.
			add("code", string(e.Code)).
			add("pos", e.Token.Pos()).
			add("message", e.Message))
	}
	out := object{}.add("file", d.File).add("units", units)
	if len(diags) > 0 {
		out = out.add("diagnostics", diags)
	}
	return out
}

func unitTree(u *ast.Unit) object {
	env := object{}
	for _, p := range u.Env {
		env = env.add(p.Name, p.Type.String())
	}
	out := object{}.add("name", u.Name)
	if len(env) > 0 {
		out = out.add("env", env)
	}
	return out.add("expr", exprTree(u.Expr))
}

func resultTree(r *props.TCResult) object {
	if r.IsUnreachable() {
		return object{}.add("unreachable", true)
	}
	return object{}.
		add("type", r.Type.String()).
		add("then", r.Filters.Then.String()).
		add("else", r.Filters.Else.String()).
		add("object", r.Object.String())
}

func exprTree(e ast.Expression) object {
	out := object{}
	head := func(kind string) {
		out = out.add("kind", kind).add("pos", e.GetToken().Pos())
		if r := e.Result(); r != nil {
			out = out.add("result", resultTree(r))
		}
	}
	exprs := func(es []ast.Expression) []interface{} {
		list := make([]interface{}, 0, len(es))
		for _, c := range es {
			list = append(list, exprTree(c))
		}
		return list
	}
	bindings := func(bs []*ast.Binding) []interface{} {
		list := make([]interface{}, 0, len(bs))
		for _, b := range bs {
			o := object{}.add("name", b.Name)
			if b.Declared != nil {
				o = o.add("type", b.Declared.String())
			}
			list = append(list, o.add("value", exprTree(b.Value)))
		}
		return list
	}

	switch n := e.(type) {
	case *ast.Literal:
		head("lit")
		out = out.add("value", n.Value.String())
	case *ast.LocalRef:
		head("ref")
		out = out.add("name", n.Name)
	case *ast.Call:
		head("call")
		out = out.add("fn", n.Fn).add("args", exprs(n.Args))
	case *ast.If:
		head("if")
		out = out.add("test", exprTree(n.Test)).add("then", exprTree(n.Then))
		if n.Else != nil {
			out = out.add("else", exprTree(n.Else))
		}
	case *ast.Let:
		head("let")
		out = out.add("bindings", bindings(n.Bindings)).add("body", exprTree(n.Body))
	case *ast.Loop:
		head("loop")
		out = out.add("bindings", bindings(n.Bindings)).add("body", exprTree(n.Body))
	case *ast.Recur:
		head("recur")
		out = out.add("args", exprs(n.Args))
	case *ast.Throw:
		head("throw")
		out = out.add("value", exprTree(n.Value))
	case *ast.Do:
		head("do")
		out = out.add("exprs", exprs(n.Exprs))
	case *ast.Ann:
		head("ann")
		out = out.add("type", n.Type.String()).add("expr", exprTree(n.Expr))
	}
	return out
}

// plain converts an ordered tree into maps and slices.
func plain(v interface{}) interface{} {
	switch v := v.(type) {
	case object:
		m := make(map[string]interface{}, len(v))
		for _, e := range v {
			m[e.Key] = plain(e.Value)
		}
		return m
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, x := range v {
			out[i] = plain(x)
		}
		return out
	}
	return v
}
