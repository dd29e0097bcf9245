package ast

import (
	"gopkg.in/yaml.v3"

	"github.com/funvibe/flowtype/internal/token"
	"github.com/funvibe/flowtype/internal/typesystem"
)

var exprForms = map[string][]string{
	"lit":     nil,
	"keyword": nil,
	"ref":     nil,
	"call":    {"args"},
	"if":      nil,
	"let":     nil,
	"loop":    nil,
	"recur":   nil,
	"throw":   nil,
	"do":      nil,
	"ann":     nil,
}

func (d *decoder) unit(n *yaml.Node) (*Unit, error) {
	n = resolve(n)
	fields, err := d.mapping(n, "name", "env", "globals", "expr")
	if err != nil {
		return nil, err
	}
	u := &Unit{Token: d.tok(n, token.IDENT)}
	if f, ok := fields["name"]; ok {
		if u.Name, err = d.scalar(f.value, "name"); err != nil {
			return nil, err
		}
		u.Token = d.tok(f.value, token.IDENT)
	}

	if f, ok := fields["env"]; ok {
		if f.value.Kind != yaml.MappingNode {
			return nil, d.errorf(f.value, "env must map names to types")
		}
		seen := map[string]bool{}
		for i := 0; i+1 < len(f.value.Content); i += 2 {
			k, v := f.value.Content[i], f.value.Content[i+1]
			if seen[k.Value] {
				return nil, d.errorf(k, "duplicate binding %q", k.Value)
			}
			seen[k.Value] = true
			t, err := d.typ(v)
			if err != nil {
				return nil, err
			}
			u.Env = append(u.Env, Param{Token: d.tok(k, token.IDENT), Name: k.Value, Type: t})
		}
	}

	if f, ok := fields["globals"]; ok {
		items, err := d.sequence(f.value, "globals")
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			g, err := d.global(item)
			if err != nil {
				return nil, err
			}
			u.Globals = append(u.Globals, g)
		}
	}

	f, ok := fields["expr"]
	if !ok {
		return nil, d.errorf(n, "unit %q has no expr", u.Name)
	}
	if u.Expr, err = d.expr(f.value); err != nil {
		return nil, err
	}
	return u, nil
}

// Global decodes a function declaration; used by units and project files.
func (d *decoder) global(n *yaml.Node) (GlobalDecl, error) {
	fields, err := d.mapping(n, "name", "params", "rest", "returns", "test", "accessor")
	if err != nil {
		return GlobalDecl{}, err
	}
	g := GlobalDecl{Token: d.tok(n, token.IDENT), Return: typesystem.Any}
	f, ok := fields["name"]
	if !ok {
		return GlobalDecl{}, d.errorf(n, "global without a name")
	}
	if g.Name, err = d.scalar(f.value, "name"); err != nil {
		return GlobalDecl{}, err
	}
	g.Token = d.tok(f.value, token.IDENT)
	if f, ok := fields["params"]; ok {
		if g.Params, err = d.types(f.value, "params"); err != nil {
			return GlobalDecl{}, err
		}
	}
	if f, ok := fields["rest"]; ok {
		if g.Rest, err = d.typ(f.value); err != nil {
			return GlobalDecl{}, err
		}
	}
	if f, ok := fields["returns"]; ok {
		if g.Return, err = d.typ(f.value); err != nil {
			return GlobalDecl{}, err
		}
	}
	if f, ok := fields["test"]; ok {
		if g.Test, err = d.typ(f.value); err != nil {
			return GlobalDecl{}, err
		}
		if len(g.Params) != 1 {
			return GlobalDecl{}, d.errorf(f.key, "predicate %s must take exactly one parameter", g.Name)
		}
	}
	if f, ok := fields["accessor"]; ok {
		if g.Accessor, err = d.scalar(f.value, "accessor"); err != nil {
			return GlobalDecl{}, err
		}
		if len(g.Params) == 0 {
			return GlobalDecl{}, d.errorf(f.key, "accessor %s must take a parameter", g.Name)
		}
	}
	return g, nil
}

// DecodeGlobalNode decodes one function declaration from a parsed node.
func DecodeGlobalNode(file string, n *yaml.Node) (GlobalDecl, error) {
	d := &decoder{file: file}
	return d.global(resolve(n))
}

func (d *decoder) expr(n *yaml.Node) (Expression, error) {
	n = resolve(n)
	fields, err := d.mapping(n)
	if err != nil {
		return nil, d.errorf(n, "expected an expression mapping")
	}
	form, err := d.primary(n, fields, exprForms)
	if err != nil {
		return nil, err
	}
	key, main := fields[form].key, fields[form].value

	switch form {
	case "lit":
		v, err := d.value(main)
		if err != nil {
			return nil, err
		}
		return &Literal{Token: d.tok(main, token.LITERAL), Value: v}, nil

	case "keyword":
		k, err := d.scalar(main, "keyword")
		if err != nil {
			return nil, err
		}
		return &Literal{Token: d.tok(main, token.KEYWORD), Value: typesystem.KeywordVal(k)}, nil

	case "ref":
		name, err := d.scalar(main, "ref")
		if err != nil {
			return nil, err
		}
		return &LocalRef{Token: d.tok(main, token.IDENT), Name: name}, nil

	case "call":
		name, err := d.scalar(main, "call")
		if err != nil {
			return nil, err
		}
		c := &Call{Token: d.tok(main, token.CALL), Fn: name}
		if a, ok := fields["args"]; ok {
			if c.Args, err = d.exprs(a.value, "args"); err != nil {
				return nil, err
			}
		}
		return c, nil

	case "if":
		f, err := d.mapping(main, "test", "then", "else")
		if err != nil {
			return nil, err
		}
		node := &If{Token: d.tok(key, token.IF)}
		for _, part := range []struct {
			name     string
			dst      *Expression
			required bool
		}{
			{"test", &node.Test, true},
			{"then", &node.Then, true},
			{"else", &node.Else, false},
		} {
			pf, ok := f[part.name]
			if !ok {
				if part.required {
					return nil, d.errorf(key, "if without %s", part.name)
				}
				continue
			}
			if *part.dst, err = d.expr(pf.value); err != nil {
				return nil, err
			}
		}
		return node, nil

	case "let", "loop":
		bindings, body, err := d.bindingForm(key, main)
		if err != nil {
			return nil, err
		}
		if form == "let" {
			return &Let{Token: d.tok(key, token.LET), Bindings: bindings, Body: body}, nil
		}
		return &Loop{Token: d.tok(key, token.LOOP), Bindings: bindings, Body: body}, nil

	case "recur":
		args, err := d.exprs(main, "recur")
		if err != nil {
			return nil, err
		}
		return &Recur{Token: d.tok(key, token.RECUR), Args: args}, nil

	case "throw":
		v, err := d.expr(main)
		if err != nil {
			return nil, err
		}
		return &Throw{Token: d.tok(key, token.THROW), Value: v}, nil

	case "do":
		exprs, err := d.exprs(main, "do")
		if err != nil {
			return nil, err
		}
		if len(exprs) == 0 {
			return nil, d.errorf(key, "empty do")
		}
		return &Do{Token: d.tok(key, token.DO), Exprs: exprs}, nil

	case "ann":
		f, err := d.mapping(main, "expr", "type")
		if err != nil {
			return nil, err
		}
		ef, ok1 := f["expr"]
		tf, ok2 := f["type"]
		if !ok1 || !ok2 {
			return nil, d.errorf(key, "ann needs expr and type")
		}
		e, err := d.expr(ef.value)
		if err != nil {
			return nil, err
		}
		t, err := d.typ(tf.value)
		if err != nil {
			return nil, err
		}
		return &Ann{Token: d.tok(key, token.ANN), Expr: e, Type: t}, nil
	}
	return nil, d.errorf(n, "unrecognized expression form %q", form)
}

func (d *decoder) exprs(n *yaml.Node, what string) ([]Expression, error) {
	items, err := d.sequence(n, what)
	if err != nil {
		return nil, err
	}
	out := make([]Expression, 0, len(items))
	for _, item := range items {
		e, err := d.expr(item)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (d *decoder) bindingForm(key, n *yaml.Node) ([]*Binding, Expression, error) {
	f, err := d.mapping(n, "bindings", "body")
	if err != nil {
		return nil, nil, err
	}
	bf, ok := f["bindings"]
	if !ok {
		return nil, nil, d.errorf(key, "%s without bindings", key.Value)
	}
	items, err := d.sequence(bf.value, "bindings")
	if err != nil {
		return nil, nil, err
	}
	var bindings []*Binding
	for _, item := range items {
		bfields, err := d.mapping(item, "name", "value", "type")
		if err != nil {
			return nil, nil, err
		}
		nf, ok1 := bfields["name"]
		vf, ok2 := bfields["value"]
		if !ok1 || !ok2 {
			return nil, nil, d.errorf(item, "binding needs name and value")
		}
		b := &Binding{Token: d.tok(nf.value, token.IDENT)}
		if b.Name, err = d.scalar(nf.value, "name"); err != nil {
			return nil, nil, err
		}
		if b.Value, err = d.expr(vf.value); err != nil {
			return nil, nil, err
		}
		if tf, ok := bfields["type"]; ok {
			if b.Declared, err = d.typ(tf.value); err != nil {
				return nil, nil, err
			}
		}
		bindings = append(bindings, b)
	}
	body, ok := f["body"]
	if !ok {
		return nil, nil, d.errorf(key, "%s without body", key.Value)
	}
	bodyExpr, err := d.expr(body.value)
	if err != nil {
		return nil, nil, err
	}
	return bindings, bodyExpr, nil
}
