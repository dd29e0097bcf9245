package ast

import (
	"strconv"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/flowtype/internal/diagnostics"
	"github.com/funvibe/flowtype/internal/token"
	"github.com/funvibe/flowtype/internal/typesystem"
)

// Programs and types are YAML documents. Decoding goes through yaml.Node
// so every node keeps its line and column for diagnostics.

type decoder struct {
	file string
}

// DecodeProgram decodes a program document. Errors are P001 diagnostics.
func DecodeProgram(file string, src []byte) (*Program, error) {
	d := &decoder{file: file}
	root, err := d.parse(src)
	if err != nil {
		return nil, err
	}
	fields, err := d.mapping(root, "units")
	if err != nil {
		return nil, err
	}
	prog := &Program{File: file}
	unitsNode, ok := fields["units"]
	if !ok {
		return nil, d.errorf(root, "program has no units")
	}
	if unitsNode.value.Kind != yaml.SequenceNode {
		return nil, d.errorf(unitsNode.value, "units must be a list")
	}
	for _, n := range unitsNode.value.Content {
		u, err := d.unit(n)
		if err != nil {
			return nil, err
		}
		prog.Units = append(prog.Units, u)
	}
	return prog, nil
}

// DecodeType decodes a standalone type document.
func DecodeType(src []byte) (typesystem.Type, error) {
	d := &decoder{}
	root, err := d.parse(src)
	if err != nil {
		return nil, err
	}
	return d.typ(root)
}

// DecodeTypeNode decodes a type from an already parsed YAML node, as used
// by project files.
func DecodeTypeNode(file string, n *yaml.Node) (typesystem.Type, error) {
	d := &decoder{file: file}
	return d.typ(resolve(n))
}

func (d *decoder) parse(src []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		e := diagnostics.NewErrorf(diagnostics.ErrP001, token.Token{Type: token.ILLEGAL}, "invalid YAML: %v", err)
		e.File = d.file
		return nil, e
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		e := diagnostics.NewError(diagnostics.ErrP001, token.Token{Type: token.ILLEGAL}, "empty document")
		e.File = d.file
		return nil, e
	}
	return resolve(doc.Content[0]), nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func (d *decoder) tok(n *yaml.Node, tt token.TokenType) token.Token {
	return token.Token{Type: tt, Lexeme: n.Value, Line: n.Line, Column: n.Column}
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...interface{}) error {
	e := diagnostics.NewErrorf(diagnostics.ErrP001, d.tok(n, token.ILLEGAL), format, args...)
	e.File = d.file
	return e
}

type field struct {
	key   *yaml.Node
	value *yaml.Node
}

// mapping returns the fields of a mapping node, rejecting duplicate keys
// and keys outside allowed.
func (d *decoder) mapping(n *yaml.Node, allowed ...string) (map[string]field, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "expected a mapping")
	}
	ok := map[string]bool{}
	for _, a := range allowed {
		ok[a] = true
	}
	out := make(map[string]field, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], resolve(n.Content[i+1])
		if _, dup := out[k.Value]; dup {
			return nil, d.errorf(k, "duplicate key %q", k.Value)
		}
		if len(allowed) > 0 && !ok[k.Value] {
			return nil, d.errorf(k, "unexpected key %q", k.Value)
		}
		out[k.Value] = field{key: k, value: v}
	}
	return out, nil
}

// primary finds the single key of fields that names the node's form.
func (d *decoder) primary(n *yaml.Node, fields map[string]field, forms map[string][]string) (string, error) {
	found := ""
	for name := range forms {
		if _, ok := fields[name]; ok {
			if found != "" {
				return "", d.errorf(n, "ambiguous node: both %q and %q", found, name)
			}
			found = name
		}
	}
	if found == "" {
		return "", d.errorf(n, "unrecognized node")
	}
	allowed := map[string]bool{found: true}
	for _, extra := range forms[found] {
		allowed[extra] = true
	}
	for k, f := range fields {
		if !allowed[k] {
			return "", d.errorf(f.key, "unexpected key %q in %s", k, found)
		}
	}
	return found, nil
}

func (d *decoder) scalar(n *yaml.Node, what string) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", d.errorf(n, "%s must be a scalar", what)
	}
	return n.Value, nil
}

func (d *decoder) intValue(n *yaml.Node, what string) (int, error) {
	if n.Kind != yaml.ScalarNode || n.Tag != "!!int" {
		return 0, d.errorf(n, "%s must be an integer", what)
	}
	v, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, d.errorf(n, "%s: %v", what, err)
	}
	return v, nil
}

func (d *decoder) boolValue(n *yaml.Node, what string) (bool, error) {
	if n.Kind != yaml.ScalarNode || n.Tag != "!!bool" {
		return false, d.errorf(n, "%s must be a boolean", what)
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		return false, d.errorf(n, "%s: %v", what, err)
	}
	return b, nil
}

func (d *decoder) sequence(n *yaml.Node, what string) ([]*yaml.Node, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, d.errorf(n, "%s must be a list", what)
	}
	out := make([]*yaml.Node, len(n.Content))
	for i, c := range n.Content {
		out[i] = resolve(c)
	}
	return out, nil
}

// value decodes a literal scalar into its singleton type.
func (d *decoder) value(n *yaml.Node) (typesystem.TVal, error) {
	if n.Kind != yaml.ScalarNode {
		return typesystem.TVal{}, d.errorf(n, "literal must be a scalar")
	}
	switch n.Tag {
	case "!!null":
		return typesystem.NilVal, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return typesystem.TVal{}, d.errorf(n, "bad boolean: %v", err)
		}
		return typesystem.BoolVal(b), nil
	case "!!int":
		v, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return typesystem.TVal{}, d.errorf(n, "bad integer: %v", err)
		}
		return typesystem.IntVal(v), nil
	case "!!str":
		return typesystem.StringVal(n.Value), nil
	}
	return typesystem.TVal{}, d.errorf(n, "unsupported literal %q", n.Value)
}

var typeForms = map[string][]string{
	"class":        {"module"},
	"val":          nil,
	"keyword":      nil,
	"union":        nil,
	"intersection": nil,
	"app":          {"args"},
	"tuple":        {"rest"},
	"record":       {"optional", "complete"},
	"count":        nil,
	"kwargs":       {"optional", "complete"},
	"fn":           {"rest", "returns"},
	"var":          {"bound"},
}

func (d *decoder) typ(n *yaml.Node) (typesystem.Type, error) {
	n = resolve(n)
	if n.Kind == yaml.ScalarNode {
		switch n.Value {
		case "any":
			return typesystem.Any, nil
		case "nothing":
			return typesystem.Nothing, nil
		case "error":
			return typesystem.Error, nil
		}
		if n.Tag == "!!str" && n.Value != "" && unicode.IsUpper([]rune(n.Value)[0]) {
			return typesystem.TCon{Name: n.Value}, nil
		}
		return nil, d.errorf(n, "unknown type %q", n.Value)
	}

	fields, err := d.mapping(n)
	if err != nil {
		return nil, err
	}
	form, err := d.primary(n, fields, typeForms)
	if err != nil {
		return nil, err
	}
	main := fields[form].value

	switch form {
	case "class":
		name, err := d.scalar(main, "class")
		if err != nil {
			return nil, err
		}
		con := typesystem.TCon{Name: name}
		if m, ok := fields["module"]; ok {
			if con.Module, err = d.scalar(m.value, "module"); err != nil {
				return nil, err
			}
		}
		return con, nil

	case "val":
		return d.value(main)

	case "keyword":
		k, err := d.scalar(main, "keyword")
		if err != nil {
			return nil, err
		}
		return typesystem.KeywordVal(k), nil

	case "union", "intersection":
		members, err := d.types(main, form)
		if err != nil {
			return nil, err
		}
		if form == "union" {
			return typesystem.NormalizeUnion(members), nil
		}
		return typesystem.NormalizeIntersection(members), nil

	case "app":
		ctor, err := d.scalar(main, "app")
		if err != nil {
			return nil, err
		}
		app := typesystem.TApp{Constructor: typesystem.TCon{Name: ctor}}
		if a, ok := fields["args"]; ok {
			if app.Args, err = d.types(a.value, "args"); err != nil {
				return nil, err
			}
		}
		return app, nil

	case "tuple":
		elems, err := d.types(main, "tuple")
		if err != nil {
			return nil, err
		}
		tuple := typesystem.TTuple{Elements: elems}
		if r, ok := fields["rest"]; ok {
			if tuple.Rest, err = d.typ(r.value); err != nil {
				return nil, err
			}
		}
		return tuple, nil

	case "record", "kwargs":
		mand, err := d.entries(main, form)
		if err != nil {
			return nil, err
		}
		var opt map[string]typesystem.Type
		if o, ok := fields["optional"]; ok {
			if opt, err = d.entries(o.value, "optional"); err != nil {
				return nil, err
			}
		}
		complete := false
		if c, ok := fields["complete"]; ok {
			if complete, err = d.boolValue(c.value, "complete"); err != nil {
				return nil, err
			}
		}
		if form == "record" {
			return typesystem.TRecord{Fields: mand, Optional: opt, Complete: complete}, nil
		}
		return typesystem.TKwArgs{Mandatory: mand, Optional: opt, Complete: complete}, nil

	case "count":
		cf, err := d.mapping(main, "lower", "upper")
		if err != nil {
			return nil, err
		}
		cr := typesystem.TCountRange{}
		if l, ok := cf["lower"]; ok {
			if cr.Lower, err = d.intValue(l.value, "lower"); err != nil {
				return nil, err
			}
		}
		if u, ok := cf["upper"]; ok {
			upper, err := d.intValue(u.value, "upper")
			if err != nil {
				return nil, err
			}
			if upper < cr.Lower {
				return nil, d.errorf(u.value, "upper bound %d below lower bound %d", upper, cr.Lower)
			}
			cr.Upper = &upper
		}
		if cr.Lower < 0 {
			return nil, d.errorf(main, "negative count")
		}
		return cr, nil

	case "fn":
		params, err := d.types(main, "fn")
		if err != nil {
			return nil, err
		}
		fn := typesystem.TFunc{Params: params, Return: typesystem.Any}
		if r, ok := fields["rest"]; ok {
			if fn.Rest, err = d.typ(r.value); err != nil {
				return nil, err
			}
		}
		if r, ok := fields["returns"]; ok {
			if fn.Return, err = d.typ(r.value); err != nil {
				return nil, err
			}
		}
		return fn, nil

	case "var":
		name, err := d.scalar(main, "var")
		if err != nil {
			return nil, err
		}
		v := typesystem.TVar{Name: name}
		if b, ok := fields["bound"]; ok {
			if v.Bound, err = d.typ(b.value); err != nil {
				return nil, err
			}
		}
		return v, nil
	}
	return nil, d.errorf(n, "unrecognized type form %q", form)
}

func (d *decoder) types(n *yaml.Node, what string) ([]typesystem.Type, error) {
	items, err := d.sequence(n, what)
	if err != nil {
		return nil, err
	}
	out := make([]typesystem.Type, 0, len(items))
	for _, item := range items {
		t, err := d.typ(item)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (d *decoder) entries(n *yaml.Node, what string) (map[string]typesystem.Type, error) {
	fields, err := d.mapping(n)
	if err != nil {
		return nil, d.errorf(n, "%s must map keys to types", what)
	}
	out := make(map[string]typesystem.Type, len(fields))
	for k, f := range fields {
		t, err := d.typ(f.value)
		if err != nil {
			return nil, err
		}
		out[k] = t
	}
	return out, nil
}
