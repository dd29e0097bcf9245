package env

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/flowtype/internal/props"
	"github.com/funvibe/flowtype/internal/typesystem"
)

// Binding is what the environment knows about one bound name.
type Binding struct {
	Type   typesystem.Type
	Object props.Object
}

// PropEnv is the lexical scope at one program point: bound names plus the
// propositions accumulated along the current control-flow path.
// A PropEnv is a value; every operation returns a new one.
type PropEnv struct {
	bindings symbolMap[Binding]
	props    []props.Prop
}

// New returns an empty environment.
func New() PropEnv {
	return PropEnv{}
}

// FromTypes builds an environment binding each name to its type with no
// object.
func FromTypes(types map[string]typesystem.Type) PropEnv {
	e := New()
	for name, t := range types {
		e = e.Extend(name, t, props.Empty)
	}
	return e
}

func (e PropEnv) Lookup(name string) (Binding, bool) {
	return e.bindings.Get(name)
}

func (e PropEnv) Len() int {
	return e.bindings.Len()
}

// Names returns the bound names in sorted order.
func (e PropEnv) Names() []string {
	return e.bindings.Keys()
}

// Props returns a copy of the accumulated propositions, oldest first.
func (e PropEnv) Props() []props.Prop {
	out := make([]props.Prop, len(e.props))
	copy(out, e.props)
	return out
}

// Extend binds name. When name shadows an existing binding, propositions
// and aliases that referred to the old binding are dropped, since they no
// longer describe the value now reachable through name.
func (e PropEnv) Extend(name string, t typesystem.Type, o props.Object) PropEnv {
	out := e
	if _, shadowing := e.bindings.Get(name); shadowing {
		out = e.forget(name)
	}
	out.bindings = out.bindings.Put(name, Binding{Type: t, Object: o})
	return out
}

// forget unbinds name and drops every fact and alias that refers to it.
func (e PropEnv) forget(name string) PropEnv {
	names := props.Names(name)
	out := PropEnv{bindings: e.bindings.Remove(name)}
	e.bindings.Range(func(k string, b Binding) bool {
		if k == name {
			return true
		}
		if p, ok := b.Object.(props.Path); ok && p.Root == name {
			out.bindings = out.bindings.Put(k, Binding{Type: b.Type, Object: props.Empty})
		}
		return true
	})
	for _, p := range e.props {
		if !props.Mentions(p, names) {
			out.props = append(out.props, p)
		}
	}
	return out
}

func (e PropEnv) rebind(name string, b Binding) PropEnv {
	out := e
	out.bindings = e.bindings.Put(name, b)
	return out
}

func (e PropEnv) withProp(p props.Prop) PropEnv {
	out := e
	out.props = make([]props.Prop, len(e.props), len(e.props)+1)
	copy(out.props, e.props)
	out.props = append(out.props, p)
	return out
}

// Residual returns the propositions e holds beyond those of base.
func (e PropEnv) Residual(base PropEnv) []props.Prop {
	known := set.New[string](len(base.props))
	for _, p := range base.props {
		known.Insert(p.String())
	}
	var out []props.Prop
	for _, p := range e.props {
		if !known.Contains(p.String()) {
			out = append(out, p)
		}
	}
	return out
}
