package env

import (
	"github.com/funvibe/flowtype/internal/props"
	"github.com/funvibe/flowtype/internal/typesystem"
)

// maxAliasDepth bounds how far narrowing follows binding objects.
const maxAliasDepth = 32

// Narrow refines e under the asserted propositions. The boolean is false
// when the propositions contradict what e knows, i.e. the code path they
// guard cannot execute. e itself is never modified.
func Narrow(alg *typesystem.Algebra, e PropEnv, asserted ...props.Prop) (PropEnv, bool) {
	cur := e
	for _, p := range asserted {
		var ok bool
		cur, ok = narrowProp(alg, cur, p)
		if !ok {
			return cur, false
		}
	}
	return cur, true
}

func narrowProp(alg *typesystem.Algebra, e PropEnv, p props.Prop) (PropEnv, bool) {
	switch p := p.(type) {
	case nil, props.TopProp:
		return e, true
	case props.BottomProp:
		return e, false
	case props.AndProp:
		return Narrow(alg, e, p.Props...)
	case props.OrProp:
		var reachable []PropEnv
		for _, d := range p.Props {
			if ne, ok := narrowProp(alg, e, d); ok {
				reachable = append(reachable, ne)
			}
		}
		switch len(reachable) {
		case 0:
			return e, false
		case 1:
			return reachable[0], true
		}
		return join(alg, e, reachable).withProp(p), true
	case props.TypeProp:
		return narrowAtom(alg, e.withProp(p), p.Path, p.Type, true, 0)
	case props.NotTypeProp:
		return narrowAtom(alg, e.withProp(p), p.Path, p.Type, false, 0)
	}
	return e, true
}

// narrowAtom applies one (possibly negated) type assertion about path.
// The proposition itself has already been recorded by the caller.
func narrowAtom(alg *typesystem.Algebra, e PropEnv, path props.Path, t typesystem.Type, positive bool, depth int) (PropEnv, bool) {
	b, bound := e.Lookup(path.Root)
	if !bound {
		return e, true
	}

	out := e
	if path.IsLocal() {
		var refined typesystem.Type
		if positive {
			refined = alg.Intersect(b.Type, t)
		} else {
			refined = alg.Remove(b.Type, t)
		}
		if typesystem.IsBottom(refined) {
			return out, false
		}
		out = out.rebind(path.Root, Binding{Type: refined, Object: b.Object})
	}

	// The binding is an alias of another location: what holds for it holds
	// there too.
	alias, ok := b.Object.(props.Path)
	if !ok || depth >= maxAliasDepth {
		return out, true
	}
	target, ok := path.Rebase(alias).(props.Path)
	if !ok || target.Equal(path) {
		return out, true
	}
	var atom props.Prop
	if positive {
		atom = props.TypeAt(target, t)
	} else {
		atom = props.NotTypeAt(target, t)
	}
	return narrowAtom(alg, out.withProp(atom), target, t, positive, depth+1)
}

// join merges environments reached through different disjuncts: each
// binding of base gets the union of its candidate types.
func join(alg *typesystem.Algebra, base PropEnv, envs []PropEnv) PropEnv {
	out := base
	base.bindings.Range(func(name string, b Binding) bool {
		candidates := make([]typesystem.Type, 0, len(envs))
		for _, ne := range envs {
			if nb, ok := ne.Lookup(name); ok {
				candidates = append(candidates, nb.Type)
			} else {
				candidates = append(candidates, b.Type)
			}
		}
		joined := alg.Union(candidates...)
		if joined.String() != b.Type.String() {
			out = out.rebind(name, Binding{Type: joined, Object: b.Object})
		}
		return true
	})
	return out
}

// PathType returns what e knows about the value at path. For a bound local
// this is the binding type; for an accessor path it is Any refined by the
// recorded propositions about that path.
func PathType(alg *typesystem.Algebra, e PropEnv, path props.Path) typesystem.Type {
	return RefinePath(alg, e, path, typesystem.Any)
}

// RefinePath narrows start, a type already known for the value at path, by
// what e knows about that path.
func RefinePath(alg *typesystem.Algebra, e PropEnv, path props.Path, start typesystem.Type) typesystem.Type {
	b, ok := e.Lookup(path.Root)
	if !ok {
		return start
	}
	if path.IsLocal() {
		return alg.Intersect(start, b.Type)
	}

	targets := []props.Path{path}
	if alias, ok := b.Object.(props.Path); ok {
		if rebased, ok := path.Rebase(alias).(props.Path); ok {
			targets = append(targets, rebased)
		}
	}

	t := start
	for _, p := range e.props {
		switch p := p.(type) {
		case props.TypeProp:
			if matchesAny(p.Path, targets) {
				t = alg.Intersect(t, p.Type)
			}
		case props.NotTypeProp:
			if matchesAny(p.Path, targets) {
				t = alg.Remove(t, p.Type)
			}
		}
	}
	return t
}

func matchesAny(p props.Path, targets []props.Path) bool {
	for _, q := range targets {
		if p.Equal(q) {
			return true
		}
	}
	return false
}
