package typesystem

// Transform rebuilds t bottom-up, applying fn to every node after its
// children have been rewritten. fn returns its argument to keep a node.
func Transform(t Type, fn func(Type) Type) Type {
	if t == nil {
		return nil
	}
	switch typ := t.(type) {
	case TApp:
		newArgs := make([]Type, len(typ.Args))
		for i, arg := range typ.Args {
			newArgs[i] = Transform(arg, fn)
		}
		return fn(TApp{Constructor: typ.Constructor, Args: newArgs})
	case TFunc:
		newParams := make([]Type, len(typ.Params))
		for i, p := range typ.Params {
			newParams[i] = Transform(p, fn)
		}
		return fn(TFunc{
			Params: newParams,
			Rest:   Transform(typ.Rest, fn),
			Return: Transform(typ.Return, fn),
		})
	case TTuple:
		newElements := make([]Type, len(typ.Elements))
		for i, e := range typ.Elements {
			newElements[i] = Transform(e, fn)
		}
		return fn(TTuple{Elements: newElements, Rest: Transform(typ.Rest, fn)})
	case TRecord:
		return fn(TRecord{
			Fields:   transformEntries(typ.Fields, fn),
			Optional: transformEntries(typ.Optional, fn),
			Complete: typ.Complete,
		})
	case TKwArgs:
		return fn(TKwArgs{
			Mandatory: transformEntries(typ.Mandatory, fn),
			Optional:  transformEntries(typ.Optional, fn),
			Complete:  typ.Complete,
		})
	case TUnion:
		members := make([]Type, len(typ.Types))
		for i, m := range typ.Types {
			members[i] = Transform(m, fn)
		}
		return fn(NormalizeUnion(members))
	case TIntersection:
		members := make([]Type, len(typ.Types))
		for i, m := range typ.Types {
			members[i] = Transform(m, fn)
		}
		return fn(NormalizeIntersection(members))
	case TVar:
		if typ.Bound != nil {
			return fn(TVar{Name: typ.Name, Bound: Transform(typ.Bound, fn)})
		}
		return fn(typ)
	default:
		return fn(t)
	}
}

func transformEntries(m map[string]Type, fn func(Type) Type) map[string]Type {
	if m == nil {
		return nil
	}
	out := make(map[string]Type, len(m))
	for k, v := range m {
		out[k] = Transform(v, fn)
	}
	return out
}

// ReplaceVars replaces every free type variable by its upper bound, or by
// Any when it has none. Signatures of base functions are used this way at
// call sites: variables are not instantiated, only widened.
func ReplaceVars(t Type) Type {
	return Transform(t, func(n Type) Type {
		if v, ok := n.(TVar); ok {
			if v.Bound != nil {
				return v.Bound
			}
			return Any
		}
		return n
	})
}

// ReplaceTCon replaces all occurrences of the class name with replacement.
// Used to resolve class aliases declared in a project file.
func ReplaceTCon(t Type, name string, replacement Type) Type {
	return Transform(t, func(n Type) Type {
		if c, ok := n.(TCon); ok && c.Module == "" && c.Name == name {
			return replacement
		}
		return n
	})
}
