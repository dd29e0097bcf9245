package hierarchy

import (
	"fmt"
	"sort"

	"github.com/funvibe/flowtype/internal/config"
)

// Class is one nominal class or interface. Parents lists both superclasses
// and implemented interfaces.
type Class struct {
	Name      string   `yaml:"name"`
	Parents   []string `yaml:"parents,omitempty"`
	Final     bool     `yaml:"final,omitempty"`
	Interface bool     `yaml:"interface,omitempty"`
}

// Hierarchy is an immutable class table with a precomputed ancestor closure.
// It is safe for concurrent use.
type Hierarchy struct {
	classes   map[string]Class
	ancestors map[string]map[string]bool
}

// New builds a hierarchy. A class without parents extends Object, except
// Object itself and Nil. Every parent must be declared.
func New(classes ...Class) (*Hierarchy, error) {
	h := &Hierarchy{
		classes:   make(map[string]Class, len(classes)),
		ancestors: make(map[string]map[string]bool, len(classes)),
	}
	for _, c := range classes {
		if c.Name == "" {
			return nil, fmt.Errorf("class with empty name")
		}
		if len(c.Parents) == 0 && c.Name != config.ObjectClassName && c.Name != config.NilClassName {
			c.Parents = []string{config.ObjectClassName}
		}
		h.classes[c.Name] = c
	}
	for _, c := range h.classes {
		for _, p := range c.Parents {
			if _, ok := h.classes[p]; !ok {
				return nil, &UnknownClassError{Name: p, Referrer: c.Name}
			}
			if h.classes[p].Final {
				return nil, &FinalParentError{Name: c.Name, Parent: p}
			}
		}
	}
	for name := range h.classes {
		if _, err := h.closure(name, map[string]bool{}); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hierarchy) closure(name string, visiting map[string]bool) (map[string]bool, error) {
	if anc, ok := h.ancestors[name]; ok {
		return anc, nil
	}
	if visiting[name] {
		return nil, &CycleError{Name: name}
	}
	visiting[name] = true
	anc := map[string]bool{name: true}
	for _, p := range h.classes[name].Parents {
		pa, err := h.closure(p, visiting)
		if err != nil {
			return nil, err
		}
		for k := range pa {
			anc[k] = true
		}
	}
	delete(visiting, name)
	h.ancestors[name] = anc
	return anc, nil
}

// With returns a new hierarchy containing the receiver's classes plus
// extra ones; an extra class replaces a built-in of the same name.
func (h *Hierarchy) With(extra ...Class) (*Hierarchy, error) {
	merged := make(map[string]Class, len(h.classes)+len(extra))
	for name, c := range h.classes {
		merged[name] = c
	}
	for _, c := range extra {
		merged[c.Name] = c
	}
	all := make([]Class, 0, len(merged))
	for _, c := range merged {
		all = append(all, c)
	}
	return New(all...)
}

// IsSubclass is reflexive and transitive. Undeclared classes are treated as
// direct subclasses of Object.
func (h *Hierarchy) IsSubclass(sub, super string) bool {
	if sub == super {
		return true
	}
	anc, ok := h.ancestors[sub]
	if !ok {
		return super == config.ObjectClassName
	}
	return anc[super]
}

func (h *Hierarchy) IsFinal(name string) bool {
	return h.classes[name].Final
}

func (h *Hierarchy) IsInterface(name string) bool {
	return h.classes[name].Interface
}

// HaveCommonSubclass reports whether some declared class extends both.
func (h *Hierarchy) HaveCommonSubclass(a, b string) bool {
	for name := range h.classes {
		if h.IsSubclass(name, a) && h.IsSubclass(name, b) {
			return true
		}
	}
	return false
}

func (h *Hierarchy) Lookup(name string) (Class, bool) {
	c, ok := h.classes[name]
	return c, ok
}

// Classes returns all classes sorted by name.
func (h *Hierarchy) Classes() []Class {
	out := make([]Class, 0, len(h.classes))
	for _, c := range h.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Builtins are the classes every program can reference.
func Builtins() []Class {
	return []Class{
		{Name: config.ObjectClassName},
		{Name: config.NilClassName, Final: true},
		{Name: config.ComparableClassName, Interface: true},
		{Name: config.CharSequenceClassName, Interface: true},
		{Name: config.FnClassName, Interface: true},
		{Name: config.SeqTypeName, Interface: true},
		{Name: config.NumberClassName, Parents: []string{config.ObjectClassName, config.ComparableClassName}},
		{Name: config.IntegerClassName, Parents: []string{config.NumberClassName}, Final: true},
		{Name: config.DoubleClassName, Parents: []string{config.NumberClassName}, Final: true},
		{Name: config.StringClassName, Parents: []string{config.ObjectClassName, config.CharSequenceClassName, config.ComparableClassName}, Final: true},
		{Name: config.KeywordClassName, Parents: []string{config.ObjectClassName, config.ComparableClassName, config.FnClassName}, Final: true},
		{Name: config.BooleanClassName, Parents: []string{config.ObjectClassName, config.ComparableClassName}, Final: true},
		{Name: config.ExceptionClassName},
		{Name: config.VectorTypeName, Parents: []string{config.ObjectClassName, config.SeqTypeName}, Final: true},
		{Name: config.MapTypeName, Parents: []string{config.ObjectClassName, config.SeqTypeName}, Final: true},
		{Name: config.SetTypeName, Parents: []string{config.ObjectClassName, config.SeqTypeName}, Final: true},
	}
}

// Default returns the built-in hierarchy.
func Default() *Hierarchy {
	h, err := New(Builtins()...)
	if err != nil {
		panic(fmt.Sprintf("built-in class table: %v", err))
	}
	return h
}
