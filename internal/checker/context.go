package checker

import (
	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/env"
	"github.com/funvibe/flowtype/internal/token"
	"github.com/funvibe/flowtype/internal/typesystem"
)

// Context is the dynamic state of the walk at one node. It is passed by
// value; nested forms derive new contexts instead of mutating shared state.
type Context struct {
	Env   env.PropEnv
	Recur *RecurTarget   // Innermost enclosing loop, nil outside loops
	Expr  ast.Expression // Node being checked
}

// RecurTarget is the parameter domain a recur must match. Arguments past
// the domain are allowed only when a rest or dotted rest type is set.
type RecurTarget struct {
	Domain     []typesystem.Type
	Rest       typesystem.Type
	DottedRest typesystem.Type
}

// restType is the expected type of arguments past the fixed domain, or
// nil when the target has a fixed arity.
func (t *RecurTarget) restType() typesystem.Type {
	if t.Rest != nil {
		return t.Rest
	}
	return t.DottedRest
}

func (t *RecurTarget) accepts(n int) bool {
	if t.restType() != nil {
		return n >= len(t.Domain)
	}
	return n == len(t.Domain)
}

// param is the expected type of the i-th recur argument.
func (t *RecurTarget) param(i int) typesystem.Type {
	if i < len(t.Domain) {
		return t.Domain[i]
	}
	return t.restType()
}

func (c Context) WithEnv(e env.PropEnv) Context {
	c.Env = e
	return c
}

func (c Context) WithRecur(t *RecurTarget) Context {
	c.Recur = t
	return c
}

// nonTail is the context for sub-expressions whose value is consumed by
// the enclosing form; recur is not allowed there.
func (c Context) nonTail() Context {
	c.Recur = nil
	return c
}

func (c Context) tokenOr() token.Token {
	if c.Expr != nil {
		return c.Expr.GetToken()
	}
	return token.Token{}
}
