package ast

import (
	"github.com/funvibe/flowtype/internal/props"
	"github.com/funvibe/flowtype/internal/token"
	"github.com/funvibe/flowtype/internal/typesystem"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	Accept(v Visitor)
}

// Expression is a Node that represents an expression.
// Result is nil until the node has been checked.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
	Result() *props.TCResult
}

// Annotation carries the checker's result for a node.
type Annotation struct {
	TC *props.TCResult
}

func (a Annotation) Result() *props.TCResult { return a.TC }

// Visitor walks expression trees.
type Visitor interface {
	VisitProgram(p *Program)
	VisitUnit(u *Unit)
	VisitLiteral(l *Literal)
	VisitLocalRef(r *LocalRef)
	VisitCall(c *Call)
	VisitIf(i *If)
	VisitLet(l *Let)
	VisitLoop(l *Loop)
	VisitRecur(r *Recur)
	VisitThrow(t *Throw)
	VisitDo(d *Do)
	VisitAnn(a *Ann)
}

// Program is the root node of a decoded document.
type Program struct {
	File  string // Source file path
	Units []*Unit
}

func (p *Program) Accept(v Visitor) { v.VisitProgram(p) }
func (p *Program) TokenLiteral() string {
	if len(p.Units) > 0 {
		return p.Units[0].TokenLiteral()
	}
	return ""
}

// Param is one entry of a unit's initial environment.
type Param struct {
	Token token.Token
	Name  string
	Type  typesystem.Type
}

// GlobalDecl declares a function available to a unit in addition to the
// base environment. Test marks a type predicate; Accessor marks a pure path
// accessor (first, count, ...).
type GlobalDecl struct {
	Token    token.Token
	Name     string
	Params   []typesystem.Type
	Rest     typesystem.Type
	Return   typesystem.Type
	Test     typesystem.Type
	Accessor string
}

// Unit is one independently checked top-level expression.
type Unit struct {
	Token   token.Token
	Name    string
	Env     []Param
	Globals []GlobalDecl
	Expr    Expression
}

func (u *Unit) Accept(v Visitor)      { v.VisitUnit(u) }
func (u *Unit) TokenLiteral() string  { return u.Token.Lexeme }
func (u *Unit) GetToken() token.Token { return u.Token }

// Children returns the direct sub-expressions of e in evaluation order.
func Children(e Expression) []Expression {
	switch n := e.(type) {
	case *Call:
		return n.Args
	case *If:
		out := []Expression{n.Test, n.Then}
		if n.Else != nil {
			out = append(out, n.Else)
		}
		return out
	case *Let:
		return bindingChildren(n.Bindings, n.Body)
	case *Loop:
		return bindingChildren(n.Bindings, n.Body)
	case *Recur:
		return n.Args
	case *Throw:
		return []Expression{n.Value}
	case *Do:
		return n.Exprs
	case *Ann:
		return []Expression{n.Expr}
	}
	return nil
}

func bindingChildren(bs []*Binding, body Expression) []Expression {
	out := make([]Expression, 0, len(bs)+1)
	for _, b := range bs {
		out = append(out, b.Value)
	}
	return append(out, body)
}

// Inspect calls fn for e and every descendant, depth first, until fn
// returns false for a node (its children are then skipped).
func Inspect(e Expression, fn func(Expression) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range Children(e) {
		Inspect(c, fn)
	}
}
