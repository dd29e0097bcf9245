package ast

import (
	"github.com/funvibe/flowtype/internal/token"
	"github.com/funvibe/flowtype/internal/typesystem"
)

// Literal is a constant: nil, a boolean, an integer, a string or a keyword.
type Literal struct {
	Annotation
	Token token.Token
	Value typesystem.TVal
}

func (l *Literal) Accept(v Visitor)      { v.VisitLiteral(l) }
func (l *Literal) expressionNode()       {}
func (l *Literal) TokenLiteral() string  { return l.Token.Lexeme }
func (l *Literal) GetToken() token.Token { return l.Token }

// LocalRef is a reference to a bound name.
type LocalRef struct {
	Annotation
	Token token.Token
	Name  string
}

func (r *LocalRef) Accept(v Visitor)      { v.VisitLocalRef(r) }
func (r *LocalRef) expressionNode()       {}
func (r *LocalRef) TokenLiteral() string  { return r.Token.Lexeme }
func (r *LocalRef) GetToken() token.Token { return r.Token }

// Call applies a function from the base environment.
// (call f a b)
type Call struct {
	Annotation
	Token token.Token
	Fn    string
	Args  []Expression
}

func (c *Call) Accept(v Visitor)      { v.VisitCall(c) }
func (c *Call) expressionNode()       {}
func (c *Call) TokenLiteral() string  { return c.Token.Lexeme }
func (c *Call) GetToken() token.Token { return c.Token }

// If is a conditional. Else is nil when the source omitted it.
type If struct {
	Annotation
	Token token.Token
	Test  Expression
	Then  Expression
	Else  Expression
}

func (i *If) Accept(v Visitor)      { v.VisitIf(i) }
func (i *If) expressionNode()       {}
func (i *If) TokenLiteral() string  { return i.Token.Lexeme }
func (i *If) GetToken() token.Token { return i.Token }

// Binding is one name = value pair of a let or loop.
// Declared is the optional type annotation (required for loops).
type Binding struct {
	Token    token.Token
	Name     string
	Value    Expression
	Declared typesystem.Type
}

// Let binds names sequentially, each visible to the following bindings and
// to the body.
type Let struct {
	Annotation
	Token    token.Token
	Bindings []*Binding
	Body     Expression
}

func (l *Let) Accept(v Visitor)      { v.VisitLet(l) }
func (l *Let) expressionNode()       {}
func (l *Let) TokenLiteral() string  { return l.Token.Lexeme }
func (l *Let) GetToken() token.Token { return l.Token }

// Loop is a let whose body may re-enter it with recur.
type Loop struct {
	Annotation
	Token    token.Token
	Bindings []*Binding
	Body     Expression
}

func (l *Loop) Accept(v Visitor)      { v.VisitLoop(l) }
func (l *Loop) expressionNode()       {}
func (l *Loop) TokenLiteral() string  { return l.Token.Lexeme }
func (l *Loop) GetToken() token.Token { return l.Token }

// Recur re-enters the innermost loop with new binding values.
type Recur struct {
	Annotation
	Token token.Token
	Args  []Expression
}

func (r *Recur) Accept(v Visitor)      { v.VisitRecur(r) }
func (r *Recur) expressionNode()       {}
func (r *Recur) TokenLiteral() string  { return r.Token.Lexeme }
func (r *Recur) GetToken() token.Token { return r.Token }

// Throw raises its operand; it never returns normally.
type Throw struct {
	Annotation
	Token token.Token
	Value Expression
}

func (t *Throw) Accept(v Visitor)      { v.VisitThrow(t) }
func (t *Throw) expressionNode()       {}
func (t *Throw) TokenLiteral() string  { return t.Token.Lexeme }
func (t *Throw) GetToken() token.Token { return t.Token }

// Do evaluates expressions in order and yields the last one.
type Do struct {
	Annotation
	Token token.Token
	Exprs []Expression
}

func (d *Do) Accept(v Visitor)      { v.VisitDo(d) }
func (d *Do) expressionNode()       {}
func (d *Do) TokenLiteral() string  { return d.Token.Lexeme }
func (d *Do) GetToken() token.Token { return d.Token }

// Ann checks Expr against an explicit type.
type Ann struct {
	Annotation
	Token token.Token
	Expr  Expression
	Type  typesystem.Type
}

func (a *Ann) Accept(v Visitor)      { v.VisitAnn(a) }
func (a *Ann) expressionNode()       {}
func (a *Ann) TokenLiteral() string  { return a.Token.Lexeme }
func (a *Ann) GetToken() token.Token { return a.Token }
