package checker

import (
	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/props"
)

// annotate returns a shallow copy of n carrying r.
func annotate(n ast.Expression, r props.TCResult) ast.Expression {
	res := &r
	switch n := n.(type) {
	case *ast.Literal:
		cp := *n
		cp.TC = res
		return &cp
	case *ast.LocalRef:
		cp := *n
		cp.TC = res
		return &cp
	case *ast.Call:
		cp := *n
		cp.TC = res
		return &cp
	case *ast.If:
		cp := *n
		cp.TC = res
		return &cp
	case *ast.Let:
		cp := *n
		cp.TC = res
		return &cp
	case *ast.Loop:
		cp := *n
		cp.TC = res
		return &cp
	case *ast.Recur:
		cp := *n
		cp.TC = res
		return &cp
	case *ast.Throw:
		cp := *n
		cp.TC = res
		return &cp
	case *ast.Do:
		cp := *n
		cp.TC = res
		return &cp
	case *ast.Ann:
		cp := *n
		cp.TC = res
		return &cp
	}
	return n
}

// skip marks code that is never reached. Its children are left unchecked
// and unannotated.
func (c *Checker) skip(n ast.Expression) ast.Expression {
	c.logger.Debug("skipping unreachable code", "pos", n.GetToken().Pos(), "node", n.TokenLiteral())
	return annotate(n, props.Unreachable())
}
