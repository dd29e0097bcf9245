package checker

import (
	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/diagnostics"
	"github.com/funvibe/flowtype/internal/env"
	"github.com/funvibe/flowtype/internal/props"
	"github.com/funvibe/flowtype/internal/token"
	"github.com/funvibe/flowtype/internal/typesystem"
)

// branch is one checked arm of a conditional.
type branch struct {
	node      ast.Expression
	result    props.TCResult
	reachable bool
	residual  props.Prop
}

func (c *Checker) checkIf(ctx Context, n *ast.If, expected *props.TCResult) (ast.Expression, props.TCResult, error) {
	test, testRes, err := c.checkChild(ctx.nonTail(), n.Test, nil)
	if err != nil {
		return nil, props.TCResult{}, err
	}

	then, err := c.checkBranch(ctx, n.Then, testRes.Filters.Then, expected)
	if err != nil {
		return nil, props.TCResult{}, err
	}

	// A missing else yields nil.
	elseNode := n.Else
	if elseNode == nil {
		elseNode = &ast.Literal{Token: token.Token{Type: token.LITERAL, Lexeme: "nil", Line: n.Token.Line, Column: n.Token.Column}, Value: typesystem.NilVal}
	}
	els, err := c.checkBranch(ctx, elseNode, testRes.Filters.Else, expected)
	if err != nil {
		return nil, props.TCResult{}, err
	}

	cp := *n
	cp.Test = test
	cp.Then = then.node
	if n.Else != nil {
		cp.Else = els.node
	}
	return &cp, c.combine(testRes.Filters, then, els), nil
}

// checkBranch checks node under env narrowed by the asserted proposition,
// or skips it when that narrowing is contradictory.
func (c *Checker) checkBranch(ctx Context, node ast.Expression, asserted props.Prop, expected *props.TCResult) (branch, error) {
	narrowed, ok := env.Narrow(c.alg, ctx.Env, asserted)
	if !ok {
		c.metrics.BranchSkipped()
		return branch{node: c.skip(node), result: props.Unreachable(), residual: props.Bottom}, nil
	}
	out, r, err := c.checkChild(ctx.WithEnv(narrowed), node, expected)
	if err != nil {
		return branch{}, err
	}
	return branch{
		node:      out,
		result:    r,
		reachable: true,
		residual:  props.And(narrowed.Residual(ctx.Env)...),
	}, nil
}

// combine merges the results of both arms of a conditional.
func (c *Checker) combine(test props.FilterSet, then, els branch) props.TCResult {
	typ := c.alg.Union(then.result.Type, els.result.Type)
	filters := props.FilterSet{
		Then: props.Or(
			props.And(test.Then, then.result.Filters.Then, then.residual),
			props.And(test.Else, els.result.Filters.Then, els.residual)),
		Else: props.Or(
			props.And(test.Then, then.result.Filters.Else, then.residual),
			props.And(test.Else, els.result.Filters.Else, els.residual)),
	}

	thenDead := !then.reachable || typesystem.IsBottom(then.result.Type)
	elseDead := !els.reachable || typesystem.IsBottom(els.result.Type)
	var obj props.Object
	switch {
	case thenDead && elseDead:
		obj = props.Empty
	case thenDead:
		obj = els.result.Object
	case elseDead:
		obj = then.result.Object
	case props.ObjectsEqual(then.result.Object, els.result.Object):
		obj = then.result.Object
	default:
		obj = props.Empty
	}
	return props.TCResult{Type: typ, Filters: filters, Object: obj}
}

func (c *Checker) checkThrow(ctx Context, n *ast.Throw) (ast.Expression, props.TCResult, error) {
	val, _, err := c.checkChild(ctx.nonTail(), n.Value, nil)
	if err != nil {
		return nil, props.TCResult{}, err
	}
	cp := *n
	cp.Value = val
	return &cp, props.Unreachable(), nil
}

func (c *Checker) checkRecur(ctx Context, n *ast.Recur) (ast.Expression, props.TCResult, error) {
	target := ctx.Recur
	switch {
	case target == nil:
		c.report(diagnostics.ErrA005, n.Token, "recur outside of a loop tail position")
	case !target.accepts(len(n.Args)):
		if target.restType() != nil {
			c.report(diagnostics.ErrA004, n.Token, "recur expects at least %d argument(s), got %d", len(target.Domain), len(n.Args))
		} else {
			c.report(diagnostics.ErrA004, n.Token, "recur expects %d argument(s), got %d", len(target.Domain), len(n.Args))
		}
		target = nil
	}

	cp := *n
	cp.Args = make([]ast.Expression, len(n.Args))
	argCtx := ctx.nonTail()
	for i, arg := range n.Args {
		var expected *props.TCResult
		if target != nil {
			expected = expect(target.param(i))
		}
		out, _, err := c.checkChild(argCtx, arg, expected)
		if err != nil {
			return nil, props.TCResult{}, err
		}
		cp.Args[i] = out
	}
	return &cp, props.Unreachable(), nil
}

func (c *Checker) checkDo(ctx Context, n *ast.Do, expected *props.TCResult) (ast.Expression, props.TCResult, error) {
	cp := *n
	cp.Exprs = make([]ast.Expression, len(n.Exprs))
	var res props.TCResult
	dead := false
	last := len(n.Exprs) - 1
	for i, e := range n.Exprs {
		if dead {
			cp.Exprs[i] = c.skip(e)
			continue
		}
		sub, exp := ctx.nonTail(), (*props.TCResult)(nil)
		if i == last {
			sub, exp = ctx, expected
		}
		out, r, err := c.checkChild(sub, e, exp)
		if err != nil {
			return nil, props.TCResult{}, err
		}
		cp.Exprs[i] = out
		res = r
		if typesystem.IsBottom(r.Type) && i != last {
			dead = true
			res = props.Unreachable()
		}
	}
	if len(n.Exprs) == 0 {
		res = props.NewResult(typesystem.NilVal).WithFilters(props.FalsyFilters)
	}
	return &cp, res, nil
}
