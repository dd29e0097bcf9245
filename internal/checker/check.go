package checker

import (
	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/diagnostics"
	"github.com/funvibe/flowtype/internal/props"
	"github.com/funvibe/flowtype/internal/typesystem"
)

// Check infers the result of node under ctx and returns a copy of node
// whose Result is set, with children annotated recursively. When expected
// is non-nil the result must fit it (A002 otherwise). The error is non-nil
// only for invariant violations.
func (c *Checker) Check(ctx Context, node ast.Expression, expected *props.TCResult) (ast.Expression, error) {
	if node == nil {
		return nil, invariantf(ctx.tokenOr(), "nil expression")
	}
	ctx.Expr = node
	c.metrics.NodeChecked()

	var (
		out ast.Expression
		res props.TCResult
		err error
		// Forms that hand expected down to their result positions check
		// against it themselves.
		propagated bool
	)

	switch n := node.(type) {
	case *ast.Literal:
		out, res = c.checkLiteral(n)
	case *ast.LocalRef:
		out, res = c.checkLocalRef(ctx, n)
	case *ast.Call:
		out, res, err = c.checkCall(ctx, n)
	case *ast.Ann:
		out, res, err = c.checkAnn(ctx, n)
	case *ast.If:
		out, res, err = c.checkIf(ctx, n, expected)
		propagated = true
	case *ast.Let:
		out, res, err = c.checkLet(ctx, n, expected)
		propagated = true
	case *ast.Loop:
		out, res, err = c.checkLoop(ctx, n, expected)
		propagated = true
	case *ast.Do:
		out, res, err = c.checkDo(ctx, n, expected)
		propagated = true
	case *ast.Throw:
		out, res, err = c.checkThrow(ctx, n)
	case *ast.Recur:
		out, res, err = c.checkRecur(ctx, n)
	default:
		return nil, invariantf(node.GetToken(), "unknown node kind %T", node)
	}
	if err != nil {
		return nil, err
	}

	if !propagated {
		res = c.checkBelow(node, res, expected)
	}
	return annotate(out, res), nil
}

// checkChild checks a sub-expression and returns its result.
func (c *Checker) checkChild(ctx Context, node ast.Expression, expected *props.TCResult) (ast.Expression, props.TCResult, error) {
	out, err := c.Check(ctx, node, expected)
	if err != nil {
		return nil, props.TCResult{}, err
	}
	r := out.Result()
	if r == nil {
		return nil, props.TCResult{}, invariantf(node.GetToken(), "checked %T has no result", node)
	}
	return out, *r, nil
}

// checkBelow reconciles an inferred result with the expected one.
func (c *Checker) checkBelow(node ast.Expression, actual props.TCResult, expected *props.TCResult) props.TCResult {
	if expected == nil || expected.Type == nil {
		return actual
	}
	if c.alg.Subtype(actual.Type, expected.Type) {
		return actual
	}
	c.report(diagnostics.ErrA002, node.GetToken(), "expected %s, got %s", expected.Type, actual.Type)
	return actual.WithType(expected.Type)
}

func expect(t typesystem.Type) *props.TCResult {
	if t == nil {
		return nil
	}
	r := props.NewResult(t)
	return &r
}

// truthiness derives the filters of a value of type t at object o: the
// then side is that o is not falsy, the else side that it is. A side
// collapses to Bottom when t rules it out.
func (c *Checker) truthiness(o props.Object, t typesystem.Type) props.FilterSet {
	if _, ok := t.(typesystem.TError); ok {
		return props.TopFilters
	}
	then := props.NotTypeAt(o, typesystem.Falsy)
	els := props.TypeAt(o, typesystem.Falsy)
	if c.alg.Subtype(t, typesystem.Falsy) && !typesystem.IsBottom(t) {
		then = props.Bottom
	}
	if !c.alg.Overlap(t, typesystem.Falsy) {
		els = props.Bottom
	}
	return props.FilterSet{Then: then, Else: els}
}

func (c *Checker) checkLiteral(n *ast.Literal) (ast.Expression, props.TCResult) {
	r := props.NewResult(n.Value)
	if n.Value == typesystem.NilVal || n.Value == typesystem.FalseVal {
		r.Filters = props.FalsyFilters
	} else {
		r.Filters = props.TruthyFilters
	}
	return n, r
}

func (c *Checker) checkLocalRef(ctx Context, n *ast.LocalRef) (ast.Expression, props.TCResult) {
	b, ok := ctx.Env.Lookup(n.Name)
	if !ok {
		c.report(diagnostics.ErrA001, n.Token, "unbound local %s", n.Name)
		return n, props.NewResult(typesystem.Error)
	}

	t := b.Type
	var obj props.Object = props.NewPath(n.Name)
	if alias, ok := b.Object.(props.Path); ok {
		obj = alias
		t = c.refine(ctx, alias, t)
	}
	return n, props.TCResult{Type: t, Filters: c.truthiness(obj, t), Object: obj}
}

func (c *Checker) checkAnn(ctx Context, n *ast.Ann) (ast.Expression, props.TCResult, error) {
	inner, r, err := c.checkChild(ctx, n.Expr, expect(n.Type))
	if err != nil {
		return nil, props.TCResult{}, err
	}
	cp := *n
	cp.Expr = inner
	return &cp, r.WithType(n.Type), nil
}
