package checker

import (
	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/diagnostics"
	"github.com/funvibe/flowtype/internal/env"
	"github.com/funvibe/flowtype/internal/props"
	"github.com/funvibe/flowtype/internal/typesystem"
)

func (c *Checker) checkLet(ctx Context, n *ast.Let, expected *props.TCResult) (ast.Expression, props.TCResult, error) {
	bindings, body, res, err := c.checkBindings(ctx, n.Bindings, n.Body, nil, expected)
	if err != nil {
		return nil, props.TCResult{}, err
	}
	cp := *n
	cp.Bindings = bindings
	cp.Body = body
	return &cp, res, nil
}

func (c *Checker) checkLoop(ctx Context, n *ast.Loop, expected *props.TCResult) (ast.Expression, props.TCResult, error) {
	target := &RecurTarget{Domain: make([]typesystem.Type, len(n.Bindings))}
	for i, b := range n.Bindings {
		if b.Declared == nil {
			c.report(diagnostics.ErrA003, b.Token, "loop binding %s needs a type annotation", b.Name)
			target.Domain[i] = typesystem.Error
			continue
		}
		target.Domain[i] = b.Declared
	}

	bindings, body, res, err := c.checkBindings(ctx, n.Bindings, n.Body, target, expected)
	if err != nil {
		return nil, props.TCResult{}, err
	}
	cp := *n
	cp.Bindings = bindings
	cp.Body = body
	return &cp, res, nil
}

// checkBindings folds the bindings left to right over one environment,
// then checks the body. A non-nil target makes this a loop: binding values
// are checked against the target domain and the body may recur to it.
// Every bound name is erased from the body's result on exit.
func (c *Checker) checkBindings(ctx Context, bindings []*ast.Binding, body ast.Expression, target *RecurTarget, expected *props.TCResult) ([]*ast.Binding, ast.Expression, props.TCResult, error) {
	if target != nil && len(target.Domain) != len(bindings) {
		return nil, nil, props.TCResult{}, invariantf(ctx.tokenOr(), "loop has %d bindings but %d recur parameters", len(bindings), len(target.Domain))
	}

	cur := ctx.Env
	reachable := true
	out := make([]*ast.Binding, 0, len(bindings))
	names := make([]string, 0, len(bindings))

	for i, b := range bindings {
		nb := *b
		names = append(names, b.Name)
		if !reachable {
			c.metrics.BindingUnreachable()
			nb.Value = c.skip(b.Value)
			out = append(out, &nb)
			continue
		}

		declared := b.Declared
		if target != nil {
			declared = target.Domain[i]
		}
		val, res, err := c.checkChild(ctx.WithEnv(cur).nonTail(), b.Value, expect(declared))
		if err != nil {
			return nil, nil, props.TCResult{}, err
		}
		nb.Value = val
		out = append(out, &nb)

		var ok bool
		cur, ok = c.bind(cur, b.Name, declared, res)
		if !ok {
			c.metrics.NarrowContradiction()
			c.logger.Debug("binding makes the rest unreachable", "name", b.Name, "pos", b.Token.Pos())
			reachable = false
		}
	}

	if len(out) != len(bindings) {
		return nil, nil, props.TCResult{}, invariantf(ctx.tokenOr(), "checked %d of %d bindings", len(out), len(bindings))
	}

	var (
		bodyOut ast.Expression
		res     props.TCResult
	)
	if reachable {
		bodyCtx := ctx.WithEnv(cur)
		if target != nil {
			bodyCtx = bodyCtx.WithRecur(target)
		}
		var err error
		bodyOut, res, err = c.checkChild(bodyCtx, body, expected)
		if err != nil {
			return nil, nil, props.TCResult{}, err
		}
	} else {
		bodyOut = c.skip(body)
		res = props.Unreachable()
	}

	return out, bodyOut, props.EraseResult(res, props.Names(names...)), nil
}

// bind introduces name with the value's result into e. A value that
// refers to an outer binding of the same name is first made independent
// of it. The bool is false when the binding contradicts e.
func (c *Checker) bind(e env.PropEnv, name string, declared typesystem.Type, val props.TCResult) (env.PropEnv, bool) {
	self := props.Names(name)
	if props.ResultMentions(val, self) {
		val = props.EraseResult(val, self)
	}

	t := val.Type
	if declared != nil {
		t = declared
	}

	var p props.Prop
	switch {
	case !props.IsEmpty(val.Object):
		p = props.Top
	case !c.alg.Overlap(val.Type, typesystem.Falsy):
		p = val.Filters.Then
	default:
		x := props.NewPath(name)
		p = props.Or(
			props.And(props.NotTypeAt(x, typesystem.Falsy), val.Filters.Then),
			props.And(props.TypeAt(x, typesystem.Falsy), val.Filters.Else))
	}

	e = e.Extend(name, t, val.Object)
	return env.Narrow(c.alg, e, p)
}
