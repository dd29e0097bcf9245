package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/checker"
	"github.com/funvibe/flowtype/internal/diagnostics"
)

// CheckProcessor checks every unit of ctx.Program, several at once. Each
// unit gets its own Checker. A hard failure in one unit cancels the units
// not yet started.
type CheckProcessor struct{}

func (cp *CheckProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Err != nil || ctx.Program == nil {
		return ctx
	}
	parent := ctx.Context
	if parent == nil {
		parent = context.Background()
	}

	alg := ctx.Algebra()
	units := ctx.Program.Units
	checked := make([]*ast.Unit, len(units))
	diags := make([][]*diagnostics.DiagnosticError, len(units))

	g, gctx := errgroup.WithContext(parent)
	if ctx.Parallel > 0 {
		g.SetLimit(ctx.Parallel)
	}
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c := checker.New(alg, checker.Options{
				File:    ctx.FilePath,
				Globals: ctx.Globals,
				Logger:  ctx.Logger.With("unit", u.Name),
				Metrics: ctx.Metrics,
			})
			out, err := c.CheckUnit(u)
			if err != nil {
				return err
			}
			checked[i] = out
			diags[i] = c.Diagnostics()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		ctx.Err = err
		return ctx
	}

	set := &diagnostics.Set{}
	for _, ds := range diags {
		for _, d := range ds {
			set.Add(d)
		}
	}
	ctx.Checked = checked
	ctx.addErrors(set.Sorted()...)
	return ctx
}
