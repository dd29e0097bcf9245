package pipeline

import (
	"errors"

	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/diagnostics"
	"github.com/funvibe/flowtype/internal/typesystem"
)

// DecodeProcessor decodes ctx.Source into ctx.Program and expands type
// aliases.
type DecodeProcessor struct{}

func (dp *DecodeProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Err != nil {
		return ctx
	}
	prog, err := ast.DecodeProgram(ctx.FilePath, ctx.Source)
	if err != nil {
		var diag *diagnostics.DiagnosticError
		if errors.As(err, &diag) {
			ctx.addErrors(diag)
		} else {
			ctx.Err = err
		}
		return ctx
	}

	if len(ctx.Aliases) > 0 {
		for _, u := range prog.Units {
			expandAliases(u, ctx.Aliases)
		}
	}
	ctx.Program = prog
	ctx.Logger.Debug("decoded program", "file", ctx.FilePath, "units", len(prog.Units))
	return ctx
}

// ExpandAliases replaces every alias named in t by its definition.
func ExpandAliases(t typesystem.Type, aliases map[string]typesystem.Type) typesystem.Type {
	if t == nil {
		return nil
	}
	for name, def := range aliases {
		t = typesystem.ReplaceTCon(t, name, def)
	}
	return t
}

// expandAliases rewrites every type written in u. The unit is freshly
// decoded, so it is updated in place.
func expandAliases(u *ast.Unit, aliases map[string]typesystem.Type) {
	expand := func(t typesystem.Type) typesystem.Type {
		return ExpandAliases(t, aliases)
	}
	expandAll := func(ts []typesystem.Type) {
		for i := range ts {
			ts[i] = expand(ts[i])
		}
	}

	for i := range u.Env {
		u.Env[i].Type = expand(u.Env[i].Type)
	}
	for i := range u.Globals {
		g := &u.Globals[i]
		expandAll(g.Params)
		g.Rest = expand(g.Rest)
		g.Return = expand(g.Return)
		g.Test = expand(g.Test)
	}
	ast.Inspect(u.Expr, func(e ast.Expression) bool {
		switch n := e.(type) {
		case *ast.Ann:
			n.Type = expand(n.Type)
		case *ast.Let:
			for _, b := range n.Bindings {
				b.Declared = expand(b.Declared)
			}
		case *ast.Loop:
			for _, b := range n.Bindings {
				b.Declared = expand(b.Declared)
			}
		}
		return true
	})
}
