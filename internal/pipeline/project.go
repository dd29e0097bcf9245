package pipeline

import (
	"errors"
	"fmt"

	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/checker"
	"github.com/funvibe/flowtype/internal/config"
	"github.com/funvibe/flowtype/internal/diagnostics"
	"github.com/funvibe/flowtype/internal/hierarchy"
	"github.com/funvibe/flowtype/internal/typesystem"
)

// ProjectProcessor applies a flowtype.yaml project: extra classes (from the
// file and from its hierarchy database), shared globals and type aliases.
type ProjectProcessor struct {
	Project *config.Project
	// DBPath overrides the project's hierarchy_db when set.
	DBPath string
}

func (pp *ProjectProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Err != nil {
		return ctx
	}
	p := pp.Project
	if p == nil {
		p = &config.Project{}
	}

	classes := make([]hierarchy.Class, 0, len(p.Classes))
	for _, c := range p.Classes {
		classes = append(classes, hierarchy.Class{Name: c.Name, Parents: c.Parents, Final: c.Final, Interface: c.Interface})
	}

	dbPath := pp.DBPath
	if dbPath == "" {
		dbPath = p.Resolve(p.HierarchyDB)
	}
	if dbPath != "" {
		stored, err := loadStore(ctx, dbPath)
		if err != nil {
			ctx.Err = err
			return ctx
		}
		classes = append(stored, classes...)
	}

	base := ctx.Hierarchy
	if base == nil {
		base = hierarchy.Default()
	}
	if len(classes) > 0 {
		h, err := base.With(classes...)
		if err != nil {
			ctx.Err = fmt.Errorf("project %s: %w", p.Path, err)
			return ctx
		}
		base = h
	}
	ctx.Hierarchy = base

	if ctx.Globals == nil {
		ctx.Globals = make(map[string]checker.FnSig)
	}
	for i := range p.Globals {
		g, err := ast.DecodeGlobalNode(p.Path, &p.Globals[i])
		if err != nil {
			pp.fail(ctx, err)
			continue
		}
		sig, err := checker.SigFromDecl(g)
		if err != nil {
			ctx.addErrors(diagnostics.NewError(diagnostics.ErrP001, g.Token, err.Error()))
			continue
		}
		ctx.Globals[g.Name] = sig
	}

	if ctx.Aliases == nil {
		ctx.Aliases = make(map[string]typesystem.Type)
	}
	for name, n := range p.Aliases {
		n := n
		t, err := ast.DecodeTypeNode(p.Path, &n)
		if err != nil {
			pp.fail(ctx, err)
			continue
		}
		ctx.Aliases[name] = t
	}

	ctx.Logger.Debug("project applied", "path", p.Path, "classes", len(classes), "globals", len(ctx.Globals), "aliases", len(ctx.Aliases))
	return ctx
}

// fail records a decode error as a diagnostic when it is one.
func (pp *ProjectProcessor) fail(ctx *PipelineContext, err error) {
	var diag *diagnostics.DiagnosticError
	if errors.As(err, &diag) {
		ctx.addErrors(diag)
		return
	}
	ctx.Err = err
}

func loadStore(ctx *PipelineContext, path string) ([]hierarchy.Class, error) {
	store, err := hierarchy.OpenStore(ctx.Context, path)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Load(ctx.Context)
}
