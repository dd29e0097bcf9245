package pipeline

import (
	"context"
	"log/slog"

	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/checker"
	"github.com/funvibe/flowtype/internal/diagnostics"
	"github.com/funvibe/flowtype/internal/hierarchy"
	"github.com/funvibe/flowtype/internal/metrics"
	"github.com/funvibe/flowtype/internal/typesystem"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries one program document through the stages.
type PipelineContext struct {
	Context  context.Context
	FilePath string
	Source   []byte

	// Set up by ProjectProcessor; defaults are used when absent.
	Hierarchy *hierarchy.Hierarchy
	Globals   map[string]checker.FnSig
	Aliases   map[string]typesystem.Type

	Program *ast.Program // Decoded input
	Checked []*ast.Unit  // Annotated units, in input order

	Parallel int // Units checked at once; <= 0 means unlimited
	Logger   *slog.Logger
	Metrics  *metrics.Metrics

	Errors []*diagnostics.DiagnosticError // Soft diagnostics of all stages
	Err    error                          // Hard failure; later stages do nothing
}

func NewContext(ctx context.Context, filePath string, source []byte) *PipelineContext {
	return &PipelineContext{
		Context:  ctx,
		FilePath: filePath,
		Source:   source,
		Logger:   slog.New(slog.DiscardHandler),
	}
}

// Algebra is the type algebra over the configured hierarchy.
func (c *PipelineContext) Algebra() *typesystem.Algebra {
	h := c.Hierarchy
	if h == nil {
		h = hierarchy.Default()
	}
	return typesystem.NewAlgebra(h)
}

func (c *PipelineContext) addErrors(errs ...*diagnostics.DiagnosticError) {
	c.Errors = append(c.Errors, errs...)
}
