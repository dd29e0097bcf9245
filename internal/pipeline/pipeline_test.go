package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/config"
	"github.com/funvibe/flowtype/internal/diagnostics"
	"github.com/funvibe/flowtype/internal/hierarchy"
	"github.com/funvibe/flowtype/internal/metrics"
)

const program = `
units:
  - name: first
    env:
      w: Any
    expr:
      if:
        test: {call: "widget?", args: [{ref: w}]}
        then: {ann: {expr: {ref: w}, type: Gadget}}
        else: {lit: 0}
  - name: second
    env:
      id: Id
    expr: {call: inc, args: [{ref: id}]}
  - name: third
    expr: {ref: nope}
`

const project = `
classes:
  - name: Widget
    final: true
globals:
  - name: widget?
    params: [Any]
    returns: Boolean
    test: Widget
aliases:
  Gadget: Widget
  Id: Integer
`

func run(t *testing.T, proj *config.Project, src string, parallel int) *PipelineContext {
	t.Helper()
	ctx := NewContext(context.Background(), "prog.yaml", []byte(src))
	ctx.Parallel = parallel
	ctx.Metrics = metrics.New()
	return New(
		&ProjectProcessor{Project: proj},
		&DecodeProcessor{},
		&CheckProcessor{},
	).Run(ctx)
}

func TestPipeline(t *testing.T) {
	proj, err := config.ParseProject([]byte(project), "flowtype.yaml")
	require.NoError(t, err)

	for _, parallel := range []int{0, 1, 3} {
		ctx := run(t, proj, program, parallel)
		require.NoError(t, ctx.Err)
		require.Len(t, ctx.Checked, 3)

		first := ctx.Checked[0].Expr.(*ast.If)
		assert.Equal(t, "Widget", first.Then.Result().Type.String())
		assert.Equal(t, "Integer", ctx.Checked[1].Env[0].Type.String())
		assert.Equal(t, "Number", ctx.Checked[1].Expr.Result().Type.String())

		require.Len(t, ctx.Errors, 1)
		assert.Equal(t, diagnostics.ErrA001, ctx.Errors[0].Code)
		assert.Equal(t, "prog.yaml", ctx.Errors[0].File)
	}
}

func TestPipelineDecodeError(t *testing.T) {
	ctx := run(t, nil, "units:\n  - expr: {bogus: 1}\n", 0)
	require.NoError(t, ctx.Err)
	assert.Nil(t, ctx.Program)
	assert.Nil(t, ctx.Checked)
	require.Len(t, ctx.Errors, 1)
	assert.Equal(t, diagnostics.ErrP001, ctx.Errors[0].Code)
}

func TestProjectErrors(t *testing.T) {
	proj, err := config.ParseProject([]byte("classes:\n  - {name: Sub, parents: [Missing]}\n"), "flowtype.yaml")
	require.NoError(t, err)
	ctx := run(t, proj, program, 0)
	require.Error(t, ctx.Err)
	assert.Nil(t, ctx.Program, "later stages must not run after a hard failure")

	var unknown *hierarchy.UnknownClassError
	assert.ErrorAs(t, ctx.Err, &unknown)

	proj, err = config.ParseProject([]byte("globals:\n  - {name: g, params: [nonsense]}\n"), "flowtype.yaml")
	require.NoError(t, err)
	ctx = run(t, proj, "units:\n  - expr: {lit: 1}\n", 0)
	require.NoError(t, ctx.Err)
	require.Len(t, ctx.Errors, 1)
	assert.Equal(t, diagnostics.ErrP001, ctx.Errors[0].Code)
	assert.Len(t, ctx.Checked, 1)
}

func TestProjectHierarchyDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "classes.db")
	store, err := hierarchy.OpenStore(context.Background(), dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), []hierarchy.Class{{Name: "Gizmo", Final: true}}))
	require.NoError(t, store.Close())

	ctx := NewContext(context.Background(), "prog.yaml", nil)
	ctx = (&ProjectProcessor{DBPath: dbPath}).Process(ctx)
	require.NoError(t, ctx.Err)
	assert.True(t, ctx.Hierarchy.IsFinal("Gizmo"))
	assert.True(t, ctx.Hierarchy.IsSubclass("Gizmo", "Object"))
}
