package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProject(t *testing.T) {
	src := `
hierarchy_db: classes.db
classes:
  - name: Widget
    parents: [Object]
    final: true
  - name: Shape
    interface: true
globals:
  - name: widget?
    params: [Any]
    test: Widget
aliases:
  Id: Integer
`
	p, err := ParseProject([]byte(src), "/work/flowtype.yaml")
	require.NoError(t, err)

	assert.Equal(t, "/work/classes.db", p.Resolve(p.HierarchyDB))
	require.Len(t, p.Classes, 2)
	assert.Equal(t, ClassSpec{Name: "Widget", Parents: []string{"Object"}, Final: true}, p.Classes[0])
	assert.True(t, p.Classes[1].Interface)
	require.Len(t, p.Globals, 1)
	assert.Equal(t, 10, p.Globals[0].Line)
	require.Contains(t, p.Aliases, "Id")
	assert.Equal(t, "Integer", p.Aliases["Id"].Value)
}

func TestParseProjectErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unnamed class", "classes:\n  - parents: [Object]\n", "name is required"},
		{"duplicate class", "classes:\n  - name: A\n  - name: A\n", "duplicate class A"},
		{"final interface", "classes:\n  - {name: A, final: true, interface: true}\n", "mutually exclusive"},
		{"self parent", "classes:\n  - {name: A, parents: [A]}\n", "cannot extend itself"},
		{"scalar global", "globals:\n  - inc\n", "expected a mapping"},
		{"alias shadows class", "classes:\n  - name: A\naliases:\n  A: Integer\n", "shadows a declared class"},
		{"bad yaml", "classes: [\n", "parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProject([]byte(tt.src), "flowtype.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFindProject(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, err := FindProject(nested)
	require.NoError(t, err)
	assert.Empty(t, path)

	want := filepath.Join(root, ProjectFileName)
	require.NoError(t, os.WriteFile(want, []byte("classes: []\n"), 0o644))

	path, err = FindProject(nested)
	require.NoError(t, err)
	assert.Equal(t, want, path)

	p, err := LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, want, p.Path)
	assert.Equal(t, "rel.db", (&Project{}).Resolve("rel.db"))
}
