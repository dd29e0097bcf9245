package prettyprinter

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/checker"
	"github.com/funvibe/flowtype/internal/hierarchy"
	"github.com/funvibe/flowtype/internal/typesystem"
)

const program = `
units:
  - name: pick
    env:
      s: {union: [String, {val: null}]}
    expr:
      if:
        test: {ref: s}
        then: {ref: s}
        else: {throw: {lit: "missing"}}
`

func checkedDoc(t *testing.T) Document {
	t.Helper()
	prog, err := ast.DecodeProgram("pick.yaml", []byte(program))
	if err != nil {
		t.Fatal(err)
	}
	c := checker.New(typesystem.NewAlgebra(hierarchy.Default()), checker.Options{File: "pick.yaml"})
	u, err := c.CheckUnit(prog.Units[0])
	if err != nil {
		t.Fatal(err)
	}
	return Document{File: "pick.yaml", Units: []*ast.Unit{u}, Diagnostics: c.Diagnostics()}
}

func TestRenderText(t *testing.T) {
	out := RenderText(checkedDoc(t))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if lines[0] != "unit pick [s: String | nil]" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  if ") || !strings.HasSuffix(lines[1], ";; String : {(! s false | nil) | ff} : s") {
		t.Errorf("if line = %q", lines[1])
	}
	if !strings.HasSuffix(lines[4], ";; unreachable") {
		t.Errorf("throw line = %q", lines[4])
	}
	if f := strings.Fields(lines[5]); len(f) < 2 || f[0] != `"missing"` || !strings.HasSuffix(lines[5], `;; "missing" : {tt | ff} : -`) {
		t.Errorf("literal line = %q", lines[5])
	}
}

func TestRenderYAML(t *testing.T) {
	out, err := RenderYAML(checkedDoc(t))
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		File  string `yaml:"file"`
		Units []struct {
			Name string            `yaml:"name"`
			Env  map[string]string `yaml:"env"`
			Expr struct {
				Kind   string            `yaml:"kind"`
				Pos    string            `yaml:"pos"`
				Result map[string]string `yaml:"result"`
			} `yaml:"expr"`
		} `yaml:"units"`
	}
	if err := yaml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output is not yaml: %v\n%s", err, out)
	}
	if doc.File != "pick.yaml" || len(doc.Units) != 1 {
		t.Fatalf("unexpected document:\n%s", out)
	}
	u := doc.Units[0]
	if u.Env["s"] != "String | nil" || u.Expr.Kind != "if" || u.Expr.Pos != "7:7" {
		t.Errorf("unexpected unit: %+v", u)
	}
	if u.Expr.Result["type"] != "String" || u.Expr.Result["object"] != "s" {
		t.Errorf("result = %v", u.Expr.Result)
	}
	// Key order follows the tree, not the alphabet.
	if i, j := strings.Index(string(out), "file:"), strings.Index(string(out), "units:"); i > j {
		t.Errorf("file must come before units:\n%s", out)
	}
}

func TestRenderProtoJSON(t *testing.T) {
	out, err := Render(checkedDoc(t), FormatProtoJSON)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output is not json: %v\n%s", err, out)
	}
	units := doc["units"].([]interface{})
	expr := units[0].(map[string]interface{})["expr"].(map[string]interface{})
	then := expr["then"].(map[string]interface{})
	if then["result"].(map[string]interface{})["type"] != "String" {
		t.Errorf("then = %v", then)
	}
	els := expr["else"].(map[string]interface{})
	if els["result"].(map[string]interface{})["unreachable"] != true {
		t.Errorf("else = %v", els)
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "yaml", "protojson"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("%s: %v", s, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected an error for xml")
	}
}
