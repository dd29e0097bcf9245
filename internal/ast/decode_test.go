package ast

import (
	"errors"
	"testing"

	"github.com/funvibe/flowtype/internal/diagnostics"
)

const sampleProgram = `
units:
  - name: sample
    env:
      v: {class: Number}
      s: {union: [String, {val: null}]}
    globals:
      - name: parity?
        params: [Number]
        returns: Boolean
    expr:
      let:
        bindings:
          - name: x
            value: {call: "parity?", args: [{ref: v}]}
        body:
          if:
            test: {ref: x}
            then: {do: [{lit: 1}, {keyword: done}]}
            else:
              loop:
                bindings:
                  - {name: i, value: {lit: 0}, type: Integer}
                body:
                  if:
                    test: {ref: s}
                    then: {recur: [{lit: 1}]}
                    else: {throw: {lit: "boom"}}
  - name: annotated
    expr: {ann: {expr: {lit: true}, type: Boolean}}
`

func TestDecodeProgram(t *testing.T) {
	prog, err := DecodeProgram("sample.yaml", []byte(sampleProgram))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(prog.Units) != 2 {
		t.Fatalf("got %d units, want 2", len(prog.Units))
	}

	u := prog.Units[0]
	if u.Name != "sample" || len(u.Env) != 2 || len(u.Globals) != 1 {
		t.Fatalf("unexpected unit header: %+v", u)
	}
	if u.Env[0].Name != "v" || u.Env[1].Type.String() != "String | nil" {
		t.Errorf("env decoded out of order: %s=%s, %s=%s", u.Env[0].Name, u.Env[0].Type, u.Env[1].Name, u.Env[1].Type)
	}
	if g := u.Globals[0]; g.Name != "parity?" || g.Return.String() != "Boolean" || len(g.Params) != 1 {
		t.Errorf("unexpected global: %+v", g)
	}

	let, ok := u.Expr.(*Let)
	if !ok {
		t.Fatalf("expr is %T, want *Let", u.Expr)
	}
	if let.Token.Line != 12 {
		t.Errorf("let token line = %d, want 12", let.Token.Line)
	}
	call, ok := let.Bindings[0].Value.(*Call)
	if !ok || call.Fn != "parity?" || len(call.Args) != 1 {
		t.Fatalf("unexpected binding value %#v", let.Bindings[0].Value)
	}

	ifExpr := let.Body.(*If)
	// Structural forms sit at their key, references at the name scalar.
	if ifExpr.Token.Column != 11 {
		t.Errorf("if token column = %d, want 11", ifExpr.Token.Column)
	}
	if ref := ifExpr.Test.(*LocalRef); ref.Token.Line != 18 || ref.Token.Column != 25 {
		t.Errorf("ref token at %s, want 18:25", ref.Token.Pos())
	}
	do := ifExpr.Then.(*Do)
	if got := do.Exprs[1].(*Literal).Value.String(); got != ":done" {
		t.Errorf("keyword literal = %s", got)
	}
	loop := ifExpr.Else.(*Loop)
	if loop.Bindings[0].Declared.String() != "Integer" {
		t.Errorf("loop annotation = %v", loop.Bindings[0].Declared)
	}
	inner := loop.Body.(*If)
	if _, ok := inner.Then.(*Recur); !ok {
		t.Errorf("then is %T, want *Recur", inner.Then)
	}
	if thr, ok := inner.Else.(*Throw); !ok || thr.Value.(*Literal).Value.String() != `"boom"` {
		t.Errorf("else is %#v", inner.Else)
	}

	count := 0
	Inspect(u.Expr, func(Expression) bool { count++; return true })
	if count != 16 {
		t.Errorf("Inspect visited %d nodes, want 16", count)
	}

	if _, ok := prog.Units[1].Expr.(*Ann); !ok {
		t.Errorf("second unit is %T, want *Ann", prog.Units[1].Expr)
	}
}

func TestDecodeType(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"any", "Any"},
		{"Number", "Number"},
		{"{class: Widget, module: ui}", "ui.Widget"},
		{"{val: 3}", "3"},
		{"{val: null}", "nil"},
		{"{val: false}", "false"},
		{`{val: "s"}`, `"s"`},
		{"{keyword: k}", ":k"},
		{"{union: [String, Number, String]}", "Number | String"},
		{"{intersection: [Number, Comparable]}", "Comparable & Number"},
		{"{app: Seq, args: [Number]}", "Seq<Number>"},
		{"{tuple: [Number, String], rest: Keyword}", "[Number, String, Keyword...]"},
		{"{record: {a: Number}, optional: {b: String}, complete: true}", "{a: Number, b?: String}"},
		{"{record: {a: Number}}", "{a: Number, ...}"},
		{"{kwargs: {}, optional: {a: Number}}", "KwArgs{:a?: Number, ...}"},
		{"{count: {lower: 1, upper: 3}}", "CountRange<1, 3>"},
		{"{count: {lower: 2}}", "CountRange<2>"},
		{"{fn: [Number], returns: Boolean}", "(Number) -> Boolean"},
		{"{var: a, bound: Number}", "a"},
	}
	for _, tt := range tests {
		got, err := DecodeType([]byte(tt.src))
		if err != nil {
			t.Errorf("%s: %v", tt.src, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("%s: got %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"unknown form", "units:\n  - expr: {lambda: x}\n", 2},
		{"ambiguous form", "units:\n  - expr: {ref: x, lit: 1}\n", 2},
		{"stray key", "units:\n  - expr: {call: f, argz: []}\n", 2},
		{"if without then", "units:\n  - expr:\n      if: {test: {lit: 1}}\n", 3},
		{"bad type", "units:\n  - env: {x: number}\n    expr: {ref: x}\n", 2},
		{"count bounds", "units:\n  - env:\n      x: {count: {lower: 3, upper: 1}}\n    expr: {ref: x}\n", 3},
		{"missing expr", "units:\n  - name: u\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeProgram("bad.yaml", []byte(tt.src))
			if err == nil {
				t.Fatalf("expected an error")
			}
			var diag *diagnostics.DiagnosticError
			if !errors.As(err, &diag) {
				t.Fatalf("error %v is not a diagnostic", err)
			}
			if diag.Code != diagnostics.ErrP001 {
				t.Errorf("code = %s, want P001", diag.Code)
			}
			if diag.Token.Line != tt.line {
				t.Errorf("line = %d, want %d (%s)", diag.Token.Line, tt.line, diag.Message)
			}
			if diag.File != "bad.yaml" {
				t.Errorf("file = %q", diag.File)
			}
		})
	}
}
