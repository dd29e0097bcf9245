package prettyprinter

import (
	"bytes"
	"strings"

	"github.com/funvibe/flowtype/internal/ast"
)

// --- Code Printer (one node per line, results as trailing comments) ---

type CodePrinter struct {
	buf    bytes.Buffer
	indent int
	column int // current column position
	// Trailing annotations start at this column when the head is shorter.
	commentColumn int
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{commentColumn: 40}
}

func NewCodePrinterWithColumn(col int) *CodePrinter {
	return &CodePrinter{commentColumn: col}
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("  ")
	}
	p.column = p.indent * 2
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
	// Track column position
	if idx := strings.LastIndex(s, "\n"); idx != -1 {
		p.column = len(s) - idx - 1
	} else {
		p.column += len(s)
	}
}

func (p *CodePrinter) writeln() {
	p.buf.WriteString("\n")
	p.column = 0
}

// line writes one node head and its result, if the node was checked.
func (p *CodePrinter) line(head string, e ast.Expression) {
	p.writeIndent()
	p.write(head)
	if e != nil {
		if r := e.Result(); r != nil {
			if p.column < p.commentColumn {
				p.write(strings.Repeat(" ", p.commentColumn-p.column))
			} else {
				p.write(" ")
			}
			if r.IsUnreachable() {
				p.write(";; unreachable")
			} else {
				p.write(";; " + r.String())
			}
		}
	}
	p.writeln()
}

func (p *CodePrinter) nested(es ...ast.Expression) {
	p.indent++
	for _, e := range es {
		if e == nil {
			p.writeIndent()
			p.write("<???>")
			p.writeln()
			continue
		}
		e.Accept(p)
	}
	p.indent--
}

func (p *CodePrinter) VisitProgram(n *ast.Program) {
	for i, u := range n.Units {
		if i > 0 {
			p.writeln()
		}
		u.Accept(p)
	}
}

func (p *CodePrinter) VisitUnit(n *ast.Unit) {
	p.writeIndent()
	p.write("unit " + n.Name)
	if len(n.Env) > 0 {
		parts := make([]string, 0, len(n.Env))
		for _, b := range n.Env {
			parts = append(parts, b.Name+": "+b.Type.String())
		}
		p.write(" [" + strings.Join(parts, ", ") + "]")
	}
	p.writeln()
	p.nested(n.Expr)
}

func (p *CodePrinter) VisitLiteral(n *ast.Literal) { p.line(n.Value.String(), n) }

func (p *CodePrinter) VisitLocalRef(n *ast.LocalRef) { p.line(n.Name, n) }

func (p *CodePrinter) VisitCall(n *ast.Call) {
	p.line("("+n.Fn+")", n)
	p.nested(n.Args...)
}

func (p *CodePrinter) VisitIf(n *ast.If) {
	p.line("if", n)
	p.nested(n.Test, n.Then)
	if n.Else != nil {
		p.nested(n.Else)
	}
}

func (p *CodePrinter) printBindings(bs []*ast.Binding) {
	p.indent++
	for _, b := range bs {
		head := b.Name
		if b.Declared != nil {
			head += ": " + b.Declared.String()
		}
		p.line(head+" =", nil)
		p.nested(b.Value)
	}
	p.indent--
}

func (p *CodePrinter) VisitLet(n *ast.Let) {
	p.line("let", n)
	p.printBindings(n.Bindings)
	p.nested(n.Body)
}

func (p *CodePrinter) VisitLoop(n *ast.Loop) {
	p.line("loop", n)
	p.printBindings(n.Bindings)
	p.nested(n.Body)
}

func (p *CodePrinter) VisitRecur(n *ast.Recur) {
	p.line("recur", n)
	p.nested(n.Args...)
}

func (p *CodePrinter) VisitThrow(n *ast.Throw) {
	p.line("throw", n)
	p.nested(n.Value)
}

func (p *CodePrinter) VisitDo(n *ast.Do) {
	p.line("do", n)
	p.nested(n.Exprs...)
}

func (p *CodePrinter) VisitAnn(n *ast.Ann) {
	p.line("ann "+n.Type.String(), n)
	p.nested(n.Expr)
}

// RenderText prints the annotated units followed by the diagnostics.
func RenderText(doc Document) string {
	p := NewCodePrinter()
	(&ast.Program{File: doc.File, Units: doc.Units}).Accept(p)
	for _, d := range doc.Diagnostics {
		p.write(d.Error())
		p.writeln()
	}
	return p.String()
}
