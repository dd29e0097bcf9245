package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"

	"github.com/funvibe/flowtype/internal/diagnostics"
	"github.com/funvibe/flowtype/internal/metrics"
)

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// useColor resolves the --color setting against the writer.
func useColor(mode string, w io.Writer) (bool, error) {
	switch strings.ToLower(mode) {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		_, noColor := os.LookupEnv("NO_COLOR")
		return !noColor && IsTTY(w), nil
	}
	return false, fmt.Errorf("invalid --color %q (want auto, always or never)", mode)
}

// printer writes diagnostics, optionally coloured.
type printer struct {
	w     io.Writer
	color bool
}

func (p printer) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (p printer) diagnostic(d *diagnostics.DiagnosticError) {
	pos := d.Token.Pos()
	if d.File != "" {
		pos = d.File + ":" + pos
	}
	fmt.Fprintf(p.w, "%s: %s %s\n",
		p.paint(color.Bold).Sprint(pos),
		p.paint(color.FgRed, color.Bold).Sprintf("[%s]", d.Code),
		d.Message)
}

// summary prints the file count and a per-code breakdown.
func (p printer) summary(files int, diags []*diagnostics.DiagnosticError) {
	if len(diags) == 0 {
		p.paint(color.FgGreen).Fprintf(p.w, "%d file(s) checked, no diagnostics\n", files)
		return
	}
	p.paint(color.FgRed).Fprintf(p.w, "%d file(s) checked, %d diagnostic(s)\n", files, len(diags))

	counts := map[diagnostics.ErrorCode]int{}
	var codes []diagnostics.ErrorCode
	for _, d := range diags {
		if counts[d.Code] == 0 {
			codes = append(codes, d.Code)
		}
		counts[d.Code]++
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	for _, code := range codes {
		fmt.Fprintf(p.w, "  %s %-24s %d\n", code, p.paint(color.FgYellow).Sprint(code.Title()), counts[code])
	}
}

func renderTable(header []string, rows [][]string, align []int) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	if align != nil {
		table.SetColumnAlignment(align)
	}
	table.AppendBulk(rows)
	table.Render()
	return buf.String()
}

func renderStats(m *metrics.Metrics) (string, error) {
	snapshot, err := m.Snapshot()
	if err != nil {
		return "", err
	}
	rows := make([][]string, 0, len(snapshot))
	for _, r := range snapshot {
		rows = append(rows, []string{r.Name, formatValue(r.Value)})
	}
	return renderTable([]string{"Metric", "Value"}, rows, []int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT}), nil
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.6f", v)
}
