package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/funvibe/flowtype/internal/diagnostics"
	"github.com/funvibe/flowtype/internal/metrics"
	"github.com/funvibe/flowtype/internal/pipeline"
	"github.com/funvibe/flowtype/internal/prettyprinter"
)

const checkLongDescription = `Check program files and print every expression annotated with its type,
filters and object. "-" reads a program from standard input.

Diagnostics go to standard error; the exit status is 1 when any is reported.`

// dumpConfig prints checked trees without pointer noise.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func (a *app) checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <program.yaml>...",
		Short: "Check programs",
		Long:  checkLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringP(formatFlagName, "f", defaultFormat, "output format: text, yaml or protojson")
	bindFlagToConfig(a.v, flags.Lookup(formatFlagName), formatConfigKey)
	flags.Bool(statsFlagName, false, "print engine counters after checking")
	bindFlagToConfig(a.v, flags.Lookup(statsFlagName), statsConfigKey)
	flags.Bool(dumpFlagName, false, "dump the checked trees to standard error")
	bindFlagToConfig(a.v, flags.Lookup(dumpFlagName), dumpConfigKey)
	flags.IntP(parallelFlagName, "p", defaultParallel, "units checked at once (0 is unlimited)")
	bindFlagToConfig(a.v, flags.Lookup(parallelFlagName), parallelConfigKey)
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, files []string) error {
	format, err := prettyprinter.ParseFormat(a.v.GetString(formatConfigKey))
	if err != nil {
		return err
	}
	colored, err := useColor(a.v.GetString(colorConfigKey), a.stderr)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if a.v.GetBool(statsConfigKey) {
		m = metrics.New()
	}

	var all []*diagnostics.DiagnosticError
	for i, path := range files {
		src, err := a.readProgram(path)
		if err != nil {
			return err
		}

		ctx := pipeline.NewContext(cmd.Context(), path, src)
		ctx.Parallel = a.v.GetInt(parallelConfigKey)
		ctx.Logger = a.logger.With("file", path)
		ctx.Metrics = m
		ctx = pipeline.New(
			&pipeline.ProjectProcessor{Project: a.project, DBPath: a.dbPath()},
			&pipeline.DecodeProcessor{},
			&pipeline.CheckProcessor{},
		).Run(ctx)
		if ctx.Err != nil {
			return fmt.Errorf("%s: %w", path, ctx.Err)
		}
		a.logger.Info("checked", "file", path, "units", len(ctx.Checked), "diagnostics", len(ctx.Errors))

		doc := prettyprinter.Document{File: path, Units: ctx.Checked, Diagnostics: ctx.Errors}
		if err := a.writeDocument(doc, format, i, len(files)); err != nil {
			return err
		}
		if a.v.GetBool(dumpConfigKey) {
			dumpConfig.Fdump(a.stderr, ctx.Checked)
		}
		all = append(all, ctx.Errors...)
	}

	p := printer{w: a.stderr, color: colored}
	for _, d := range all {
		p.diagnostic(d)
	}
	if m != nil {
		table, err := renderStats(m)
		if err != nil {
			return fmt.Errorf("gathering stats: %w", err)
		}
		fmt.Fprint(a.stderr, table)
	}
	p.summary(len(files), all)

	if len(all) > 0 {
		return errDiagnostics
	}
	return nil
}

func (a *app) readProgram(path string) ([]byte, error) {
	if path == "-" {
		src, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("reading standard input: %w", err)
		}
		return src, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}
	return src, nil
}

// writeDocument prints one checked file. Text output leaves diagnostics to
// the coloured report on standard error.
func (a *app) writeDocument(doc prettyprinter.Document, format prettyprinter.Format, i, n int) error {
	if format == prettyprinter.FormatText {
		if n > 1 {
			if i > 0 {
				fmt.Fprintln(a.stdout)
			}
			fmt.Fprintf(a.stdout, ";; %s\n", doc.File)
		}
		doc.Diagnostics = nil
		_, err := io.WriteString(a.stdout, prettyprinter.RenderText(doc))
		return err
	}

	out, err := prettyprinter.Render(doc, format)
	if err != nil {
		return err
	}
	if format == prettyprinter.FormatYAML && i > 0 {
		fmt.Fprintln(a.stdout, "---")
	}
	_, err = a.stdout.Write(out)
	return err
}

func dirOf(path string) string {
	if path == "-" {
		return "."
	}
	return filepath.Dir(path)
}
