// Package cli implements the flowtype command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/funvibe/flowtype/internal/config"
)

// Version is the release string.
// Can be set at build time using: -ldflags "-X github.com/funvibe/flowtype/pkg/cli.Version=v1.2.3"
var Version = "dev"

// errDiagnostics makes check exit with status 1 after reporting
// diagnostics; it is not printed.
var errDiagnostics = errors.New("diagnostics reported")

const rootLongDescription = `flowtype checks annotated programs with occurrence typing: the types of
locals and of paths into them are refined by the tests a program performs.

Programs are YAML documents. A flowtype.yaml project file next to them (or
given with --config) declares extra classes, global functions, type aliases
and command defaults.`

// app holds the state shared by the commands of one invocation.
type app struct {
	v       *viper.Viper
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
	closers []io.Closer

	configPath string
	project    *config.Project
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		v:      newConfig(),
		stdin:  os.Stdin,
		stdout: stdout,
		stderr: stderr,
		logger: slog.New(slog.DiscardHandler),
	}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "flowtype",
		Short:         "Occurrence typing checker",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 && cmd.Name() == "check" {
				dir = dirOf(args[0])
			}
			if err := a.loadConfig(dir); err != nil {
				return err
			}
			a.configureLogger()
			a.logger.Debug("starting", "command", cmd.Name(), "version", Version, "config", a.v.ConfigFileUsed())
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	cmd.SetIn(a.stdin)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, configFlagName, "", "project file (default: nearest "+config.ProjectFileName+")")
	flags.String(dbFlagName, "", "class hierarchy database (overrides hierarchy_db)")
	bindFlagToConfig(a.v, flags.Lookup(dbFlagName), dbFlagName)
	flags.String(colorFlagName, defaultColor, "colour diagnostics: auto, always or never")
	bindFlagToConfig(a.v, flags.Lookup(colorFlagName), colorConfigKey)
	flags.BoolP(verboseFlagName, "v", false, "log at debug level")
	bindFlagToConfig(a.v, flags.Lookup(verboseFlagName), logVerboseKey)
	flags.String(logFileFlagName, defaultLogFilename, `log file ("none" disables logging)`)
	bindFlagToConfig(a.v, flags.Lookup(logFileFlagName), logFilenameKey)

	cmd.AddCommand(
		a.checkCmd(),
		a.overlapCmd(),
		a.classesCmd(),
		a.versionCmd(),
	)
	return cmd
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(a.stdout, "flowtype %s\n", Version)
			return nil
		},
	}
}

// Execute runs the command line and returns the process exit status.
func Execute(args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	defer a.close()

	root := a.rootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintf(stderr, "Error: %s\n", err)
		}
		return 1
	}
	return 0
}

// Run executes the command line with the process arguments and exits.
func Run() {
	os.Exit(Execute(os.Args[1:], os.Stdout, os.Stderr))
}
