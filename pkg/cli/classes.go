package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/funvibe/flowtype/internal/hierarchy"
)

var errNoDB = errors.New("no class database: use --db or set hierarchy_db in the project file")

func (a *app) classesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "Inspect and edit the class hierarchy database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List built-in, project and stored classes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.listClasses(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "import <classes.yaml>",
			Short: "Store the classes of a YAML class list",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.importClasses(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "delete <name>...",
			Short: "Remove stored classes",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.deleteClasses(cmd.Context(), args)
			},
		},
	)
	return cmd
}

func (a *app) withStore(ctx context.Context, fn func(*hierarchy.Store) error) error {
	path := a.dbPath()
	if path == "" {
		return errNoDB
	}
	store, err := hierarchy.OpenStore(ctx, path)
	if err != nil {
		return err
	}
	if err := fn(store); err != nil {
		store.Close()
		return err
	}
	return store.Close()
}

func (a *app) listClasses(ctx context.Context) error {
	source := map[string]string{}
	for _, c := range hierarchy.Builtins() {
		source[c.Name] = "builtin"
	}
	var extra []hierarchy.Class
	if path := a.dbPath(); path != "" {
		err := a.withStore(ctx, func(s *hierarchy.Store) error {
			stored, err := s.Load(ctx)
			for _, c := range stored {
				source[c.Name] = "db"
			}
			extra = stored
			return err
		})
		if err != nil {
			return err
		}
	}
	if a.project != nil {
		for _, c := range a.project.Classes {
			source[c.Name] = "project"
			extra = append(extra, hierarchy.Class{Name: c.Name, Parents: c.Parents, Final: c.Final, Interface: c.Interface})
		}
	}

	h, err := hierarchy.Default().With(extra...)
	if err != nil {
		return err
	}
	classes := h.Classes()
	rows := make([][]string, 0, len(classes))
	for _, c := range classes {
		rows = append(rows, []string{c.Name, strings.Join(c.Parents, ", "), classFlags(c), source[c.Name]})
	}
	fmt.Fprint(a.stdout, renderTable([]string{"Class", "Parents", "Flags", "Source"}, rows, nil))
	return nil
}

func classFlags(c hierarchy.Class) string {
	var flags []string
	if c.Final {
		flags = append(flags, "final")
	}
	if c.Interface {
		flags = append(flags, "interface")
	}
	return strings.Join(flags, ",")
}

// importClasses stores a class list after checking that it forms a valid
// hierarchy together with what is already stored.
func (a *app) importClasses(ctx context.Context, file string) error {
	classes, err := hierarchy.LoadFile(file)
	if err != nil {
		return err
	}
	return a.withStore(ctx, func(s *hierarchy.Store) error {
		stored, err := s.Load(ctx)
		if err != nil {
			return err
		}
		if _, err := hierarchy.Default().With(append(stored, classes...)...); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if err := s.Save(ctx, classes); err != nil {
			return err
		}
		a.logger.Info("imported classes", "file", file, "count", len(classes), "db", a.dbPath())
		fmt.Fprintf(a.stdout, "imported %d class(es) into %s\n", len(classes), a.dbPath())
		return nil
	})
}

// deleteClasses removes stored classes unless a remaining class still
// names one of them as a parent.
func (a *app) deleteClasses(ctx context.Context, names []string) error {
	return a.withStore(ctx, func(s *hierarchy.Store) error {
		stored, err := s.Load(ctx)
		if err != nil {
			return err
		}
		gone := map[string]bool{}
		for _, n := range names {
			gone[n] = true
		}
		var kept []hierarchy.Class
		found := map[string]bool{}
		for _, c := range stored {
			if gone[c.Name] {
				found[c.Name] = true
				continue
			}
			kept = append(kept, c)
		}
		for _, n := range names {
			if !found[n] {
				return fmt.Errorf("class %s is not stored", n)
			}
		}
		if _, err := hierarchy.Default().With(kept...); err != nil {
			return fmt.Errorf("deleting %s: %w", strings.Join(names, ", "), err)
		}
		for _, n := range names {
			if err := s.Delete(ctx, n); err != nil {
				return err
			}
		}
		fmt.Fprintf(a.stdout, "deleted %d class(es) from %s\n", len(names), a.dbPath())
		return nil
	})
}
