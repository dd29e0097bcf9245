package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/pipeline"
	"github.com/funvibe/flowtype/internal/typesystem"
)

const overlapLongDescription = `Decode two types written in the program type syntax and report whether
they overlap and whether either is a subtype of the other. Project classes
and aliases are in scope.

  flowtype overlap '{union: [String, {val: nil}]}' CharSequence`

func (a *app) overlapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overlap <type> <type>",
		Short: "Compare two types",
		Long:  overlapLongDescription,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := pipeline.NewContext(cmd.Context(), "", nil)
			ctx.Logger = a.logger
			ctx = (&pipeline.ProjectProcessor{Project: a.project, DBPath: a.dbPath()}).Process(ctx)
			if ctx.Err != nil {
				return ctx.Err
			}
			if len(ctx.Errors) > 0 {
				return ctx.Errors[0]
			}

			types := make([]typesystem.Type, 2)
			for i, arg := range args {
				t, err := ast.DecodeType([]byte(arg))
				if err != nil {
					return fmt.Errorf("type %d: %w", i+1, err)
				}
				types[i] = pipeline.ExpandAliases(t, ctx.Aliases)
			}

			alg := ctx.Algebra()
			s, t := types[0], types[1]
			fmt.Fprintf(a.stdout, "%s\n%s\n", s, t)
			fmt.Fprintf(a.stdout, "overlap: %t\n", alg.Overlap(s, t))
			fmt.Fprintf(a.stdout, "first <: second: %t\n", alg.Subtype(s, t))
			fmt.Fprintf(a.stdout, "second <: first: %t\n", alg.Subtype(t, s))
			fmt.Fprintf(a.stdout, "intersection: %s\n", alg.Intersect(s, t))
			return nil
		},
	}
}
