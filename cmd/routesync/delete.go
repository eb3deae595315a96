package main

import (
	"fmt"

	"github.com/agnivade/levenshtein"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <Component>",
	Aliases: []string{"rm"},
	Short:   "Delete the page routes bound to a component",
	Long: `Delete every page route whose component is <Component>, at any depth.
Layout routes are kept; only their children are filtered. The import of
the component is removed once nothing references it.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	component := args[0]

	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	svc, err := env.service()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	removed, res, err := svc.Delete(ctx, component)
	if err != nil {
		return err
	}
	target, _ := svc.Resolve()

	w := cmd.OutOrStdout()
	if len(removed) == 0 {
		fmt.Fprintf(w, "No page route uses %s.\n", component)
		if names, err := svc.Components(ctx); err == nil {
			if s := suggest(component, names); s != "" {
				fmt.Fprintf(w, "Did you mean %s?\n", s)
			}
		}
	} else {
		for _, p := range removed {
			fmt.Fprintf(w, "Removed %s\n", p)
		}
	}
	printResult(cmd, target.RelPath, res)
	return nil
}

// suggest returns the candidate closest to name, or "" when none is close
// enough to be a plausible typo.
func suggest(name string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		if c == name {
			continue
		}
		d := levenshtein.ComputeDistance(name, c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	limit := len(name) / 3
	if limit < 2 {
		limit = 2
	}
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}
