package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"routesync/internal/routeconfig"
)

var syncJobs int

var syncCmd = &cobra.Command{
	Use:   "sync [DIR...]",
	Short: "Rewrite routes files in canonical form",
	Long: `Sort routes and reconcile imports without changing the route tree.
Files already in canonical form are left untouched.

With directory arguments every project is synchronized concurrently;
each directory is a project root with its own configuration.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().IntVarP(&syncJobs, "jobs", "j", 4, "Projects to synchronize at once")
	rootCmd.AddCommand(syncCmd)
}

// syncOutcome is the result of synchronizing one project.
type syncOutcome struct {
	Root string
	File string
	Res  routeconfig.Result
}

func runSync(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	dirs := args
	if len(dirs) == 0 {
		dirs = []string{env.root}
	}

	ctx, cancel := newContext()
	defer cancel()

	outcomes := make([]syncOutcome, len(dirs))
	g, ctx := errgroup.WithContext(ctx)
	if syncJobs > 0 {
		g.SetLimit(syncJobs)
	}
	for i, dir := range dirs {
		i, dir := i, dir
		g.Go(func() error {
			root, err := resolveRoot(dir)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(root)
			if err != nil {
				return fmt.Errorf("%s: %w", dir, err)
			}
			svc, err := routeconfig.NewFromConfig(root, cfg, env.logger.With("project", root))
			if err != nil {
				return err
			}
			res, err := svc.Sync(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", dir, err)
			}
			target, _ := svc.Resolve()
			outcomes[i] = syncOutcome{Root: root, File: target.RelPath, Res: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, o := range outcomes {
		file := o.File
		if len(outcomes) > 1 {
			file = o.Root + ": " + file
		}
		printResult(cmd, file, o.Res)
	}
	return nil
}
