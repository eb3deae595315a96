package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"routesync/internal/routeconfig"
	"routesync/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-synchronize the routes file whenever it changes",
	Long: `Watch the routes file and rewrite it in canonical form after each
burst of edits. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	svc, err := env.service()
	if err != nil {
		return err
	}
	target, err := svc.Resolve()
	if err != nil {
		return err
	}

	ctx, cancel := newContext()
	defer cancel()

	// Canonicalize before watching so this write is not seen as an edit.
	if _, err := svc.Sync(ctx); err != nil {
		env.logger.Warn("Initial sync failed", "error", err)
	}

	cfg := watcher.DefaultConfig()
	cfg.DebounceMs = env.cfg.Watch.DebounceMs
	w, err := watcher.New(cfg, env.logger, syncOnChange(svc, env))
	if err != nil {
		return err
	}
	if err := w.Watch(target.Path); err != nil {
		_ = w.Stop()
		return err
	}
	if err := w.Start(ctx); err != nil {
		_ = w.Stop()
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", target.RelPath)

	<-ctx.Done()
	return w.Stop()
}

// syncOnChange returns the watcher handler. Sync only writes when the text
// changes, so the write it makes settles after one round.
func syncOnChange(svc *routeconfig.Service, env *cliEnv) watcher.ChangeHandler {
	return func(ctx context.Context, events []watcher.Event) {
		start := time.Now()
		res, err := svc.Sync(ctx)
		if err != nil {
			env.logger.Error("Sync failed", "error", err, "paths", watcher.Paths(events))
			return
		}
		env.logger.Info("Synchronized",
			"changed", res.Changed,
			"routes", res.Routes,
			"events", len(events),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	}
}
