package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"routesync/internal/config"
	"routesync/internal/errors"
	"routesync/internal/project"
	"routesync/internal/routeconfig"
	"routesync/internal/slogutil"
	"routesync/internal/version"
)

var (
	projectFlag  string
	verboseCount int
	quietFlag    bool
	logFileFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "routesync",
	Short: "routesync - keep route configuration files in order",
	Long: `routesync reads, edits and rewrites the route table of a JavaScript or
TypeScript web application. Every edit re-sorts routes by path specificity
and keeps the layout and page imports in step with the routes that use them.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("routesync version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "C", "",
		"Project root (default: nearest directory with package.json or .routesync)")
	rootCmd.PersistentFlags().CountVarP(&verboseCount, "verbose", "v", "Increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "Also append debug logs to this file")
}

// cliEnv is the per-invocation state shared by commands.
type cliEnv struct {
	root   string
	cfg    *config.Config
	logger *slog.Logger
	close  func()
}

// resolveRoot returns the project root for dir, honoring --project.
func resolveRoot(dir string) (string, error) {
	if dir == "" {
		dir = projectFlag
	}
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", errors.New(errors.InvalidInput, "invalid project directory", err)
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			return "", errors.New(errors.InvalidInput, "project directory does not exist: "+abs, err)
		}
		return abs, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.New(errors.InternalError, "failed to get current directory", err)
	}
	return project.FindRoot(cwd), nil
}

// loadConfig loads the project configuration, mapping failures to CONFIG_INVALID.
func loadConfig(root string) (*config.Config, error) {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "cannot load "+config.ConfigPath(root), err)
	}
	return cfg, nil
}

// newLogger builds the stderr logger and, with --log-file, tees into a file
// at debug level.
func newLogger(stderr io.Writer, cfg *config.Config) (*slog.Logger, func(), error) {
	level := slogutil.ResolveLevel(cfg.Logging.Level, verboseCount, quietFlag)
	console := slogutil.NewLineHandler(stderr, &slog.HandlerOptions{Level: level})
	if logFileFlag == "" {
		return slog.New(console), func() {}, nil
	}

	fileLogger, f, err := slogutil.NewFileLogger(logFileFlag, slog.LevelDebug)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := slog.New(slogutil.NewTeeHandler(console, fileLogger.Handler()))
	return logger, func() { _ = f.Close() }, nil
}

// setup resolves the project, loads its configuration and builds the logger.
func setup(cmd *cobra.Command) (*cliEnv, error) {
	root, err := resolveRoot("")
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := newLogger(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded configuration", "root", root, "configPath", config.ConfigPath(root))
	return &cliEnv{root: root, cfg: cfg, logger: logger, close: closeLog}, nil
}

func (e *cliEnv) service() (*routeconfig.Service, error) {
	return routeconfig.NewFromConfig(e.root, e.cfg, e.logger)
}

// newContext returns a context cancelled on SIGINT or SIGTERM.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// printError writes err and, for RouteErrors, the suggested fixes.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	re, ok := errors.As(err)
	if !ok || len(re.SuggestedFixes) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSuggested fixes:")
	for _, fix := range re.SuggestedFixes {
		switch {
		case fix.Command != "":
			fmt.Fprintf(w, "  $ %s\n", fix.Command)
			if fix.Description != "" {
				fmt.Fprintf(w, "    %s\n", fix.Description)
			}
		case fix.File != "":
			fmt.Fprintf(w, "  edit %s: %s\n", fix.File, fix.Description)
		default:
			fmt.Fprintf(w, "  %s\n", fix.Description)
		}
	}
}
