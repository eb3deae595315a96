package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"routesync/internal/config"
	"routesync/internal/errors"
	"routesync/internal/paths"
	"routesync/internal/program"
	"routesync/internal/routeconfig"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that routesync can work on this project",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck is one line of the doctor report.
type doctorCheck struct {
	Name   string
	OK     bool
	Detail string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot("")
	if err != nil {
		return err
	}
	checks := diagnose(cmd, root)

	w := cmd.OutOrStdout()
	failed := 0
	for _, c := range checks {
		mark := "ok"
		if !c.OK {
			mark = "FAIL"
			failed++
		}
		fmt.Fprintf(w, "[%4s] %-14s %s\n", mark, c.Name, c.Detail)
	}
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

func diagnose(cmd *cobra.Command, root string) []doctorCheck {
	checks := []doctorCheck{{Name: "project", OK: true, Detail: root}}

	if program.IsAvailable() {
		checks = append(checks, doctorCheck{Name: "parser", OK: true, Detail: "tree-sitter available"})
	} else {
		checks = append(checks, doctorCheck{Name: "parser", Detail: "built without CGO; rebuild with CGO_ENABLED=1"})
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return append(checks, doctorCheck{Name: "config", Detail: err.Error()})
	}
	detail := config.ConfigPath(root)
	if _, err := os.Stat(detail); os.IsNotExist(err) {
		detail = "defaults (run 'routesync init' to write a config)"
	}
	checks = append(checks, doctorCheck{Name: "config", OK: true, Detail: detail})

	logger, closeLog, err := newLogger(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return append(checks, doctorCheck{Name: "log file", Detail: err.Error()})
	}
	defer closeLog()

	svc, err := routeconfig.NewFromConfig(root, cfg, logger)
	if err != nil {
		return checks
	}
	target, err := svc.Resolve()
	if err != nil {
		return append(checks, doctorCheck{Name: "routes file", Detail: err.Error()})
	}
	if !paths.IsWithinProject(target.Path, root) {
		return append(checks, doctorCheck{Name: "routes file", Detail: target.RelPath + " resolves outside the project (symlink)"})
	}
	checks = append(checks, doctorCheck{Name: "routes file", OK: true,
		Detail: fmt.Sprintf("%s (%s)", target.RelPath, target.Language)})

	ctx, cancel := newContext()
	defer cancel()
	cfgStrict := *cfg
	cfgStrict.Routes.Strict = true
	strict, err := routeconfig.NewFromConfig(root, &cfgStrict, logger)
	if err != nil {
		return checks
	}
	forest, err := strict.GetAll(ctx)
	if err != nil {
		check := doctorCheck{Name: "parse", Detail: err.Error()}
		if errors.Is(err, errors.ParseFailed) {
			check.Detail = "routes file has a syntax error: " + err.Error()
		}
		return append(checks, check)
	}
	return append(checks, doctorCheck{Name: "parse", OK: true, Detail: fmt.Sprintf("%d routes", forest.Count())})
}
