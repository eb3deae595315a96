package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"routesync/internal/config"
	"routesync/internal/errors"
	"routesync/internal/paths"
	"routesync/internal/project"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize routesync in a project",
	Long: `Creates .routesync/config.json with the default configuration and, when
no routes file can be found, an empty routes module at config/routes.ts
(TypeScript projects) or config/routes.js.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}

const skeletonRoutes = `const routes = [];

export default routes;
`

func runInit(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot("")
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	configPath := config.ConfigPath(root)
	cfg := config.DefaultConfig()
	if _, statErr := os.Stat(configPath); statErr == nil && !initForce {
		// Already initialized is success.
		fmt.Fprintf(w, "routesync already initialized at %s\n", configPath)
		fmt.Fprintln(w, "Run 'routesync init --force' to overwrite the configuration.")
		existing, err := loadConfig(root)
		if err != nil {
			return err
		}
		cfg = existing
	} else {
		if err := cfg.Save(root); err != nil {
			return errors.New(errors.WriteFailed, "failed to write configuration", err)
		}
		fmt.Fprintf(w, "Configuration written to %s\n", configPath)
	}

	rel, created, err := ensureRoutesFile(root, cfg)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(w, "Created %s\n", rel)
	} else {
		fmt.Fprintf(w, "Using routes file %s\n", rel)
	}

	fmt.Fprintln(w, "\nNext steps:")
	fmt.Fprintln(w, "  routesync add --path / --component Home")
	fmt.Fprintln(w, "  routesync list")
	return nil
}

// ensureRoutesFile returns the routes file of the project, creating an
// empty one when neither the configuration nor detection finds it.
func ensureRoutesFile(root string, cfg *config.Config) (rel string, created bool, err error) {
	rel = cfg.Routes.File
	if rel == "" {
		if found, ok := project.DetectRoutesFile(root); ok {
			return found.Path, false, nil
		}
		rel = project.DefaultRoutesFile(root).Path
	}

	full, err := paths.ResolveInProject(root, rel)
	if err != nil {
		return "", false, errors.New(errors.ConfigInvalid, "invalid routes file", err)
	}
	if _, err := os.Stat(full); err == nil {
		return rel, false, nil
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", false, errors.New(errors.WriteFailed, "failed to create "+filepath.Dir(rel), err)
	}
	content := skeletonRoutes
	if cfg.Routes.Name != "routes" {
		content = fmt.Sprintf("const %[1]s = [];\n\nexport default %[1]s;\n", cfg.Routes.Name)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		return "", false, errors.New(errors.WriteFailed, "failed to write "+rel, err)
	}
	return rel, true, nil
}
