package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"routesync/internal/config"
)

var configFormat string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect routesync configuration",
	Long:  "View the configuration stored in .routesync/config.json and its environment overrides",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration after defaults and environment overrides.

Examples:
  routesync config show
  routesync config show --format json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "List supported environment variables",
	Args:  cobra.NoArgs,
	RunE:  runConfigEnv,
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "human", "Output format (human, json)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEnvCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigShowResponse is the response format for config show
type ConfigShowResponse struct {
	ConfigPath   string         `json:"configPath"`
	UsedDefaults bool           `json:"usedDefaults"`
	EnvOverrides []string       `json:"envOverrides,omitempty"`
	Config       *config.Config `json:"config"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot("")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	resp := ConfigShowResponse{
		ConfigPath:   config.ConfigPath(root),
		EnvOverrides: envOverrides(),
		Config:       cfg,
	}
	if _, err := os.Stat(resp.ConfigPath); os.IsNotExist(err) {
		resp.UsedDefaults = true
	}

	w := cmd.OutOrStdout()
	if configFormat == "json" {
		out, err := formatJSON(resp)
		if err != nil {
			return err
		}
		fmt.Fprint(w, out)
		return nil
	}

	fmt.Fprintln(w, "routesync configuration")
	fmt.Fprintln(w, strings.Repeat("─", 50))
	if resp.UsedDefaults {
		fmt.Fprintf(w, "Source: defaults (%s not found)\n", resp.ConfigPath)
	} else {
		fmt.Fprintf(w, "Source: %s\n", resp.ConfigPath)
	}
	if len(resp.EnvOverrides) > 0 {
		fmt.Fprintf(w, "Env overrides: %s\n", strings.Join(resp.EnvOverrides, ", "))
	}
	fmt.Fprintln(w)

	routesFile := cfg.Routes.File
	if routesFile == "" {
		routesFile = "(auto-detect)"
	}
	rows := [][2]string{
		{"routes.file", routesFile},
		{"routes.name", cfg.Routes.Name},
		{"routes.strict", fmt.Sprint(cfg.Routes.Strict)},
		{"imports.layoutsDir", cfg.Imports.LayoutsDir},
		{"imports.pagesDir", cfg.Imports.PagesDir},
		{"imports.lazyCallee", cfg.Imports.LazyCallee},
		{"imports.aliasPrefix", cfg.Imports.AliasPrefix},
		{"format.indent", fmt.Sprint(cfg.Format.Indent)},
		{"format.singleQuote", fmt.Sprint(cfg.Format.SingleQuote)},
		{"format.semicolons", fmt.Sprint(cfg.Format.Semicolons)},
		{"watch.debounceMs", fmt.Sprint(cfg.Watch.DebounceMs)},
		{"logging.level", cfg.Logging.Level},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %-22s %s\n", r[0], r[1])
	}
	return nil
}

// envOverrides lists the ROUTESYNC_* variables currently set.
func envOverrides() []string {
	var set []string
	for _, key := range config.Keys() {
		name := config.EnvVar(key)
		if _, ok := os.LookupEnv(name); ok {
			set = append(set, name)
		}
	}
	return set
}

func runConfigEnv(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Environment variables override .routesync/config.json:")
	fmt.Fprintln(w)
	for _, key := range config.Keys() {
		if key == "version" {
			continue
		}
		fmt.Fprintf(w, "  %-32s %s\n", config.EnvVar(key), key)
	}
	fmt.Fprintln(w, "\nA .env file in the working directory is loaded first.")
	return nil
}
