package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listFormat string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the route tree",
	Long: `Print the routes declared in the project's routes file.

Examples:
  routesync list                  # Indented tree
  routesync list --format json    # Machine-readable
  routesync list --format toml`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listFormat, "format", "human", "Output format (human, json, yaml, toml)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	format, err := ParseOutputFormat(listFormat)
	if err != nil {
		return err
	}
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

	forest, err := svc.GetAll(ctx)
	if err != nil {
		return err
	}
	out, err := FormatForest(forest, format)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
