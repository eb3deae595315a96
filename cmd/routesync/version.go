package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"routesync/internal/version"
)

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		switch versionFormat {
		case "json":
			out, err := formatJSON(version.Current())
			if err != nil {
				return err
			}
			fmt.Fprint(w, out)
		case "yaml":
			data, err := yaml.Marshal(version.Current())
			if err != nil {
				return err
			}
			fmt.Fprint(w, string(data))
		default:
			fmt.Fprintln(w, version.Full())
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "human", "Output format (human, json, yaml)")
	rootCmd.AddCommand(versionCmd)
}
