package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"routesync/internal/errors"
	"routesync/internal/routeconfig"
	"routesync/internal/routes"
)

var (
	addFile      string
	addPath      string
	addComponent string
	addRedirect  string
	addLayout    bool
	addExact     bool
	addStrict    bool
	addSensitive bool
	addParent    string
	addReplace   bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add routes",
	Long: `Add one route from flags, or many from a JSON, YAML or TOML file.

JSON and YAML files hold an array of routes; TOML files hold [[routes]]
tables. A route with a children list (even an empty one) is a layout.

Examples:
  routesync add --path /about --component About
  routesync add --path /admin --component AdminLayout --layout
  routesync add --path /users --component Users --parent /admin
  routesync add --file routes.yaml --replace`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addFile, "file", "f", "", "Read routes from a .json, .yaml, .yml or .toml file")
	addCmd.Flags().StringVar(&addPath, "path", "", "Route path")
	addCmd.Flags().StringVar(&addComponent, "component", "", "Component bound to the route")
	addCmd.Flags().StringVar(&addRedirect, "redirect", "", "Redirect target")
	addCmd.Flags().BoolVar(&addLayout, "layout", false, "Create a layout route with no children")
	addCmd.Flags().BoolVar(&addExact, "exact", false, "Match the path exactly")
	addCmd.Flags().BoolVar(&addStrict, "strict", false, "Match trailing slashes strictly")
	addCmd.Flags().BoolVar(&addSensitive, "sensitive", false, "Match the path case-sensitively")
	addCmd.Flags().StringVar(&addParent, "parent", "", "Append under the top-level layout with this path")
	addCmd.Flags().BoolVar(&addReplace, "replace", false, "Replace the whole route table")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	nodes, err := nodesFromFlags(cmd)
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

	res, err := svc.BulkCreate(ctx, nodes, routeconfig.CreateOptions{
		Replacement: addReplace,
		ParentPath:  addParent,
	})
	if err != nil {
		return err
	}
	target, _ := svc.Resolve()
	printResult(cmd, target.RelPath, res)
	return nil
}

// nodesFromFlags builds the nodes to add from --file or the inline flags.
func nodesFromFlags(cmd *cobra.Command) ([]routes.Node, error) {
	inline := addPath != "" || addComponent != "" || addRedirect != "" || addLayout
	if addFile != "" {
		if inline {
			return nil, errors.New(errors.InvalidInput, "--file cannot be combined with inline route flags", nil)
		}
		data, err := os.ReadFile(addFile)
		if err != nil {
			return nil, errors.New(errors.InvalidInput, "cannot read "+addFile, err)
		}
		return decodeNodes(addFile, data)
	}
	if !inline && !addReplace {
		return nil, errors.New(errors.InvalidInput, "nothing to add: pass --file or --path/--component", nil)
	}
	if !inline {
		return []routes.Node{}, nil
	}

	n := routes.Node{Path: addPath, Component: addComponent, Redirect: addRedirect}
	if addLayout {
		n.Children = []routes.Node{}
	}
	flags := cmd.Flags()
	if flags.Changed("exact") {
		n.Exact = routes.Bool(addExact)
	}
	if flags.Changed("strict") {
		n.Strict = routes.Bool(addStrict)
	}
	if flags.Changed("sensitive") {
		n.Sensitive = routes.Bool(addSensitive)
	}
	return []routes.Node{n}, nil
}

// tomlFile is the shape of a TOML node file.
type tomlFile struct {
	Routes []routes.Node `toml:"routes"`
}

// decodeNodes decodes a node file, choosing the codec by extension.
func decodeNodes(name string, data []byte) ([]routes.Node, error) {
	var nodes []routes.Node
	var err error
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&nodes)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&nodes)
	case ".toml":
		var f tomlFile
		var md toml.MetaData
		md, err = toml.Decode(string(data), &f)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				err = fmt.Errorf("unknown key %s", undecoded[0])
			}
		}
		nodes = f.Routes
	default:
		return nil, errors.New(errors.InvalidInput, "unsupported node file extension "+ext+" (want .json, .yaml, .yml or .toml)", nil)
	}
	if err != nil {
		return nil, errors.New(errors.InvalidInput, "cannot decode "+name, err)
	}
	if nodes == nil {
		nodes = []routes.Node{}
	}
	return nodes, nil
}

// printResult summarizes a committed transaction.
func printResult(cmd *cobra.Command, file string, res routeconfig.Result) {
	w := cmd.OutOrStdout()
	if !res.Changed {
		fmt.Fprintf(w, "%s is up to date (%d routes)\n", file, res.Routes)
		return
	}
	fmt.Fprintf(w, "Updated %s (%d routes)\n", file, res.Routes)
	for _, b := range res.Imports.Added {
		fmt.Fprintf(w, "  + %s from %s\n", b.LocalName, b.Source)
	}
	for _, b := range res.Imports.Removed {
		fmt.Fprintf(w, "  - %s from %s\n", b.LocalName, b.Source)
	}
}
