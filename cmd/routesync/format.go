package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"routesync/internal/routes"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatHuman OutputFormat = "human"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatTOML  OutputFormat = "toml"
)

// ParseOutputFormat validates a --format value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatHuman, FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// FormatForest renders a route forest in the given format.
func FormatForest(f routes.Forest, format OutputFormat) (string, error) {
	if f == nil {
		f = routes.Forest{}
	}
	switch format {
	case FormatJSON:
		return formatJSON(f)
	case FormatYAML:
		data, err := yaml.Marshal(f)
		if err != nil {
			return "", fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return string(data), nil
	case FormatTOML:
		data, err := toml.Marshal(map[string]interface{}{"routes": tomlNodes(f)})
		if err != nil {
			return "", fmt.Errorf("failed to marshal TOML: %w", err)
		}
		return string(data), nil
	case FormatHuman:
		return formatForestHuman(f), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats v as indented JSON
func formatJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data) + "\n", nil
}

// tomlNodes converts nodes to tables holding only the populated keys, so
// page nodes carry no children key and layouts keep `children = []`.
func tomlNodes(nodes []routes.Node) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(nodes))
	for _, n := range nodes {
		m := map[string]interface{}{}
		if n.Path != "" {
			m["path"] = n.Path
		}
		if n.Component != "" {
			m["component"] = n.Component
		}
		if n.Redirect != "" {
			m["redirect"] = n.Redirect
		}
		if n.Exact != nil {
			m["exact"] = *n.Exact
		}
		if n.Strict != nil {
			m["strict"] = *n.Strict
		}
		if n.Sensitive != nil {
			m["sensitive"] = *n.Sensitive
		}
		if n.Children != nil {
			m["children"] = tomlNodes(n.Children)
		}
		out = append(out, m)
	}
	return out
}

// formatForestHuman prints one line per route, children indented under
// their layout.
func formatForestHuman(f routes.Forest) string {
	if len(f) == 0 {
		return "No routes.\n"
	}
	var b strings.Builder
	f.Walk(func(n routes.Node, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		path := n.Path
		if path == "" {
			path = "(no path)"
		}
		b.WriteString(path)

		switch {
		case n.Redirect != "":
			b.WriteString(" -> " + n.Redirect)
		case n.Component != "":
			b.WriteString("  " + n.Component)
		}

		var flags []string
		if n.IsLayout() {
			flags = append(flags, fmt.Sprintf("layout, %d children", len(n.Children)))
		}
		for _, flag := range []struct {
			name string
			v    *bool
		}{{"exact", n.Exact}, {"strict", n.Strict}, {"sensitive", n.Sensitive}} {
			if flag.v != nil && *flag.v {
				flags = append(flags, flag.name)
			}
		}
		if len(flags) > 0 {
			b.WriteString(" [" + strings.Join(flags, ", ") + "]")
		}
		b.WriteByte('\n')
	})
	return b.String()
}
