package routes

import (
	"path"
	"strings"
)

// CreateOptions controls BulkCreate.
type CreateOptions struct {
	// Replacement makes the forest exactly the new nodes.
	Replacement bool

	// ParentPath appends the new nodes to the children of the first
	// top-level layout node with this path.
	ParentPath string
}

// BulkCreate returns f with nodes added according to opts. f is not modified.
// fellBack is true when a ParentPath was given but no top-level layout
// matched it, in which case the nodes were appended at top level.
func BulkCreate(f Forest, nodes []Node, opts CreateOptions) (out Forest, fellBack bool) {
	added := Forest(nodes).Clone()
	if opts.Replacement {
		if added == nil {
			added = Forest{}
		}
		return added, false
	}

	out = f.Clone()
	if out == nil {
		out = Forest{}
	}

	if opts.ParentPath != "" {
		for i := range out {
			if out[i].Path == opts.ParentPath && out[i].IsLayout() {
				out[i].Children = append(out[i].Children, added...)
				return out, false
			}
		}
		return append(out, added...), true
	}

	return append(out, added...), false
}

// Delete removes every page node whose component equals component, at any
// depth. Layout nodes are never removed, only filtered. The returned paths
// are those of removed nodes that had a path, joined with their ancestors'
// paths, in walk order. f is not modified.
func Delete(f Forest, component string) (out Forest, removed []string) {
	removed = []string{}
	if component == "" {
		return f.Clone(), removed
	}
	out = deleteIn(f, component, "", &removed)
	return out, removed
}

func deleteIn(nodes []Node, component, parentPath string, removed *[]string) Forest {
	out := make(Forest, 0, len(nodes))
	for _, n := range nodes {
		full := joinPath(parentPath, n.Path)
		if n.IsLayout() {
			c := n.clone()
			c.Children = []Node(deleteIn(n.Children, component, full, removed))
			out = append(out, c)
			continue
		}
		if n.Component == component {
			if n.Path != "" {
				*removed = append(*removed, full)
			}
			continue
		}
		out = append(out, n.clone())
	}
	return out
}

// joinPath joins a route path onto its ancestor path. A child path that
// already spells out its ancestor is returned unchanged.
func joinPath(parent, p string) string {
	if p == "" {
		return parent
	}
	if parent == "" || strings.HasPrefix(p, strings.TrimSuffix(parent, "/")+"/") {
		return p
	}
	return path.Join(parent, p)
}
