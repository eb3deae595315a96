// Package routes holds the route tree model and the pure operations over it:
// extraction from a parsed module, serialization back to an array literal,
// specificity sorting, and bulk insert / component-scoped delete.
package routes

import (
	"encoding/json"
)

// Node is a single route entry.
//
// A node whose Children is non-nil (even when empty) is a layout node;
// a node with nil Children is a page node.
type Node struct {
	Component string `json:"component,omitempty" yaml:"component,omitempty" toml:"component,omitempty"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
	Exact     *bool  `json:"exact,omitempty" yaml:"exact,omitempty" toml:"exact,omitempty"`
	Strict    *bool  `json:"strict,omitempty" yaml:"strict,omitempty" toml:"strict,omitempty"`
	Sensitive *bool  `json:"sensitive,omitempty" yaml:"sensitive,omitempty" toml:"sensitive,omitempty"`
	Redirect  string `json:"redirect,omitempty" yaml:"redirect,omitempty" toml:"redirect,omitempty"`
	Children  []Node `json:"children" yaml:"children" toml:"children"`
}

// Forest is an ordered list of top-level route nodes.
type Forest []Node

// IsLayout reports whether n nests child routes.
func (n Node) IsLayout() bool {
	return n.Children != nil
}

// IsEmpty reports whether no whitelisted field is populated.
func (n Node) IsEmpty() bool {
	return n.Component == "" && n.Path == "" && n.Redirect == "" &&
		n.Exact == nil && n.Strict == nil && n.Sensitive == nil &&
		n.Children == nil
}

// Bool returns a pointer to b, for populating the optional flags.
func Bool(b bool) *bool {
	return &b
}

// wireNode mirrors Node with an omittable children pointer so page nodes
// encode without a children key and layouts keep `children: []`.
type wireNode struct {
	Component string  `json:"component,omitempty" yaml:"component,omitempty"`
	Path      string  `json:"path,omitempty" yaml:"path,omitempty"`
	Exact     *bool   `json:"exact,omitempty" yaml:"exact,omitempty"`
	Strict    *bool   `json:"strict,omitempty" yaml:"strict,omitempty"`
	Sensitive *bool   `json:"sensitive,omitempty" yaml:"sensitive,omitempty"`
	Redirect  string  `json:"redirect,omitempty" yaml:"redirect,omitempty"`
	Children  *[]Node `json:"children,omitempty" yaml:"children,omitempty"`
}

func (n Node) wire() wireNode {
	w := wireNode{
		Component: n.Component,
		Path:      n.Path,
		Exact:     n.Exact,
		Strict:    n.Strict,
		Sensitive: n.Sensitive,
		Redirect:  n.Redirect,
	}
	if n.Children != nil {
		children := n.Children
		w.Children = &children
	}
	return w
}

// MarshalJSON implements json.Marshaler.
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.wire())
}

// MarshalYAML implements yaml.Marshaler.
func (n Node) MarshalYAML() (interface{}, error) {
	return n.wire(), nil
}

// Walk visits every node depth-first, parents before children.
func (f Forest) Walk(fn func(n Node, depth int)) {
	var walk func(nodes []Node, depth int)
	walk = func(nodes []Node, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(f, 0)
}

// Components returns every component name referenced by the forest,
// in walk order and without duplicates.
func (f Forest) Components() []string {
	seen := make(map[string]bool)
	var names []string
	f.Walk(func(n Node, _ int) {
		if n.Component != "" && !seen[n.Component] {
			seen[n.Component] = true
			names = append(names, n.Component)
		}
	})
	return names
}

// Count returns the total number of nodes at any depth.
func (f Forest) Count() int {
	count := 0
	f.Walk(func(Node, int) { count++ })
	return count
}

// Clone returns a deep copy of f.
func (f Forest) Clone() Forest {
	if f == nil {
		return nil
	}
	out := make(Forest, len(f))
	for i, n := range f {
		out[i] = n.clone()
	}
	return out
}

func (n Node) clone() Node {
	c := n
	c.Exact = cloneBool(n.Exact)
	c.Strict = cloneBool(n.Strict)
	c.Sensitive = cloneBool(n.Sensitive)
	if n.Children != nil {
		c.Children = []Node(Forest(n.Children).Clone())
	}
	return c
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
