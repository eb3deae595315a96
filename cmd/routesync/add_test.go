package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"routesync/internal/errors"
	"routesync/internal/routes"
)

func TestDecodeNodes(t *testing.T) {
	want := []routes.Node{
		{Path: "/a", Component: "A", Exact: routes.Bool(true)},
		{Path: "/l", Component: "L", Children: []routes.Node{}},
	}
	tests := []struct {
		name string
		file string
		data string
	}{
		{"json", "nodes.json", `[
  {"path": "/a", "component": "A", "exact": true},
  {"path": "/l", "component": "L", "children": []}
]`},
		{"yaml", "nodes.yaml", `- path: /a
  component: A
  exact: true
- path: /l
  component: L
  children: []
`},
		{"yml", "nodes.YML", `[{path: /a, component: A, exact: true}, {path: /l, component: L, children: []}]`},
		{"toml", "nodes.toml", `[[routes]]
path = "/a"
component = "A"
exact = true

[[routes]]
path = "/l"
component = "L"
children = []
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeNodes(tt.file, []byte(tt.data))
			if err != nil {
				t.Fatalf("decodeNodes() error = %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("decodeNodes() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeNodes_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{"extension", "nodes.txt", "[]"},
		{"json unknown field", "nodes.json", `[{"path": "/a", "title": "x"}]`},
		{"yaml unknown field", "nodes.yaml", "- path: /a\n  title: x\n"},
		{"toml unknown key", "nodes.toml", "[[routes]]\npath = \"/a\"\ntitle = \"x\"\n"},
		{"json syntax", "nodes.json", `[{"path": }]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeNodes(tt.file, []byte(tt.data))
			if !errors.Is(err, errors.InvalidInput) {
				t.Errorf("decodeNodes() error = %v, want %s", err, errors.InvalidInput)
			}
		})
	}
}

func TestDecodeNodes_EmptyTOML(t *testing.T) {
	got, err := decodeNodes("nodes.toml", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("decodeNodes() = %#v, want empty slice", got)
	}
}
