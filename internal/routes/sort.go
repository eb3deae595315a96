package routes

import (
	"slices"
	"strings"
)

// Sort orders siblings by path specificity, recursing into children first.
//
// A node without a path sorts after any node with one. When one path is a
// literal string prefix of the other, the longer path comes first. Any
// other pair keeps its relative order. The prefix test is character-based,
// so "/ab" counts as a prefix of "/abc".
func Sort(f Forest) {
	for i := range f {
		if f[i].Children != nil {
			Sort(Forest(f[i].Children))
		}
	}
	slices.SortStableFunc(f, compareSpecificity)
}

func compareSpecificity(a, b Node) int {
	switch {
	case a.Path == "" && b.Path == "":
		return 0
	case a.Path == "":
		return 1
	case b.Path == "":
		return -1
	case a.Path == b.Path:
		return 0
	case strings.HasPrefix(b.Path, a.Path):
		return 1
	case strings.HasPrefix(a.Path, b.Path):
		return -1
	default:
		return 0
	}
}
