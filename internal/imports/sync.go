package imports

import (
	"path/filepath"
	"strings"

	"routesync/internal/program"
	"routesync/internal/routes"
)

// Options controls Synchronize.
type Options struct {
	// ConfigPath is the path of the routes file. It decides between the
	// alias and relative module prefix when no surviving binding settles it.
	ConfigPath  string
	Conventions Conventions
}

// Report describes the edits Synchronize made.
type Report struct {
	Removed []Binding `json:"removed"`
	Added   []Binding `json:"added"`

	// UsesLazy is the file-scoped deferred-load flag found by the scan.
	UsesLazy bool   `json:"usesLazy"`
	Prefix   string `json:"prefix"`
}

// Changed reports whether any statement was removed or added.
func (r Report) Changed() bool {
	return len(r.Removed) > 0 || len(r.Added) > 0
}

type requirement struct {
	kind Kind
	name string
}

// Synchronize edits p so that its layout and page bindings are exactly the
// components referenced by f. Statements none of whose names are referenced
// are removed. A referenced name that no top-level statement declares is
// synthesized after the import block, so no name is ever bound twice.
func Synchronize(p *program.Program, f routes.Forest, opts Options) Report {
	conv := opts.Conventions.withDefaults()
	scan := Scan(p, conv)

	required := requirements(f)
	needed := make(map[requirement]bool, len(required))
	for _, r := range required {
		needed[r] = true
	}

	report := Report{
		Removed:  []Binding{},
		Added:    []Binding{},
		UsesLazy: scan.UsesLazy,
	}

	// A statement is pruned only when none of its names is referenced.
	live := map[int]bool{}
	var surviving []Binding
	for _, b := range scan.Bindings {
		if needed[requirement{b.Kind, b.LocalName}] {
			live[b.StatementIndex] = true
			surviving = append(surviving, b)
		}
	}
	var dead []Binding
	var deadIdx []int
	for _, b := range scan.Bindings {
		if live[b.StatementIndex] {
			continue
		}
		dead = append(dead, b)
		if len(deadIdx) == 0 || deadIdx[len(deadIdx)-1] != b.StatementIndex {
			deadIdx = append(deadIdx, b.StatementIndex)
		}
	}
	// Remove from the highest index down so earlier indexes stay valid.
	for i := len(deadIdx) - 1; i >= 0; i-- {
		p.Remove(deadIdx[i])
	}
	report.Removed = append(report.Removed, dead...)

	report.Prefix = modulePrefix(surviving, opts.ConfigPath, conv)

	callee := scan.LazyCallee
	if callee == "" {
		callee = conv.LazyCallee
	}

	var plain, lazy []Binding
	added := map[string]bool{}
	for _, r := range required {
		if added[r.name] || p.Declares(r.name) {
			continue
		}
		added[r.name] = true
		b := Binding{
			LocalName: r.name,
			Kind:      r.kind,
			Lazy:      r.kind == KindPage && scan.UsesLazy,
			Source:    conv.ModulePath(report.Prefix, r.kind, r.name),
		}
		if b.Lazy {
			lazy = append(lazy, b)
		} else {
			plain = append(plain, b)
		}
	}

	at := p.LastImportIndex() + 1
	stmts := make([]program.Statement, 0, len(plain)+len(lazy))
	for i := range plain {
		plain[i].StatementIndex = at + len(stmts)
		stmts = append(stmts, &program.Import{Default: plain[i].LocalName, Source: plain[i].Source})
	}
	for i := range lazy {
		lazy[i].StatementIndex = at + len(stmts)
		stmts = append(stmts, program.NewLazyDecl(lazy[i].LocalName, callee, lazy[i].Source))
	}
	p.Insert(at, stmts...)

	report.Added = append(report.Added, plain...)
	report.Added = append(report.Added, lazy...)
	return report
}

// requirements lists the (kind, name) pairs referenced by f in walk order,
// without duplicates.
func requirements(f routes.Forest) []requirement {
	var out []requirement
	seen := map[requirement]bool{}
	f.Walk(func(n routes.Node, _ int) {
		if n.Component == "" {
			return
		}
		r := requirement{KindPage, n.Component}
		if n.IsLayout() {
			r.kind = KindLayout
		}
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	})
	return out
}

func modulePrefix(surviving []Binding, configPath string, conv Conventions) string {
	for _, b := range surviving {
		if strings.HasPrefix(b.Source, conv.AliasPrefix) {
			return conv.AliasPrefix
		}
	}
	if configPath != "" && IsLegacyPath(configPath) {
		return conv.RelativePrefix
	}
	return conv.AliasPrefix
}

// IsLegacyPath reports whether a routes file follows the bare-relative
// layout, where it sits directly inside a `src` directory next to the
// layouts and pages directories.
func IsLegacyPath(configPath string) bool {
	dir := filepath.Base(filepath.Dir(filepath.Clean(configPath)))
	return dir == "src"
}
