// Package imports keeps a route module's import and deferred-load
// declarations in step with the components its route forest references.
package imports

import (
	"strings"

	"routesync/internal/program"
)

// Kind classifies a binding by the directory its module lives in.
type Kind string

const (
	KindLayout Kind = "layout"
	KindPage   Kind = "page"
)

// Binding is one local name bound by an import or deferred-load
// declaration of a layout or page. An import with several specifiers yields
// one Binding per name, all sharing its StatementIndex.
type Binding struct {
	LocalName      string `json:"localName"`
	Kind           Kind   `json:"kind"`
	Lazy           bool   `json:"lazy"`
	StatementIndex int    `json:"statementIndex"`
	Source         string `json:"source"`
}

// Conventions describes where layouts and pages live and how new
// declarations are spelled.
type Conventions struct {
	LayoutsDir     string
	PagesDir       string
	LazyCallee     string
	AliasPrefix    string
	RelativePrefix string
}

// DefaultConventions returns the `layouts` / `pages` directory layout with
// an `@` alias and `lazy` as the deferred-load wrapper.
func DefaultConventions() Conventions {
	return Conventions{
		LayoutsDir:     "layouts",
		PagesDir:       "pages",
		LazyCallee:     "lazy",
		AliasPrefix:    "@",
		RelativePrefix: ".",
	}
}

func (c Conventions) withDefaults() Conventions {
	d := DefaultConventions()
	if c.LayoutsDir == "" {
		c.LayoutsDir = d.LayoutsDir
	}
	if c.PagesDir == "" {
		c.PagesDir = d.PagesDir
	}
	if c.LazyCallee == "" {
		c.LazyCallee = d.LazyCallee
	}
	if c.AliasPrefix == "" {
		c.AliasPrefix = d.AliasPrefix
	}
	if c.RelativePrefix == "" {
		c.RelativePrefix = d.RelativePrefix
	}
	return c
}

// Classify returns the kind of a module source path, by its first
// `layouts` or `pages` path segment.
func (c Conventions) Classify(source string) (Kind, bool) {
	c = c.withDefaults()
	for _, seg := range strings.Split(source, "/") {
		switch seg {
		case c.LayoutsDir:
			return KindLayout, true
		case c.PagesDir:
			return KindPage, true
		}
	}
	return "", false
}

// ModulePath returns the module path for a component of the given kind.
func (c Conventions) ModulePath(prefix string, kind Kind, name string) string {
	c = c.withDefaults()
	dir := c.PagesDir
	if kind == KindLayout {
		dir = c.LayoutsDir
	}
	return prefix + "/" + dir + "/" + name
}

// ScanResult is what Scan finds in a program.
type ScanResult struct {
	Bindings []Binding

	// UsesLazy is true when any binding uses the deferred-load form.
	UsesLazy bool

	// LazyCallee is the wrapper of the first deferred-load binding.
	LazyCallee string
}

// Scan collects layout and page bindings from p.
func Scan(p *program.Program, conv Conventions) ScanResult {
	var res ScanResult
	for i, stmt := range p.Statements {
		switch s := stmt.(type) {
		case *program.Import:
			kind, ok := conv.Classify(s.Source)
			if !ok {
				continue
			}
			for _, name := range s.LocalNames() {
				res.Bindings = append(res.Bindings, Binding{
					LocalName:      name,
					Kind:           kind,
					StatementIndex: i,
					Source:         s.Source,
				})
			}

		case *program.VarDecl:
			callee, source, ok := program.MatchLazy(s.Init)
			if !ok {
				continue
			}
			kind, ok := conv.Classify(source)
			if !ok {
				continue
			}
			res.Bindings = append(res.Bindings, Binding{
				LocalName:      s.Name,
				Kind:           kind,
				Lazy:           true,
				StatementIndex: i,
				Source:         source,
			})
			if !res.UsesLazy {
				res.UsesLazy = true
				res.LazyCallee = callee
			}
		}
	}
	return res
}
