// Package program models a JavaScript/TypeScript module as routesync sees it:
// an ordered list of top-level statements plus the literal values needed to
// read and rewrite a route configuration. Parsing is backed by tree-sitter;
// printing is done by Printer.
package program

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrNoCGO is returned when parsing is unavailable due to missing CGO.
var ErrNoCGO = errors.New("route file parsing requires CGO (tree-sitter)")

// Language represents a supported source language.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
)

// LanguageFromExtension maps a file extension (with the dot) to a Language.
func LanguageFromExtension(ext string) (Language, bool) {
	switch strings.ToLower(ext) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript, true
	case ".ts", ".mts", ".cts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	default:
		return "", false
	}
}

// LanguageFromPath maps a file path to a Language using its extension.
func LanguageFromPath(path string) (Language, bool) {
	return LanguageFromExtension(filepath.Ext(path))
}

// Program is a parsed module.
type Program struct {
	Language   Language
	Statements []Statement
}

// Statement is a top-level statement.
type Statement interface {
	span() *Span
}

// Span carries the layout information of a parsed statement.
// Text is the verbatim source; it is empty for synthesized statements,
// which the printer renders from their fields instead.
type Span struct {
	Text        string
	BlankBefore bool
}

func (s *Span) span() *Span { return s }

// Import is an `import ... from '...'` statement. Named holds the local
// names of the specifiers, aliases already applied.
type Import struct {
	Span
	Default   string
	Namespace string
	Named     []string
	Source    string
}

// LocalNames returns every name the import binds: the default, the
// namespace, then the named specifiers.
func (imp *Import) LocalNames() []string {
	var names []string
	if imp.Default != "" {
		names = append(names, imp.Default)
	}
	if imp.Namespace != "" {
		names = append(names, imp.Namespace)
	}
	return append(names, imp.Named...)
}

// VarDecl is a single-declarator `const|let|var` statement, optionally exported.
type VarDecl struct {
	Span
	Exported bool
	Keyword  string
	Name     string
	Type     string
	Init     Expr
}

// RawStatement is any other statement, kept verbatim.
type RawStatement struct {
	Span
}

// Expr is an expression value.
type Expr interface {
	expr()
}

// Array is an array literal.
type Array struct{ Elements []Expr }

// Object is an object literal. Property order is preserved.
type Object struct{ Props []Property }

// Property is a `key: value` pair of an object literal.
type Property struct {
	Key   string
	Value Expr
}

// String is a string literal (unescaped).
type String struct{ Value string }

// Bool is `true` or `false`.
type Bool struct{ Value bool }

// Number is a numeric literal kept as written.
type Number struct{ Text string }

// Ident is an identifier reference.
type Ident struct{ Name string }

// Call is a call expression. Callee is the source text of the call target.
type Call struct {
	Callee string
	Args   []Expr
}

// Arrow is a parameterless arrow function returning Body.
type Arrow struct{ Body Expr }

// DynamicImport is `import('source')`.
type DynamicImport struct{ Source string }

// Raw is any expression not modelled above, kept as source text.
type Raw struct{ Text string }

func (*Array) expr()         {}
func (*Object) expr()        {}
func (*String) expr()        {}
func (*Bool) expr()          {}
func (*Number) expr()        {}
func (*Ident) expr()         {}
func (*Call) expr()          {}
func (*Arrow) expr()         {}
func (*DynamicImport) expr() {}
func (*Raw) expr()           {}

// Get returns the value of the first property with the given key.
func (o *Object) Get(key string) (Expr, bool) {
	for _, p := range o.Props {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// LookupVar returns the index and declaration of the first top-level
// variable named name, or -1.
func (p *Program) LookupVar(name string) (int, *VarDecl) {
	for i, s := range p.Statements {
		if v, ok := s.(*VarDecl); ok && v.Name == name {
			return i, v
		}
	}
	return -1, nil
}

// Declares reports whether a top-level import or variable declaration
// binds name.
func (p *Program) Declares(name string) bool {
	for _, s := range p.Statements {
		switch v := s.(type) {
		case *Import:
			for _, n := range v.LocalNames() {
				if n == name {
					return true
				}
			}
		case *VarDecl:
			if v.Name == name {
				return true
			}
		}
	}
	return false
}

// LastImportIndex returns the index of the last import statement, or -1.
func (p *Program) LastImportIndex() int {
	last := -1
	for i, s := range p.Statements {
		if _, ok := s.(*Import); ok {
			last = i
		}
	}
	return last
}

// Insert places stmts at index i, shifting later statements. The shifted
// statement drops its leading blank line when it continues the group of
// the last inserted statement.
func (p *Program) Insert(i int, stmts ...Statement) {
	if len(stmts) == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i > len(p.Statements) {
		i = len(p.Statements)
	}
	if i < len(p.Statements) {
		if next := p.Statements[i]; group(next) == group(stmts[len(stmts)-1]) {
			next.span().BlankBefore = false
		}
	}
	out := make([]Statement, 0, len(p.Statements)+len(stmts))
	out = append(out, p.Statements[:i]...)
	out = append(out, stmts...)
	out = append(out, p.Statements[i:]...)
	p.Statements = out
}

// Remove deletes the statement at index i.
func (p *Program) Remove(i int) {
	if i < 0 || i >= len(p.Statements) {
		return
	}
	p.Statements = append(p.Statements[:i], p.Statements[i+1:]...)
}

// MatchLazy reports whether e has the deferred-load shape
// `callee(() => import('source'))` and returns its parts.
func MatchLazy(e Expr) (callee, source string, ok bool) {
	call, isCall := e.(*Call)
	if !isCall || len(call.Args) != 1 {
		return "", "", false
	}
	arrow, isArrow := call.Args[0].(*Arrow)
	if !isArrow {
		return "", "", false
	}
	imp, isImport := arrow.Body.(*DynamicImport)
	if !isImport || imp.Source == "" {
		return "", "", false
	}
	return call.Callee, imp.Source, true
}

// NewLazyDecl builds `const name = callee(() => import('source'))`.
func NewLazyDecl(name, callee, source string) *VarDecl {
	return &VarDecl{
		Keyword: "const",
		Name:    name,
		Init: &Call{
			Callee: callee,
			Args:   []Expr{&Arrow{Body: &DynamicImport{Source: source}}},
		},
	}
}
