package program

import (
	"bytes"
	"fmt"
	"strings"
)

// PrintOptions controls how synthesized statements are rendered.
type PrintOptions struct {
	Indent      int
	SingleQuote bool
	Semicolons  bool
}

// DefaultPrintOptions returns two-space indentation, single quotes and semicolons.
func DefaultPrintOptions() PrintOptions {
	return PrintOptions{Indent: 2, SingleQuote: true, Semicolons: true}
}

// Printer produces canonical module text from a Program.
//
// Statements that still carry their original source text are written
// verbatim; synthesized statements are rendered from their fields. Imports,
// deferred-load declarations and the remaining statements form three groups
// separated by a blank line.
type Printer struct {
	opts PrintOptions
}

// NewPrinter creates a printer.
func NewPrinter(opts PrintOptions) *Printer {
	if opts.Indent <= 0 {
		opts.Indent = 2
	}
	return &Printer{opts: opts}
}

// Format renders p.
func (pr *Printer) Format(p *Program) ([]byte, error) {
	var buf bytes.Buffer
	for i, stmt := range p.Statements {
		if i > 0 {
			prev := p.Statements[i-1]
			if stmt.span().BlankBefore || group(prev) != group(stmt) {
				buf.WriteByte('\n')
			}
		}
		text, err := pr.statement(stmt)
		if err != nil {
			return nil, err
		}
		buf.WriteString(text)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

const (
	groupImport = iota
	groupLazy
	groupOther
)

func group(s Statement) int {
	switch v := s.(type) {
	case *Import:
		return groupImport
	case *VarDecl:
		if _, _, ok := MatchLazy(v.Init); ok {
			return groupLazy
		}
	}
	return groupOther
}

func (pr *Printer) statement(s Statement) (string, error) {
	if text := s.span().Text; text != "" {
		return text, nil
	}
	switch v := s.(type) {
	case *Import:
		return pr.importStatement(v), nil
	case *VarDecl:
		return pr.varDecl(v), nil
	default:
		return "", fmt.Errorf("cannot print synthesized %T without source text", s)
	}
}

func (pr *Printer) importStatement(imp *Import) string {
	var clause []string
	if imp.Default != "" {
		clause = append(clause, imp.Default)
	}
	if imp.Namespace != "" {
		clause = append(clause, "* as "+imp.Namespace)
	}
	if len(imp.Named) > 0 {
		clause = append(clause, "{ "+strings.Join(imp.Named, ", ")+" }")
	}
	var b strings.Builder
	b.WriteString("import ")
	if len(clause) > 0 {
		b.WriteString(strings.Join(clause, ", "))
		b.WriteString(" from ")
	}
	b.WriteString(pr.quote(imp.Source))
	pr.terminate(&b)
	return b.String()
}

func (pr *Printer) varDecl(v *VarDecl) string {
	var b strings.Builder
	if v.Exported {
		b.WriteString("export ")
	}
	keyword := v.Keyword
	if keyword == "" {
		keyword = "const"
	}
	b.WriteString(keyword)
	b.WriteByte(' ')
	b.WriteString(v.Name)
	if v.Type != "" {
		b.WriteString(": ")
		b.WriteString(v.Type)
	}
	if v.Init != nil {
		b.WriteString(" = ")
		pr.expr(&b, v.Init, 0)
	}
	pr.terminate(&b)
	return b.String()
}

func (pr *Printer) terminate(b *strings.Builder) {
	if pr.opts.Semicolons {
		b.WriteByte(';')
	}
}

func (pr *Printer) quote(s string) string {
	if pr.opts.SingleQuote {
		return Quote(s, '\'')
	}
	return Quote(s, '"')
}

func (pr *Printer) indent(b *strings.Builder, level int) {
	b.WriteString(strings.Repeat(" ", level*pr.opts.Indent))
}

// Expr renders a single expression at the given nesting level.
func (pr *Printer) Expr(e Expr, level int) string {
	var b strings.Builder
	pr.expr(&b, e, level)
	return b.String()
}

func (pr *Printer) expr(b *strings.Builder, e Expr, level int) {
	switch v := e.(type) {
	case *Array:
		if len(v.Elements) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for _, el := range v.Elements {
			pr.indent(b, level+1)
			pr.expr(b, el, level+1)
			b.WriteString(",\n")
		}
		pr.indent(b, level)
		b.WriteByte(']')

	case *Object:
		if len(v.Props) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		for _, p := range v.Props {
			pr.indent(b, level+1)
			if IsIdentifier(p.Key) {
				b.WriteString(p.Key)
			} else {
				b.WriteString(pr.quote(p.Key))
			}
			b.WriteString(": ")
			pr.expr(b, p.Value, level+1)
			b.WriteString(",\n")
		}
		pr.indent(b, level)
		b.WriteByte('}')

	case *String:
		b.WriteString(pr.quote(v.Value))

	case *Bool:
		if v.Value {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}

	case *Number:
		b.WriteString(v.Text)

	case *Ident:
		b.WriteString(v.Name)

	case *Call:
		b.WriteString(v.Callee)
		b.WriteByte('(')
		for i, a := range v.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			pr.expr(b, a, level)
		}
		b.WriteByte(')')

	case *Arrow:
		b.WriteString("() => ")
		pr.expr(b, v.Body, level)

	case *DynamicImport:
		b.WriteString("import(")
		b.WriteString(pr.quote(v.Source))
		b.WriteByte(')')

	case *Raw:
		b.WriteString(v.Text)
	}
}
