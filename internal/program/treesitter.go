//go:build cgo

package program

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Parser turns module source into a Program using tree-sitter.
// A fresh tree-sitter parser is created per call, so a Parser is safe for
// concurrent use.
type Parser struct{}

// NewParser creates a new parser.
func NewParser() *Parser {
	return &Parser{}
}

// IsAvailable returns whether parsing is available in this build.
func IsAvailable() bool {
	return true
}

// Parse parses source written in lang.
func (p *Parser) Parse(ctx context.Context, source []byte, lang Language) (*Program, error) {
	tsLang, err := getLanguage(lang)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(tsLang)
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxErrorAt(firstErrorNode(root), source)
	}

	b := &builder{src: source}
	prog := &Program{Language: lang}
	prevEndRow := -1
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		if n == nil {
			continue
		}
		stmt := b.statement(n)
		sp := stmt.span()
		sp.Text = n.Content(source)
		sp.BlankBefore = prevEndRow >= 0 && int(n.StartPoint().Row) > prevEndRow+1
		prevEndRow = int(n.EndPoint().Row)
		prog.Statements = append(prog.Statements, stmt)
	}

	return prog, nil
}

// getLanguage returns the tree-sitter Language for a given language identifier.
func getLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if child.Type() == "ERROR" || child.IsMissing() || child.HasError() {
			return firstErrorNode(child)
		}
	}
	return n
}

func syntaxErrorAt(n *sitter.Node, source []byte) *SyntaxError {
	near := truncate(strings.TrimSpace(n.Content(source)), maxNear)
	return &SyntaxError{
		Line:   int(n.StartPoint().Row) + 1,
		Column: int(n.StartPoint().Column) + 1,
		Near:   near,
	}
}

// builder converts tree-sitter nodes into the Program model.
type builder struct {
	src []byte
}

func (b *builder) text(n *sitter.Node) string {
	return n.Content(b.src)
}

func (b *builder) statement(n *sitter.Node) Statement {
	switch n.Type() {
	case "import_statement":
		if imp := b.importStatement(n); imp != nil {
			return imp
		}
	case "lexical_declaration", "variable_declaration":
		if v := b.varDecl(n); v != nil {
			return v
		}
	case "export_statement":
		decl := n.ChildByFieldName("declaration")
		if decl != nil && (decl.Type() == "lexical_declaration" || decl.Type() == "variable_declaration") {
			if v := b.varDecl(decl); v != nil {
				v.Exported = true
				return v
			}
		}
	}
	return &RawStatement{}
}

func (b *builder) importStatement(n *sitter.Node) *Import {
	src := n.ChildByFieldName("source")
	if src == nil {
		return nil
	}
	imp := &Import{Source: b.stringValue(src)}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		clause := n.NamedChild(i)
		if clause == nil || clause.Type() != "import_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			c := clause.NamedChild(j)
			if c == nil {
				continue
			}
			switch c.Type() {
			case "identifier":
				imp.Default = b.text(c)
			case "namespace_import":
				for k := 0; k < int(c.NamedChildCount()); k++ {
					if id := c.NamedChild(k); id != nil && id.Type() == "identifier" {
						imp.Namespace = b.text(id)
					}
				}
			case "named_imports":
				for k := 0; k < int(c.NamedChildCount()); k++ {
					spec := c.NamedChild(k)
					if spec == nil || spec.Type() != "import_specifier" {
						continue
					}
					local := spec.ChildByFieldName("alias")
					if local == nil {
						local = spec.ChildByFieldName("name")
					}
					if local != nil {
						imp.Named = append(imp.Named, b.text(local))
					}
				}
			}
		}
	}
	return imp
}

func (b *builder) varDecl(n *sitter.Node) *VarDecl {
	var declarators []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c != nil && c.Type() == "variable_declarator" {
			declarators = append(declarators, c)
		}
	}
	if len(declarators) != 1 {
		return nil
	}
	d := declarators[0]

	name := d.ChildByFieldName("name")
	if name == nil || name.Type() != "identifier" {
		return nil
	}

	v := &VarDecl{Name: b.text(name)}
	if kw := n.Child(0); kw != nil {
		v.Keyword = b.text(kw)
	}
	if t := d.ChildByFieldName("type"); t != nil {
		v.Type = strings.TrimSpace(strings.TrimPrefix(b.text(t), ":"))
	}
	if value := d.ChildByFieldName("value"); value != nil {
		v.Init = b.expr(value)
	}
	return v
}

func (b *builder) expr(n *sitter.Node) Expr {
	switch n.Type() {
	case "array":
		arr := &Array{}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if c == nil || c.Type() == "comment" {
				continue
			}
			arr.Elements = append(arr.Elements, b.expr(c))
		}
		return arr

	case "object":
		obj := &Object{}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if c == nil || c.Type() != "pair" {
				continue
			}
			key := c.ChildByFieldName("key")
			value := c.ChildByFieldName("value")
			if key == nil || value == nil {
				continue
			}
			obj.Props = append(obj.Props, Property{Key: b.propertyKey(key), Value: b.expr(value)})
		}
		return obj

	case "string":
		return &String{Value: b.stringValue(n)}

	case "true":
		return &Bool{Value: true}

	case "false":
		return &Bool{Value: false}

	case "number":
		return &Number{Text: b.text(n)}

	case "identifier":
		return &Ident{Name: b.text(n)}

	case "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return b.expr(n.NamedChild(0))
		}

	case "call_expression":
		fn := n.ChildByFieldName("function")
		args := n.ChildByFieldName("arguments")
		if fn == nil || args == nil {
			break
		}
		var argExprs []Expr
		for i := 0; i < int(args.NamedChildCount()); i++ {
			a := args.NamedChild(i)
			if a == nil || a.Type() == "comment" {
				continue
			}
			argExprs = append(argExprs, b.expr(a))
		}
		if fn.Type() == "import" {
			if len(argExprs) == 1 {
				if s, ok := argExprs[0].(*String); ok {
					return &DynamicImport{Source: s.Value}
				}
			}
			break
		}
		return &Call{Callee: b.text(fn), Args: argExprs}

	case "arrow_function":
		if body := b.arrowBody(n); body != nil {
			return &Arrow{Body: body}
		}
	}

	return &Raw{Text: b.text(n)}
}

// arrowBody returns the returned expression of a parameterless arrow
// function, or nil when the arrow takes parameters or its body is not a
// single expression/return.
func (b *builder) arrowBody(n *sitter.Node) Expr {
	if n.ChildByFieldName("parameter") != nil {
		return nil
	}
	if params := n.ChildByFieldName("parameters"); params != nil && params.NamedChildCount() > 0 {
		return nil
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	if body.Type() != "statement_block" {
		return b.expr(body)
	}

	var stmts []*sitter.Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		if c != nil && c.Type() != "comment" {
			stmts = append(stmts, c)
		}
	}
	if len(stmts) != 1 || stmts[0].Type() != "return_statement" || stmts[0].NamedChildCount() == 0 {
		return nil
	}
	return b.expr(stmts[0].NamedChild(0))
}

func (b *builder) propertyKey(n *sitter.Node) string {
	if n.Type() == "string" {
		return b.stringValue(n)
	}
	return b.text(n)
}

// stringValue unquotes a string literal node.
func (b *builder) stringValue(n *sitter.Node) string {
	raw := b.text(n)
	if len(raw) >= 2 && (raw[0] == '\'' || raw[0] == '"') && raw[len(raw)-1] == raw[0] {
		raw = raw[1 : len(raw)-1]
	}
	return Unescape(raw)
}
