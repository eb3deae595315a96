package routes

import (
	"routesync/internal/program"
)

// Serialize converts a forest into an array literal. Keys are written in a
// fixed order: path, component, redirect, exact, strict, sensitive, children.
func Serialize(f Forest) *program.Array {
	arr := &program.Array{Elements: make([]program.Expr, 0, len(f))}
	for _, n := range f {
		arr.Elements = append(arr.Elements, toObject(n))
	}
	return arr
}

func toObject(n Node) *program.Object {
	obj := &program.Object{}
	add := func(key string, value program.Expr) {
		obj.Props = append(obj.Props, program.Property{Key: key, Value: value})
	}

	if n.Path != "" {
		add(keyPath, &program.String{Value: n.Path})
	}
	if n.Component != "" {
		add(keyComponent, &program.Ident{Name: n.Component})
	}
	if n.Redirect != "" {
		add(keyRedirect, &program.String{Value: n.Redirect})
	}
	if n.Exact != nil {
		add(keyExact, &program.Bool{Value: *n.Exact})
	}
	if n.Strict != nil {
		add(keyStrict, &program.Bool{Value: *n.Strict})
	}
	if n.Sensitive != nil {
		add(keySensitive, &program.Bool{Value: *n.Sensitive})
	}
	if n.Children != nil {
		add(keyChildren, Serialize(Forest(n.Children)))
	}
	return obj
}

// Replace installs f as the initializer of the declaration named name.
// When no declaration exists, `const name = [...]` and a default export are
// appended to the program.
func Replace(p *program.Program, name string, f Forest) {
	value := Serialize(f)
	idx, decl := p.LookupVar(name)
	if decl == nil {
		p.Statements = append(p.Statements,
			&program.VarDecl{Keyword: "const", Name: name, Init: value},
			&program.RawStatement{Span: program.Span{Text: "export default " + name + ";", BlankBefore: true}},
		)
		return
	}

	replaced := &program.VarDecl{
		Exported: decl.Exported,
		Keyword:  decl.Keyword,
		Name:     decl.Name,
		Type:     decl.Type,
		Init:     value,
	}
	replaced.BlankBefore = decl.BlankBefore
	p.Statements[idx] = replaced
}
