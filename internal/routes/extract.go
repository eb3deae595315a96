package routes

import (
	"routesync/internal/program"
)

// DefaultName is the reserved variable name holding the route array.
const DefaultName = "routes"

// Whitelisted route object keys. Every other key is discarded on read.
const (
	keyComponent = "component"
	keyPath      = "path"
	keyExact     = "exact"
	keyStrict    = "strict"
	keySensitive = "sensitive"
	keyRedirect  = "redirect"
	keyChildren  = "children"
)

// Extract locates the top-level declaration named name whose initializer
// is an array literal and converts it into a Forest. ok is false when no
// such declaration exists.
func Extract(p *program.Program, name string) (forest Forest, ok bool) {
	if p == nil {
		return Forest{}, false
	}
	_, decl := p.LookupVar(name)
	if decl == nil {
		return Forest{}, false
	}
	arr, isArray := decl.Init.(*program.Array)
	if !isArray {
		return Forest{}, false
	}
	return fromArray(arr), true
}

func fromArray(arr *program.Array) Forest {
	forest := Forest{}
	for _, el := range arr.Elements {
		obj, ok := el.(*program.Object)
		if !ok {
			continue
		}
		n := fromObject(obj)
		if n.IsEmpty() {
			continue
		}
		forest = append(forest, n)
	}
	return forest
}

// fromObject reads the whitelisted keys of a route object. A key with a
// value of the wrong shape is treated as absent; the first occurrence of a
// key wins.
func fromObject(obj *program.Object) Node {
	var n Node
	seen := make(map[string]bool, len(obj.Props))
	for _, prop := range obj.Props {
		if seen[prop.Key] {
			continue
		}
		seen[prop.Key] = true

		switch prop.Key {
		case keyComponent:
			if id, ok := prop.Value.(*program.Ident); ok {
				n.Component = id.Name
			}
		case keyPath:
			if s, ok := prop.Value.(*program.String); ok {
				n.Path = s.Value
			}
		case keyRedirect:
			if s, ok := prop.Value.(*program.String); ok {
				n.Redirect = s.Value
			}
		case keyExact:
			n.Exact = boolValue(prop.Value)
		case keyStrict:
			n.Strict = boolValue(prop.Value)
		case keySensitive:
			n.Sensitive = boolValue(prop.Value)
		case keyChildren:
			if arr, ok := prop.Value.(*program.Array); ok {
				n.Children = []Node(fromArray(arr))
			}
		}
	}
	return n
}

func boolValue(e program.Expr) *bool {
	if b, ok := e.(*program.Bool); ok {
		return Bool(b.Value)
	}
	return nil
}
