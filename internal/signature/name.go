package signature

import (
	"jsoutline/internal/ast"
)

// Name is the label and optional details of a node.
type Name struct {
	Label   string
	Details string
}

// ResolveName classifies n by kind and builds its display name. It never
// fails: shapes it cannot name get the "Anonymous <kind>" placeholder.
func ResolveName(n ast.Node) Name {
	return resolveName(n, DefaultMaxPropertyLength)
}

func resolveName(n ast.Node, maxLen int) Name {
	if ast.IsNil(n) {
		return Name{Label: "Anonymous node"}
	}
	name := Name{Label: placeholder(n)}

	switch x := n.(type) {
	case *ast.FunctionDeclaration:
		if x.ID != nil && x.ID.Name != "" {
			name.Label = x.ID.Name + call(x)
		}

	case *ast.FunctionExpression:
		name.Label = "function" + call(x)

	case *ast.ObjectExpression:
		name.Label = "closure "
		name.Details = FormatProperties(x, maxLen)

	case *ast.Property:
		key, hasKey := keyName(x.Key)
		switch v := x.Value.(type) {
		case *ast.FunctionExpression:
			if hasKey {
				name.Label = key + call(v)
			} else {
				name.Label = "function" + call(v)
			}
		case *ast.ObjectExpression:
			if hasKey {
				name.Label = key + " "
				name.Details = FormatProperties(v, maxLen)
			}
		default:
			if hasKey {
				name.Label = key
			}
		}

	case *ast.VariableDeclarator:
		id := ast.NameOf(x.ID)
		switch init := x.Init.(type) {
		case *ast.ObjectExpression:
			if id != "" {
				name.Label = "var " + id + " = "
				name.Details = FormatProperties(init, maxLen)
			}
		case *ast.FunctionExpression:
			if id == "" {
				return resolveName(init, maxLen)
			}
			name.Label = id + call(init)
		}

	case *ast.AssignmentExpression:
		if ast.IsNil(x.Left) || ast.IsNil(x.Right) {
			break
		}
		obj, isObject := x.Right.(*ast.ObjectExpression)
		fn, isFunction := x.Right.(*ast.FunctionExpression)
		if !isObject && !isFunction {
			break
		}
		target := ast.NameOf(x.Left)
		if target == "" {
			target = ExpandMemberPath(x.Left, "")
		}
		if target == "" {
			return resolveName(x.Right, maxLen)
		}
		if isObject {
			name.Label = target + " "
			name.Details = FormatProperties(obj, maxLen)
		} else {
			name.Label = target + call(fn)
		}

	case *ast.ReturnStatement:
		switch x.Argument.(type) {
		case *ast.ObjectExpression, *ast.FunctionExpression:
			if !ast.IsNil(x.Argument) {
				name.Label = "return "
				name.Details = FormatProperties(x.Argument, maxLen)
			}
		}
	}

	return name
}

func placeholder(n ast.Node) string {
	return "Anonymous " + string(n.Kind())
}

// call renders the parenthesized parameter list of a function node.
func call(fn ast.Node) string {
	params, _ := FormatParams(fn)
	return "(" + params + ")"
}

// keyName returns the display name of a property key: the identifier name,
// or the value of a literal key.
func keyName(key ast.Node) (string, bool) {
	switch k := key.(type) {
	case *ast.Identifier:
		if k != nil && k.Name != "" {
			return k.Name, true
		}
	case *ast.Literal:
		if k != nil && k.Value != "" {
			return k.Value, true
		}
	}
	return "", false
}
