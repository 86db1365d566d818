package signature

import (
	"strings"
	"unicode/utf8"

	"jsoutline/internal/ast"
)

const (
	complexName = "Object"
	ellipsis    = "..."
	separator   = ", "
)

// FormatParams joins the parameter names of a function node in declaration
// order. Destructuring and other non-identifier parameters render as "Object".
// The boolean is false when the node has no parameters.
func FormatParams(n ast.Node) (string, bool) {
	var params []ast.Node
	switch fn := n.(type) {
	case *ast.FunctionDeclaration:
		if fn != nil {
			params = fn.Params
		}
	case *ast.FunctionExpression:
		if fn != nil {
			params = fn.Params
		}
	}
	if len(params) == 0 {
		return "", false
	}

	names := make([]string, 0, len(params))
	for _, p := range params {
		if name := ast.NameOf(p); name != "" {
			names = append(names, name)
		} else {
			names = append(names, complexName)
		}
	}
	return strings.Join(names, separator), true
}

// FormatProperties renders the property names of an object literal as
// "{a, b, c}". Names are added greedily in order; once the next name and its
// separator would push the text past maxLength+1 characters an ellipsis is
// written instead and the list ends. Nodes without properties give "{...}".
func FormatProperties(n ast.Node, maxLength int) string {
	if maxLength < 0 {
		maxLength = 0
	}

	var props []ast.Node
	if obj, ok := n.(*ast.ObjectExpression); ok && obj != nil {
		props = obj.Properties
	}
	if len(props) == 0 {
		return "{" + ellipsis + "}"
	}

	var b strings.Builder
	b.WriteString("{")
	length := 1
	for i, p := range props {
		candidate := propertyName(p)
		if i > 0 {
			candidate = separator + candidate
		}
		width := utf8.RuneCountInString(candidate)
		if length+width > maxLength+1 {
			b.WriteString(ellipsis)
			break
		}
		b.WriteString(candidate)
		length += width
	}
	b.WriteString("}")
	return b.String()
}

func propertyName(p ast.Node) string {
	if prop, ok := p.(*ast.Property); ok && prop != nil {
		if name, ok := keyName(prop.Key); ok {
			return name
		}
	}
	return complexName
}
