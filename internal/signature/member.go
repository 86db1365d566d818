package signature

import "jsoutline/internal/ast"

// ExpandMemberPath flattens a chained member access into its dotted path,
// prefixing suffix. `a.b.c` yields "a.b.c". Any other node returns suffix
// unchanged.
func ExpandMemberPath(n ast.Node, suffix string) string {
	m, ok := n.(*ast.MemberExpression)
	if !ok || m == nil {
		return suffix
	}

	path := suffix
	if prop := memberPropertyName(m.Property); prop != "" {
		if path != "" {
			path = prop + "." + path
		} else {
			path = prop
		}
	}
	if root := ast.NameOf(m.Object); root != "" {
		path = root + "." + path
	}
	return ExpandMemberPath(m.Object, path)
}

// memberPropertyName prefers the literal value for computed keys like a["b"].
func memberPropertyName(prop ast.Node) string {
	if lit, ok := prop.(*ast.Literal); ok && lit != nil {
		return lit.Value
	}
	return ast.NameOf(prop)
}
