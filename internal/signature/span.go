package signature

import "jsoutline/internal/ast"

const (
	returnKeywordWidth   = len("return")
	functionKeywordWidth = len("function")
)

// ResolveRange picks the part of a node's source an editor should select.
//
// Assignments select their left side and properties their key. Return
// statements and anonymous function expressions select only the leading
// keyword, measured by its fixed width rather than the source text. Named
// nodes select their identifier; anything else selects itself. A start
// offset below 1 is raised to 1.
func ResolveRange(n ast.Node) ast.Range {
	var r ast.Range
	if ast.IsNil(n) {
		return r
	}

	switch x := n.(type) {
	case *ast.AssignmentExpression:
		if loc := ast.LocOf(x.Left); loc != nil {
			r = *loc
		}
	case *ast.Property:
		if loc := ast.LocOf(x.Key); loc != nil {
			r = *loc
		}
	case *ast.ReturnStatement:
		if loc := x.Loc(); loc != nil {
			r = ast.Range{Start: loc.Start, End: loc.Start + returnKeywordWidth}
		}
	default:
		if loc := ast.LocOf(identOf(n)); loc != nil {
			r = *loc
		} else if loc := n.Loc(); loc != nil {
			r = *loc
			if n.Kind() == ast.KindFunctionExpression {
				r.End = r.Start + functionKeywordWidth
			}
		}
	}

	if r.Start < 1 {
		r.Start = 1
	}
	return r
}

// identOf returns the declared name node of n, if its kind has one.
func identOf(n ast.Node) ast.Node {
	switch x := n.(type) {
	case *ast.FunctionDeclaration:
		if x.ID != nil {
			return x.ID
		}
	case *ast.FunctionExpression:
		if x.ID != nil {
			return x.ID
		}
	case *ast.VariableDeclarator:
		return x.ID
	case *ast.Generic:
		if x.ID != nil {
			return x.ID
		}
	}
	return nil
}
