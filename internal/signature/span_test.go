package signature

import (
	"testing"

	"jsoutline/internal/ast"

	"github.com/stretchr/testify/assert"
)

func TestResolveRange(t *testing.T) {
	tests := []struct {
		name string
		node ast.Node
		want ast.Range
	}{
		{
			name: "assignment uses left side",
			node: &ast.AssignmentExpression{Left: ident("x", 5, 6), Right: fnExpr(), Span: ast.At(5, 30)},
			want: ast.Range{Start: 5, End: 6},
		},
		{
			name: "assignment without left range keeps default",
			node: &ast.AssignmentExpression{Left: &ast.Identifier{Name: "x"}, Span: ast.At(5, 30)},
			want: ast.Range{Start: 1, End: 0},
		},
		{
			name: "property uses key",
			node: &ast.Property{Key: ident("k", 12, 13), Value: fnExpr(), Span: ast.At(12, 40)},
			want: ast.Range{Start: 12, End: 13},
		},
		{
			name: "return is keyword wide",
			node: &ast.ReturnStatement{Span: ast.At(100, 140)},
			want: ast.Range{Start: 100, End: 106},
		},
		{
			name: "identifier range wins",
			node: &ast.FunctionDeclaration{ID: ident("f", 9, 10), Span: ast.At(0, 50)},
			want: ast.Range{Start: 9, End: 10},
		},
		{
			name: "named function expression uses identifier",
			node: &ast.FunctionExpression{ID: ident("inner", 20, 25), Span: ast.At(11, 60)},
			want: ast.Range{Start: 20, End: 25},
		},
		{
			name: "anonymous function expression is keyword wide",
			node: &ast.FunctionExpression{Span: ast.At(11, 60)},
			want: ast.Range{Start: 11, End: 19},
		},
		{
			name: "declarator uses its binding",
			node: &ast.VariableDeclarator{ID: ident("v", 4, 5), Init: object(), Span: ast.At(4, 20)},
			want: ast.Range{Start: 4, End: 5},
		},
		{
			name: "generic with identifier",
			node: &ast.Generic{Type: "ClassDeclaration", ID: ident("Shape", 6, 11), Span: ast.At(0, 30)},
			want: ast.Range{Start: 6, End: 11},
		},
		{
			name: "own range",
			node: &ast.ObjectExpression{Span: ast.At(7, 9)},
			want: ast.Range{Start: 7, End: 9},
		},
		{
			name: "no range at all",
			node: &ast.ObjectExpression{},
			want: ast.Range{Start: 1, End: 0},
		},
		{
			name: "start floor",
			node: &ast.ObjectExpression{Span: ast.At(0, 9)},
			want: ast.Range{Start: 1, End: 9},
		},
		{
			name: "return at buffer start",
			node: &ast.ReturnStatement{Span: ast.At(0, 9)},
			want: ast.Range{Start: 1, End: 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRange(tt.node))
		})
	}
}

func TestResolveRange_DoesNotMutateNode(t *testing.T) {
	fn := &ast.FunctionExpression{Span: ast.At(0, 60)}
	_ = ResolveRange(fn)
	assert.Equal(t, ast.Range{Start: 0, End: 60}, *fn.Loc())
}
