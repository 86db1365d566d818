package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"jsoutline/internal/ast"
)

// JSExtractor implements LanguageExtractor for JavaScript.
type JSExtractor struct{}

func (j *JSExtractor) GetLanguage() *sitter.Language {
	return javascript.GetLanguage()
}

func (j *JSExtractor) Name() string {
	return "javascript"
}

func (j *JSExtractor) Extensions() []string {
	return []string{".js", ".mjs", ".cjs", ".jsx"}
}

// estreeKinds names tree-sitter node types whose ESTree name is not a plain
// camel-casing of the tree-sitter type.
var estreeKinds = map[string]ast.Kind{
	"program":                "Program",
	"arrow_function":         "ArrowFunctionExpression",
	"this":                   "ThisExpression",
	"super":                  "Super",
	"array":                  "ArrayExpression",
	"object_pattern":         "ObjectPattern",
	"array_pattern":          "ArrayPattern",
	"assignment_pattern":     "AssignmentPattern",
	"rest_pattern":           "RestElement",
	"spread_element":         "SpreadElement",
	"template_string":        "TemplateLiteral",
	"regex":                  "Literal",
	"true":                   "Literal",
	"false":                  "Literal",
	"null":                   "Literal",
	"undefined":              "Identifier",
	"class":                  "ClassExpression",
	"class_declaration":      "ClassDeclaration",
	"method_definition":      "MethodDefinition",
	"lexical_declaration":    "VariableDeclaration",
	"variable_declaration":   "VariableDeclaration",
	"call_expression":        "CallExpression",
	"new_expression":         "NewExpression",
	"statement_block":        "BlockStatement",
	"expression_statement":   "ExpressionStatement",
	"binary_expression":      "BinaryExpression",
	"unary_expression":       "UnaryExpression",
	"update_expression":      "UpdateExpression",
	"ternary_expression":     "ConditionalExpression",
	"sequence_expression":    "SequenceExpression",
	"computed_property_name": "ComputedPropertyName",
	"export_statement":       "ExportNamedDeclaration",
	"import_statement":       "ImportDeclaration",
	"field_definition":       "PropertyDefinition",
}

// Convert maps a tree-sitter JavaScript node to its ESTree-shaped ast node.
func (j *JSExtractor) Convert(n *sitter.Node, src *Source) ast.Node {
	if n == nil {
		return nil
	}

	switch n.Type() {
	case "identifier", "property_identifier", "shorthand_property_identifier",
		"private_property_identifier", "shorthand_property_identifier_pattern", "statement_identifier":
		return &ast.Identifier{Name: src.Text(n), Span: src.Span(n)}

	case "string":
		return &ast.Literal{Value: unquote(src.Text(n)), Span: src.Span(n)}

	case "number":
		return &ast.Literal{Value: src.Text(n), Span: src.Span(n)}

	case "parenthesized_expression":
		if inner := firstNamedChild(n); inner != nil {
			return j.Convert(inner, src)
		}

	case "function_declaration", "generator_function_declaration":
		return &ast.FunctionDeclaration{
			ID:     j.identifier(n.ChildByFieldName("name"), src),
			Params: j.params(n.ChildByFieldName("parameters"), src),
			Span:   src.Span(n),
		}

	case "function", "function_expression", "generator_function":
		return &ast.FunctionExpression{
			ID:     j.identifier(n.ChildByFieldName("name"), src),
			Params: j.params(n.ChildByFieldName("parameters"), src),
			Span:   src.Span(n),
		}

	case "object":
		obj := &ast.ObjectExpression{Span: src.Span(n)}
		for _, child := range namedChildren(n) {
			if child.Type() == "shorthand_property_identifier" {
				id := j.identifier(child, src)
				obj.Properties = append(obj.Properties, &ast.Property{Key: id, Value: id, Span: src.Span(child)})
				continue
			}
			obj.Properties = append(obj.Properties, j.Convert(child, src))
		}
		return obj

	case "pair":
		return &ast.Property{
			Key:   j.key(n.ChildByFieldName("key"), src),
			Value: j.Convert(n.ChildByFieldName("value"), src),
			Span:  src.Span(n),
		}

	case "method_definition":
		if n.Parent() != nil && n.Parent().Type() == "object" {
			return &ast.Property{
				Key: j.key(n.ChildByFieldName("name"), src),
				Value: &ast.FunctionExpression{
					Params: j.params(n.ChildByFieldName("parameters"), src),
					Span:   src.Span(n),
				},
				Span: src.Span(n),
			}
		}

	case "variable_declarator":
		return &ast.VariableDeclarator{
			ID:   j.Convert(n.ChildByFieldName("name"), src),
			Init: j.Convert(n.ChildByFieldName("value"), src),
			Span: src.Span(n),
		}

	case "assignment_expression", "augmented_assignment_expression":
		op := "="
		if opNode := n.ChildByFieldName("operator"); opNode != nil {
			op = src.Text(opNode)
		}
		return &ast.AssignmentExpression{
			Operator: op,
			Left:     j.Convert(n.ChildByFieldName("left"), src),
			Right:    j.Convert(n.ChildByFieldName("right"), src),
			Span:     src.Span(n),
		}

	case "return_statement":
		return &ast.ReturnStatement{
			Argument: j.Convert(firstNamedChild(n), src),
			Span:     src.Span(n),
		}

	case "member_expression":
		return &ast.MemberExpression{
			Object:   j.Convert(n.ChildByFieldName("object"), src),
			Property: j.Convert(n.ChildByFieldName("property"), src),
			Span:     src.Span(n),
		}

	case "subscript_expression":
		return &ast.MemberExpression{
			Object:   j.Convert(n.ChildByFieldName("object"), src),
			Property: j.Convert(n.ChildByFieldName("index"), src),
			Computed: true,
			Span:     src.Span(n),
		}
	}

	return j.generic(n, src)
}

// generic wraps a node the outline does not model, keeping its declared name.
func (j *JSExtractor) generic(n *sitter.Node, src *Source) ast.Node {
	g := &ast.Generic{Type: estreeKind(n.Type()), Span: src.Span(n)}
	if name := n.ChildByFieldName("name"); name != nil && strings.HasSuffix(name.Type(), "identifier") {
		g.ID = &ast.Identifier{Name: src.Text(name), Span: src.Span(name)}
	}
	return g
}

func (j *JSExtractor) identifier(n *sitter.Node, src *Source) *ast.Identifier {
	if n == nil {
		return nil
	}
	return &ast.Identifier{Name: src.Text(n), Span: src.Span(n)}
}

// key converts a property key. Computed keys other than plain literals have no name.
func (j *JSExtractor) key(n *sitter.Node, src *Source) ast.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "computed_property_name" {
		if inner := firstNamedChild(n); inner != nil && (inner.Type() == "string" || inner.Type() == "number") {
			return j.Convert(inner, src)
		}
		return j.generic(n, src)
	}
	return j.Convert(n, src)
}

func (j *JSExtractor) params(n *sitter.Node, src *Source) []ast.Node {
	if n == nil {
		return nil
	}
	// A lone arrow-style parameter is the identifier itself.
	if n.Type() == "identifier" {
		return []ast.Node{j.Convert(n, src)}
	}
	var params []ast.Node
	for _, child := range namedChildren(n) {
		params = append(params, j.Convert(child, src))
	}
	return params
}

// estreeKind maps a tree-sitter type to an ESTree type name.
func estreeKind(typ string) ast.Kind {
	if k, ok := estreeKinds[typ]; ok {
		return k
	}
	var b strings.Builder
	for _, part := range strings.Split(typ, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return ast.Kind(b.String())
}

func unquote(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}

// namedChildren returns the named children of n, skipping comments.
func namedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	children := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		children = append(children, child)
	}
	return children
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if children := namedChildren(n); len(children) > 0 {
		return children[0]
	}
	return nil
}
