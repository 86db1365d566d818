// Package ast holds the syntax node model consumed by the signature resolver.
// Nodes mirror the ESTree shapes the outline cares about; every other construct
// is carried as a Generic node so that callers can still ask for a signature.
package ast

// Kind discriminates node shapes. Values use ESTree type names.
type Kind string

const (
	KindIdentifier           Kind = "Identifier"
	KindLiteral              Kind = "Literal"
	KindFunctionDeclaration  Kind = "FunctionDeclaration"
	KindFunctionExpression   Kind = "FunctionExpression"
	KindObjectExpression     Kind = "ObjectExpression"
	KindProperty             Kind = "Property"
	KindVariableDeclarator   Kind = "VariableDeclarator"
	KindAssignmentExpression Kind = "AssignmentExpression"
	KindReturnStatement      Kind = "ReturnStatement"
	KindMemberExpression     Kind = "MemberExpression"
)

// Range is a half-open [Start, End) span of character offsets.
type Range struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the width of the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether offset falls inside the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Node is implemented by every syntax node.
type Node interface {
	Kind() Kind
	// Loc returns the node's own source range, or nil if the parser did not record one.
	Loc() *Range
}

// Span carries the optional source range of a node.
type Span struct {
	Range *Range
}

// Loc implements Node.
func (s Span) Loc() *Range {
	return s.Range
}

// At builds a Span covering [start, end).
func At(start, end int) Span {
	return Span{Range: &Range{Start: start, End: end}}
}

// Identifier is a bare name such as a function name or a parameter.
type Identifier struct {
	Name string
	Span
}

// Literal is a string or numeric literal. Value holds the unquoted text.
type Literal struct {
	Value string
	Span
}

type FunctionDeclaration struct {
	ID     *Identifier
	Params []Node
	Span
}

type FunctionExpression struct {
	ID     *Identifier
	Params []Node
	Span
}

// ObjectExpression is an object literal. Properties are usually *Property,
// spread elements show up as Generic nodes.
type ObjectExpression struct {
	Properties []Node
	Span
}

// Property is a key/value entry of an object literal. Key is an *Identifier
// or a *Literal when written as a quoted or numeric key.
type Property struct {
	Key   Node
	Value Node
	Span
}

// VariableDeclarator is one `name = init` binding of a declaration. ID is an
// *Identifier or a destructuring pattern.
type VariableDeclarator struct {
	ID   Node
	Init Node
	Span
}

type AssignmentExpression struct {
	Operator string
	Left     Node
	Right    Node
	Span
}

type ReturnStatement struct {
	Argument Node
	Span
}

// MemberExpression is a property access. Nested accesses hang off Object,
// so `a.b.c` is Member(Member(a, b), c).
type MemberExpression struct {
	Object   Node
	Property Node
	Computed bool
	Span
}

// Generic stands in for any construct outside the shapes above. ID is set
// when the construct declares a name (classes, for example).
type Generic struct {
	Type Kind
	ID   *Identifier
	Span
}

func (*Identifier) Kind() Kind           { return KindIdentifier }
func (*Literal) Kind() Kind              { return KindLiteral }
func (*FunctionDeclaration) Kind() Kind  { return KindFunctionDeclaration }
func (*FunctionExpression) Kind() Kind   { return KindFunctionExpression }
func (*ObjectExpression) Kind() Kind     { return KindObjectExpression }
func (*Property) Kind() Kind             { return KindProperty }
func (*VariableDeclarator) Kind() Kind   { return KindVariableDeclarator }
func (*AssignmentExpression) Kind() Kind { return KindAssignmentExpression }
func (*ReturnStatement) Kind() Kind      { return KindReturnStatement }
func (*MemberExpression) Kind() Kind     { return KindMemberExpression }
func (g *Generic) Kind() Kind            { return g.Type }

// IsNil reports whether n is nil, including a typed nil pointer stored in the interface.
func IsNil(n Node) bool {
	switch x := n.(type) {
	case nil:
		return true
	case *Identifier:
		return x == nil
	case *Literal:
		return x == nil
	case *FunctionDeclaration:
		return x == nil
	case *FunctionExpression:
		return x == nil
	case *ObjectExpression:
		return x == nil
	case *Property:
		return x == nil
	case *VariableDeclarator:
		return x == nil
	case *AssignmentExpression:
		return x == nil
	case *ReturnStatement:
		return x == nil
	case *MemberExpression:
		return x == nil
	case *Generic:
		return x == nil
	}
	return false
}

// LocOf returns the range of n, tolerating nil nodes.
func LocOf(n Node) *Range {
	if IsNil(n) {
		return nil
	}
	return n.Loc()
}

// NameOf returns the name of an identifier node and "" for anything else.
func NameOf(n Node) string {
	if id, ok := n.(*Identifier); ok && id != nil {
		return id.Name
	}
	return ""
}
