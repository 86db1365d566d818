package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"jsoutline/internal/ast"
	"jsoutline/internal/signature"
)

// Extractor orchestrates the extraction process using language-specific extractors.
type Extractor struct {
	langExtractor LanguageExtractor
	resolver      *signature.Resolver
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithResolver replaces the default signature resolver.
func WithResolver(r *signature.Resolver) Option {
	return func(e *Extractor) {
		e.resolver = r
	}
}

// NewExtractor creates a new extractor for a given language.
func NewExtractor(lang string, opts ...Option) (*Extractor, error) {
	var langExt LanguageExtractor
	switch lang {
	case "javascript", "js":
		langExt = &JSExtractor{}
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}

	e := &Extractor{langExtractor: langExt}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = signature.New()
	}
	return e, nil
}

// Language returns the name of the configured language.
func (e *Extractor) Language() string {
	return e.langExtractor.Name()
}

// Supports reports whether path has one of the language's file extensions.
func (e *Extractor) Supports(path string) bool {
	return slices.Contains(e.langExtractor.Extensions(), strings.ToLower(filepath.Ext(path)))
}

// ExtractFromFile parses a single source file and extracts its outline units.
func (e *Extractor) ExtractFromFile(ctx context.Context, path string) ([]*OutlineUnit, error) {
	sourceCode, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return e.ExtractFromSource(ctx, path, sourceCode)
}

// ExtractFromSource extracts outline units from in-memory content. path is
// only recorded on the units.
func (e *Extractor) ExtractFromSource(ctx context.Context, path string, sourceCode []byte) ([]*OutlineUnit, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(e.langExtractor.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	defer tree.Close()

	w := &walker{
		lang:    e.langExtractor,
		resolve: e.resolver,
		src:     NewSource(sourceCode),
		path:    path,
		claimed: make(map[nodeKey]bool),
	}

	cursor := sitter.NewTreeCursor(tree.RootNode())
	defer cursor.Close()
	w.visit(cursor, "")

	return w.units, nil
}

type nodeKey struct {
	start, end uint32
	typ        string
}

func keyOf(n *sitter.Node) nodeKey {
	return nodeKey{start: n.StartByte(), end: n.EndByte(), typ: n.Type()}
}

// walker collects outline units in document order, nesting each unit under
// the closest enclosing one.
type walker struct {
	lang    LanguageExtractor
	resolve *signature.Resolver
	src     *Source
	path    string
	units   []*OutlineUnit
	// claimed holds function and object values already represented by the
	// property, declarator, assignment or return that owns them.
	claimed map[nodeKey]bool
}

func (w *walker) visit(c *sitter.TreeCursor, parent string) {
	n := c.CurrentNode()
	if n.IsNamed() {
		if unit := w.unitFor(n, parent); unit != nil {
			w.units = append(w.units, unit)
			parent = unit.ID
		}
	}

	if c.GoToFirstChild() {
		w.visit(c, parent)
		for c.GoToNextSibling() {
			w.visit(c, parent)
		}
		c.GoToParent()
	}
}

func (w *walker) unitFor(n *sitter.Node, parent string) *OutlineUnit {
	// parentheses convert to their content, which is visited on its own
	if n.Type() == "parenthesized_expression" || w.claimed[keyOf(n)] {
		return nil
	}
	node := w.lang.Convert(n, w.src)
	if !outlined(node) {
		return nil
	}
	w.claimValue(n)

	sig, ok := w.resolve.Compute(node)
	if !ok {
		return nil
	}
	unit := &OutlineUnit{
		Filepath:  w.path,
		Language:  w.lang.Name(),
		Kind:      node.Kind(),
		Label:     sig.Label,
		Details:   sig.Details,
		Selection: sig.Range,
		StartLine: int(n.StartPoint().Row + 1),
		EndLine:   int(n.EndPoint().Row + 1),
		Parent:    parent,
	}
	if loc := node.Loc(); loc != nil {
		unit.Extent = *loc
	}
	unit.ID = BuildStableUnitID(unit)
	return unit
}

// claimValue marks the function or object a container unit already describes.
func (w *walker) claimValue(n *sitter.Node) {
	var value *sitter.Node
	switch n.Type() {
	case "pair", "variable_declarator":
		value = n.ChildByFieldName("value")
	case "assignment_expression", "augmented_assignment_expression":
		value = n.ChildByFieldName("right")
	case "return_statement":
		value = firstNamedChild(n)
	}
	for value != nil && value.Type() == "parenthesized_expression" {
		value = firstNamedChild(value)
	}
	if value != nil {
		w.claimed[keyOf(value)] = true
	}
}

// outlined reports whether node deserves its own outline entry.
func outlined(node ast.Node) bool {
	switch x := node.(type) {
	case *ast.FunctionDeclaration, *ast.FunctionExpression, *ast.ObjectExpression:
		return true
	case *ast.Property:
		return isFunctionOrObject(x.Value)
	case *ast.VariableDeclarator:
		return isFunctionOrObject(x.Init)
	case *ast.AssignmentExpression:
		return isFunctionOrObject(x.Right)
	case *ast.ReturnStatement:
		return isFunctionOrObject(x.Argument)
	}
	return false
}

func isFunctionOrObject(n ast.Node) bool {
	if ast.IsNil(n) {
		return false
	}
	switch n.(type) {
	case *ast.FunctionExpression, *ast.ObjectExpression:
		return true
	}
	return false
}
