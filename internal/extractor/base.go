package extractor

import (
	"jsoutline/internal/ast"

	sitter "github.com/smacker/go-tree-sitter"
)

// OutlineUnit is one entry of a file outline: a named code element with its
// display signature and the range an editor should select.
type OutlineUnit struct {
	ID        string    `json:"id" yaml:"id"`
	Filepath  string    `json:"filepath" yaml:"filepath"`
	Language  string    `json:"language" yaml:"language"`
	Kind      ast.Kind  `json:"kind" yaml:"kind"`
	Label     string    `json:"label" yaml:"label"`
	Details   string    `json:"details,omitempty" yaml:"details,omitempty"`
	Selection ast.Range `json:"selection" yaml:"selection"` // signature range, character offsets
	Extent    ast.Range `json:"extent" yaml:"extent"`       // whole node, character offsets
	StartLine int       `json:"start_line" yaml:"start_line"`
	EndLine   int       `json:"end_line" yaml:"end_line"`
	Parent    string    `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// LanguageExtractor converts one grammar's concrete syntax tree into ast nodes.
type LanguageExtractor interface {
	GetLanguage() *sitter.Language
	Name() string
	Extensions() []string
	// Convert maps node to its ast form. Nodes the outline has no interest in
	// come back as *ast.Generic.
	Convert(node *sitter.Node, src *Source) ast.Node
}
