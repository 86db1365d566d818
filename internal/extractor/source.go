package extractor

import (
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"jsoutline/internal/ast"
)

// Source is a parsed file's content plus a byte to character offset table.
// Tree-sitter reports byte offsets; signatures are expressed in characters.
type Source struct {
	Content []byte
	runes   []int // nil when the content is pure ASCII
}

// NewSource indexes content for offset conversion.
func NewSource(content []byte) *Source {
	s := &Source{Content: content}
	if utf8.RuneCount(content) == len(content) {
		return s
	}

	s.runes = make([]int, len(content)+1)
	count := 0
	for i := 0; i < len(content); {
		_, size := utf8.DecodeRune(content[i:])
		for j := 0; j < size; j++ {
			s.runes[i+j] = count
		}
		i += size
		count++
	}
	s.runes[len(content)] = count
	return s
}

// Offset converts a byte offset to a character offset.
func (s *Source) Offset(b uint32) int {
	if s.runes == nil || int(b) >= len(s.runes) {
		return int(b)
	}
	return s.runes[b]
}

// Span returns the ast span of node in characters.
func (s *Source) Span(node *sitter.Node) ast.Span {
	return ast.At(s.Offset(node.StartByte()), s.Offset(node.EndByte()))
}

// Text returns the source text of node.
func (s *Source) Text(node *sitter.Node) string {
	return node.Content(s.Content)
}
