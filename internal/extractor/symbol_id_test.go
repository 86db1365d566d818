package extractor

import (
	"testing"

	"jsoutline/internal/ast"

	"github.com/stretchr/testify/assert"
)

func TestBuildStableUnitID(t *testing.T) {
	base := &OutlineUnit{
		Filepath: "src/app.js",
		Language: "javascript",
		Kind:     ast.KindFunctionDeclaration,
		Label:    "add(x, y)",
		Extent:   ast.Range{Start: 0, End: 30},
	}

	id := BuildStableUnitID(base)
	assert.Contains(t, id, "javascript/src/app.js:FunctionDeclaration:")

	same := *base
	same.Label = "add(x,   y)"
	assert.Equal(t, id, BuildStableUnitID(&same))

	moved := *base
	moved.Extent = ast.Range{Start: 40, End: 70}
	assert.NotEqual(t, id, BuildStableUnitID(&moved))

	assert.Empty(t, BuildStableUnitID(nil))
}
