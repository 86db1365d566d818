package extractor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"jsoutline/internal/ast"
	"jsoutline/internal/signature"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_ExtractFromFile(t *testing.T) {
	testFile := filepath.Join("testdata", "sample.js")

	ext, err := NewExtractor("javascript")
	require.NoError(t, err)

	units, err := ext.ExtractFromFile(context.Background(), testFile)
	require.NoError(t, err)

	// Group units by label for easier lookup
	unitsByLabel := make(map[string]*OutlineUnit)
	for _, unit := range units {
		unitsByLabel[unit.Label] = unit
	}

	t.Run("Overall Count", func(t *testing.T) {
		labels := make([]string, 0, len(units))
		for _, u := range units {
			labels = append(labels, u.Label)
		}
		assert.Equal(t, []string{
			"add(x, y)",
			"var config = ",
			"start(port)",
			"nested ",
			"app.routes.home(req, res)",
			"return ",
			"function(require)",
		}, labels)
	})

	t.Run("Function Declaration", func(t *testing.T) {
		unit, ok := unitsByLabel["add(x, y)"]
		require.True(t, ok)
		assert.Equal(t, ast.KindFunctionDeclaration, unit.Kind)
		assert.Equal(t, ast.Range{Start: 9, End: 12}, unit.Selection)
		assert.Equal(t, 1, unit.StartLine)
		assert.Equal(t, 3, unit.EndLine)
		assert.Empty(t, unit.Parent)
		assert.Equal(t, "javascript", unit.Language)
	})

	t.Run("Object Declarator", func(t *testing.T) {
		unit, ok := unitsByLabel["var config = "]
		require.True(t, ok)
		assert.Equal(t, ast.KindVariableDeclarator, unit.Kind)
		assert.Equal(t, "{name, start, nested}", unit.Details)
		assert.Equal(t, "config", readRange(t, testFile, unit.Selection))
	})

	t.Run("Properties", func(t *testing.T) {
		config := unitsByLabel["var config = "]
		start := unitsByLabel["start(port)"]
		require.NotNil(t, start)
		assert.Equal(t, config.ID, start.Parent)
		assert.Equal(t, "start", readRange(t, testFile, start.Selection))

		nested := unitsByLabel["nested "]
		require.NotNil(t, nested)
		assert.Equal(t, "{a, b}", nested.Details)
		assert.Equal(t, config.ID, nested.Parent)
	})

	t.Run("Member Assignment", func(t *testing.T) {
		unit := unitsByLabel["app.routes.home(req, res)"]
		require.NotNil(t, unit)
		assert.Equal(t, ast.KindAssignmentExpression, unit.Kind)
		assert.Equal(t, "app.routes.home", readRange(t, testFile, unit.Selection))

		ret := unitsByLabel["return "]
		require.NotNil(t, ret)
		assert.Equal(t, "{status, body}", ret.Details)
		assert.Equal(t, unit.ID, ret.Parent)
		assert.Equal(t, "return", readRange(t, testFile, ret.Selection))
	})

	t.Run("Anonymous Function Argument", func(t *testing.T) {
		unit := unitsByLabel["function(require)"]
		require.NotNil(t, unit)
		assert.Equal(t, ast.KindFunctionExpression, unit.Kind)
		assert.Equal(t, "function", readRange(t, testFile, unit.Selection))
	})

	t.Run("Stable IDs", func(t *testing.T) {
		again, err := ext.ExtractFromFile(context.Background(), testFile)
		require.NoError(t, err)
		require.Len(t, again, len(units))
		seen := make(map[string]bool)
		for i := range units {
			assert.Equal(t, units[i].ID, again[i].ID)
			assert.False(t, seen[units[i].ID], "duplicate id %s", units[i].ID)
			seen[units[i].ID] = true
		}
	})
}

func TestExtractor_ExtractFromSource(t *testing.T) {
	ext, err := NewExtractor("js", WithResolver(signature.New(signature.WithMaxPropertyLength(3))))
	require.NoError(t, err)

	t.Run("start of buffer is floored", func(t *testing.T) {
		units, err := ext.ExtractFromSource(context.Background(), "inline.js", []byte("x = {a: 1, b: 2};"))
		require.NoError(t, err)
		require.Len(t, units, 1)
		assert.Equal(t, "x ", units[0].Label)
		assert.Equal(t, "{a...}", units[0].Details)
		assert.Equal(t, ast.Range{Start: 1, End: 1}, units[0].Selection)
	})

	t.Run("quoted keys and shorthand methods", func(t *testing.T) {
		src := "var api = {'get-all': function() {}, list(page) {}, count};"
		units, err := ext.ExtractFromSource(context.Background(), "inline.js", []byte(src))
		require.NoError(t, err)
		require.Len(t, units, 3)
		assert.Equal(t, "var api = ", units[0].Label)
		assert.Equal(t, "{...}", units[0].Details)
		assert.Equal(t, "get-all()", units[1].Label)
		assert.Equal(t, "list(page)", units[2].Label)
	})

	t.Run("immediately invoked function", func(t *testing.T) {
		src := "(function(jq) { return {init: function() {}}; })(jQuery);"
		units, err := ext.ExtractFromSource(context.Background(), "inline.js", []byte(src))
		require.NoError(t, err)
		require.Len(t, units, 3)
		assert.Equal(t, "function(jq)", units[0].Label)
		assert.Equal(t, ast.Range{Start: 1, End: 9}, units[0].Selection)
		assert.Equal(t, "return ", units[1].Label)
		assert.Equal(t, ast.Range{Start: 16, End: 22}, units[1].Selection)
		assert.Equal(t, "init()", units[2].Label)
		assert.Equal(t, units[1].ID, units[2].Parent)
	})

	t.Run("character offsets", func(t *testing.T) {
		src := "// héllo\nfunction f() {}"
		units, err := ext.ExtractFromSource(context.Background(), "inline.js", []byte(src))
		require.NoError(t, err)
		require.Len(t, units, 1)
		// "f" is byte 19 but character 18.
		assert.Equal(t, ast.Range{Start: 18, End: 19}, units[0].Selection)
	})
}

func TestNewExtractor_Unsupported(t *testing.T) {
	_, err := NewExtractor("cobol")
	assert.Error(t, err)
}

func TestExtractor_Supports(t *testing.T) {
	ext, err := NewExtractor("javascript")
	require.NoError(t, err)
	assert.True(t, ext.Supports("a/b/app.js"))
	assert.True(t, ext.Supports("lib.MJS"))
	assert.False(t, ext.Supports("main.go"))
}

func TestSource_Offset(t *testing.T) {
	ascii := NewSource([]byte("abc"))
	assert.Equal(t, 2, ascii.Offset(2))

	s := NewSource([]byte("aé b"))
	assert.Equal(t, 0, s.Offset(0))
	assert.Equal(t, 1, s.Offset(1))
	assert.Equal(t, 2, s.Offset(3))
	assert.Equal(t, 3, s.Offset(4))
	assert.Equal(t, 4, s.Offset(5))
}

func readRange(t *testing.T, path string, r ast.Range) string {
	t.Helper()
	content := readFile(t, path)
	runes := []rune(string(content))
	require.LessOrEqual(t, r.End, len(runes))
	return string(runes[r.Start:r.End])
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return content
}
