package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsoutline/internal/cache"
	"jsoutline/internal/extractor"
	"jsoutline/internal/metrics"
	"jsoutline/internal/storage"
)

const appJS = `function start(port) {
  var config = {name: 'demo', retries: 3};
  return config;
}
`

func newHandler(t *testing.T, opts ...Option) (*Handler, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.js"), []byte(appJS), 0o644))
	ext, err := extractor.NewExtractor("javascript")
	require.NoError(t, err)
	return NewHandler(root, ext, opts...), root
}

func call(t *testing.T, h *Handler, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	for _, tool := range Tools(h) {
		if tool.Tool.Name != name {
			continue
		}
		result, err := tool.Handler(context.Background(), mcp.CallToolRequest{
			Params: mcp.CallToolParams{Name: name, Arguments: args},
		})
		require.NoError(t, err)
		return result
	}
	t.Fatalf("tool %s not registered", name)
	return nil
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent")
	return tc.Text
}

func TestNew(t *testing.T) {
	h, _ := newHandler(t)
	assert.NotNil(t, New(h, "test"))
	assert.Len(t, Tools(h), 3)
}

func TestOutlineTool(t *testing.T) {
	h, _ := newHandler(t)

	result := call(t, h, "outline", map[string]any{"path": "app.js"})
	require.False(t, result.IsError, text(t, result))

	var units []extractor.OutlineUnit
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &units))
	require.Len(t, units, 2)
	assert.Equal(t, "start(port)", units[0].Label)
	assert.Equal(t, "var config = ", units[1].Label)
	assert.Equal(t, "{name, retries}", units[1].Details)
	assert.Equal(t, "app.js", units[1].Filepath)

	t.Run("Missing path", func(t *testing.T) {
		result := call(t, h, "outline", map[string]any{})
		assert.True(t, result.IsError)
	})

	t.Run("Unreadable file", func(t *testing.T) {
		result := call(t, h, "outline", map[string]any{"path": "missing.js"})
		assert.True(t, result.IsError)
	})
}

func TestSignatureAtTool(t *testing.T) {
	h, _ := newHandler(t)

	// inside the object literal of config
	result := call(t, h, "signature_at", map[string]any{"path": "app.js", "offset": float64(45)})
	require.False(t, result.IsError, text(t, result))
	var unit extractor.OutlineUnit
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &unit))
	assert.Equal(t, "var config = ", unit.Label)

	// on the return statement, only the function encloses it
	result = call(t, h, "signature_at", map[string]any{"path": "app.js", "offset": float64(70)})
	require.False(t, result.IsError, text(t, result))
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &unit))
	assert.Equal(t, "start(port)", unit.Label)

	result = call(t, h, "signature_at", map[string]any{"path": "app.js", "offset": float64(500)})
	assert.True(t, result.IsError)

	result = call(t, h, "signature_at", map[string]any{"path": "app.js", "offset": float64(-1)})
	assert.True(t, result.IsError)
}

func TestFindSymbolTool(t *testing.T) {
	t.Run("Without index", func(t *testing.T) {
		h, _ := newHandler(t)
		result := call(t, h, "find_symbol", map[string]any{"query": "start"})
		assert.True(t, result.IsError)
	})

	t.Run("With index", func(t *testing.T) {
		store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "idx.db"))
		require.NoError(t, err)
		defer store.Close()

		h, _ := newHandler(t, WithStore(store))
		units, err := h.Outline(context.Background(), "app.js")
		require.NoError(t, err)
		require.NoError(t, store.ReplaceFile(context.Background(), "app.js", "h", units))

		result := call(t, h, "find_symbol", map[string]any{"query": "CONFIG", "limit": float64(5)})
		require.False(t, result.IsError, text(t, result))
		var found []extractor.OutlineUnit
		require.NoError(t, json.Unmarshal([]byte(text(t, result)), &found))
		require.Len(t, found, 1)
		assert.Equal(t, "var config = ", found[0].Label)
	})
}

func TestHandler_OutlineCache(t *testing.T) {
	oc, err := cache.New(1<<20, 0)
	require.NoError(t, err)
	defer oc.Close()
	m := metrics.New()

	h, root := newHandler(t, WithCache(oc), WithMetrics(m))
	ctx := context.Background()

	first, err := h.Outline(ctx, filepath.Join(root, "app.js"))
	require.NoError(t, err)
	oc.Wait()

	second, err := h.Outline(ctx, "app.js")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	expected := `
# HELP jsoutline_outline_cache_requests_total Outline cache lookups by result.
# TYPE jsoutline_outline_cache_requests_total counter
jsoutline_outline_cache_requests_total{result="hit"} 1
jsoutline_outline_cache_requests_total{result="miss"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "jsoutline_outline_cache_requests_total"))
}
