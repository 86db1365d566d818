package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"jsoutline/internal/crawler"
	"jsoutline/internal/extractor"
	"jsoutline/internal/git"
	"jsoutline/internal/index"
	"jsoutline/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSync(t *testing.T, root string, changes []git.ChangedFile, err error) (*IncrementalSync, *storage.SQLiteStore) {
	t.Helper()
	ext, extErr := extractor.NewExtractor("javascript")
	require.NoError(t, extErr)
	store, storeErr := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, storeErr)
	t.Cleanup(func() { store.Close() })

	s := NewIncrementalSync(root, index.NewIndexer(crawler.NewCrawler(ext), store, nil), store, nil)
	s.Changes = func(context.Context, string, string) ([]git.ChangedFile, error) {
		return changes, err
	}
	return s, store
}

func TestIncrementalSync_Run(t *testing.T) {
	root := t.TempDir()
	src := "function a() {}\n\nfunction b(x) {\n  return x;\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.js"), []byte(src), 0o644))

	s, store := newSync(t, root, []git.ChangedFile{{Path: "app.js", ChangedLines: []int{4}}}, nil)
	result, err := s.Run(context.Background(), false)
	require.NoError(t, err)

	assert.False(t, result.FullResync)
	assert.Equal(t, 1, result.Stats.Indexed)
	require.NotNil(t, result.Impact)
	require.Len(t, result.Impact.DirectlyAffected, 1)
	assert.Equal(t, "b(x)", result.Impact.DirectlyAffected[0].Label)

	units, err := store.FindByFile(context.Background(), "app.js")
	require.NoError(t, err)
	assert.Len(t, units, 2)
}

func TestIncrementalSync_NoChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.js"), []byte("function a() {}"), 0o644))

	t.Run("Without force", func(t *testing.T) {
		s, _ := newSync(t, root, nil, nil)
		result, err := s.Run(context.Background(), false)
		require.NoError(t, err)
		assert.False(t, result.FullResync)
		assert.Equal(t, index.Stats{}, result.Stats)
		assert.Nil(t, result.Impact)
	})

	t.Run("With force", func(t *testing.T) {
		s, store := newSync(t, root, nil, nil)
		result, err := s.Run(context.Background(), true)
		require.NoError(t, err)
		assert.True(t, result.FullResync)
		assert.Equal(t, 1, result.Stats.Indexed)

		files, err := store.Files(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"a.js"}, files)
	})
}

func TestIncrementalSync_Rename(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "old.js"), []byte("function alpha() {}\n"), 0o644))

	s, store := newSync(t, root, []git.ChangedFile{
		{Path: "old.js", ChangedLines: []int{}, Deleted: true},
		{Path: "new.js", ChangedLines: []int{}},
	}, nil)
	_, err := s.indexer.Build(context.Background(), root)
	require.NoError(t, err)

	require.NoError(t, os.Rename(filepath.Join(root, "old.js"), filepath.Join(root, "new.js")))
	result, err := s.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, index.Stats{Indexed: 1, Removed: 1}, result.Stats)

	files, err := store.Files(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"new.js"}, files)

	units, err := store.FindByLabel(context.Background(), "alpha", 10)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "new.js", units[0].Filepath)
}

func TestIncrementalSync_GitFailure(t *testing.T) {
	s, _ := newSync(t, t.TempDir(), nil, errors.New("not a git repository"))
	_, err := s.Run(context.Background(), false)
	assert.ErrorContains(t, err, "not a git repository")
}
