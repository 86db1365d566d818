// Package index keeps the SQLite outline index in step with a project tree.
package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"jsoutline/internal/crawler"
	"jsoutline/internal/storage"
)

// Stats summarizes one indexing pass.
type Stats struct {
	Indexed   int `json:"indexed"`
	Unchanged int `json:"unchanged"`
	Removed   int `json:"removed"`
	Failed    int `json:"failed"`
}

// Indexer orchestrates codebase indexing.
type Indexer struct {
	crawler *crawler.Crawler
	store   storage.OutlineStore
	logger  *slog.Logger
}

// NewIndexer creates a new indexer.
func NewIndexer(c *crawler.Crawler, store storage.OutlineStore, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		crawler: c,
		store:   store,
		logger:  logger,
	}
}

// Build scans root and saves the outline of every matched file whose content
// changed since the last pass. Files that disappeared from the tree are
// dropped; files that fail to parse keep their previous outline.
func (i *Indexer) Build(ctx context.Context, root string) (Stats, error) {
	var stats Stats
	seen := make(map[string]bool)
	var saveErr error

	err := i.crawler.ScanProject(ctx, root, func(f crawler.File) {
		if saveErr != nil {
			return
		}
		seen[f.Path] = true
		if f.Err != nil {
			// keep the previous outline, as Update does
			stats.Failed++
			return
		}
		changed, err := i.save(ctx, f)
		if err != nil {
			saveErr = err
			return
		}
		if changed {
			stats.Indexed++
		} else {
			stats.Unchanged++
		}
	})
	if err != nil {
		return stats, fmt.Errorf("scan failed: %w", err)
	}
	if saveErr != nil {
		return stats, saveErr
	}

	known, err := i.store.Files(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list indexed files: %w", err)
	}
	for _, path := range known {
		if seen[path] {
			continue
		}
		if err := i.store.DeleteFile(ctx, path); err != nil {
			return stats, fmt.Errorf("failed to drop %s: %w", path, err)
		}
		stats.Removed++
	}

	i.logger.Info("index built", "root", root, "indexed", stats.Indexed, "unchanged", stats.Unchanged, "removed", stats.Removed, "failed", stats.Failed)
	return stats, nil
}

// Update re-indexes only paths, given relative to root or absolute. Deleted
// files lose their units; files that fail to parse keep their previous outline.
func (i *Indexer) Update(ctx context.Context, root string, paths []string) (Stats, error) {
	var stats Stats
	done := make(map[string]bool)

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		abs, rel, err := resolve(root, p)
		if err != nil {
			i.logger.Debug("ignoring path outside root", "path", p)
			continue
		}
		if done[rel] {
			continue
		}
		done[rel] = true

		info, err := os.Stat(abs)
		if errors.Is(err, fs.ErrNotExist) {
			if _, ok, err := i.store.FileHash(ctx, rel); err != nil {
				return stats, err
			} else if ok {
				if err := i.store.DeleteFile(ctx, rel); err != nil {
					return stats, fmt.Errorf("failed to drop %s: %w", rel, err)
				}
				stats.Removed++
			}
			continue
		}
		if err != nil {
			return stats, err
		}
		if info.IsDir() || !i.crawler.Match(rel) {
			continue
		}

		f, err := i.crawler.ExtractFile(ctx, abs, rel)
		if err != nil {
			i.logger.Warn("skipping file", "path", rel, "error", err)
			stats.Failed++
			continue
		}
		changed, err := i.save(ctx, f)
		if err != nil {
			return stats, err
		}
		if changed {
			stats.Indexed++
		} else {
			stats.Unchanged++
		}
	}

	i.logger.Info("index updated", "indexed", stats.Indexed, "unchanged", stats.Unchanged, "removed", stats.Removed, "failed", stats.Failed)
	return stats, nil
}

// save stores f unless the index already holds the same content.
func (i *Indexer) save(ctx context.Context, f crawler.File) (bool, error) {
	prev, ok, err := i.store.FileHash(ctx, f.Path)
	if err != nil {
		return false, fmt.Errorf("failed to read hash of %s: %w", f.Path, err)
	}
	if ok && prev == f.Hash {
		return false, nil
	}
	if err := i.store.ReplaceFile(ctx, f.Path, f.Hash, f.Units); err != nil {
		return false, fmt.Errorf("failed to save %s: %w", f.Path, err)
	}
	return true, nil
}

func resolve(root, p string) (abs, rel string, err error) {
	if filepath.IsAbs(p) {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return "", "", err
		}
		rel, err = filepath.Rel(absRoot, p)
		if err != nil {
			return "", "", err
		}
		abs = p
	} else {
		rel = filepath.Clean(p)
		abs = filepath.Join(root, rel)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%s is outside %s", p, root)
	}
	return abs, filepath.ToSlash(rel), nil
}
