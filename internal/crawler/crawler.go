package crawler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"jsoutline/internal/extractor"
	"jsoutline/internal/metrics"
)

// File is the outline of one scanned source file.
type File struct {
	Path  string // relative to the scan root, slash separated
	Hash  string // sha256 of the content
	Units []*extractor.OutlineUnit
	// Err is set when the file matched but could not be read or parsed.
	// Hash and Units are empty then.
	Err error
}

// ignoredDirs are never descended into, by the crawler or the watcher.
var ignoredDirs = []string{".git", "vendor", "node_modules"}

// IgnoredDir reports whether a directory with this base name is skipped.
func IgnoredDir(name string) bool {
	for _, ign := range ignoredDirs {
		if name == ign {
			return true
		}
	}
	return false
}

// Crawler scans a directory for source files.
type Crawler struct {
	extractor *extractor.Extractor
	include   []string
	exclude   []string
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithPatterns sets doublestar include and exclude patterns, matched against
// slash-separated paths relative to the scan root. An empty include list
// accepts every file the extractor supports.
func WithPatterns(include, exclude []string) Option {
	return func(c *Crawler) {
		c.include = include
		c.exclude = exclude
	}
}

// WithLogger sets the logger for skipped files.
func WithLogger(l *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = l
	}
}

// WithMetrics records every extraction on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Crawler) {
		c.metrics = m
	}
}

// NewCrawler creates a new crawler instance.
func NewCrawler(ext *extractor.Extractor, opts ...Option) *Crawler {
	c := &Crawler{
		extractor: ext,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extractor returns the extractor the crawler feeds files to.
func (c *Crawler) Extractor() *extractor.Extractor {
	return c.extractor
}

// Match reports whether rel, a path relative to the scan root, should be outlined.
func (c *Crawler) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	if !c.extractor.Supports(rel) {
		return false
	}
	for _, pattern := range c.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	if len(c.include) == 0 {
		return true
	}
	for _, pattern := range c.include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// ScanProject walks the root directory and processes all relevant files.
// It uses a callback to stream each file's outline, preventing large memory buildup.
// Files that fail to extract are logged and reported with Err set.
func (c *Crawler) ScanProject(ctx context.Context, root string, onFile func(File)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			if path != root && IgnoredDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		if !c.Match(rel) {
			return nil
		}

		file, err := c.ExtractFile(ctx, path, rel)
		if err != nil {
			// Log and continue instead of failing the whole scan
			c.logger.Warn("skipping file", "path", rel, "error", err)
			onFile(File{Path: filepath.ToSlash(rel), Err: err})
			return nil
		}

		onFile(file)
		return nil
	})
}

// ExtractFile outlines the file at path, recording it under rel.
func (c *Crawler) ExtractFile(ctx context.Context, path, rel string) (File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	rel = filepath.ToSlash(rel)
	units, err := c.extractor.ExtractFromSource(ctx, rel, content)
	c.metrics.ObserveExtraction(len(units), err)
	if err != nil {
		return File{}, err
	}
	return File{Path: rel, Hash: HashContent(content), Units: units}, nil
}

// HashContent returns the hex sha256 of content.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
