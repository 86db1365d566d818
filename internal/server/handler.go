package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"jsoutline/internal/cache"
	"jsoutline/internal/extractor"
	"jsoutline/internal/metrics"
	"jsoutline/internal/storage"
)

// ErrNoIndex is returned by lookups that need a store when none is configured.
var ErrNoIndex = errors.New("no outline index configured")

// Handler answers outline queries for files under a project root.
type Handler struct {
	root      string
	extractor *extractor.Extractor
	cache     *cache.OutlineCache
	store     storage.OutlineStore
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithCache reuses outlines of unchanged content.
func WithCache(c *cache.OutlineCache) Option {
	return func(h *Handler) { h.cache = c }
}

// WithStore enables symbol search over an index.
func WithStore(s storage.OutlineStore) Option {
	return func(h *Handler) { h.store = s }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// NewHandler creates a handler resolving relative paths against root.
func NewHandler(root string, ext *extractor.Extractor, opts ...Option) *Handler {
	h := &Handler{
		root:      root,
		extractor: ext,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Outline returns the outline units of the file at path.
func (h *Handler) Outline(ctx context.Context, path string) ([]*extractor.OutlineUnit, error) {
	abs, rel := h.resolve(path)
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var key string
	if h.cache != nil {
		key = cache.Key(rel, content)
		if units, ok := h.cache.Get(key); ok {
			h.metrics.ObserveCache(true)
			return units, nil
		}
		h.metrics.ObserveCache(false)
	}

	units, err := h.extractor.ExtractFromSource(ctx, rel, content)
	h.metrics.ObserveExtraction(len(units), err)
	if err != nil {
		return nil, err
	}
	if h.cache != nil {
		h.cache.Set(key, units)
	}
	h.logger.Debug("outlined file", "path", rel, "units", len(units))
	return units, nil
}

// SignatureAt returns the innermost unit whose extent contains offset, or nil
// when no unit does.
func (h *Handler) SignatureAt(ctx context.Context, path string, offset int) (*extractor.OutlineUnit, error) {
	units, err := h.Outline(ctx, path)
	if err != nil {
		return nil, err
	}
	var best *extractor.OutlineUnit
	for _, u := range units {
		if !u.Extent.Contains(offset) {
			continue
		}
		if best == nil || u.Extent.Len() <= best.Extent.Len() {
			best = u
		}
	}
	return best, nil
}

// FindSymbol searches the index for units whose label contains query.
func (h *Handler) FindSymbol(ctx context.Context, query string, limit int) ([]*extractor.OutlineUnit, error) {
	if h.store == nil {
		return nil, ErrNoIndex
	}
	return h.store.FindByLabel(ctx, query, limit)
}

func (h *Handler) resolve(path string) (abs, rel string) {
	abs = path
	if !filepath.IsAbs(path) {
		abs = filepath.Join(h.root, path)
	}
	rel = path
	if r, err := filepath.Rel(h.root, abs); err == nil && filepath.IsLocal(r) {
		rel = r
	}
	return abs, filepath.ToSlash(rel)
}
