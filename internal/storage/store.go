package storage

import (
	"context"

	"jsoutline/internal/extractor"
)

// Store persists file outlines.
type Store interface {
	OutlineStore
	Close() error
}

// OutlineStore defines operations for persisting and querying outline units.
type OutlineStore interface {
	// ReplaceFile swaps every unit of path for units and records the content hash.
	ReplaceFile(ctx context.Context, path, hash string, units []*extractor.OutlineUnit) error

	// DeleteFile removes a file and its units.
	DeleteFile(ctx context.Context, path string) error

	// FileHash returns the content hash recorded for path.
	FileHash(ctx context.Context, path string) (string, bool, error)

	// Files lists every indexed path.
	Files(ctx context.Context) ([]string, error)

	// FindByFile returns the units of a file in document order.
	FindByFile(ctx context.Context, path string) ([]*extractor.OutlineUnit, error)

	// FindByLabel returns units whose label contains query, case-insensitively.
	FindByLabel(ctx context.Context, query string, limit int) ([]*extractor.OutlineUnit, error)
}
