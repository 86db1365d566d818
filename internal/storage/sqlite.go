package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"jsoutline/internal/ast"
	"jsoutline/internal/extractor"
)

var _ Store = (*SQLiteStore)(nil)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS files (
			path TEXT PRIMARY KEY,
			content_hash TEXT NOT NULL,
			indexed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS units (
			id TEXT PRIMARY KEY,
			filepath TEXT NOT NULL,
			ord INTEGER NOT NULL,
			language TEXT,
			kind TEXT,
			label TEXT,
			details TEXT,
			sel_start INTEGER,
			sel_end INTEGER,
			ext_start INTEGER,
			ext_end INTEGER,
			start_line INTEGER,
			end_line INTEGER,
			parent TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_units_file ON units(filepath, ord);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) ReplaceFile(ctx context.Context, path, hash string, units []*extractor.OutlineUnit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM units WHERE filepath = ?`, path); err != nil {
		return fmt.Errorf("failed to clear units of %s: %w", path, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO units (id, filepath, ord, language, kind, label, details, sel_start, sel_end, ext_start, ext_end, start_line, end_line, parent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filepath=excluded.filepath,
			ord=excluded.ord,
			language=excluded.language,
			kind=excluded.kind,
			label=excluded.label,
			details=excluded.details,
			sel_start=excluded.sel_start,
			sel_end=excluded.sel_end,
			ext_start=excluded.ext_start,
			ext_end=excluded.ext_end,
			start_line=excluded.start_line,
			end_line=excluded.end_line,
			parent=excluded.parent
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, u := range units {
		if _, err := stmt.ExecContext(ctx, u.ID, path, i, u.Language, string(u.Kind), u.Label, u.Details,
			u.Selection.Start, u.Selection.End, u.Extent.Start, u.Extent.End, u.StartLine, u.EndLine, u.Parent); err != nil {
			return fmt.Errorf("failed to save unit %s: %w", u.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO files (path, content_hash, indexed_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET content_hash=excluded.content_hash, indexed_at=excluded.indexed_at
	`, path, hash); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) DeleteFile(ctx context.Context, path string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM units WHERE filepath = ?`, path); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) FileHash(ctx context.Context, path string) (string, bool, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT content_hash FROM files WHERE path = ?`, path).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return hash, true, nil
}

func (s *SQLiteStore) Files(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM files ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

const unitColumns = `id, filepath, language, kind, label, details, sel_start, sel_end, ext_start, ext_end, start_line, end_line, parent`

func (s *SQLiteStore) FindByFile(ctx context.Context, path string) ([]*extractor.OutlineUnit, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+unitColumns+" FROM units WHERE filepath = ? ORDER BY ord", path)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	return scanUnits(rows)
}

func (s *SQLiteStore) FindByLabel(ctx context.Context, query string, limit int) ([]*extractor.OutlineUnit, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+unitColumns+" FROM units WHERE lower(label) LIKE ? ESCAPE '\\' ORDER BY filepath, ord LIMIT ?",
		pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	return scanUnits(rows)
}

func scanUnits(rows *sql.Rows) ([]*extractor.OutlineUnit, error) {
	defer rows.Close()

	var units []*extractor.OutlineUnit
	for rows.Next() {
		var u extractor.OutlineUnit
		var kind string
		var language, details, parent sql.NullString
		if err := rows.Scan(&u.ID, &u.Filepath, &language, &kind, &u.Label, &details,
			&u.Selection.Start, &u.Selection.End, &u.Extent.Start, &u.Extent.End,
			&u.StartLine, &u.EndLine, &parent); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		u.Kind = ast.Kind(kind)
		u.Language = language.String
		u.Details = details.String
		u.Parent = parent.String
		units = append(units, &u)
	}
	return units, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
