// Package sqlite implements the catalog over an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"presetcore/internal/catalog/core"
)

var _ core.Store = (*Store)(nil)

const schema = `CREATE TABLE IF NOT EXISTS presets (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	visibility TEXT NOT NULL,
	preset_object_key TEXT NOT NULL,
	preview_object_key TEXT,
	source TEXT NOT NULL,
	embedding TEXT
)`

// Store persists catalog rows in a single SQLite table.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the catalog database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "presetcore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create presets table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Upsert inserts or overwrites the row keyed by id. COALESCE keeps an
// already-backfilled embedding when the incoming one is NULL.
func (s *Store) Upsert(ctx context.Context, row core.Row) error {
	if err := row.Validate(); err != nil {
		return err
	}
	embedding, err := encodeEmbedding(row.Embedding)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO presets(id,title,visibility,preset_object_key,preview_object_key,source,embedding)
		VALUES(?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			visibility=excluded.visibility,
			preset_object_key=excluded.preset_object_key,
			preview_object_key=excluded.preview_object_key,
			source=excluded.source,
			embedding=COALESCE(excluded.embedding, presets.embedding)`,
		row.ID, row.Title, row.Visibility, row.PresetObjectKey, row.PreviewObjectKey, row.Source, embedding)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", row.ID, err)
	}
	return nil
}

// Get returns the row for id if present.
func (s *Store) Get(ctx context.Context, id string) (core.Row, bool, error) {
	row, err := scanRow(s.db.QueryRowContext(ctx,
		`SELECT id,title,visibility,preset_object_key,preview_object_key,source,embedding FROM presets WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Row{}, false, nil
	}
	if err != nil {
		return core.Row{}, false, fmt.Errorf("get %s: %w", id, err)
	}
	return row, true, nil
}

// List returns all rows ordered by id.
func (s *Store) List(ctx context.Context) ([]core.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,title,visibility,preset_object_key,preview_object_key,source,embedding FROM presets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []core.Row
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate presets: %w", err)
	}
	return out, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(sc rowScanner) (core.Row, error) {
	var row core.Row
	var previewKey sql.NullString
	var embedding sql.NullString
	if err := sc.Scan(&row.ID, &row.Title, &row.Visibility, &row.PresetObjectKey, &previewKey, &row.Source, &embedding); err != nil {
		return core.Row{}, err
	}
	if previewKey.Valid {
		row.PreviewObjectKey = &previewKey.String
	}
	if embedding.Valid {
		if err := json.Unmarshal([]byte(embedding.String), &row.Embedding); err != nil {
			return core.Row{}, fmt.Errorf("decode embedding: %w", err)
		}
	}
	return row, nil
}

func encodeEmbedding(vec []float64) (any, error) {
	if vec == nil {
		return nil, nil
	}
	b, err := json.Marshal(vec)
	if err != nil {
		return nil, fmt.Errorf("encode embedding: %w", err)
	}
	return string(b), nil
}
