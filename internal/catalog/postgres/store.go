// Package postgres implements the catalog over Postgres via the pgx
// database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"presetcore/internal/catalog/core"
)

var _ core.Store = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/presetcore?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

const schema = `CREATE TABLE IF NOT EXISTS presets (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	visibility TEXT NOT NULL,
	preset_object_key TEXT NOT NULL,
	preview_object_key TEXT,
	source TEXT NOT NULL,
	embedding JSONB
)`

// Store persists catalog rows in a Postgres table.
type Store struct {
	db *sql.DB
}

// NewStore opens a Postgres-backed catalog using the provided DSN (falls
// back to defaultDSN) and ensures the presets table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create presets table: %w", err)
	}
	return &Store{db: db}, nil
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
		VALUES($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT(id) DO UPDATE SET
			title=EXCLUDED.title,
			visibility=EXCLUDED.visibility,
			preset_object_key=EXCLUDED.preset_object_key,
			preview_object_key=EXCLUDED.preview_object_key,
			source=EXCLUDED.source,
			embedding=COALESCE(EXCLUDED.embedding, presets.embedding)`,
		row.ID, row.Title, row.Visibility, row.PresetObjectKey, row.PreviewObjectKey, row.Source, embedding)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", row.ID, err)
	}
	return nil
}

// Get returns the row for id if present.
func (s *Store) Get(ctx context.Context, id string) (core.Row, bool, error) {
	row, err := scanRow(s.db.QueryRowContext(ctx,
		`SELECT id,title,visibility,preset_object_key,preview_object_key,source,embedding FROM presets WHERE id=$1`, id))
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

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(sc rowScanner) (core.Row, error) {
	var row core.Row
	var previewKey sql.NullString
	var embedding []byte
	if err := sc.Scan(&row.ID, &row.Title, &row.Visibility, &row.PresetObjectKey, &previewKey, &row.Source, &embedding); err != nil {
		return core.Row{}, err
	}
	if previewKey.Valid {
		row.PreviewObjectKey = &previewKey.String
	}
	if len(embedding) > 0 {
		if err := json.Unmarshal(embedding, &row.Embedding); err != nil {
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
	return b, nil
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
