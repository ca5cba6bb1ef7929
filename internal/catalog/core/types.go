// Package core defines the catalog row and the backend contract shared by
// catalog drivers.
package core

import (
	"context"
	"fmt"
)

// Driver identifies a concrete catalog backend implementation.
type Driver string

const (
	// DriverMemory is the in-memory implementation, used in tests.
	DriverMemory Driver = "memory"
	// DriverSQLite is the embedded local database (default, dev).
	DriverSQLite Driver = "sqlite"
	// DriverPostgres is the production database.
	DriverPostgres Driver = "postgres"
)

// Fixed defaults applied to seeded rows.
const (
	VisibilityPublic = "public"
	SourceSeed       = "seed"
)

// Row is the catalog record for a published preset. The primary key is the
// stable identifier derived from the preset's relative path.
type Row struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Visibility       string    `json:"visibility"`
	PresetObjectKey  string    `json:"preset_object_key"`
	PreviewObjectKey *string   `json:"preview_object_key,omitempty"`
	Source           string    `json:"source"`
	Embedding        []float64 `json:"embedding,omitempty"` // populated by a separate backfill
}

// Store is the catalog backend. Upsert overwrites an existing row with the
// same ID, with one exception: a nil Embedding on the incoming row keeps any
// embedding already stored, so re-seeding never clobbers a completed
// backfill. All drivers agree on this.
type Store interface {
	Upsert(ctx context.Context, row Row) error
	Get(ctx context.Context, id string) (Row, bool, error)
	List(ctx context.Context) ([]Row, error)
	Close() error
}

// Validate reports structural problems with a row before it reaches a backend.
func (r Row) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("catalog: row id required")
	}
	if r.PresetObjectKey == "" {
		return fmt.Errorf("catalog: preset object key required for %s", r.ID)
	}
	return nil
}
