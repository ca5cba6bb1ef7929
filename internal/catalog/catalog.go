// Package catalog re-exports the core catalog abstractions and selects a
// driver from configuration.
package catalog

import (
	"context"
	"fmt"

	"presetcore/internal/catalog/core"
	"presetcore/internal/catalog/memory"
	"presetcore/internal/catalog/postgres"
	"presetcore/internal/catalog/sqlite"
)

type (
	// Driver identifies a catalog backend driver.
	Driver = core.Driver
	// Row is the catalog record for a published preset.
	Row = core.Row
	// Store is the interface for catalog backends.
	Store = core.Store
)

const (
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
	// DriverSQLite is the embedded local driver.
	DriverSQLite = core.DriverSQLite
	// DriverPostgres is the production driver.
	DriverPostgres = core.DriverPostgres

	// VisibilityPublic is the visibility assigned to seeded rows.
	VisibilityPublic = core.VisibilityPublic
	// SourceSeed marks rows created by the seeding pipeline.
	SourceSeed = core.SourceSeed
)

// Config selects and parameterizes a catalog driver.
type Config struct {
	Driver      Driver
	SQLitePath  string // driver=sqlite
	PostgresDSN string // driver=postgres
}

// Open constructs the configured catalog store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	switch driver {
	case DriverMemory:
		return memory.New(), nil
	case DriverSQLite:
		return sqlite.NewStore(cfg.SQLitePath)
	case DriverPostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown catalog driver %s", driver)
	}
}

// NewMemory returns an in-memory store for tests.
func NewMemory() Store { return memory.New() }
