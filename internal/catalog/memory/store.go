// Package memory implements an in-memory catalog Store for tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"presetcore/internal/catalog/core"
)

// Store implements core.Store backed by process memory.
type Store struct {
	mu   sync.RWMutex
	rows map[string]core.Row
}

// New returns an empty in-memory catalog.
func New() *Store { return &Store{rows: make(map[string]core.Row)} }

// Upsert inserts or overwrites the row keyed by its ID. A nil incoming
// embedding keeps the stored one.
func (s *Store) Upsert(_ context.Context, row core.Row) error {
	if err := row.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.rows[row.ID]; ok && row.Embedding == nil {
		row.Embedding = existing.Embedding
	}
	s.rows[row.ID] = cloneRow(row)
	return nil
}

// Get returns the row for id if present.
func (s *Store) Get(_ context.Context, id string) (core.Row, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[id]
	if !ok {
		return core.Row{}, false, nil
	}
	return cloneRow(row), true, nil
}

// List returns all rows ordered by ID.
func (s *Store) List(_ context.Context) ([]core.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Row, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, cloneRow(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close is a no-op for the memory driver.
func (s *Store) Close() error { return nil }

func cloneRow(row core.Row) core.Row {
	out := row
	if row.PreviewObjectKey != nil {
		key := *row.PreviewObjectKey
		out.PreviewObjectKey = &key
	}
	if row.Embedding != nil {
		out.Embedding = append([]float64(nil), row.Embedding...)
	}
	return out
}
