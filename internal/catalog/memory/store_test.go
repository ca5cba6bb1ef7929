package memory

import (
	"context"
	"testing"

	"presetcore/internal/catalog/core"
)

func strPtr(s string) *string { return &s }

func TestStore_UpsertGetList(t *testing.T) {
	ctx := context.Background()
	store := New()
	row := core.Row{
		ID:               "id-1",
		Title:            "Lead",
		Visibility:       core.VisibilityPublic,
		PresetObjectKey:  "id-1.vital",
		PreviewObjectKey: strPtr("id-1.wav"),
		Source:           core.SourceSeed,
	}
	if err := store.Upsert(ctx, row); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, ok, err := store.Get(ctx, "id-1")
	if err != nil || !ok {
		t.Fatalf("get: %v %v", ok, err)
	}
	if got.Title != "Lead" || *got.PreviewObjectKey != "id-1.wav" {
		t.Fatalf("unexpected row %+v", got)
	}
	if _, ok, _ := store.Get(ctx, "missing"); ok {
		t.Fatalf("expected miss")
	}
	list, err := store.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %d", err, len(list))
	}
}

func TestStore_UpsertOverwritesByID(t *testing.T) {
	ctx := context.Background()
	store := New()
	base := core.Row{ID: "id-1", Title: "Old", Visibility: core.VisibilityPublic, PresetObjectKey: "id-1.vital", Source: core.SourceSeed}
	if err := store.Upsert(ctx, base); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	base.Title = "New"
	if err := store.Upsert(ctx, base); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	list, _ := store.List(ctx)
	if len(list) != 1 || list[0].Title != "New" {
		t.Fatalf("expected single overwritten row, got %+v", list)
	}
}

func TestStore_UpsertKeepsBackfilledEmbedding(t *testing.T) {
	ctx := context.Background()
	store := New()
	row := core.Row{ID: "id-1", Title: "Lead", Visibility: core.VisibilityPublic, PresetObjectKey: "id-1.vital", Source: core.SourceSeed}
	if err := store.Upsert(ctx, row); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	row.Embedding = []float64{0.1, 0.2}
	if err := store.Upsert(ctx, row); err != nil {
		t.Fatalf("backfill upsert: %v", err)
	}
	// Re-seed without an embedding: the backfilled vector must survive.
	row.Embedding = nil
	if err := store.Upsert(ctx, row); err != nil {
		t.Fatalf("re-seed upsert: %v", err)
	}
	got, _, _ := store.Get(ctx, "id-1")
	if len(got.Embedding) != 2 || got.Embedding[0] != 0.1 {
		t.Fatalf("embedding lost on re-seed: %+v", got.Embedding)
	}
}

func TestStore_ValidatesRows(t *testing.T) {
	ctx := context.Background()
	store := New()
	if err := store.Upsert(ctx, core.Row{Title: "no id"}); err == nil {
		t.Fatalf("expected validation error for missing id")
	}
	if err := store.Upsert(ctx, core.Row{ID: "id-1"}); err == nil {
		t.Fatalf("expected validation error for missing object key")
	}
}
