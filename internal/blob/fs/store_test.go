package fs

import (
	"bytes"
	"context"
	"io"
	"testing"

	"presetcore/internal/blob/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestStore_PutGetHeadListDelete(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	info, err := store.Put(ctx, "presets/a.vital", bytes.NewReader([]byte("hello")), core.PutOptions{ContentType: "application/octet-stream", Metadata: map[string]string{"k": "v"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "presets/a.vital" || info.Size != 5 {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "presets/a.vital", bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
		t.Fatalf("expected duplicate failure without overwrite")
	}
	h, err := store.Head(ctx, "presets/a.vital")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	g, rc, err := store.Get(ctx, "presets/a.vital")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if string(b) != "hello" || g.ETag != h.ETag {
		t.Fatalf("unexpected get artifacts")
	}
	list, err := store.List(ctx, "presets/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "presets/a.vital" {
		t.Fatalf("unexpected list %+v", list)
	}
	ok, err := store.Delete(ctx, "presets/a.vital")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = store.Delete(ctx, "presets/a.vital")
	if err != nil || ok {
		t.Fatalf("second delete should be false")
	}
}

func TestStore_OverwriteConverges(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	first, err := store.Put(ctx, "a.vital", bytes.NewReader([]byte("payload")), core.PutOptions{Overwrite: true})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	second, err := store.Put(ctx, "a.vital", bytes.NewReader([]byte("payload")), core.PutOptions{Overwrite: true})
	if err != nil {
		t.Fatalf("overwrite put: %v", err)
	}
	if first.ETag != second.ETag || first.Size != second.Size {
		t.Fatalf("identical bytes produced different state: %+v vs %+v", first, second)
	}
	list, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected a single object, got %d", len(list))
	}
}

func TestStore_OverwriteReplacesContent(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Put(ctx, "a.wav", bytes.NewReader([]byte("old")), core.PutOptions{Overwrite: true}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "a.wav", bytes.NewReader([]byte("new")), core.PutOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	_, rc, err := store.Get(ctx, "a.wav")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != "new" {
		t.Fatalf("content = %q, want new", b)
	}
}

func TestStore_PathTraversal(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Put(ctx, "../escape.vital", bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
		t.Fatalf("expected traversal error")
	}
	if _, err := store.Put(ctx, "/abs.vital", bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
		t.Fatalf("expected absolute error")
	}
	if _, err := store.Put(ctx, "  ", bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
		t.Fatalf("expected empty key error")
	}
}

func TestStore_MetaSuffixKeyRejected(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Put(ctx, "a.vital", bytes.NewReader([]byte("data")), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	// A key ending in ".meta" would collide with the sidecar of another key
	// and shadow its metadata in List.
	if _, err := store.Put(ctx, "a.vital.meta", bytes.NewReader([]byte("x")), core.PutOptions{Overwrite: true}); err == nil {
		t.Fatalf("expected .meta suffix rejection")
	}
	list, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "a.vital" {
		t.Fatalf("unexpected list %+v", list)
	}
}
