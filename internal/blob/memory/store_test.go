package memory

import (
	"bytes"
	"context"
	"io"
	"testing"

	"presetcore/internal/blob/core"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New()
	if store.Driver() != core.DriverMemory {
		t.Fatalf("driver = %s", store.Driver())
	}
	if _, err := store.Put(ctx, "k.vital", bytes.NewReader([]byte("data")), core.PutOptions{ContentType: "application/octet-stream"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "k.vital", bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
		t.Fatalf("expected duplicate failure without overwrite")
	}
	info, rc, err := store.Get(ctx, "k.vital")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != "data" || info.ContentType != "application/octet-stream" {
		t.Fatalf("unexpected get %q %+v", b, info)
	}
	if _, err := store.Head(ctx, "missing"); err == nil {
		t.Fatalf("expected head miss")
	}
}

func TestStore_OverwriteConverges(t *testing.T) {
	ctx := context.Background()
	store := New()
	first, err := store.Put(ctx, "k.wav", bytes.NewReader([]byte("audio")), core.PutOptions{Overwrite: true})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	second, err := store.Put(ctx, "k.wav", bytes.NewReader([]byte("audio")), core.PutOptions{Overwrite: true})
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if first.ETag != second.ETag {
		t.Fatalf("identical payloads hashed differently: %s vs %s", first.ETag, second.ETag)
	}
	list, err := store.List(ctx, "")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %d", err, len(list))
	}
}

func TestStore_ListPrefixAndDelete(t *testing.T) {
	ctx := context.Background()
	store := New()
	for _, key := range []string{"a/1.wav", "a/2.wav", "b/3.wav"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte(key)), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	list, err := store.List(ctx, "a/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "a/1.wav" || list[1].Key != "a/2.wav" {
		t.Fatalf("unexpected list %+v", list)
	}
	ok, err := store.Delete(ctx, "b/3.wav")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = store.Delete(ctx, "b/3.wav")
	if err != nil || ok {
		t.Fatalf("second delete should be false")
	}
}
