package cache

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_SetAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := []byte(`[{"ident":"UAL123"}]`)
	if err := store.Set(ctx, "enroute.KSFO", data, 1700000000.5); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "enroute.KSFO")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Data mismatch: got %s, want %s", got, data)
	}

	ts, err := store.Timestamp(ctx, "enroute.KSFO")
	if err != nil {
		t.Fatalf("Timestamp failed: %v", err)
	}
	if ts != 1700000000.5 {
		t.Errorf("Timestamp mismatch: got %f, want 1700000000.5", ts)
	}
}

func TestMemoryStore_Miss(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get on missing key: got %v, want ErrCacheMiss", err)
	}
	if _, err := store.Timestamp(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Timestamp on missing key: got %v, want ErrCacheMiss", err)
	}
}

func TestMemoryStore_Overwrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "key", []byte("old"), 1.0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "key", []byte("new"), 2.0); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}

	got, err := store.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("Overwrite: got %s, want new", got)
	}

	ts, _ := store.Timestamp(ctx, "key")
	if ts != 2.0 {
		t.Errorf("Overwritten timestamp: got %f, want 2.0", ts)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "key", []byte("abc"), 1.0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, _ := store.Get(ctx, "key")
	got[0] = 'x'

	again, _ := store.Get(ctx, "key")
	if string(again) != "abc" {
		t.Errorf("Stored bytes were mutated through the returned slice")
	}
}
