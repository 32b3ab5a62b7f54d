package cache

import (
	"testing"
	"time"
)

func TestStoreGetFreshEntry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := New[string](5 * time.Minute).WithClock(func() time.Time { return now })

	store.Put("u1", "profileA")

	now = now.Add(4*time.Minute + 59*time.Second)
	got, ok := store.Get("u1")
	if !ok {
		t.Fatal("expected fresh entry at t=4:59")
	}
	if got != "profileA" {
		t.Fatalf("got %q, want profileA", got)
	}
}

func TestStoreGetExpiredEntry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := New[string](5 * time.Minute).WithClock(func() time.Time { return now })

	store.Put("u1", "profileA")

	now = now.Add(5*time.Minute + 1*time.Second)
	if _, ok := store.Get("u1"); ok {
		t.Fatal("expected miss at t=5:01")
	}

	// The stale entry is not purged, only hidden.
	if store.Len() != 1 {
		t.Fatalf("expected 1 physical entry, got %d", store.Len())
	}
}

func TestStorePutResetsFreshness(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := New[string](5 * time.Minute).WithClock(func() time.Time { return now })

	store.Put("u1", "old")
	now = now.Add(10 * time.Minute)
	store.Put("u1", "new")

	got, ok := store.Get("u1")
	if !ok || got != "new" {
		t.Fatalf("got (%q, %v), want (new, true)", got, ok)
	}
}

func TestStoreInvalidateIsIdempotent(t *testing.T) {
	store := New[int](time.Minute)
	store.Put("k", 42)

	store.Invalidate("k")
	store.Invalidate("k")

	if _, ok := store.Get("k"); ok {
		t.Fatal("expected miss after invalidate")
	}

	store.Put("k", 7)
	if got, ok := store.Get("k"); !ok || got != 7 {
		t.Fatalf("got (%d, %v), want (7, true)", got, ok)
	}
}

func TestStoreInvalidateAll(t *testing.T) {
	store := New[int](time.Minute)
	store.Put("a", 1)
	store.Put("b", 2)

	store.InvalidateAll()

	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d entries", store.Len())
	}
}

func TestStoreUpdatePatchesFreshEntry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := New[int](5 * time.Minute).WithClock(func() time.Time { return now })

	store.Put("k", 1)
	now = now.Add(4 * time.Minute)

	if !store.Update("k", func(v int) int { return v + 1 }) {
		t.Fatal("expected update to apply to fresh entry")
	}

	// Update refreshed the window, so the entry survives past the original TTL.
	now = now.Add(4 * time.Minute)
	got, ok := store.Get("k")
	if !ok || got != 2 {
		t.Fatalf("got (%d, %v), want (2, true)", got, ok)
	}
}

func TestStoreUpdateSkipsStaleEntry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := New[int](time.Minute).WithClock(func() time.Time { return now })

	store.Put("k", 1)
	now = now.Add(2 * time.Minute)

	if store.Update("k", func(v int) int { return v + 1 }) {
		t.Fatal("expected update to skip stale entry")
	}
}
