package gradebook

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/myst-ext/myst-ext-points/internal/points"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "gradebook.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(id, hash string, at time.Time) *Record {
	return &Record{
		ID:          id,
		Title:       "Week 3 Worksheet",
		ContentHash: hash,
		GrandTotal:  5,
		Categories: []points.CategoryTotal{
			{Category: "bonus", Points: 2},
			{Category: "extra", Points: 1},
		},
		RenderedAt: at,
	}
}

func TestStore_PutAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	at := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	rec := sampleRecord("abc123", "hash-1", at)
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, "abc123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != rec.Title || got.ContentHash != rec.ContentHash || got.GrandTotal != 5 {
		t.Errorf("unexpected record: %+v", got)
	}
	if !got.RenderedAt.Equal(at) {
		t.Errorf("expected rendered_at %v, got %v", at, got.RenderedAt)
	}
	if len(got.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(got.Categories))
	}
	// Position column preserves first-encounter order.
	if got.Categories[0].Category != "bonus" || got.Categories[1].Category != "extra" {
		t.Errorf("unexpected category order: %+v", got.Categories)
	}
	if got.Categories[0].Points != 2 || got.Categories[1].Points != 1 {
		t.Errorf("unexpected category sums: %+v", got.Categories)
	}
}

func TestStore_GetNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_FindByHash(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	at := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	if err := s.Put(ctx, sampleRecord("abc123", "hash-1", at)); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.FindByHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("find by hash: %v", err)
	}
	if got.ID != "abc123" {
		t.Errorf("expected id abc123, got %q", got.ID)
	}

	if _, err := s.FindByHash(ctx, "other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown hash, got %v", err)
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"w1", "w2", "w3"} {
		rec := sampleRecord(id, "hash-"+id, base.Add(time.Duration(i)*time.Minute))
		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}

	got, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID != "w3" || got[1].ID != "w2" {
		t.Errorf("expected newest first, got %q then %q", got[0].ID, got[1].ID)
	}
	if len(got[0].Categories) != 2 {
		t.Errorf("expected categories loaded in list, got %+v", got[0].Categories)
	}
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	at := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	if err := s.Put(ctx, sampleRecord("abc123", "hash-1", at)); err != nil {
		t.Fatalf("put: %v", err)
	}

	if err := s.Delete(ctx, "abc123"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "abc123"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "abc123"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStore_EmptyCategories(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := sampleRecord("plain", "hash-plain", time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC))
	rec.Categories = nil
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, "plain")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Categories) != 0 {
		t.Errorf("expected no categories, got %+v", got.Categories)
	}
}
