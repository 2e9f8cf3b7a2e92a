package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/leadervibe/internal/db"
	"github.com/leadervibe/internal/imagestore"
	"gorm.io/gorm"
)

func seedGalleryItem(t *testing.T, gdb *gorm.DB, item db.GalleryItem) db.GalleryItem {
	t.Helper()
	if err := gdb.Create(&item).Error; err != nil {
		t.Fatalf("failed to seed gallery item %s: %v", item.GalleryID, err)
	}
	return item
}

func galleryByID(items []db.GalleryItem) map[string]db.GalleryItem {
	out := make(map[string]db.GalleryItem, len(items))
	for _, item := range items {
		out[item.GalleryID] = item
	}
	return out
}

func TestGalleryReconcileRejectsEmptyRequest(t *testing.T) {
	gdb := setupTestDB(t)
	store := imagestore.NewMemory("")
	svc := NewGalleryService(gdb, store)

	_, err := svc.Reconcile(context.Background(), GalleryUpdate{ImageMeta: []any{map[string]any{"id": "g1"}}})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.Calls() != 0 {
		t.Fatalf("expected no image store calls, got %d", store.Calls())
	}
}

func TestGalleryColumnEditKeepsImage(t *testing.T) {
	gdb := setupTestDB(t)
	store := imagestore.NewMemory("")
	svc := NewGalleryService(gdb, store)
	seedGalleryItem(t, gdb, db.GalleryItem{GalleryID: "g1", Src: "old.jpg", Column: db.ColumnLeft})

	items, err := svc.Reconcile(context.Background(), GalleryUpdate{
		Items: []any{map[string]any{"galleryId": "g1", "column": "right"}},
	})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	if items[0].GalleryID != "g1" || items[0].Src != "old.jpg" || items[0].Column != db.ColumnRight {
		t.Fatalf("unexpected item: %+v", items[0])
	}
	if store.Calls() != 0 {
		t.Fatalf("expected no image store calls, got %d", store.Calls())
	}
}

func TestGalleryMatchingEditWritesNothing(t *testing.T) {
	gdb := setupTestDB(t)
	store := imagestore.NewMemory("")
	svc := NewGalleryService(gdb, store)
	seedGalleryItem(t, gdb, db.GalleryItem{GalleryID: "g1", Src: "stage.jpg", Alt: "Stage", Column: db.ColumnRight})

	var seeded db.GalleryItem
	if err := gdb.Where("gallery_id = ?", "g1").First(&seeded).Error; err != nil {
		t.Fatalf("failed to load item: %v", err)
	}

	_, err := svc.Reconcile(context.Background(), GalleryUpdate{
		Items: []any{map[string]any{"id": "g1", "src": "stage.jpg", "alt": "Stage", "column": "right"}},
	})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	var stored db.GalleryItem
	if err := gdb.Where("gallery_id = ?", "g1").First(&stored).Error; err != nil {
		t.Fatalf("failed to reload item: %v", err)
	}
	if stored.Version != seeded.Version || !stored.UpdatedAt.Equal(seeded.UpdatedAt) {
		t.Fatalf("expected no write, version %d -> %d", seeded.Version, stored.Version)
	}
	if store.Calls() != 0 {
		t.Fatalf("expected no image store calls, got %d", store.Calls())
	}
}

func TestGalleryDeleteTakesPrecedenceOverEdit(t *testing.T) {
	gdb := setupTestDB(t)
	store := imagestore.NewMemory("")
	svc := NewGalleryService(gdb, store)
	seedGalleryItem(t, gdb, db.GalleryItem{GalleryID: "g1", Src: "a.jpg", AssetID: "site-gallery/g1"})
	seedGalleryItem(t, gdb, db.GalleryItem{GalleryID: "g2", Src: "b.jpg"})
	store.Put("site-gallery/g1", []byte("a"))

	items, err := svc.Reconcile(context.Background(), GalleryUpdate{
		DeleteIDs: []any{map[string]any{"galleryId": "g1"}},
		Items:     []any{map[string]any{"id": "g1", "alt": "renamed", "column": "right"}},
	})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if _, ok := galleryByID(items)["g1"]; ok {
		t.Fatalf("expected g1 to stay deleted, got %+v", items)
	}
	if len(items) != 1 || items[0].GalleryID != "g2" {
		t.Fatalf("expected only g2 to remain, got %+v", items)
	}
	if deletes := store.Deletes(); len(deletes) != 1 || deletes[0] != "site-gallery/g1" {
		t.Fatalf("expected asset delete for g1, got %v", deletes)
	}
	if store.Has("site-gallery/g1") {
		t.Fatal("expected asset to be removed from store")
	}
}

func TestGalleryEditWithSrcCreatesMissingItem(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewGalleryService(gdb, imagestore.NewMemory(""))

	items, err := svc.Reconcile(context.Background(), GalleryUpdate{
		Items: []any{
			map[string]any{"id": "g9", "src": "https://cdn.example.com/g9.jpg"},
			map[string]any{"id": "g10", "alt": "no image"},
			"not-an-object",
		},
	})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected only the item with src to be created, got %+v", items)
	}
	created := items[0]
	if created.GalleryID != "g9" || created.Alt != "Gallery Image" || created.Column != db.ColumnLeft {
		t.Fatalf("unexpected defaults: %+v", created)
	}
}

func TestGallerySynthesizesIDsForAnonymousUploads(t *testing.T) {
	gdb := setupTestDB(t)
	store := imagestore.NewMemory("")
	svc := NewGalleryService(gdb, store)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }

	items, err := svc.Reconcile(context.Background(), GalleryUpdate{
		Files: []UploadFile{pngFile("first.png"), pngFile("second.png")},
	})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected two items, got %d", len(items))
	}

	pattern := regexp.MustCompile(`^gallery-\d+-\d+$`)
	seen := map[string]bool{}
	for _, item := range items {
		if !pattern.MatchString(item.GalleryID) {
			t.Fatalf("unexpected synthesized id %q", item.GalleryID)
		}
		if seen[item.GalleryID] {
			t.Fatalf("duplicate synthesized id %q", item.GalleryID)
		}
		seen[item.GalleryID] = true
	}

	byID := galleryByID(items)
	first, ok := byID["gallery-1700000000000-0"]
	if !ok {
		t.Fatalf("expected index 0 id, got %v", seen)
	}
	if first.Alt != "first.png" {
		t.Fatalf("expected filename as alt, got %q", first.Alt)
	}
	if first.AssetID != "site-gallery/gallery-1700000000000-0" {
		t.Fatalf("unexpected asset id %q", first.AssetID)
	}

	uploads := store.Uploads()
	if len(uploads) != 2 || uploads[0].Folder != "site-gallery" || uploads[1].PublicID != "gallery-1700000000000-1" {
		t.Fatalf("unexpected uploads: %+v", uploads)
	}
}

func TestGalleryUploadResolvesTargets(t *testing.T) {
	gdb := setupTestDB(t)
	store := imagestore.NewMemory("")
	svc := NewGalleryService(gdb, store)
	seedGalleryItem(t, gdb, db.GalleryItem{GalleryID: "g1", Src: "old1.jpg", Alt: "Keynote", Column: db.ColumnRight, AssetID: "legacy/g1"})
	g2 := seedGalleryItem(t, gdb, db.GalleryItem{GalleryID: "g2", Src: "old2.jpg", Alt: "Panel", AssetID: "site-gallery/g2"})

	items, err := svc.Reconcile(context.Background(), GalleryUpdate{
		ImageMeta: []any{"g1", map[string]any{"_id": float64(g2.ID), "alt": "Panel 2024"}},
		FileIDs:   []any{nil, nil, "g3"},
		Files:     []UploadFile{pngFile("a.png"), pngFile("b.png"), pngFile("c.png")},
	})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	byID := galleryByID(items)
	if len(byID) != 3 {
		t.Fatalf("expected three items, got %+v", items)
	}
	if got := byID["g1"]; got.Src != "https://images.local/site-gallery/g1" || got.Alt != "Keynote" || got.Column != db.ColumnRight {
		t.Fatalf("unexpected g1: %+v", got)
	}
	if got := byID["g2"]; got.Alt != "Panel 2024" || got.Src != "https://images.local/site-gallery/g2" {
		t.Fatalf("unexpected g2: %+v", got)
	}
	if got := byID["g3"]; got.Alt != "c.png" || got.Column != db.ColumnLeft {
		t.Fatalf("unexpected g3: %+v", got)
	}

	// g2 keeps the same asset key and is overwritten in place
	if deletes := store.Deletes(); len(deletes) != 1 || deletes[0] != "legacy/g1" {
		t.Fatalf("expected only the replaced legacy asset to be deleted, got %v", deletes)
	}
}

func TestGalleryUploadFailureIsUpstreamError(t *testing.T) {
	gdb := setupTestDB(t)
	store := imagestore.NewMemory("")
	store.UploadErr = errors.New("provider unavailable")
	svc := NewGalleryService(gdb, store)

	_, err := svc.Reconcile(context.Background(), GalleryUpdate{
		ImageMeta: []any{map[string]any{"id": "g1"}},
		Files:     []UploadFile{pngFile("a.png")},
	})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	var count int64
	gdb.Model(&db.GalleryItem{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected nothing persisted, got %d rows", count)
	}
}

func TestGalleryCleanupFailureIsNotReturned(t *testing.T) {
	gdb := setupTestDB(t)
	store := imagestore.NewMemory("")
	store.DeleteErr = errors.New("delete failed")
	svc := NewGalleryService(gdb, store)
	seedGalleryItem(t, gdb, db.GalleryItem{GalleryID: "g1", Src: "a.jpg", AssetID: "site-gallery/g1"})

	items, err := svc.Reconcile(context.Background(), GalleryUpdate{DeleteIDs: []any{"g1"}})
	if err != nil {
		t.Fatalf("expected cleanup failure to be swallowed, got %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty gallery, got %+v", items)
	}
}

func TestSaveGalleryItemDetectsStaleVersion(t *testing.T) {
	gdb := setupTestDB(t)
	seedGalleryItem(t, gdb, db.GalleryItem{GalleryID: "g1", Src: "a.jpg"})

	var loaded db.GalleryItem
	if err := gdb.Where("gallery_id = ?", "g1").First(&loaded).Error; err != nil {
		t.Fatalf("failed to load item: %v", err)
	}
	if err := saveGalleryItem(gdb, &loaded, map[string]any{"alt": "first"}); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	stale := loaded
	err := saveGalleryItem(gdb, &stale, map[string]any{"alt": "second"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict for stale version, got %v", err)
	}
}
