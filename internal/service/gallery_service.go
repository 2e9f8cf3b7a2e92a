package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leadervibe/internal/db"
	"github.com/leadervibe/internal/imagestore"
	"github.com/leadervibe/internal/logging"
	"github.com/leadervibe/internal/payload"
	"gorm.io/gorm"
)

const (
	galleryFolder     = "site-gallery"
	galleryDefaultAlt = "Gallery Image"
)

// GalleryService reconciles the site gallery against edit, delete and upload requests.
type GalleryService struct {
	db    *gorm.DB
	store imagestore.Store
	now   func() time.Time
}

// GalleryUpdate is one gallery update request. Items, DeleteIDs, ImageMeta
// and FileIDs hold loosely typed entries as decoded by payload.ToList.
// ImageMeta and FileIDs pair with Files by position.
type GalleryUpdate struct {
	Items     []any
	DeleteIDs []any
	ImageMeta []any
	FileIDs   []any
	Files     []UploadFile
}

// NewGalleryService creates a GalleryService instance.
func NewGalleryService(gdb *gorm.DB, store imagestore.Store) *GalleryService {
	return &GalleryService{db: gdb, store: store, now: time.Now}
}

// List returns all gallery items in creation order.
func (s *GalleryService) List(ctx context.Context) ([]db.GalleryItem, error) {
	var items []db.GalleryItem
	if err := s.db.WithContext(ctx).Order("created_at asc").Order("id asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	return items, nil
}

// Reconcile applies deletions, then metadata edits, then uploads, and returns
// the resulting gallery. Deletions run first, so an edit naming a deleted item
// only recreates it when the edit carries a src.
func (s *GalleryService) Reconcile(ctx context.Context, update GalleryUpdate) ([]db.GalleryItem, error) {
	if len(update.Items) == 0 && len(update.DeleteIDs) == 0 && len(update.Files) == 0 {
		return nil, ErrGalleryEmptyUpdate
	}

	cleanup := newAssetCleanup(ctx, s.store, "gallery")
	defer cleanup.Wait()

	conn := s.db.WithContext(ctx)

	if err := s.applyDeletions(conn, cleanup, update.DeleteIDs); err != nil {
		return nil, err
	}

	for _, raw := range update.Items {
		if err := s.applyEdit(conn, raw); err != nil {
			return nil, err
		}
	}

	for index, file := range update.Files {
		if err := s.applyUpload(ctx, conn, cleanup, update, index, file); err != nil {
			return nil, err
		}
	}

	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Int("items", len(items)).Msg("gallery updated")
	return items, nil
}

func (s *GalleryService) applyDeletions(conn *gorm.DB, cleanup *assetCleanup, raw []any) error {
	ids := make([]string, 0, len(raw))
	for _, entry := range raw {
		if obj, ok := entry.(map[string]any); ok {
			entry = firstTruthy(obj["galleryId"], obj["id"], obj["_id"])
		}
		if id, ok := payload.StringValue(entry); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var doomed []db.GalleryItem
	if err := conn.Where("gallery_id IN ?", ids).Find(&doomed).Error; err != nil {
		return fmt.Errorf("find gallery items to delete: %w", err)
	}
	if err := conn.Where("gallery_id IN ?", ids).Delete(&db.GalleryItem{}).Error; err != nil {
		return fmt.Errorf("delete gallery items: %w", err)
	}
	for _, item := range doomed {
		cleanup.Delete(item.AssetID)
	}
	return nil
}

// galleryChanges holds the fields an edit entry sets. nil means untouched.
type galleryChanges struct {
	alt    *string
	column *string
	src    *string
}

func (c galleryChanges) empty() bool {
	return c.alt == nil && c.column == nil && c.src == nil
}

func (s *GalleryService) applyEdit(conn *gorm.DB, raw any) error {
	item, ok := raw.(map[string]any)
	if !ok {
		return nil
	}

	galleryID, ok := identifier(firstTruthy(item["id"], item["galleryId"]))
	if !ok {
		return nil
	}

	var changes galleryChanges
	if v, present := item["alt"]; present {
		if alt, isText := payload.Text(v); isText {
			changes.alt = &alt
		}
	}
	if v := item["column"]; truthy(v) {
		text, _ := v.(string)
		column := db.NormalizeColumn(text)
		changes.column = &column
	}
	if src, ok := payload.StringValue(item["src"]); ok {
		changes.src = &src
	}
	if changes.empty() {
		return nil
	}

	existing, err := findGalleryItem(conn, galleryID)
	if err != nil {
		return err
	}

	if existing == nil {
		if changes.src == nil {
			return nil
		}
		created := db.GalleryItem{
			GalleryID: galleryID,
			Src:       *changes.src,
			Alt:       galleryDefaultAlt,
			Column:    db.ColumnLeft,
		}
		if changes.alt != nil && *changes.alt != "" {
			created.Alt = *changes.alt
		}
		if changes.column != nil {
			created.Column = *changes.column
		}
		if err := conn.Create(&created).Error; err != nil {
			return fmt.Errorf("create gallery item %s: %w", galleryID, err)
		}
		return nil
	}

	updates := map[string]any{}
	if changes.alt != nil && *changes.alt != existing.Alt {
		updates["alt"] = *changes.alt
	}
	if changes.column != nil && *changes.column != existing.Column {
		updates["column"] = *changes.column
	}
	if changes.src != nil && *changes.src != existing.Src {
		updates["src"] = *changes.src
	}
	return saveGalleryItem(conn, existing, updates)
}

func (s *GalleryService) applyUpload(ctx context.Context, conn *gorm.DB, cleanup *assetCleanup, update GalleryUpdate, index int, file UploadFile) error {
	meta := uploadMeta(entryAt(update.ImageMeta, index))

	galleryID, ok := payload.StringValue(meta["id"])
	if !ok {
		galleryID, ok = payload.StringValue(meta["galleryId"])
	}
	if !ok {
		galleryID, ok = payload.StringValue(entryAt(update.FileIDs, index))
	}

	var existing *db.GalleryItem
	if !ok && truthy(meta["_id"]) {
		found, err := findGalleryItemByRowID(conn, meta["_id"])
		if err != nil {
			return err
		}
		if found != nil {
			existing = found
			galleryID, ok = found.GalleryID, true
		}
	}

	if !ok {
		galleryID = fmt.Sprintf("gallery-%d-%d", s.now().UnixMilli(), index)
	}

	if existing == nil {
		found, err := findGalleryItem(conn, galleryID)
		if err != nil {
			return err
		}
		existing = found
	}

	columnSource, _ := meta["column"].(string)
	if !truthy(meta["column"]) && existing != nil {
		columnSource = existing.Column
	}
	column := db.NormalizeColumn(columnSource)

	result, err := s.store.Upload(ctx, file.request(galleryFolder, galleryID))
	if err != nil {
		return upstreamError("Gallery image upload failed", err)
	}

	if existing != nil && existing.AssetID != "" && existing.AssetID != result.AssetID {
		cleanup.Delete(existing.AssetID)
	}

	alt, ok := payload.StringValue(meta["alt"])
	if !ok {
		if existing != nil {
			alt = existing.Alt
		} else {
			alt = file.Filename
		}
	}

	if existing == nil {
		created := db.GalleryItem{
			GalleryID: galleryID,
			Src:       result.URL,
			Alt:       alt,
			Column:    column,
			AssetID:   result.AssetID,
		}
		if err := conn.Create(&created).Error; err != nil {
			return fmt.Errorf("create gallery item %s: %w", galleryID, err)
		}
		return nil
	}

	updates := map[string]any{}
	if existing.Src != result.URL {
		updates["src"] = result.URL
	}
	if existing.Alt != alt {
		updates["alt"] = alt
	}
	if existing.Column != column {
		updates["column"] = column
	}
	if existing.AssetID != result.AssetID {
		updates["asset_id"] = result.AssetID
	}
	return saveGalleryItem(conn, existing, updates)
}

// saveGalleryItem writes updates guarded by the version read earlier in the
// request. An empty update writes nothing.
func saveGalleryItem(conn *gorm.DB, item *db.GalleryItem, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	updates["version"] = gorm.Expr("version + 1")

	res := conn.Model(&db.GalleryItem{}).
		Where("id = ? AND version = ?", item.ID, item.Version).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update gallery item %s: %w", item.GalleryID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrGalleryConflict
	}
	return nil
}

func findGalleryItem(conn *gorm.DB, galleryID string) (*db.GalleryItem, error) {
	var item db.GalleryItem
	if err := conn.Where("gallery_id = ?", galleryID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find gallery item %s: %w", galleryID, err)
	}
	return &item, nil
}

// findGalleryItemByRowID resolves the database id some clients still send.
// Ids that are not numeric match nothing.
func findGalleryItemByRowID(conn *gorm.DB, raw any) (*db.GalleryItem, error) {
	text, ok := payload.Text(raw)
	if !ok {
		return nil, nil
	}
	rowID, err := strconv.ParseUint(strings.TrimSpace(text), 10, 64)
	if err != nil || rowID == 0 {
		return nil, nil
	}

	var item db.GalleryItem
	if err := conn.First(&item, rowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find gallery item by row id: %w", err)
	}
	return &item, nil
}

// uploadMeta turns a per-file metadata entry into an object. A bare string
// is taken as the target gallery id.
func uploadMeta(raw any) map[string]any {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}
	case string:
		return map[string]any{"id": v}
	case map[string]any:
		return v
	default:
		return map[string]any{}
	}
}

func entryAt(list []any, index int) any {
	if index < 0 || index >= len(list) {
		return nil
	}
	return list[index]
}

func identifier(v any) (string, bool) {
	if s, ok := payload.StringValue(v); ok {
		return s, true
	}
	switch v.(type) {
	case float64, int, int64:
		return payload.Text(v)
	}
	return "", false
}

// truthy follows loose form semantics: nil, "", false and 0 are unset.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return true
	}
}

func firstTruthy(values ...any) any {
	for _, v := range values {
		if truthy(v) {
			return v
		}
	}
	return nil
}
