package service

import (
	"context"

	"github.com/leadervibe/internal/imagestore"
	"github.com/leadervibe/internal/logging"
	"github.com/leadervibe/internal/metrics"
	"golang.org/x/sync/errgroup"
)

const cleanupConcurrency = 4

// assetCleanup runs best-effort image deletions for one request. Failures are
// logged and counted, never returned. Wait must be called before the request
// finishes so no deletion outlives it.
type assetCleanup struct {
	ctx   context.Context
	store imagestore.Store
	scope string
	group errgroup.Group
}

func newAssetCleanup(ctx context.Context, store imagestore.Store, scope string) *assetCleanup {
	c := &assetCleanup{
		// a client disconnect must not abort deletions already dispatched
		ctx:   context.WithoutCancel(ctx),
		store: store,
		scope: scope,
	}
	c.group.SetLimit(cleanupConcurrency)
	return c
}

// Delete schedules removal of assetID. Empty ids are ignored.
func (c *assetCleanup) Delete(assetID string) {
	if assetID == "" {
		return
	}
	c.group.Go(func() error {
		removeAsset(c.ctx, c.store, c.scope, assetID)
		return nil
	})
}

// Wait blocks until every scheduled deletion has finished.
func (c *assetCleanup) Wait() {
	_ = c.group.Wait()
}

func removeAsset(ctx context.Context, store imagestore.Store, scope, assetID string) {
	if assetID == "" {
		return
	}
	if err := store.Delete(ctx, assetID); err != nil {
		metrics.AssetCleanupFailures.WithLabelValues(scope).Inc()
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("scope", scope).
			Str("asset_id", assetID).
			Msg("failed to delete image asset")
	}
}

// UploadFile is one uploaded image held in memory.
type UploadFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (f UploadFile) request(folder, publicID string) imagestore.UploadRequest {
	return imagestore.UploadRequest{
		Data:        f.Data,
		ContentType: f.ContentType,
		Folder:      folder,
		PublicID:    publicID,
	}
}
