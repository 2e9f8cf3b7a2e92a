// Package imagestore uploads and removes hosted images.
package imagestore

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
)

// ErrMissingCredentials is returned when a client is constructed without the
// settings it needs to authenticate.
var ErrMissingCredentials = errors.New("image store credentials are not configured")

// UploadRequest describes one image to store. PublicID is the key the image
// is stored under inside Folder; uploading to an existing key overwrites it.
type UploadRequest struct {
	Data        []byte
	ContentType string
	Folder      string
	PublicID    string
}

// UploadResult is the public URL and the asset id used later to delete it.
type UploadResult struct {
	URL     string
	AssetID string
}

// Store is the contract the reconcilers consume. Delete of an unknown asset
// is not an error.
type Store interface {
	Upload(ctx context.Context, req UploadRequest) (UploadResult, error)
	Delete(ctx context.Context, assetID string) error
}

// DataURI encodes an upload as a base64 data URI.
func DataURI(contentType string, data []byte) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func assetKey(folder, publicID string) string {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	publicID = strings.Trim(strings.TrimSpace(publicID), "/")
	if folder == "" {
		return publicID
	}
	return folder + "/" + publicID
}
