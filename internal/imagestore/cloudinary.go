package imagestore

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryConfig holds account credentials. Folder is prepended to every
// upload folder.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Cloudinary stores images through the Cloudinary upload API.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinary validates credentials and returns a ready client.
func NewCloudinary(cfg CloudinaryConfig) (*Cloudinary, error) {
	cfg.CloudName = strings.TrimSpace(cfg.CloudName)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.APISecret = strings.TrimSpace(cfg.APISecret)

	var missing []string
	if cfg.CloudName == "" {
		missing = append(missing, "cloud name")
	}
	if cfg.APIKey == "" {
		missing = append(missing, "api key")
	}
	if cfg.APISecret == "" {
		missing = append(missing, "api secret")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary client: %w", err)
	}

	return &Cloudinary{
		cld:    cld,
		folder: strings.Trim(strings.TrimSpace(cfg.Folder), "/"),
	}, nil
}

// SetUploadPrefix points the client at another API host.
func (c *Cloudinary) SetUploadPrefix(prefix string) {
	c.cld.Config.API.UploadPrefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
}

// Upload stores the image under <account folder>/<req.Folder>/<req.PublicID>,
// overwriting any previous image with the same key.
func (c *Cloudinary) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	if len(req.Data) == 0 {
		return UploadResult{}, fmt.Errorf("cloudinary upload: empty image")
	}

	params := uploader.UploadParams{
		Folder:    assetKey(c.folder, req.Folder),
		PublicID:  strings.TrimSpace(req.PublicID),
		Overwrite: api.Bool(true),
	}
	res, err := c.cld.Upload.Upload(ctx, DataURI(req.ContentType, req.Data), params)
	if err != nil {
		return UploadResult{}, fmt.Errorf("cloudinary upload %s: %w", req.PublicID, err)
	}
	if msg := strings.TrimSpace(res.Error.Message); msg != "" {
		return UploadResult{}, fmt.Errorf("cloudinary upload %s: %s", req.PublicID, msg)
	}
	if res.SecureURL == "" || res.PublicID == "" {
		return UploadResult{}, fmt.Errorf("cloudinary upload %s: incomplete response", req.PublicID)
	}
	return UploadResult{URL: res.SecureURL, AssetID: res.PublicID}, nil
}

// Delete removes an asset. An asset that does not exist counts as deleted.
func (c *Cloudinary) Delete(ctx context.Context, assetID string) error {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return nil
	}

	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: assetID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy %s: %w", assetID, err)
	}
	if msg := strings.TrimSpace(res.Error.Message); msg != "" {
		return fmt.Errorf("cloudinary destroy %s: %s", assetID, msg)
	}
	switch res.Result {
	case "ok", "not found":
		return nil
	default:
		return fmt.Errorf("cloudinary destroy %s: unexpected result %q", assetID, res.Result)
	}
}
