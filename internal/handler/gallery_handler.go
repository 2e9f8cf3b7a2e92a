package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leadervibe/internal/payload"
	"github.com/leadervibe/internal/service"
)

// GetGallery returns every gallery item in creation order.
func (a *API) GetGallery(c *gin.Context) {
	items, err := a.gallery.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to load gallery")
		return
	}
	respondList(c, "gallery", len(items), items)
}

// UpdateGallery applies deletions, metadata edits and image uploads in one request.
// Fields may arrive as multipart form values or as a JSON body.
func (a *API) UpdateGallery(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	files, err := a.uploads.readUploads(multipartForm(c), "images", maxGalleryImages)
	if err != nil {
		respondUploadError(c, err)
		return
	}

	items, err := a.gallery.Reconcile(c.Request.Context(), service.GalleryUpdate{
		Items:     payload.ToList(fields.Get("items")),
		DeleteIDs: payload.ToList(fields.Get("deleteIds")),
		ImageMeta: payload.ToList(fields.Get("imageMeta")),
		FileIDs:   payload.ToList(fields.First("galleryIds", "replaceIds")),
		Files:     files,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to update gallery")
		return
	}
	respondList(c, "gallery", len(items), items)
}

func multipartForm(c *gin.Context) *multipart.Form {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	return form
}

func respondUploadError(c *gin.Context, err error) {
	var upErr uploadError
	if errors.As(err, &upErr) {
		respondError(c, http.StatusBadRequest, upErr.message)
		return
	}
	respondServiceError(c, err, "Failed to read uploaded files")
}
