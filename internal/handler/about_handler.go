package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leadervibe/internal/db"
	"github.com/leadervibe/internal/service"
)

type profilePayload struct {
	ID             string     `json:"id" binding:"required"`
	Name           string     `json:"name" binding:"required"`
	Title          string     `json:"title"`
	Email          string     `json:"email"`
	Bio            string     `json:"bio"`
	BookingText    string     `json:"bookingText"`
	BookingURL     string     `json:"bookingUrl"`
	Photo          db.Photo   `json:"photo"`
	Gallery        []db.Photo `json:"gallery"`
	Awards         []string   `json:"awards"`
	Certifications []string   `json:"certifications"`
}

func (p profilePayload) toInput() service.ProfileInput {
	return service.ProfileInput{
		ProfileID:      p.ID,
		Name:           p.Name,
		Title:          p.Title,
		Email:          p.Email,
		Bio:            p.Bio,
		BookingText:    p.BookingText,
		BookingURL:     p.BookingURL,
		Photo:          p.Photo,
		Gallery:        p.Gallery,
		Awards:         p.Awards,
		Certifications: p.Certifications,
	}
}

// ListProfiles 返回全部 about 档案
func (a *API) ListProfiles(c *gin.Context) {
	profiles, err := a.profiles.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to load profiles")
		return
	}
	respondList(c, "profiles", len(profiles), profiles)
}

// GetProfile 按 profileId 返回档案
func (a *API) GetProfile(c *gin.Context) {
	profile, err := a.profiles.Get(c.Request.Context(), c.Param("profileId"))
	if err != nil {
		respondServiceError(c, err, "Failed to load profile")
		return
	}
	respondData(c, http.StatusOK, gin.H{"profile": profile})
}

// CreateProfile 新建档案（JSON），头像需为已上传图片的地址
func (a *API) CreateProfile(c *gin.Context) {
	var req profilePayload
	if !bindJSON(c, &req, "Profile id and name are required") {
		return
	}

	profile, err := a.profiles.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondServiceError(c, err, "Failed to create profile")
		return
	}
	respondMessage(c, http.StatusCreated, "Profile created successfully", gin.H{"profile": profile})
}

// UpdateProfile 部分更新档案，支持 multipart 上传 photo 与 gallery 文件
func (a *API) UpdateProfile(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	form := multipartForm(c)
	photos, err := a.uploads.readUploads(form, "photo", maxProfilePhotos)
	if err != nil {
		respondUploadError(c, err)
		return
	}
	gallery, err := a.uploads.readUploads(form, "gallery", maxProfileImages)
	if err != nil {
		respondUploadError(c, err)
		return
	}

	update := service.ProfileUpdate{Fields: fields, GalleryFiles: gallery}
	if len(photos) > 0 {
		update.Photo = &photos[0]
	}

	profile, err := a.profiles.Reconcile(c.Request.Context(), c.Param("profileId"), update)
	if err != nil {
		respondServiceError(c, err, "Failed to update profile")
		return
	}
	respondMessage(c, http.StatusOK, "Profile updated successfully", gin.H{"profile": profile})
}
