package handler

import (
	"strings"

	"github.com/leadervibe/internal/imagestore"
	"github.com/leadervibe/internal/mailer"
	"github.com/leadervibe/internal/service"
	"gorm.io/gorm"
)

const defaultUploadMaxBytes = 5 << 20

// Dependencies are the collaborators the handlers are built from.
type Dependencies struct {
	DB             *gorm.DB
	Store          imagestore.Store
	Mailer         mailer.Sender
	Tokens         *service.TokenManager
	AdminEmail     string
	UploadMaxBytes int64
	// PublicBaseURL prefixes links sent by email. Empty falls back to the request host.
	PublicBaseURL  string
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	gallery  *service.GalleryService
	profiles *service.AboutProfileService
	speakers *service.SpeakerService
	bookings *service.BookingService
	contacts *service.ContactService
	users    *service.UserService
	emails   *service.EmailService
	uploads  uploadLimits
	baseURL  string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(deps Dependencies) *API {
	maxBytes := deps.UploadMaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultUploadMaxBytes
	}
	mail := deps.Mailer
	if mail == nil {
		mail = mailer.Log{}
	}

	return &API{
		gallery:  service.NewGalleryService(deps.DB, deps.Store),
		profiles: service.NewAboutProfileService(deps.DB, deps.Store),
		speakers: service.NewSpeakerService(deps.DB),
		bookings: service.NewBookingService(deps.DB, mail, deps.AdminEmail),
		contacts: service.NewContactService(deps.DB, mail, deps.AdminEmail),
		users:    service.NewUserService(deps.DB, deps.Tokens, mail),
		emails:   service.NewEmailService(mail),
		uploads:  uploadLimits{maxBytes: maxBytes},
		baseURL:  strings.TrimRight(deps.PublicBaseURL, "/"),
	}
}
