package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leadervibe/internal/service"
)

// SendCustomEmail sends an admin-written markdown message.
func (a *API) SendCustomEmail(c *gin.Context) {
	var req service.NotificationInput
	if !bindJSON(c, &req, "Please provide to, subject, and message") {
		return
	}
	if err := a.emails.SendNotification(c.Request.Context(), req); err != nil {
		respondServiceError(c, err, "Failed to send email")
		return
	}
	respondMessage(c, http.StatusOK, "Email sent successfully", nil)
}

func (a *API) SendWelcomeEmail(c *gin.Context) {
	var req service.RecipientInput
	if !bindJSON(c, &req, "Please provide name and email") {
		return
	}
	if err := a.emails.SendWelcome(c.Request.Context(), req); err != nil {
		respondServiceError(c, err, "Failed to send email")
		return
	}
	respondMessage(c, http.StatusOK, "Welcome email sent successfully", nil)
}

func (a *API) SendPasswordResetEmail(c *gin.Context) {
	var req service.RecipientInput
	if !bindJSON(c, &req, "Please provide name, email and resetUrl") {
		return
	}
	if err := a.emails.SendPasswordReset(c.Request.Context(), req); err != nil {
		respondServiceError(c, err, "Failed to send email")
		return
	}
	respondMessage(c, http.StatusOK, "Password reset email sent successfully", nil)
}
