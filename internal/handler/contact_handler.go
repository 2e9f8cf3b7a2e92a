package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leadervibe/internal/service"
)

// CreateContact 公开接口，提交联系表单
func (a *API) CreateContact(c *gin.Context) {
	var req service.ContactInput
	if !bindJSON(c, &req, "Invalid contact payload") {
		return
	}

	contact, err := a.contacts.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to send message")
		return
	}
	respondMessage(c, http.StatusCreated, "Message sent successfully", gin.H{"contact": contact})
}

func (a *API) ListContacts(c *gin.Context) {
	contacts, err := a.contacts.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to load messages")
		return
	}
	respondList(c, "contacts", len(contacts), contacts)
}

func (a *API) GetContact(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	contact, err := a.contacts.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to load message")
		return
	}
	respondData(c, http.StatusOK, gin.H{"contact": contact})
}

func (a *API) DeleteContact(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	if err := a.contacts.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete message")
		return
	}
	c.Status(http.StatusNoContent)
}
