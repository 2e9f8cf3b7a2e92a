package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListSpeakers returns the event speakers.
func (a *API) ListSpeakers(c *gin.Context) {
	speakers, err := a.speakers.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to load speakers")
		return
	}
	respondList(c, "speakers", len(speakers), speakers)
}

// GetSpeaker returns one speaker by speakerId.
func (a *API) GetSpeaker(c *gin.Context) {
	speaker, err := a.speakers.Get(c.Request.Context(), c.Param("speakerId"))
	if err != nil {
		respondServiceError(c, err, "Failed to load speaker")
		return
	}
	respondData(c, http.StatusOK, gin.H{"speaker": speaker})
}

// UpdateSpeaker partially updates a speaker.
func (a *API) UpdateSpeaker(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	speaker, err := a.speakers.Update(c.Request.Context(), c.Param("speakerId"), fields)
	if err != nil {
		respondServiceError(c, err, "Failed to update speaker")
		return
	}
	respondMessage(c, http.StatusOK, "Speaker updated successfully", gin.H{"speaker": speaker})
}
