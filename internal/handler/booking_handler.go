package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leadervibe/internal/service"
)

type bookingStatusPayload struct {
	Status string `json:"status"`
}

// CreateBooking 公开接口，提交活动预约
func (a *API) CreateBooking(c *gin.Context) {
	var req service.BookingInput
	if !bindJSON(c, &req, "Invalid booking payload") {
		return
	}

	booking, err := a.bookings.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to submit booking")
		return
	}
	respondMessage(c, http.StatusCreated, "Booking request submitted successfully", gin.H{"booking": booking})
}

// ListBookings 返回全部预约
func (a *API) ListBookings(c *gin.Context) {
	bookings, err := a.bookings.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to load bookings")
		return
	}
	respondList(c, "bookings", len(bookings), bookings)
}

// GetBooking 返回单个预约
func (a *API) GetBooking(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	booking, err := a.bookings.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to load booking")
		return
	}
	respondData(c, http.StatusOK, gin.H{"booking": booking})
}

// UpdateBookingStatus 修改预约状态
func (a *API) UpdateBookingStatus(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid booking ID")
		return
	}
	var req bookingStatusPayload
	if !bindJSON(c, &req, "Invalid status payload") {
		return
	}

	booking, err := a.bookings.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, err, "Failed to update booking")
		return
	}
	respondData(c, http.StatusOK, gin.H{"booking": booking})
}

// DeleteBooking 删除预约
func (a *API) DeleteBooking(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	if err := a.bookings.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete booking")
		return
	}
	c.Status(http.StatusNoContent)
}
