package handlers

import (
	"errors"
	"net/http"
	"time"

	"indastreet/middleware"
	"indastreet/models"
	"indastreet/services/booking"
	"indastreet/services/chat"
	"indastreet/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle over HTTP. The caller identity
// from the auth middleware is passed explicitly into every service call.
type BookingHandler struct {
	Svc    booking.Service
	Chat   chat.Service
	Logger *zap.Logger
}

func NewBookingHandler(svc booking.Service, chatSvc chat.Service, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Svc: svc, Chat: chatSvc, Logger: logger}
}

type createBookingInput struct {
	ProviderID   string              `json:"providerId" binding:"required"`
	ProviderType models.ProviderType `json:"providerType" binding:"required"`
	ServiceType  string              `json:"serviceType" binding:"required"`
	Duration     int                 `json:"duration" binding:"required"`
	TotalPrice   float64             `json:"totalPrice"`
	Location     models.GeoPoint     `json:"location"`
	Scheduled    time.Time           `json:"scheduled"`
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var input createBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	customerID := c.GetString(middleware.CtxCallerID)
	b, err := h.Svc.CreateBooking(c.Request.Context(), booking.CreateBookingRequest{
		CustomerID:   customerID,
		ProviderID:   input.ProviderID,
		ProviderType: input.ProviderType,
		ServiceType:  input.ServiceType,
		Duration:     input.Duration,
		TotalPrice:   input.TotalPrice,
		Location:     input.Location,
		Scheduled:    input.Scheduled,
	})
	if err != nil {
		var unavailable *booking.ProviderUnavailableError
		if errors.As(err, &unavailable) {
			utils.JSONError(c, http.StatusConflict, "provider unavailable", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to create booking", err.Error())
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) RecordResponse(c *gin.Context) {
	bookingID := c.Param("id")
	var input struct {
		Accepted bool `json:"accepted"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	providerID := c.GetString(middleware.CtxCallerID)
	if err := h.Svc.RecordProviderResponse(c.Request.Context(), bookingID, providerID, input.Accepted); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to record response", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID := c.Param("id")
	var input struct {
		Reason string `json:"reason"`
	}
	// Reason is optional; ignore bind errors on an empty body.
	_ = c.ShouldBindJSON(&input)

	if err := h.Svc.CancelBooking(c.Request.Context(), bookingID, input.Reason); err != nil {
		var invalid *booking.InvalidTransitionError
		if errors.As(err, &invalid) {
			utils.JSONError(c, http.StatusConflict, "invalid transition", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to cancel booking", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	bookingID := c.Param("id")
	if err := h.Svc.CompleteBooking(c.Request.Context(), bookingID); err != nil {
		var invalid *booking.InvalidTransitionError
		if errors.As(err, &invalid) {
			utils.JSONError(c, http.StatusConflict, "invalid transition", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to complete booking", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.Svc.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "booking not found", err.Error())
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListBookings returns the caller's bookings, as customer or provider
// depending on the authenticated role.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	callerID := c.GetString(middleware.CtxCallerID)
	role := c.GetString(middleware.CtxCallerRole)

	var (
		bookings []models.Booking
		err      error
	)
	if role == "provider" {
		bookings, err = h.Svc.ListProviderBookings(c.Request.Context(), callerID)
	} else {
		bookings, err = h.Svc.ListCustomerBookings(c.Request.Context(), callerID)
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list bookings", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (h *BookingHandler) ListMessages(c *gin.Context) {
	messages, err := h.Chat.ListMessages(c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list messages", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *BookingHandler) PostMessage(c *gin.Context) {
	var input struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	callerID := c.GetString(middleware.CtxCallerID)
	role := models.ChatRoleCustomer
	if c.GetString(middleware.CtxCallerRole) == "provider" {
		role = models.ChatRoleProvider
	}

	msg, err := h.Chat.PostMessage(c.Param("id"), callerID, role, input.Body)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to post message", err.Error())
		return
	}
	c.JSON(http.StatusCreated, msg)
}
