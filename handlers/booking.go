package handlers

import (
	"errors"
	"net/http"

	"servora/services/booking"
	"servora/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler serves the booking lifecycle endpoints.
type BookingHandler struct {
	Service *booking.Service
}

// NewBookingHandler creates a BookingHandler.
func NewBookingHandler(service *booking.Service) *BookingHandler {
	return &BookingHandler{Service: service}
}

// callerID reads the authenticated caller set by the upstream auth layer.
func callerID(c *gin.Context) string {
	return c.GetHeader("X-User-ID")
}

func bookingStatusCode(err error) int {
	switch {
	case errors.Is(err, booking.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrWrongState),
		errors.Is(err, booking.ErrNoPayoutAccount),
		errors.Is(err, booking.ErrOTPNotIssued),
		errors.Is(err, booking.ErrOTPExpired),
		errors.Is(err, booking.ErrOTPMismatch):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Create handles POST /api/bookings.
func (h *BookingHandler) Create(c *gin.Context) {
	var input struct {
		ProviderID string  `json:"provider_id" binding:"required"`
		ServiceID  string  `json:"service_id" binding:"required"`
		Amount     float64 `json:"amount" binding:"required"`
		Currency   string  `json:"currency"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid booking request", err.Error())
		return
	}

	b, err := h.Service.CreateBooking(c.Request.Context(), booking.CreateInput{
		CustomerID: callerID(c),
		ProviderID: input.ProviderID,
		ServiceID:  input.ServiceID,
		Amount:     input.Amount,
		Currency:   input.Currency,
	})
	if err != nil {
		utils.JSONError(c, bookingStatusCode(err), "failed to create booking", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "booking created", b)
}

// Start handles POST /api/bookings/:id/start.
func (h *BookingHandler) Start(c *gin.Context) {
	b, err := h.Service.StartService(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, bookingStatusCode(err), "failed to start service", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "start code sent", b)
}

// VerifyOTP handles POST /api/bookings/:id/verify-otp.
func (h *BookingHandler) VerifyOTP(c *gin.Context) {
	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid verification request", err.Error())
		return
	}

	b, err := h.Service.VerifyStartOTP(c.Request.Context(), c.Param("id"), input.Code)
	if err != nil {
		utils.JSONError(c, bookingStatusCode(err), "verification failed", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "service started", b)
}

// Complete handles POST /api/bookings/:id/complete.
func (h *BookingHandler) Complete(c *gin.Context) {
	b, err := h.Service.CompleteService(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, bookingStatusCode(err), "failed to complete service", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "service completed", b)
}

// Cancel handles POST /api/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	b, err := h.Service.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, bookingStatusCode(err), "failed to cancel booking", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "booking cancelled", b)
}

// List handles GET /api/bookings, returning the caller's bookings in both roles.
func (h *BookingHandler) List(c *gin.Context) {
	id := callerID(c)
	if id == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing caller identity", "X-User-ID header required")
		return
	}
	bookings, err := h.Service.ListBookings(c.Request.Context(), id)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list bookings", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "bookings", bookings)
}
