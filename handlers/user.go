package handlers

import (
	"errors"
	"net/http"
	"time"

	"servora/models"
	"servora/services/user"
	"servora/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the user-facing location endpoint.
type UserHandler struct {
	Location *user.LocationService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(location *user.LocationService) *UserHandler {
	return &UserHandler{Location: location}
}

// UpdateLocation handles PUT /api/users/location. A (0,0) reading never
// overwrites the stored location; the response always carries the stored
// state after the rules ran.
func (h *UserHandler) UpdateLocation(c *gin.Context) {
	var input struct {
		Latitude   float64   `json:"latitude"`
		Longitude  float64   `json:"longitude"`
		AccuracyM  float64   `json:"accuracy_m"`
		Source     string    `json:"source"`
		RecordedAt time.Time `json:"recorded_at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid location update", err.Error())
		return
	}
	id := callerID(c)
	if id == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing caller identity", "X-User-ID header required")
		return
	}

	loc, err := h.Location.UpdateLocation(id, user.LocationUpdate{
		Point:      models.GeoPoint{Latitude: input.Latitude, Longitude: input.Longitude},
		AccuracyM:  input.AccuracyM,
		Source:     input.Source,
		RecordedAt: input.RecordedAt,
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, user.ErrInvalidCoordinates):
			status = http.StatusBadRequest
		case errors.Is(err, user.ErrUserNotFound):
			status = http.StatusNotFound
		}
		utils.JSONError(c, status, "failed to update location", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "location", loc)
}
