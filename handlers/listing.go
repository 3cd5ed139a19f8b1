package handlers

import (
	"errors"
	"net/http"

	"servora/models"
	"servora/services/listing"
	"servora/utils"

	"github.com/gin-gonic/gin"
)

// ListingHandler serves the service-listing lifecycle endpoints.
type ListingHandler struct {
	Service *listing.Service
}

// NewListingHandler creates a ListingHandler.
func NewListingHandler(service *listing.Service) *ListingHandler {
	return &ListingHandler{Service: service}
}

func listingStatusCode(err error) int {
	var restricted *listing.RestrictedError
	switch {
	case errors.As(err, &restricted),
		errors.Is(err, listing.ErrProviderBlocked),
		errors.Is(err, listing.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, listing.ErrBadLocation),
		errors.Is(err, listing.ErrCategoryNotFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Create handles POST /api/services. A provider under an active performance
// restriction gets the restriction-until timestamp back.
func (h *ListingHandler) Create(c *gin.Context) {
	var input struct {
		CategoryID  string          `json:"category_id" binding:"required"`
		Title       string          `json:"title" binding:"required"`
		Description string          `json:"description"`
		Tags        []string        `json:"tags"`
		Free        bool            `json:"free"`
		Price       float64         `json:"price"`
		Currency    string          `json:"currency"`
		Location    models.GeoPoint `json:"location"`
		PlaceName   string          `json:"place_name"`
		Schedule    models.Schedule `json:"schedule"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid listing", err.Error())
		return
	}

	svc, err := h.Service.Create(c.Request.Context(), listing.CreateInput{
		OwnerID:     callerID(c),
		CategoryID:  input.CategoryID,
		Title:       input.Title,
		Description: input.Description,
		Tags:        input.Tags,
		Free:        input.Free,
		Price:       input.Price,
		Currency:    input.Currency,
		Location:    input.Location,
		PlaceName:   input.PlaceName,
		Schedule:    input.Schedule,
	})
	if err != nil {
		var restricted *listing.RestrictedError
		if errors.As(err, &restricted) {
			c.JSON(http.StatusForbidden, utils.Envelope{
				Success: false,
				Message: "new service creation restricted",
				Data:    gin.H{"restricted_until": restricted.Until},
			})
			return
		}
		utils.JSONError(c, listingStatusCode(err), "failed to create listing", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "listing created", svc)
}

// Update handles PATCH /api/services/:id.
func (h *ListingHandler) Update(c *gin.Context) {
	var input listing.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid update", err.Error())
		return
	}

	svc, err := h.Service.Update(c.Request.Context(), callerID(c), c.Param("id"), input)
	if err != nil {
		utils.JSONError(c, listingStatusCode(err), "failed to update listing", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "listing updated", svc)
}

// Delete handles DELETE /api/services/:id: hard delete without bookings,
// moderation request otherwise.
func (h *ListingHandler) Delete(c *gin.Context) {
	svc, err := h.Service.RequestDelete(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		utils.JSONError(c, listingStatusCode(err), "failed to delete listing", err.Error())
		return
	}
	if svc == nil {
		utils.JSONSuccess(c, http.StatusOK, "listing deleted", nil)
		return
	}
	utils.JSONSuccess(c, http.StatusAccepted, "delete requested, pending moderation", svc)
}
