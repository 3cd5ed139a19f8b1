package handlers

import (
	"errors"
	"net/http"

	settingsRepo "servora/database/repository/settings"
	"servora/models"
	"servora/services/listing"
	"servora/services/violation"
	"servora/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler serves policy, moderation and violation review endpoints.
type AdminHandler struct {
	Settings   settingsRepo.SettingsRepository
	Violations *violation.Engine
	Listings   *listing.Service
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(settings settingsRepo.SettingsRepository, violations *violation.Engine, listings *listing.Service) *AdminHandler {
	return &AdminHandler{Settings: settings, Violations: violations, Listings: listings}
}

// GetCommission handles GET /api/admin/commission.
func (h *AdminHandler) GetCommission(c *gin.Context) {
	percent, err := h.Settings.GetCommissionPercent()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to read commission", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "commission", gin.H{"percent": percent})
}

// SetCommission handles PUT /api/admin/commission.
func (h *AdminHandler) SetCommission(c *gin.Context) {
	var input struct {
		Percent float64 `json:"percent" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Percent < 0 || input.Percent > 100 {
		utils.JSONError(c, http.StatusBadRequest, "invalid commission percent", "percent must be between 0 and 100")
		return
	}
	if err := h.Settings.SetCommissionPercent(input.Percent); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to update commission", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "commission updated", gin.H{"percent": input.Percent})
}

// GetCancellationPolicy handles GET /api/admin/cancellation-policy.
func (h *AdminHandler) GetCancellationPolicy(c *gin.Context) {
	policy, err := h.Settings.GetCancellationPolicy()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to read policy", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "cancellation policy", policy)
}

// SetCancellationPolicy handles PUT /api/admin/cancellation-policy.
func (h *AdminHandler) SetCancellationPolicy(c *gin.Context) {
	var input struct {
		Enabled bool    `json:"enabled"`
		Percent float64 `json:"percent"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Percent < 0 || input.Percent > 100 {
		utils.JSONError(c, http.StatusBadRequest, "invalid policy", "percent must be between 0 and 100")
		return
	}
	if err := h.Settings.SetCancellationPolicy(models.CancellationPolicy{
		Enabled: input.Enabled,
		Percent: input.Percent,
	}); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to update policy", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "cancellation policy updated", input)
}

// CreateCategory handles POST /api/admin/categories.
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var input struct {
		Name string   `json:"name" binding:"required"`
		Tags []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid category", err.Error())
		return
	}
	cat := &models.Category{ID: uuid.New().String(), Name: input.Name, Tags: input.Tags}
	if err := h.Settings.CreateCategory(cat); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to create category", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "category created", cat)
}

// ListCategories handles GET /api/categories.
func (h *AdminHandler) ListCategories(c *gin.Context) {
	cats, err := h.Settings.ListCategories()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list categories", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "categories", cats)
}

// FlagViolation handles POST /api/admin/violations/flag.
func (h *AdminHandler) FlagViolation(c *gin.Context) {
	var input struct {
		BookingID string `json:"booking_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	inv, err := h.Violations.FlagMissedPayment(c.Request.Context(), input.BookingID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to flag violation", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "invoice raised", inv)
}

// ReviewAppeal handles POST /api/admin/invoices/:id/appeal.
func (h *AdminHandler) ReviewAppeal(c *gin.Context) {
	var input struct {
		Approve bool `json:"approve"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	inv, err := h.Violations.ReviewAppeal(c.Request.Context(), c.Param("id"), input.Approve)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, violation.ErrInvoiceNotFound):
			status = http.StatusNotFound
		case errors.Is(err, violation.ErrInvoiceNotOpen):
			status = http.StatusConflict
		}
		utils.JSONError(c, status, "failed to review appeal", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "appeal reviewed", inv)
}

// ApproveDelete handles POST /api/admin/services/:id/approve-delete.
func (h *AdminHandler) ApproveDelete(c *gin.Context) {
	svc, err := h.Listings.ApproveDelete(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to approve delete", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "delete approved", svc)
}
