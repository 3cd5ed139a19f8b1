package handlers

import (
	"errors"
	"net/http"

	invoiceRepo "servora/database/repository/invoice"
	"servora/services/violation"
	"servora/utils"

	"github.com/gin-gonic/gin"
)

// InvoiceHandler serves provider-facing invoice endpoints.
type InvoiceHandler struct {
	Invoices   invoiceRepo.InvoiceRepository
	Violations *violation.Engine
}

// NewInvoiceHandler creates an InvoiceHandler.
func NewInvoiceHandler(invoices invoiceRepo.InvoiceRepository, violations *violation.Engine) *InvoiceHandler {
	return &InvoiceHandler{Invoices: invoices, Violations: violations}
}

// List handles GET /api/invoices, returning the caller's invoices newest first.
func (h *InvoiceHandler) List(c *gin.Context) {
	id := callerID(c)
	if id == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing caller identity", "X-User-ID header required")
		return
	}
	invoices, err := h.Invoices.ListByProvider(id)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list invoices", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "invoices", invoices)
}

// Pay handles POST /api/invoices/:id/pay.
func (h *InvoiceHandler) Pay(c *gin.Context) {
	inv, err := h.Violations.PayInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, violation.ErrInvoiceNotFound):
			status = http.StatusNotFound
		case errors.Is(err, violation.ErrInvoiceNotOpen):
			status = http.StatusConflict
		case errors.Is(err, violation.ErrChargeDeclined):
			status = http.StatusPaymentRequired
		}
		utils.JSONError(c, status, "failed to pay invoice", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "invoice paid", inv)
}
