package invoiceRepo

import "servora/models"

// InvoiceRepository defines data access for penalty invoices.
type InvoiceRepository interface {
	Create(inv *models.Invoice) error
	GetByID(id string) (*models.Invoice, error)
	Update(inv *models.Invoice) error

	// CountActiveByProvider counts the provider's invoices that are not
	// canceled; canceled invoices never count toward offenses.
	CountActiveByProvider(providerID string) (int64, error)

	ListByProvider(providerID string) ([]models.Invoice, error)
}
