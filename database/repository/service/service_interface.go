package serviceRepo

import "servora/models"

// CandidateFilter holds the attribute filters the store applies against the
// full listing set; geo and keyword rules run in the discovery engine.
type CandidateFilter struct {
	CategoryIDs []string // OR-matched
	Tags        []string // OR-matched
	FreeOnly    bool
	Date        string // "YYYY-MM-DD"; matches one-time date or a recurring slot date
}

// ServiceRepository defines data access for service listings.
type ServiceRepository interface {
	Create(svc *models.ServiceListing) error
	GetByID(id string) (*models.ServiceListing, error)
	Update(svc *models.ServiceListing) error
	Delete(id string) error
	ListByOwner(ownerID string) ([]models.ServiceListing, error)
	FindCandidates(filter CandidateFilter) ([]models.ServiceListing, error)
}
