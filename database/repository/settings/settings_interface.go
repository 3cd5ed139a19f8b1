package settingsRepo

import "servora/models"

// SettingsRepository stores the admin-editable marketplace policy plus the
// category catalogue.
type SettingsRepository interface {
	GetCommissionPercent() (float64, error)
	SetCommissionPercent(percent float64) error

	GetCancellationPolicy() (*models.CancellationPolicy, error)
	SetCancellationPolicy(policy models.CancellationPolicy) error

	CreateCategory(cat *models.Category) error
	GetCategory(id string) (*models.Category, error)
	GetCategories(ids []string) ([]models.Category, error)
	ListCategories() ([]models.Category, error)
}
