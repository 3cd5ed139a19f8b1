package userRepo

import (
	"time"

	"servora/models"
)

// CandidateFilter narrows the nearby-user candidate set before the discovery
// engine applies keyword/geo rules in memory.
type CandidateFilter struct {
	Statuses     []string // empty means any
	WithLocation bool     // only users with a non-zero, non-stale location
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByIDs(ids []string) ([]models.User, error)
	Update(user *models.User) error
	UpdateStatus(id, status string) error

	// ApplyLocationIfNewer conditionally replaces the stored location. The
	// recorded-at comparison runs atomically in the store (findOneAndUpdate),
	// not as a separate read-then-write, so concurrent pings cannot lose the
	// newest reading. Returns false when the stored location was newer or equal.
	ApplyLocationIfNewer(id string, loc models.UserLocation) (bool, error)

	// SweepStaleLocations zeroes out and flags every location last updated
	// before cutoff. Idempotent; safe to run from multiple processes.
	SweepStaleLocations(cutoff time.Time) (int64, error)

	FindCandidates(filter CandidateFilter) ([]models.User, error)
}
