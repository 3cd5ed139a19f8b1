package performance

import (
	"errors"
	"math"
	"time"

	userRepo "servora/database/repository/user"
	"servora/utils"

	"go.uber.org/zap"
)

const (
	// ScoreThreshold is the minimum weighted score for unrestricted
	// service creation.
	ScoreThreshold = 70
	// RestrictionWindow is how long a low-scoring provider is blocked
	// from creating new listings.
	RestrictionWindow = 24 * time.Hour
)

// ErrRestricted is returned by the creation gate together with the
// restriction-until timestamp.
var ErrRestricted = errors.New("provider is restricted from creating new services")

// Scorer maintains the rolling weighted performance score per provider and
// gates new-service creation on it.
type Scorer struct {
	Users  userRepo.UserRepository
	Clock  utils.Clock
	Logger *zap.Logger
}

// RecordBatch folds one completion batch into the provider's weighted
// average. A batch with zero events is a no-op. Scores below the threshold
// open a restriction window; scores at or above it clear any existing one.
func (s *Scorer) RecordBatch(providerID string, completed, failed int) error {
	batchTotal := completed + failed
	if batchTotal == 0 {
		return nil
	}

	u, err := s.Users.GetByID(providerID)
	if err != nil {
		return err
	}

	batchScore := float64(completed) / float64(batchTotal) * 100
	oldTotal := u.TotalBookings
	newScore := int(math.Round(
		(float64(u.PerformancePoints)*float64(oldTotal) + batchScore*float64(batchTotal)) /
			float64(oldTotal+batchTotal)))

	u.PerformancePoints = newScore
	u.TotalBookings += batchTotal
	u.SuccessfulBookings += completed

	if newScore < ScoreThreshold {
		until := s.Clock.Now().Add(RestrictionWindow)
		u.RestrictionOnNewServiceTill = &until
		s.Logger.Info("provider restricted on low performance",
			zap.String("provider", providerID), zap.Int("score", newScore))
	} else {
		u.RestrictionOnNewServiceTill = nil
	}

	return s.Users.Update(u)
}

// GateResult reports a creation-gate decision; Until is set when blocked.
type GateResult struct {
	Allowed bool
	Until   *time.Time
}

// CheckServiceCreation decides whether the provider may create a listing.
// Providers with no booking history are always allowed. An active
// restriction window blocks with its timestamp. A current score below the
// threshold restricts for the full window at the moment of the attempt: the
// check doubles as the trigger.
func (s *Scorer) CheckServiceCreation(providerID string) (GateResult, error) {
	u, err := s.Users.GetByID(providerID)
	if err != nil {
		return GateResult{}, err
	}

	if u.TotalBookings == 0 {
		return GateResult{Allowed: true}, nil
	}

	now := s.Clock.Now()
	if u.RestrictionOnNewServiceTill != nil && u.RestrictionOnNewServiceTill.After(now) {
		return GateResult{Allowed: false, Until: u.RestrictionOnNewServiceTill}, nil
	}

	if u.PerformancePoints < ScoreThreshold {
		until := now.Add(RestrictionWindow)
		u.RestrictionOnNewServiceTill = &until
		if err := s.Users.Update(u); err != nil {
			return GateResult{}, err
		}
		return GateResult{Allowed: false, Until: &until}, nil
	}

	return GateResult{Allowed: true}, nil
}
