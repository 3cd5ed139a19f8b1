package user

import (
	"errors"
	"time"

	userRepo "servora/database/repository/user"
	"servora/models"
	"servora/utils"

	"go.uber.org/zap"
)

const (
	// MinMovementMeters suppresses GPS jitter: closer updates are no-ops.
	MinMovementMeters = 20.0
	// StaleAfter is how long a location survives without an update.
	StaleAfter = 7 * 24 * time.Hour
	// SweepCooldown bounds how often one process runs the staleness sweep.
	SweepCooldown = time.Hour

	sweepKey = "location-sweep"
)

var (
	ErrInvalidCoordinates = errors.New("coordinates out of range")
	ErrUserNotFound       = errors.New("user not found")
)

// LocationService applies the location freshness rules and runs the periodic
// staleness sweep.
type LocationService struct {
	Repo   userRepo.UserRepository
	Clock  utils.Clock
	Gate   *utils.CooldownGate
	Logger *zap.Logger
}

// NewLocationService wires the service with a real clock and a fresh cooldown gate.
func NewLocationService(repo userRepo.UserRepository, logger *zap.Logger) *LocationService {
	clock := utils.RealClock{}
	return &LocationService{
		Repo:   repo,
		Clock:  clock,
		Gate:   utils.NewCooldownGate(clock, SweepCooldown),
		Logger: logger,
	}
}

// LocationUpdate is one incoming position reading.
type LocationUpdate struct {
	Point      models.GeoPoint
	AccuracyM  float64
	Source     string
	RecordedAt time.Time
}

// UpdateLocation applies an incoming reading under three rules: a (0,0) pair
// is "no reading" and only echoes the stored location; a reading within
// MinMovementMeters of the stored point is dropped; and the store-side
// conditional write rejects anything not strictly newer than what is stored.
// The returned location is the stored state after the call.
func (s *LocationService) UpdateLocation(userID string, upd LocationUpdate) (*models.UserLocation, error) {
	u, err := s.Repo.GetByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if upd.Point.IsZero() {
		return &u.Location, nil
	}
	if !upd.Point.Valid() {
		return nil, ErrInvalidCoordinates
	}

	if !u.Location.Point.IsZero() {
		moved := utils.HaversineMeters(
			u.Location.Point.Latitude, u.Location.Point.Longitude,
			upd.Point.Latitude, upd.Point.Longitude)
		if moved < MinMovementMeters {
			return &u.Location, nil
		}
	}

	loc := models.UserLocation{
		Point:       upd.Point,
		AccuracyM:   upd.AccuracyM,
		Source:      upd.Source,
		RecordedAt:  upd.RecordedAt,
		LastUpdated: s.Clock.Now(),
		Stale:       false,
	}
	applied, err := s.Repo.ApplyLocationIfNewer(userID, loc)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Out-of-order write; the stored reading is newer or equal.
		return &u.Location, nil
	}
	return &loc, nil
}

// SweepStaleLocationsIfDue zeroes locations older than StaleAfter, at most
// once per SweepCooldown per process. Best-effort: multiple processes may
// sweep concurrently, which is harmless because the sweep is idempotent.
func (s *LocationService) SweepStaleLocationsIfDue() {
	if !s.Gate.TryAcquire(sweepKey) {
		return
	}
	cutoff := s.Clock.Now().Add(-StaleAfter)
	n, err := s.Repo.SweepStaleLocations(cutoff)
	if err != nil {
		s.Logger.Warn("stale location sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.Logger.Info("stale locations zeroed", zap.Int64("count", n))
	}
}
