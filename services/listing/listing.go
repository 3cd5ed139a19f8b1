package listing

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "servora/database/repository/booking"
	serviceRepo "servora/database/repository/service"
	settingsRepo "servora/database/repository/settings"
	userRepo "servora/database/repository/user"
	"servora/models"
	"servora/services/notification"
	"servora/services/performance"
	"servora/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotOwner         = errors.New("caller does not own this listing")
	ErrProviderBlocked  = errors.New("provider account is not active")
	ErrBadLocation      = errors.New("listing location coordinates are invalid")
	ErrCategoryNotFound = errors.New("category not found")
)

// RestrictedError carries the restriction-until timestamp back to the caller.
type RestrictedError struct {
	Until time.Time
}

func (e *RestrictedError) Error() string {
	return fmt.Sprintf("new service creation restricted until %s", e.Until.Format(time.RFC3339))
}

// Service owns the listing lifecycle: gated creation, owner updates and the
// moderation delete workflow.
type Service struct {
	Listings serviceRepo.ServiceRepository
	Bookings bookingRepo.BookingRepository
	Users    userRepo.UserRepository
	Settings settingsRepo.SettingsRepository
	Gate     *performance.Scorer
	Notifier notification.NotificationService
	Clock    utils.Clock
	Logger   *zap.Logger
}

// CreateInput is the payload for Create.
type CreateInput struct {
	OwnerID     string
	CategoryID  string
	Title       string
	Description string
	Tags        []string
	Free        bool
	Price       float64
	Currency    string
	Location    models.GeoPoint
	PlaceName   string
	Schedule    models.Schedule
}

// Create checks the owner's account status and the performance gate, then
// persists the listing. Location coordinates are mandatory and validated.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.ServiceListing, error) {
	if in.OwnerID == "" || in.CategoryID == "" || in.Title == "" {
		return nil, fmt.Errorf("owner, category and title are required")
	}
	if !in.Location.Valid() || in.Location.IsZero() {
		return nil, ErrBadLocation
	}

	owner, err := s.Users.GetByID(in.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("owner not found: %w", err)
	}
	if owner.Status != models.UserStatusActive {
		return nil, ErrProviderBlocked
	}
	if _, err := s.Settings.GetCategory(in.CategoryID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, in.CategoryID)
	}

	gate, err := s.Gate.CheckServiceCreation(in.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("performance check failed: %w", err)
	}
	if !gate.Allowed {
		return nil, &RestrictedError{Until: *gate.Until}
	}

	svc := &models.ServiceListing{
		ID:          uuid.New().String(),
		OwnerID:     in.OwnerID,
		CategoryID:  in.CategoryID,
		Title:       in.Title,
		Description: in.Description,
		Tags:        in.Tags,
		Free:        in.Free,
		Price:       in.Price,
		Currency:    in.Currency,
		Location:    in.Location,
		PlaceName:   in.PlaceName,
		Schedule:    in.Schedule,
	}
	if svc.Free {
		svc.Price = 0
	}
	if err := s.Listings.Create(svc); err != nil {
		return nil, err
	}

	s.Notifier.NotifyNewService(ctx, *svc)
	return svc, nil
}

// UpdateInput carries the owner-editable fields; nil pointers leave a field
// unchanged. Category may be reassigned.
type UpdateInput struct {
	CategoryID  *string          `json:"category_id,omitempty"`
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Tags        *[]string        `json:"tags,omitempty"`
	Free        *bool            `json:"free,omitempty"`
	Price       *float64         `json:"price,omitempty"`
	Location    *models.GeoPoint `json:"location,omitempty"`
	PlaceName   *string          `json:"place_name,omitempty"`
	Schedule    *models.Schedule `json:"schedule,omitempty"`
}

// Update applies the owner's edits.
func (s *Service) Update(ctx context.Context, ownerID, listingID string, in UpdateInput) (*models.ServiceListing, error) {
	svc, err := s.Listings.GetByID(listingID)
	if err != nil {
		return nil, err
	}
	if svc.OwnerID != ownerID {
		return nil, ErrNotOwner
	}

	if in.CategoryID != nil {
		if _, err := s.Settings.GetCategory(*in.CategoryID); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, *in.CategoryID)
		}
		svc.CategoryID = *in.CategoryID
	}
	if in.Title != nil {
		svc.Title = *in.Title
	}
	if in.Description != nil {
		svc.Description = *in.Description
	}
	if in.Tags != nil {
		svc.Tags = *in.Tags
	}
	if in.Free != nil {
		svc.Free = *in.Free
		if svc.Free {
			svc.Price = 0
		}
	}
	if in.Price != nil && !svc.Free {
		svc.Price = *in.Price
	}
	if in.Location != nil {
		if !in.Location.Valid() || in.Location.IsZero() {
			return nil, ErrBadLocation
		}
		svc.Location = *in.Location
	}
	if in.PlaceName != nil {
		svc.PlaceName = *in.PlaceName
	}
	if in.Schedule != nil {
		svc.Schedule = *in.Schedule
	}

	if err := s.Listings.Update(svc); err != nil {
		return nil, err
	}
	s.Notifier.NotifyServiceUpdated(ctx, *svc)
	return svc, nil
}

// RequestDelete removes the listing outright when it has no bookings;
// otherwise it flags the listing for moderation approval.
func (s *Service) RequestDelete(ctx context.Context, ownerID, listingID string) (*models.ServiceListing, error) {
	svc, err := s.Listings.GetByID(listingID)
	if err != nil {
		return nil, err
	}
	if svc.OwnerID != ownerID {
		return nil, ErrNotOwner
	}

	count, err := s.Bookings.CountByService(listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	if count == 0 {
		if err := s.Listings.Delete(listingID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	now := s.Clock.Now()
	svc.DeleteRequested = true
	svc.DeleteRequestedAt = &now
	if err := s.Listings.Update(svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// ApproveDelete finalizes a pending moderation delete (soft delete: the
// listing stays for booking history but never surfaces in discovery).
func (s *Service) ApproveDelete(ctx context.Context, listingID string) (*models.ServiceListing, error) {
	svc, err := s.Listings.GetByID(listingID)
	if err != nil {
		return nil, err
	}
	if !svc.DeleteRequested {
		return nil, fmt.Errorf("listing %s has no pending delete request", listingID)
	}

	now := s.Clock.Now()
	svc.DeleteApproved = true
	svc.DeleteApprovedAt = &now
	if err := s.Listings.Update(svc); err != nil {
		return nil, err
	}
	return svc, nil
}
