package notification

import (
	"context"

	"servora/models"

	"go.uber.org/zap"
)

// NotificationService is the fire-and-forget push collaborator. Implementations
// must never let a delivery failure propagate into the calling transaction.
type NotificationService interface {
	NotifyNewService(ctx context.Context, svc models.ServiceListing)
	NotifyServiceUpdated(ctx context.Context, svc models.ServiceListing)
	NotifyInterestUpdate(ctx context.Context, user models.User)
	NotifyServiceViewed(ctx context.Context, viewerID, serviceID string)
	NotifyBookingConfirmed(ctx context.Context, b models.Booking)
	NotifyServiceStarted(ctx context.Context, b models.Booking)
	NotifyBookingCancelled(ctx context.Context, b models.Booking)
}

// EmailSender is the transactional email collaborator; template rendering and
// delivery live upstream.
type EmailSender interface {
	SendBookingConfirmation(ctx context.Context, recipientID string, b models.Booking) error
	SendStartOTP(ctx context.Context, recipientID, otp string, b models.Booking) error
	SendInvoiceNotice(ctx context.Context, recipientID string, inv models.Invoice) error
}

// LogNotificationService logs every notification instead of pushing it; the
// real transport is wired in by the deployment.
type LogNotificationService struct {
	Logger *zap.Logger
}

func (s *LogNotificationService) NotifyNewService(ctx context.Context, svc models.ServiceListing) {
	s.Logger.Info("notify: new service", zap.String("service", svc.ID), zap.String("owner", svc.OwnerID))
}

func (s *LogNotificationService) NotifyServiceUpdated(ctx context.Context, svc models.ServiceListing) {
	s.Logger.Info("notify: service updated", zap.String("service", svc.ID))
}

func (s *LogNotificationService) NotifyInterestUpdate(ctx context.Context, user models.User) {
	s.Logger.Info("notify: interest update", zap.String("user", user.ID))
}

func (s *LogNotificationService) NotifyServiceViewed(ctx context.Context, viewerID, serviceID string) {
	s.Logger.Info("notify: service viewed", zap.String("viewer", viewerID), zap.String("service", serviceID))
}

func (s *LogNotificationService) NotifyBookingConfirmed(ctx context.Context, b models.Booking) {
	s.Logger.Info("notify: booking confirmed", zap.String("booking", b.ID))
}

func (s *LogNotificationService) NotifyServiceStarted(ctx context.Context, b models.Booking) {
	s.Logger.Info("notify: service started", zap.String("booking", b.ID))
}

func (s *LogNotificationService) NotifyBookingCancelled(ctx context.Context, b models.Booking) {
	s.Logger.Info("notify: booking cancelled", zap.String("booking", b.ID))
}

// LogEmailSender logs outgoing mail; it never fails.
type LogEmailSender struct {
	Logger *zap.Logger
}

func (s *LogEmailSender) SendBookingConfirmation(ctx context.Context, recipientID string, b models.Booking) error {
	s.Logger.Info("email: booking confirmation", zap.String("recipient", recipientID), zap.String("booking", b.ID))
	return nil
}

func (s *LogEmailSender) SendStartOTP(ctx context.Context, recipientID, otp string, b models.Booking) error {
	s.Logger.Info("email: service start code", zap.String("recipient", recipientID), zap.String("booking", b.ID))
	return nil
}

func (s *LogEmailSender) SendInvoiceNotice(ctx context.Context, recipientID string, inv models.Invoice) error {
	s.Logger.Info("email: invoice notice", zap.String("recipient", recipientID), zap.String("invoice", inv.ID))
	return nil
}
