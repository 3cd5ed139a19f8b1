package booking

import (
	"context"
	"fmt"
	"math"

	bookingRepo "servora/database/repository/booking"
	settingsRepo "servora/database/repository/settings"
	userRepo "servora/database/repository/user"
	"servora/models"
	"servora/services/notification"
	"servora/services/payment"
	"servora/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PerformanceRecorder receives completion/failure batches for a provider; the
// performance engine implements it. Invoked fire-and-forget on completion.
type PerformanceRecorder interface {
	RecordBatch(providerID string, completed, failed int) error
}

// Service drives the booking lifecycle and its payment orchestration.
type Service struct {
	Bookings    bookingRepo.BookingRepository
	Payments    bookingRepo.PaymentRepository
	Users       userRepo.UserRepository
	Settings    settingsRepo.SettingsRepository
	Gateway     payment.Gateway
	Notifier    notification.NotificationService
	Email       notification.EmailSender
	Performance PerformanceRecorder
	Clock       utils.Clock
	Logger      *zap.Logger
}

// CreateInput is the payload for CreateBooking.
type CreateInput struct {
	CustomerID string
	ProviderID string
	ServiceID  string
	Amount     float64
	Currency   string
}

// CommissionSplit computes the platform cut. Rounding happens once, at the
// commission; the provider amount is the exact remainder so the two always
// sum back to the gross amount.
func CommissionSplit(amount, percent float64) (commission, providerAmount float64) {
	commission = math.Round(amount * percent / 100)
	return commission, amount - commission
}

// CreateBooking authorizes the gross amount in manual-capture mode with the
// commission as an application fee routed to the platform and the remainder
// destined for the provider's payout account. The booking is persisted only
// after the gateway has answered: booked when the intent is captured or
// capturable, payment_failed otherwise.
func (s *Service) CreateBooking(ctx context.Context, in CreateInput) (*models.Booking, error) {
	if in.CustomerID == "" || in.ProviderID == "" || in.ServiceID == "" {
		return nil, fmt.Errorf("customer, provider and service are required")
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if in.Currency == "" {
		in.Currency = "usd"
	}

	customer, err := s.Users.GetByID(in.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("customer not found: %w", err)
	}
	provider, err := s.Users.GetByID(in.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("provider not found: %w", err)
	}
	if provider.PayoutAccountID == "" {
		return nil, ErrNoPayoutAccount
	}

	if customer.PaymentCustomerID == "" {
		custID, err := s.Gateway.CreateOrAttachCustomer(ctx, customer.ID, customer.Email, customer.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to set up customer account: %w", err)
		}
		customer.PaymentCustomerID = custID
		if err := s.Users.Update(customer); err != nil {
			s.Logger.Warn("failed to persist payment customer id", zap.Error(err))
		}
	}

	percent, err := s.Settings.GetCommissionPercent()
	if err != nil {
		return nil, fmt.Errorf("failed to read commission setting: %w", err)
	}
	commission, providerAmount := CommissionSplit(in.Amount, percent)

	pay := &models.Payment{
		ID:              uuid.New().String(),
		CustomerAccount: customer.PaymentCustomerID,
		ProviderAccount: provider.PayoutAccountID,
		Amount:          in.Amount,
		Commission:      commission,
		ProviderAmount:  providerAmount,
		Status:          models.PaymentPending,
	}

	b := &models.Booking{
		ID:         uuid.New().String(),
		CustomerID: in.CustomerID,
		ProviderID: in.ProviderID,
		ServiceID:  in.ServiceID,
		Amount:     in.Amount,
		Currency:   in.Currency,
		PaymentID:  pay.ID,
		Status:     models.BookingPendingPayment,
	}
	pay.BookingID = b.ID

	// Persist the pair in pending state before talking to the gateway so a
	// crash mid-authorization leaves an auditable record instead of nothing.
	if err := s.Payments.Create(pay); err != nil {
		return nil, fmt.Errorf("failed to persist payment: %w", err)
	}
	if err := s.Bookings.Create(b); err != nil {
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	intent, err := s.Gateway.CreateIntent(ctx, in.Amount, commission, in.Currency,
		customer.PaymentCustomerID, provider.PayoutAccountID)
	if err != nil {
		s.failPendingPair(b, pay)
		return nil, fmt.Errorf("payment authorization failed: %w", err)
	}

	pay.IntentRef = intent.ID
	if intent.Status.Capturable() {
		b.Status = models.BookingBooked
	} else {
		b.Status = models.BookingPaymentFailed
		pay.Status = models.PaymentFailed
	}

	if err := s.Payments.Update(pay); err != nil {
		return nil, fmt.Errorf("failed to persist payment: %w", err)
	}
	if err := s.Bookings.Update(b); err != nil {
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	if b.Status == models.BookingBooked {
		s.Notifier.NotifyBookingConfirmed(ctx, *b)
		if err := s.Email.SendBookingConfirmation(ctx, b.CustomerID, *b); err != nil {
			s.Logger.Warn("booking confirmation email failed", zap.Error(err))
		}
		if err := s.Email.SendBookingConfirmation(ctx, b.ProviderID, *b); err != nil {
			s.Logger.Warn("booking confirmation email failed", zap.Error(err))
		}
	}
	return b, nil
}

// failPendingPair closes out a pending booking and payment after the gateway
// refused to authorize; persistence failures here are only logged since the
// caller is already returning the gateway error.
func (s *Service) failPendingPair(b *models.Booking, pay *models.Payment) {
	b.Status = models.BookingPaymentFailed
	pay.Status = models.PaymentFailed
	if err := s.Payments.Update(pay); err != nil {
		s.Logger.Warn("failed to mark payment failed", zap.Error(err))
	}
	if err := s.Bookings.Update(b); err != nil {
		s.Logger.Warn("failed to mark booking failed", zap.Error(err))
	}
}

// StartService issues the service-start code for a booked booking and emails
// it to the customer.
func (s *Service) StartService(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if b.Status != models.BookingBooked {
		return nil, ErrWrongState
	}

	otp, err := generateStartOTP()
	if err != nil {
		return nil, err
	}
	expiry := s.Clock.Now().Add(StartOTPTTL)
	b.StartOTP = otp
	b.StartOTPExpiry = &expiry
	if err := s.Bookings.Update(b); err != nil {
		return nil, fmt.Errorf("failed to store start code: %w", err)
	}

	if err := s.Email.SendStartOTP(ctx, b.CustomerID, otp, *b); err != nil {
		s.Logger.Warn("start code email failed", zap.Error(err))
	}
	return b, nil
}

// VerifyStartOTP checks the customer-supplied code and, on success, moves the
// booking to started. Expiry comparison is strict.
func (s *Service) VerifyStartOTP(ctx context.Context, bookingID, code string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if b.Status != models.BookingBooked {
		return nil, ErrWrongState
	}
	if b.StartOTP == "" || b.StartOTPExpiry == nil {
		return nil, ErrOTPNotIssued
	}
	if s.Clock.Now().After(*b.StartOTPExpiry) {
		return nil, ErrOTPExpired
	}
	if b.StartOTP != code {
		return nil, ErrOTPMismatch
	}

	ok, err := s.Bookings.UpdateStatusIf(b.ID, models.BookingBooked, models.BookingStarted)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrWrongState
	}
	b.Status = models.BookingStarted
	b.StartOTP = ""
	b.StartOTPExpiry = nil
	if err := s.Bookings.Update(b); err != nil {
		s.Logger.Warn("failed to clear start code", zap.Error(err))
	}

	// Only the customer hears about service start.
	s.Notifier.NotifyServiceStarted(ctx, *b)
	return b, nil
}

// CompleteService captures the authorized intent and finalizes the booking.
// Only valid from started; any other state is a terminal error.
func (s *Service) CompleteService(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if b.Status != models.BookingStarted {
		return nil, ErrWrongState
	}
	pay, err := s.Payments.GetByID(b.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("payment record missing for booking %s: %w", b.ID, err)
	}

	if _, err := s.Gateway.CaptureIntent(ctx, pay.IntentRef); err != nil {
		return nil, fmt.Errorf("capture failed: %w", err)
	}

	ok, err := s.Bookings.UpdateStatusIf(b.ID, models.BookingStarted, models.BookingCompleted)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrWrongState
	}
	b.Status = models.BookingCompleted

	now := s.Clock.Now()
	pay.Status = models.PaymentCompleted
	pay.CompletedAt = &now
	if err := s.Payments.Update(pay); err != nil {
		return nil, fmt.Errorf("failed to finalize payment: %w", err)
	}

	if s.Performance != nil {
		if err := s.Performance.RecordBatch(b.ProviderID, 1, 0); err != nil {
			s.Logger.Warn("performance update failed", zap.Error(err))
		}
	}
	return b, nil
}

// CancelBooking refunds a booked booking under the current cancellation
// policy. An uncaptured authorization is captured in full first, because the
// gateway cannot refund an authorization directly; this is fixed policy.
func (s *Service) CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if b.Status != models.BookingBooked {
		return nil, ErrWrongState
	}
	pay, err := s.Payments.GetByID(b.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("payment record missing for booking %s: %w", b.ID, err)
	}

	policy, err := s.Settings.GetCancellationPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to read cancellation policy: %w", err)
	}
	percent := 0.0
	if policy.Enabled {
		percent = policy.Percent
	}

	intent, err := s.Gateway.RetrieveIntent(ctx, pay.IntentRef)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect payment intent: %w", err)
	}
	if intent.Status != payment.StatusSucceeded {
		if _, err := s.Gateway.CaptureIntent(ctx, pay.IntentRef); err != nil {
			return nil, fmt.Errorf("capture before refund failed: %w", err)
		}
	}

	fee := math.Round(pay.Amount * percent / 100)
	refundAmount := pay.Amount - fee
	if err := s.Gateway.CreateRefund(ctx, pay.IntentRef, refundAmount); err != nil {
		return nil, fmt.Errorf("refund failed: %w", err)
	}

	ok, err := s.Bookings.UpdateStatusIf(b.ID, models.BookingBooked, models.BookingCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrWrongState
	}
	b.Status = models.BookingCancelled

	now := s.Clock.Now()
	pay.Status = models.PaymentRefunded
	pay.RefundAmount = refundAmount
	pay.RefundFee = fee
	pay.RefundedAt = &now
	if err := s.Payments.Update(pay); err != nil {
		return nil, fmt.Errorf("failed to record refund: %w", err)
	}

	s.Notifier.NotifyBookingCancelled(ctx, *b)
	return b, nil
}

// ListBookings returns the user's bookings in both roles, newest first.
func (s *Service) ListBookings(ctx context.Context, userID string) ([]models.BookingWithRole, error) {
	return s.Bookings.ListByUser(userID)
}
