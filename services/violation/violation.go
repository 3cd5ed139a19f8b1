package violation

import (
	"context"
	"errors"
	"fmt"
	"math"

	bookingRepo "servora/database/repository/booking"
	invoiceRepo "servora/database/repository/invoice"
	settingsRepo "servora/database/repository/settings"
	userRepo "servora/database/repository/user"
	"servora/models"
	"servora/services/notification"
	"servora/services/payment"
	"servora/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrInvoiceNotOpen  = errors.New("invoice is not open")
	ErrChargeDeclined  = errors.New("invoice charge was declined")
)

// PerformanceRecorder receives the failure batch for a flagged provider; the
// performance engine implements it.
type PerformanceRecorder interface {
	RecordBatch(providerID string, completed, failed int) error
}

// Engine tracks provider offenses and applies the escalating penalty
// schedule. Offense counting and invoice insertion are not atomic against
// each other, so the engine must be the single writer for violations.
// TODO: move offense numbering to a per-provider atomic sequence if
// violations ever get raised from more than one process.
type Engine struct {
	Invoices    invoiceRepo.InvoiceRepository
	Bookings    bookingRepo.BookingRepository
	Users       userRepo.UserRepository
	Settings    settingsRepo.SettingsRepository
	Gateway     payment.Gateway
	Email       notification.EmailSender
	Performance PerformanceRecorder
	BasePenalty float64
	Clock       utils.Clock
	Logger      *zap.Logger
}

// penaltyFor returns the penalty amount and action for a 1-based offense number.
func (e *Engine) penaltyFor(offense int) (float64, string) {
	switch {
	case offense <= 1:
		return e.BasePenalty, models.ActionWarn
	case offense == 2:
		return e.BasePenalty * 2, models.ActionTemporaryBlock
	default:
		return e.BasePenalty * 5, models.ActionSuspend
	}
}

// FlagMissedPayment raises an invoice against the provider of a booking that
// reached a payable terminal state without a completed payment. The offense
// number counts only non-canceled prior invoices and is fixed at creation.
func (e *Engine) FlagMissedPayment(ctx context.Context, bookingID string) (*models.Invoice, error) {
	b, err := e.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, fmt.Errorf("booking not found: %w", err)
	}

	prior, err := e.Invoices.CountActiveByProvider(b.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to count prior offenses: %w", err)
	}
	offense := int(prior) + 1
	penalty, action := e.penaltyFor(offense)

	percent, err := e.Settings.GetCommissionPercent()
	if err != nil {
		return nil, fmt.Errorf("failed to read commission setting: %w", err)
	}
	commissionDue := math.Round(b.Amount * percent / 100)

	inv := &models.Invoice{
		ID:            uuid.New().String(),
		ProviderID:    b.ProviderID,
		BookingID:     b.ID,
		CommissionDue: commissionDue,
		PenaltyDue:    penalty,
		TotalDue:      commissionDue + penalty,
		OffenseNumber: offense,
		Action:        action,
		Status:        models.InvoiceUnpaid,
	}
	if err := e.Invoices.Create(inv); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	status := models.UserStatusRestricted
	if action == models.ActionSuspend {
		status = models.UserStatusBanned
	}
	if err := e.Users.UpdateStatus(b.ProviderID, status); err != nil {
		return nil, fmt.Errorf("failed to update provider status: %w", err)
	}

	// A missed payment is a failed booking from the provider's side; fold it
	// into the performance score so repeat offenders trip the creation gate.
	if e.Performance != nil {
		if err := e.Performance.RecordBatch(b.ProviderID, 0, 1); err != nil {
			e.Logger.Warn("performance update failed", zap.Error(err))
		}
	}

	if err := e.Email.SendInvoiceNotice(ctx, b.ProviderID, *inv); err != nil {
		e.Logger.Warn("invoice notice email failed", zap.Error(err))
	}
	e.Logger.Info("provider flagged for missed payment",
		zap.String("provider", b.ProviderID),
		zap.Int("offense", offense),
		zap.String("action", action))
	return inv, nil
}

// PayInvoice charges the provider's customer account for the full amount due
// immediately; on success the invoice closes and the provider is reinstated.
func (e *Engine) PayInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	inv, err := e.Invoices.GetByID(invoiceID)
	if err != nil {
		return nil, ErrInvoiceNotFound
	}
	if inv.Status != models.InvoiceUnpaid {
		return nil, ErrInvoiceNotOpen
	}

	provider, err := e.Users.GetByID(inv.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("provider not found: %w", err)
	}
	if provider.PaymentCustomerID == "" {
		custID, err := e.Gateway.CreateOrAttachCustomer(ctx, provider.ID, provider.Email, provider.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to set up provider customer account: %w", err)
		}
		provider.PaymentCustomerID = custID
		if err := e.Users.Update(provider); err != nil {
			e.Logger.Warn("failed to persist payment customer id", zap.Error(err))
		}
	}

	intent, err := e.Gateway.CreateImmediateCharge(ctx, inv.TotalDue, "usd",
		provider.PaymentCustomerID, fmt.Sprintf("invoice %s", inv.ID))
	if err != nil {
		return nil, fmt.Errorf("invoice charge failed: %w", err)
	}
	if intent.Status != payment.StatusSucceeded {
		return nil, ErrChargeDeclined
	}

	now := e.Clock.Now()
	inv.Status = models.InvoicePaid
	inv.PaidAt = &now
	if err := e.Invoices.Update(inv); err != nil {
		return nil, fmt.Errorf("failed to close invoice: %w", err)
	}
	if err := e.Users.UpdateStatus(inv.ProviderID, models.UserStatusActive); err != nil {
		return nil, fmt.Errorf("failed to reinstate provider: %w", err)
	}
	return inv, nil
}

// ReviewAppeal resolves a provider's appeal: approval cancels the invoice and
// reinstates the provider; rejection leaves everything untouched.
func (e *Engine) ReviewAppeal(ctx context.Context, invoiceID string, approve bool) (*models.Invoice, error) {
	inv, err := e.Invoices.GetByID(invoiceID)
	if err != nil {
		return nil, ErrInvoiceNotFound
	}
	if !approve {
		return inv, nil
	}
	if inv.Status != models.InvoiceUnpaid {
		return nil, ErrInvoiceNotOpen
	}

	inv.Status = models.InvoiceCanceled
	if err := e.Invoices.Update(inv); err != nil {
		return nil, fmt.Errorf("failed to cancel invoice: %w", err)
	}
	if err := e.Users.UpdateStatus(inv.ProviderID, models.UserStatusActive); err != nil {
		return nil, fmt.Errorf("failed to reinstate provider: %w", err)
	}
	return inv, nil
}
