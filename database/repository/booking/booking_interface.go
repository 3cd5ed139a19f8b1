package bookingRepo

import "servora/models"

// BookingRepository defines data access for bookings and their payments.
type BookingRepository interface {
	Create(b *models.Booking) error
	GetByID(id string) (*models.Booking, error)
	Update(b *models.Booking) error

	// UpdateStatusIf transitions status only when the stored status equals
	// expected, atomically. Returns false when the guard did not match, which
	// serializes concurrent completion/cancellation attempts.
	UpdateStatusIf(id, expected, next string) (bool, error)

	// ListByUser returns the user's bookings in both roles, tagged with the
	// role, sorted by creation time descending.
	ListByUser(userID string) ([]models.BookingWithRole, error)

	CountByService(serviceID string) (int64, error)
}

// PaymentRepository defines data access for payment records.
type PaymentRepository interface {
	Create(p *models.Payment) error
	GetByID(id string) (*models.Payment, error)
	GetByBooking(bookingID string) (*models.Payment, error)
	Update(p *models.Payment) error
}
