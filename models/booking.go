package models

import "time"

// Booking statuses. Transitions are one-directional except cancellation.
const (
	BookingPendingPayment = "pending_payment"
	BookingBooked         = "booked"
	BookingStarted        = "started"
	BookingCompleted      = "completed"
	BookingCancelled      = "cancelled"
	BookingPaymentFailed  = "payment_failed"
)

// Booking represents a customer's reservation of one service listing.
type Booking struct {
	ID         string  `bson:"id" json:"id"`
	CustomerID string  `bson:"customer_id" json:"customer_id"`
	ProviderID string  `bson:"provider_id" json:"provider_id"`
	ServiceID  string  `bson:"service_id" json:"service_id"`
	Amount     float64 `bson:"amount" json:"amount"`
	Currency   string  `bson:"currency" json:"currency"`
	Status     string  `bson:"status" json:"status"`
	PaymentID  string  `bson:"payment_id,omitempty" json:"payment_id,omitempty"`

	// Service-start verification code, set by StartService.
	StartOTP       string     `bson:"start_otp,omitempty" json:"-"`
	StartOTPExpiry *time.Time `bson:"start_otp_expiry,omitempty" json:"-"`

	Timestamps `bson:",inline"`
}

// BookingWithRole tags a booking with the role the queried user played in it.
type BookingWithRole struct {
	Booking `bson:",inline"`
	Role    string `json:"role"` // "customer" or "provider"
}
