package models

import "time"

// Invoice statuses.
const (
	InvoiceUnpaid   = "unpaid"
	InvoicePaid     = "paid"
	InvoiceCanceled = "canceled"
)

// Penalty actions, indexed by offense.
const (
	ActionWarn           = "warn"
	ActionTemporaryBlock = "temporary_block"
	ActionSuspend        = "suspend"
)

// Invoice is a penalty record raised against a provider for a booking that
// completed without payment. OffenseNumber is assigned once at creation from
// the count of prior non-canceled invoices and never recalculated.
type Invoice struct {
	ID            string  `bson:"id" json:"id"`
	ProviderID    string  `bson:"provider_id" json:"provider_id"`
	BookingID     string  `bson:"booking_id" json:"booking_id"`
	CommissionDue float64 `bson:"commission_due" json:"commission_due"`
	PenaltyDue    float64 `bson:"penalty_due" json:"penalty_due"`
	TotalDue      float64 `bson:"total_due" json:"total_due"`
	OffenseNumber int     `bson:"offense_number" json:"offense_number"`
	Action        string  `bson:"action" json:"action"`
	Status        string  `bson:"status" json:"status"`

	PaidAt *time.Time `bson:"paid_at,omitempty" json:"paid_at,omitempty"`

	Timestamps `bson:",inline"`
}
