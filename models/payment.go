package models

import "time"

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentRefunded  = "refunded"
	PaymentFailed    = "failed"
)

// Payment is the money side of a booking. Commission is computed once, from
// the commission percentage current at booking time, and never recomputed:
// Commission + ProviderAmount == Amount always holds.
type Payment struct {
	ID              string  `bson:"id" json:"id"`
	BookingID       string  `bson:"booking_id" json:"booking_id"`
	IntentRef       string  `bson:"intent_ref" json:"intent_ref"` // external payment-intent id
	CustomerAccount string  `bson:"customer_account" json:"customer_account"`
	ProviderAccount string  `bson:"provider_account" json:"provider_account"`
	Amount          float64 `bson:"amount" json:"amount"`
	Commission      float64 `bson:"commission" json:"commission"`
	ProviderAmount  float64 `bson:"provider_amount" json:"provider_amount"`
	Status          string  `bson:"status" json:"status"`

	RefundAmount float64    `bson:"refund_amount,omitempty" json:"refund_amount,omitempty"`
	RefundFee    float64    `bson:"refund_fee,omitempty" json:"refund_fee,omitempty"`
	RefundedAt   *time.Time `bson:"refunded_at,omitempty" json:"refunded_at,omitempty"`
	CompletedAt  *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`

	Timestamps `bson:",inline"`
}
