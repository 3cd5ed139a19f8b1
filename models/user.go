package models

import "time"

// User account statuses.
const (
	UserStatusActive     = "active"
	UserStatusRestricted = "restricted"
	UserStatusBanned     = "banned"
)

// UserLocation is the last known position of a user, embedded in the user
// document. A (0,0) coordinate pair means "no reading".
type UserLocation struct {
	Point       GeoPoint  `bson:"point" json:"point"`
	AccuracyM   float64   `bson:"accuracy_m" json:"accuracy_m"`
	Source      string    `bson:"source" json:"source"` // e.g. "gps", "network"
	RecordedAt  time.Time `bson:"recorded_at" json:"recorded_at"`
	LastUpdated time.Time `bson:"last_updated" json:"last_updated"`
	Stale       bool      `bson:"stale" json:"stale"`
}

// User represents both customers and providers; provider-only fields are
// zero-valued for plain customers.
type User struct {
	ID     string `bson:"id" json:"id"`
	Name   string `bson:"name" json:"name"`
	Email  string `bson:"email" json:"email"`
	Status string `bson:"status" json:"status"`

	Location UserLocation `bson:"location" json:"location"`

	// External payment processor references.
	PaymentCustomerID string `bson:"payment_customer_id,omitempty" json:"payment_customer_id,omitempty"`
	PayoutAccountID   string `bson:"payout_account_id,omitempty" json:"payout_account_id,omitempty"`

	// Provider performance state. PerformancePoints is a running weighted
	// average over all performance-affecting events, 0-100.
	PerformancePoints           int        `bson:"performance_points" json:"performance_points"`
	TotalBookings               int        `bson:"total_bookings" json:"total_bookings"`
	SuccessfulBookings          int        `bson:"successful_bookings" json:"successful_bookings"`
	RestrictionOnNewServiceTill *time.Time `bson:"restriction_on_new_service_till,omitempty" json:"restriction_on_new_service_till,omitempty"`

	Timestamps `bson:",inline"`
}
