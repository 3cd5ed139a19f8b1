package models

import "time"

// RecurringSlot is one repeating availability window on a listing.
type RecurringSlot struct {
	Day   string `bson:"day" json:"day"` // e.g. "monday"
	Date  string `bson:"date,omitempty" json:"date,omitempty"`
	Start string `bson:"start" json:"start"` // "HH:MM"
	End   string `bson:"end" json:"end"`
}

// Schedule is either a single one-time window or a list of recurring slots.
type Schedule struct {
	OneTime   bool            `bson:"one_time" json:"one_time"`
	Date      string          `bson:"date,omitempty" json:"date,omitempty"` // "YYYY-MM-DD"
	Start     string          `bson:"start,omitempty" json:"start,omitempty"`
	End       string          `bson:"end,omitempty" json:"end,omitempty"`
	Recurring []RecurringSlot `bson:"recurring,omitempty" json:"recurring,omitempty"`
}

// Promotion carries informational promotion flags on a listing.
type Promotion struct {
	Featured   bool       `bson:"featured" json:"featured"`
	Discounted bool       `bson:"discounted" json:"discounted"`
	ValidFrom  *time.Time `bson:"valid_from,omitempty" json:"valid_from,omitempty"`
	ValidUntil *time.Time `bson:"valid_until,omitempty" json:"valid_until,omitempty"`
}

// ServiceListing is a provider's offered, location-anchored offering.
type ServiceListing struct {
	ID         string   `bson:"id" json:"id"`
	OwnerID    string   `bson:"owner_id" json:"owner_id"`
	CategoryID string   `bson:"category_id" json:"category_id"`
	Title      string   `bson:"title" json:"title"`
	Description string  `bson:"description" json:"description"`
	Tags       []string `bson:"tags" json:"tags"`

	Free     bool    `bson:"free" json:"free"`
	Price    float64 `bson:"price" json:"price"`
	Currency string  `bson:"currency" json:"currency"`

	Location  GeoPoint `bson:"location" json:"location"`
	PlaceName string   `bson:"place_name" json:"place_name"`

	Schedule  Schedule  `bson:"schedule" json:"schedule"`
	Promotion Promotion `bson:"promotion" json:"promotion"`

	// Moderation workflow. A listing with bookings is soft-deleted through
	// request/approve; one without is hard-deleted.
	DeleteRequested   bool       `bson:"delete_requested" json:"delete_requested"`
	DeleteApproved    bool       `bson:"delete_approved" json:"delete_approved"`
	DeleteRequestedAt *time.Time `bson:"delete_requested_at,omitempty" json:"delete_requested_at,omitempty"`
	DeleteApprovedAt  *time.Time `bson:"delete_approved_at,omitempty" json:"delete_approved_at,omitempty"`

	Timestamps `bson:",inline"`
}

// Category groups listings; its name and tags participate in keyword search.
type Category struct {
	ID   string   `bson:"id" json:"id"`
	Name string   `bson:"name" json:"name"`
	Tags []string `bson:"tags" json:"tags"`

	Timestamps `bson:",inline"`
}
