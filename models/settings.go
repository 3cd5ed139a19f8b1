package models

// CommissionSetting is the platform's current cut of each booking.
type CommissionSetting struct {
	Percent float64 `bson:"percent" json:"percent"`

	Timestamps `bson:",inline"`
}

// CancellationPolicy governs the fee withheld when a booked service is cancelled.
type CancellationPolicy struct {
	Enabled bool    `bson:"enabled" json:"enabled"`
	Percent float64 `bson:"percent" json:"percent"`

	Timestamps `bson:",inline"`
}
