package models

import "time"

// GeoPoint is a geographic coordinate pair in degrees.
type GeoPoint struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// IsZero reports whether the point is the (0,0) "no reading" sentinel.
func (p GeoPoint) IsZero() bool {
	return p.Latitude == 0 && p.Longitude == 0
}

// Valid reports whether both coordinates are in range.
func (p GeoPoint) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// Viewport is a map viewport; all four bounds are inclusive.
type Viewport struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Contains reports whether the point lies inside the viewport (inclusive).
func (v Viewport) Contains(p GeoPoint) bool {
	return p.Latitude >= v.South && p.Latitude <= v.North &&
		p.Longitude >= v.West && p.Longitude <= v.East
}

// Timestamps embeds the usual audit pair.
type Timestamps struct {
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
