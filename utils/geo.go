package utils

import "math"

const (
	earthRadiusMeters = 6371000.0
	earthRadiusKm     = 6371.0
)

// HaversineMeters returns the great-circle distance between two points in meters.
// Used by the location movement-threshold check; everything above it works in km.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	return haversine(lat1, lon1, lat2, lon2) * earthRadiusMeters
}

// HaversineKm returns the great-circle distance between two points in kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	return haversine(lat1, lon1, lat2, lon2) * earthRadiusKm
}

// haversine computes the central angle between two coordinates in radians.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	deltaLat := lat2Rad - lat1Rad
	deltaLon := lon2Rad - lon1Rad

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Bounds is an approximate square bounding box for a circle on the sphere.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// BoundingBox returns the bounds of a square covering a circle of radiusKm
// centered at (lat, lon). The longitude delta is corrected by cos(lat) so the
// box does not narrow incorrectly away from the equator.
func BoundingBox(lat, lon, radiusKm float64) Bounds {
	latDelta := radiusKm / 111.0
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 1e-6 {
		cosLat = 1e-6
	}
	lonDelta := radiusKm / (111.0 * cosLat)
	return Bounds{
		MinLat: lat - latDelta,
		MaxLat: lat + latDelta,
		MinLon: lon - lonDelta,
		MaxLon: lon + lonDelta,
	}
}
