// Package geofence implements the guard geofencing policy: a per-login
// baseline location, a server-side distance check against it, and the
// forced sign-out plus admin flag that follow a violation.
package geofence

import "math"

const earthRadiusMiles = 3959.0

// DistanceMiles computes the great-circle distance in miles between two
// coordinates using the Haversine formula.
func DistanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

// RoundMiles rounds a distance to two decimals for display and logging.
// Threshold comparisons always use the full-precision value.
func RoundMiles(d float64) float64 {
	return math.Round(d*100) / 100
}
