package geo

import (
	"math"

	"github.com/paulmach/orb"
)

const earthRadiusMiles = 3959.0

// Point builds an orb.Point from a latitude/longitude pair. orb stores
// points as {longitude, latitude}.
func Point(lat, lng float64) orb.Point {
	return orb.Point{lng, lat}
}

// Miles returns the great-circle distance between two points in miles
// using the Haversine formula.
func Miles(a, b orb.Point) float64 {
	lat1 := a[1] * math.Pi / 180
	lat2 := b[1] * math.Pi / 180
	dLat := (b[1] - a[1]) * math.Pi / 180
	dLng := (b[0] - a[0]) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMiles * c
}
