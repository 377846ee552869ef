// Package geo provides the short-range distance approximation used for
// delivery pricing and route planning.
package geo

import "math"

// KmPerDegree is the scale applied to the planar degree distance.
const KmPerDegree = 111.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DistanceKm returns the planar Euclidean distance between a and b scaled by
// KmPerDegree. It is not the Haversine formula and is only reasonable over
// short ranges.
func DistanceKm(a, b Point) float64 {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return math.Sqrt(dLat*dLat+dLon*dLon) * KmPerDegree
}

// Valid reports whether p lies within the latitude/longitude ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}
