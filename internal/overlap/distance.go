// Package overlap implements the service-area redundancy analysis: pairwise
// great-circle distances, neighbor counting within a service radius, redundancy
// ranking, greedy consolidation clustering, and a rough inefficiency estimate.
package overlap

import "math"

// earthRadiusMiles is the spherical Earth approximation radius in statute miles.
const earthRadiusMiles = 3959.0

// Distance returns the great-circle distance between two points in statute
// miles using the haversine formula. Inputs are decimal degrees (WGS84).
// Behavior for out-of-range coordinates is undefined; callers validate first.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180

	sinLat := math.Sin(dlat / 2)
	sinLon := math.Sin(dlon / 2)
	a := sinLat*sinLat + math.Cos(rlat1)*math.Cos(rlat2)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}
