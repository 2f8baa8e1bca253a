// Package geodesy implements geodesic calculations over geojson values on a
// spherical earth: distance, bearing, destination, length, area, bounding
// boxes, line simplification and point-in-polygon tests.
//
// Every function is pure and safe for concurrent use. Inputs are not
// validated: NaN or infinite coordinates propagate into the results.
package geodesy

import "math"

// EarthRadius is the WGS84 equatorial radius in meters, used as the radius
// of the sphere for all calculations.
const EarthRadius = 6378137.0

// DegreesToRadians converts an angle from degrees to radians.
func DegreesToRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}

// RadiansToDegrees converts an angle from radians to degrees.
func RadiansToDegrees(radians float64) float64 {
	return radians * (180 / math.Pi)
}
