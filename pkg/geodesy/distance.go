package geodesy

import (
	"math"

	"github.com/kass/go-geotypes/pkg/geojson"
)

// Distance returns the great-circle distance in meters between a and b using
// the haversine formula. Elevation is ignored.
func Distance(a, b geojson.Position) float64 {
	lat1 := DegreesToRadians(a.Lat)
	lat2 := DegreesToRadians(b.Lat)
	dLat := DegreesToRadians(b.Lat - a.Lat)
	dLon := DegreesToRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// rounding can push h just outside [0, 1]
	h = math.Min(math.Max(h, 0), 1)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadius * c
}

// Bearing returns the initial bearing in degrees [0, 360), clockwise from
// north, of the great circle from a to b. The bearing is 0 when a equals b.
func Bearing(a, b geojson.Position) float64 {
	lat1 := DegreesToRadians(a.Lat)
	lat2 := DegreesToRadians(b.Lat)
	dLon := DegreesToRadians(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return math.Mod(RadiansToDegrees(math.Atan2(y, x))+360, 360)
}

// Destination returns the point reached by travelling distance meters from
// start along the initial bearing (degrees). The result has no elevation.
//
// The longitude is not normalized: travelling east across the antimeridian
// yields values above 180. Use NormalizeLongitude when a wrapped value is
// needed.
func Destination(start geojson.Position, distance, bearing float64) geojson.Position {
	lat := DegreesToRadians(start.Lat)
	lon := DegreesToRadians(start.Lon)
	brng := DegreesToRadians(bearing)
	delta := distance / EarthRadius

	destLat := math.Asin(math.Sin(lat)*math.Cos(delta) +
		math.Cos(lat)*math.Sin(delta)*math.Cos(brng))

	destLon := lon + math.Atan2(
		math.Sin(brng)*math.Sin(delta)*math.Cos(lat),
		math.Cos(delta)-math.Sin(lat)*math.Sin(destLat),
	)

	return geojson.NewPosition(RadiansToDegrees(destLon), RadiansToDegrees(destLat))
}

// NormalizeLongitude wraps lon into [-180, 180).
func NormalizeLongitude(lon float64) float64 {
	wrapped := math.Mod(lon+180, 360)
	if wrapped < 0 {
		wrapped += 360
	}
	return wrapped - 180
}

// LineLength returns the length in meters of ls as the sum of the distances
// between consecutive positions. Lines with fewer than two positions have
// length 0.
func LineLength(ls *geojson.LineString) float64 {
	if ls == nil {
		return 0
	}
	total := 0.0
	for i := 1; i < len(ls.Coordinates); i++ {
		total += Distance(ls.Coordinates[i-1], ls.Coordinates[i])
	}
	return total
}
