package geodesy

import (
	"math"

	"github.com/kass/go-geotypes/pkg/geojson"
)

// PolygonArea returns the approximate area in square meters enclosed by the
// exterior ring of poly, using the spherical excess approximation.
//
// Holes are not subtracted. The ring must already be closed (first position
// repeated last); it is not closed automatically. Rings with fewer than three
// positions have area 0.
func PolygonArea(poly *geojson.Polygon) float64 {
	if poly == nil || len(poly.Coordinates) == 0 {
		return 0
	}
	return ringArea(poly.Coordinates[0])
}

func ringArea(ring []geojson.Position) float64 {
	if len(ring) < 3 {
		return 0
	}

	area := 0.0
	for i := 0; i < len(ring)-1; i++ {
		p1, p2 := ring[i], ring[i+1]
		area += DegreesToRadians(p2.Lon-p1.Lon) *
			(2 + math.Sin(DegreesToRadians(p1.Lat)) + math.Sin(DegreesToRadians(p2.Lat)))
	}

	return math.Abs(area * EarthRadius * EarthRadius / 2)
}
