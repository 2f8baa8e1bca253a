package geodesy

import (
	"math"

	"github.com/kass/go-geotypes/pkg/geojson"
)

const (
	metersPerDegreeLon = 111320.0 // at the equator
	metersPerDegreeLat = 110540.0

	// DefaultCirclePoints is the number of vertices Circle uses when asked
	// for zero or fewer.
	DefaultCirclePoints = 36
)

// Buffer returns an axis aligned rectangle extending distance meters from
// the point in each cardinal direction. The conversion to degrees is a flat
// approximation and degrades near the poles. A nil point yields nil.
func Buffer(point *geojson.Point, distance float64) *geojson.Polygon {
	if point == nil {
		return nil
	}
	lon, lat := point.Coordinates.Lon, point.Coordinates.Lat
	deltaLon := distance / (metersPerDegreeLon * math.Cos(DegreesToRadians(lat)))
	deltaLat := distance / metersPerDegreeLat

	return geojson.NewBBox2D(lon-deltaLon, lat-deltaLat, lon+deltaLon, lat+deltaLat).Polygon()
}

// Circle returns a closed ring of points positions at radius meters around
// center, starting due north and proceeding clockwise.
func Circle(center geojson.Position, radius float64, points int) []geojson.Position {
	if points <= 0 {
		points = DefaultCirclePoints
	}

	ring := make([]geojson.Position, 0, points+1)
	step := 360.0 / float64(points)
	for i := 0; i < points; i++ {
		ring = append(ring, Destination(center, radius, step*float64(i)))
	}
	return append(ring, ring[0])
}

// CirclePolygon wraps Circle as a Polygon geometry.
func CirclePolygon(center geojson.Position, radius float64, points int) *geojson.Polygon {
	return geojson.NewPolygon([][]geojson.Position{Circle(center, radius, points)})
}
