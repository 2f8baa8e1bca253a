package geodesy

import (
	"math"

	"github.com/kass/go-geotypes/pkg/geojson"
)

// SimplifyLineString removes positions of ls that lie within tolerance of
// the simplified shape, using the Douglas-Peucker algorithm.
//
// Distances are planar, in coordinate units (degrees), not meters. Lines
// with two or fewer positions are returned as a copy. The input is never
// modified. Recursion depth is bounded by the number of positions.
func SimplifyLineString(ls *geojson.LineString, tolerance float64) *geojson.LineString {
	if ls == nil {
		return nil
	}

	coords := ls.Coordinates
	if len(coords) > 2 {
		coords = douglasPeucker(coords, tolerance)
	}

	out := make([]geojson.Position, len(coords))
	copy(out, coords)
	return geojson.NewLineString(out)
}

func douglasPeucker(points []geojson.Position, tolerance float64) []geojson.Position {
	if len(points) <= 2 {
		return points
	}

	first, last := points[0], points[len(points)-1]
	maxDistance := 0.0
	maxIndex := 0

	for i := 1; i < len(points)-1; i++ {
		d := segmentDistance(points[i], first, last)
		if d > maxDistance {
			maxDistance = d
			maxIndex = i
		}
	}

	if maxDistance <= tolerance {
		return []geojson.Position{first, last}
	}

	left := douglasPeucker(points[:maxIndex+1], tolerance)
	right := douglasPeucker(points[maxIndex:], tolerance)

	// the split point ends left and starts right
	out := make([]geojson.Position, 0, len(left)+len(right)-1)
	out = append(out, left[:len(left)-1]...)
	return append(out, right...)
}

// segmentDistance returns the planar distance from p to the segment a-b.
// A zero length segment degrades to the distance from p to a.
func segmentDistance(p, a, b geojson.Position) float64 {
	dx := p.Lon - a.Lon
	dy := p.Lat - a.Lat
	sx := b.Lon - a.Lon
	sy := b.Lat - a.Lat

	lenSq := sx*sx + sy*sy
	if lenSq == 0 {
		return math.Sqrt(dx*dx + dy*dy)
	}

	t := (dx*sx + dy*sy) / lenSq
	var cx, cy float64
	switch {
	case t < 0:
		cx, cy = a.Lon, a.Lat
	case t > 1:
		cx, cy = b.Lon, b.Lat
	default:
		cx, cy = a.Lon+t*sx, a.Lat+t*sy
	}

	ex := p.Lon - cx
	ey := p.Lat - cy
	return math.Sqrt(ex*ex + ey*ey)
}
