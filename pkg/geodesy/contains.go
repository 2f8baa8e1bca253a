package geodesy

import (
	"github.com/kass/go-geotypes/pkg/geojson"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Containment is the three-valued result of a point-in-polygon test.
type Containment int

const (
	Outside Containment = iota
	Inside
	OnBoundary
)

func (c Containment) String() string {
	switch c {
	case Inside:
		return "inside"
	case OnBoundary:
		return "boundary"
	default:
		return "outside"
	}
}

// PointInPolygon classifies p against a polygon given as rings: the exterior
// ring first, then holes. A position on any ring, hole rings included, is
// OnBoundary. Otherwise it is Inside when it lies within the exterior ring
// and outside every hole.
//
// Coordinates are treated as planar. Rings need not repeat their first
// position; the closing segment is always tested.
func PointInPolygon(p geojson.Position, rings [][]geojson.Position) Containment {
	if len(rings) == 0 || len(rings[0]) == 0 {
		return Outside
	}

	for _, ring := range rings {
		if onRing(p, ring) {
			return OnBoundary
		}
	}

	if planar.PolygonContains(toOrbPolygon(rings), orb.Point{p.Lon, p.Lat}) {
		return Inside
	}
	return Outside
}

// ContainsPosition classifies p against a Polygon or MultiPolygon. For a
// MultiPolygon the position is Inside when any member contains it and
// OnBoundary when it only touches a member boundary. Every other geometry
// type reports Outside.
func ContainsPosition(g geojson.Geometry, p geojson.Position) Containment {
	switch g := g.(type) {
	case *geojson.Polygon:
		return PointInPolygon(p, g.Coordinates)
	case *geojson.MultiPolygon:
		result := Outside
		for _, polygon := range g.Coordinates {
			switch PointInPolygon(p, polygon) {
			case Inside:
				return Inside
			case OnBoundary:
				result = OnBoundary
			}
		}
		return result
	default:
		return Outside
	}
}

func onRing(p geojson.Position, ring []geojson.Position) bool {
	n := len(ring)
	if n == 1 {
		return ring[0].Lon == p.Lon && ring[0].Lat == p.Lat
	}
	for i := 0; i < n; i++ {
		if onSegment(p, ring[i], ring[(i+1)%n]) {
			return true
		}
	}
	return false
}

func onSegment(p, a, b geojson.Position) bool {
	cross := (b.Lon-a.Lon)*(p.Lat-a.Lat) - (b.Lat-a.Lat)*(p.Lon-a.Lon)
	if cross != 0 {
		return false
	}
	return p.Lon >= min(a.Lon, b.Lon) && p.Lon <= max(a.Lon, b.Lon) &&
		p.Lat >= min(a.Lat, b.Lat) && p.Lat <= max(a.Lat, b.Lat)
}

func toOrbPolygon(rings [][]geojson.Position) orb.Polygon {
	poly := make(orb.Polygon, 0, len(rings))
	for _, ring := range rings {
		r := make(orb.Ring, 0, len(ring)+1)
		for _, pos := range ring {
			r = append(r, orb.Point{pos.Lon, pos.Lat})
		}
		if len(r) > 0 && !r.Closed() {
			r = append(r, r[0])
		}
		poly = append(poly, r)
	}
	return poly
}
