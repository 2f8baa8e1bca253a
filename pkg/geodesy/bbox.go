package geodesy

import (
	"math"

	"github.com/kass/go-geotypes/pkg/geojson"
)

// extent accumulates horizontal min/max over positions.
type extent struct {
	minLon, minLat, maxLon, maxLat float64
}

func newExtent() *extent {
	return &extent{
		minLon: math.Inf(1),
		minLat: math.Inf(1),
		maxLon: math.Inf(-1),
		maxLat: math.Inf(-1),
	}
}

func (e *extent) add(p geojson.Position) {
	e.minLon = math.Min(e.minLon, p.Lon)
	e.minLat = math.Min(e.minLat, p.Lat)
	e.maxLon = math.Max(e.maxLon, p.Lon)
	e.maxLat = math.Max(e.maxLat, p.Lat)
}

func (e *extent) addAll(positions []geojson.Position) {
	for _, p := range positions {
		e.add(p)
	}
}

func (e *extent) union(b geojson.BBox) {
	e.minLon = math.Min(e.minLon, b.West)
	e.minLat = math.Min(e.minLat, b.South)
	e.maxLon = math.Max(e.maxLon, b.East)
	e.maxLat = math.Max(e.maxLat, b.North)
}

func (e *extent) bbox() geojson.BBox {
	return geojson.NewBBox2D(e.minLon, e.minLat, e.maxLon, e.maxLat)
}

// GeometryBBox returns the 2D bounding box of every position in g, elevation
// excluded. A nil geometry, empty coordinates or an empty collection yield
// geojson.EmptyBBox; check the result with IsEmpty before using it.
func GeometryBBox(g geojson.Geometry) geojson.BBox {
	e := newExtent()

	switch g := g.(type) {
	case *geojson.Point:
		e.add(g.Coordinates)
	case *geojson.LineString:
		e.addAll(g.Coordinates)
	case *geojson.MultiPoint:
		e.addAll(g.Coordinates)
	case *geojson.Polygon:
		for _, ring := range g.Coordinates {
			e.addAll(ring)
		}
	case *geojson.MultiLineString:
		for _, line := range g.Coordinates {
			e.addAll(line)
		}
	case *geojson.MultiPolygon:
		for _, polygon := range g.Coordinates {
			for _, ring := range polygon {
				e.addAll(ring)
			}
		}
	case *geojson.GeometryCollection:
		for _, child := range g.Geometries {
			e.union(GeometryBBox(child))
		}
	}

	return e.bbox()
}

// FeatureCollectionBBox unions the bounding boxes of every feature that has
// a geometry. Features without geometry are skipped. An empty collection
// yields geojson.EmptyBBox.
func FeatureCollectionBBox(fc *geojson.FeatureCollection) geojson.BBox {
	e := newExtent()
	if fc == nil {
		return e.bbox()
	}
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		e.union(GeometryBBox(f.Geometry))
	}
	return e.bbox()
}
