// Package geomconv converts between geojson geometries and go-geom values.
package geomconv

import (
	"errors"
	"fmt"

	"github.com/kass/go-geotypes/pkg/geojson"
	"github.com/twpayne/go-geom"
)

// ErrUnsupported is returned for go-geom types with no GeoJSON equivalent.
var ErrUnsupported = errors.New("unsupported geometry")

// ToGeom converts g to a go-geom value. The layout is XYZ when any
// position carries an elevation; missing elevations are written as 0.
func ToGeom(g geojson.Geometry) (geom.T, error) {
	switch g := g.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil geometry", ErrUnsupported)
	case *geojson.Point:
		layout := layoutOf(g.Coordinates)
		return geom.NewPointFlat(layout, flatten(layout, g.Coordinates)), nil
	case *geojson.LineString:
		layout := layoutOf(g.Coordinates...)
		return geom.NewLineStringFlat(layout, flatten(layout, g.Coordinates...)), nil
	case *geojson.MultiPoint:
		layout := layoutOf(g.Coordinates...)
		return geom.NewMultiPointFlat(layout, flatten(layout, g.Coordinates...)), nil
	case *geojson.Polygon:
		layout := layoutOf(concat(g.Coordinates)...)
		flat, ends := flattenRings(layout, g.Coordinates, nil)
		return geom.NewPolygonFlat(layout, flat, ends), nil
	case *geojson.MultiLineString:
		layout := layoutOf(concat(g.Coordinates)...)
		flat, ends := flattenRings(layout, g.Coordinates, nil)
		return geom.NewMultiLineStringFlat(layout, flat, ends), nil
	case *geojson.MultiPolygon:
		var all []geojson.Position
		for _, polygon := range g.Coordinates {
			all = append(all, concat(polygon)...)
		}
		layout := layoutOf(all...)

		var (
			flat  []float64
			endss = make([][]int, 0, len(g.Coordinates))
		)
		for _, polygon := range g.Coordinates {
			var ends []int
			flat, ends = flattenRings(layout, polygon, flat)
			endss = append(endss, ends)
		}
		return geom.NewMultiPolygonFlat(layout, flat, endss), nil
	case *geojson.GeometryCollection:
		collection := geom.NewGeometryCollection()
		for i, child := range g.Geometries {
			converted, err := ToGeom(child)
			if err != nil {
				return nil, fmt.Errorf("geometries[%d]: %w", i, err)
			}
			if err := collection.Push(converted); err != nil {
				return nil, fmt.Errorf("geometries[%d]: %w", i, err)
			}
		}
		return collection, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, g)
	}
}

// FromGeom converts a go-geom value to the matching geojson geometry. M
// ordinates are dropped.
func FromGeom(t geom.T) (geojson.Geometry, error) {
	switch t := t.(type) {
	case *geom.Point:
		if t.Empty() {
			return nil, fmt.Errorf("%w: empty point", ErrUnsupported)
		}
		return geojson.NewPoint(position(t.Layout(), t.Coords())), nil
	case *geom.LineString:
		return geojson.NewLineString(positions(t.Layout(), t.Coords())), nil
	case *geom.MultiPoint:
		return geojson.NewMultiPoint(positions(t.Layout(), t.Coords())), nil
	case *geom.Polygon:
		return geojson.NewPolygon(rings(t.Layout(), t.Coords())), nil
	case *geom.MultiLineString:
		return geojson.NewMultiLineString(rings(t.Layout(), t.Coords())), nil
	case *geom.MultiPolygon:
		coords := t.Coords()
		polygons := make([][][]geojson.Position, len(coords))
		for i, polygon := range coords {
			polygons[i] = rings(t.Layout(), polygon)
		}
		return geojson.NewMultiPolygon(polygons), nil
	case *geom.GeometryCollection:
		geoms := t.Geoms()
		geometries := make([]geojson.Geometry, 0, len(geoms))
		for i, child := range geoms {
			converted, err := FromGeom(child)
			if err != nil {
				return nil, fmt.Errorf("geometries[%d]: %w", i, err)
			}
			geometries = append(geometries, converted)
		}
		return geojson.NewGeometryCollection(geometries...), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, t)
	}
}

func layoutOf(positions ...geojson.Position) geom.Layout {
	for _, p := range positions {
		if p.HasElevation {
			return geom.XYZ
		}
	}
	return geom.XY
}

func flatten(layout geom.Layout, positions ...geojson.Position) []float64 {
	flat := make([]float64, 0, len(positions)*layout.Stride())
	for _, p := range positions {
		flat = append(flat, p.Lon, p.Lat)
		if layout == geom.XYZ {
			flat = append(flat, p.Elevation)
		}
	}
	return flat
}

// flattenRings appends rings to flat and returns the cumulative end offsets.
func flattenRings(layout geom.Layout, rings [][]geojson.Position, flat []float64) ([]float64, []int) {
	ends := make([]int, 0, len(rings))
	for _, ring := range rings {
		flat = append(flat, flatten(layout, ring...)...)
		ends = append(ends, len(flat))
	}
	return flat, ends
}

func concat(rings [][]geojson.Position) []geojson.Position {
	var all []geojson.Position
	for _, ring := range rings {
		all = append(all, ring...)
	}
	return all
}

func position(layout geom.Layout, c geom.Coord) geojson.Position {
	if z := layout.ZIndex(); z >= 0 && z < len(c) {
		return geojson.NewPosition3D(c[0], c[1], c[z])
	}
	return geojson.NewPosition(c[0], c[1])
}

func positions(layout geom.Layout, coords []geom.Coord) []geojson.Position {
	result := make([]geojson.Position, len(coords))
	for i, c := range coords {
		result[i] = position(layout, c)
	}
	return result
}

func rings(layout geom.Layout, coords [][]geom.Coord) [][]geojson.Position {
	result := make([][]geojson.Position, len(coords))
	for i, ring := range coords {
		result[i] = positions(layout, ring)
	}
	return result
}
