package geojson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// GeometryType is the GeoJSON "type" member of a geometry.
type GeometryType string

const (
	TypePoint              GeometryType = "Point"
	TypeLineString         GeometryType = "LineString"
	TypePolygon            GeometryType = "Polygon"
	TypeMultiPoint         GeometryType = "MultiPoint"
	TypeMultiLineString    GeometryType = "MultiLineString"
	TypeMultiPolygon       GeometryType = "MultiPolygon"
	TypeGeometryCollection GeometryType = "GeometryCollection"
)

// ErrUnknownGeometryType is returned when decoding a geometry whose type
// member is not one of the seven GeoJSON geometry types.
var ErrUnknownGeometryType = errors.New("unknown geometry type")

// Geometry is one of *Point, *LineString, *Polygon, *MultiPoint,
// *MultiLineString, *MultiPolygon or *GeometryCollection. The nesting depth
// of the coordinates is fixed by the concrete type.
type Geometry interface {
	Type() GeometryType
	geometry()
}

// Point is a single position.
type Point struct {
	Coordinates Position
	BBox        *BBox
}

// LineString is an ordered sequence of positions.
type LineString struct {
	Coordinates []Position
	BBox        *BBox
}

// Polygon is a list of linear rings: the exterior ring first, then holes.
type Polygon struct {
	Coordinates [][]Position
	BBox        *BBox
}

// MultiPoint is an unordered set of positions.
type MultiPoint struct {
	Coordinates []Position
	BBox        *BBox
}

// MultiLineString is a list of line coordinate sequences.
type MultiLineString struct {
	Coordinates [][]Position
	BBox        *BBox
}

// MultiPolygon is a list of polygon ring sets.
type MultiPolygon struct {
	Coordinates [][][]Position
	BBox        *BBox
}

// GeometryCollection groups heterogeneous geometries.
type GeometryCollection struct {
	Geometries []Geometry
	BBox       *BBox
}

func NewPoint(p Position) *Point { return &Point{Coordinates: p} }
func NewLineString(coords []Position) *LineString { return &LineString{Coordinates: coords} }
func NewPolygon(rings [][]Position) *Polygon { return &Polygon{Coordinates: rings} }
func NewMultiPoint(coords []Position) *MultiPoint { return &MultiPoint{Coordinates: coords} }
func NewMultiLineString(lines [][]Position) *MultiLineString { return &MultiLineString{Coordinates: lines} }
func NewMultiPolygon(polygons [][][]Position) *MultiPolygon { return &MultiPolygon{Coordinates: polygons} }
func NewGeometryCollection(geometries ...Geometry) *GeometryCollection {
	return &GeometryCollection{Geometries: geometries}
}

func (*Point) Type() GeometryType { return TypePoint }
func (*LineString) Type() GeometryType { return TypeLineString }
func (*Polygon) Type() GeometryType { return TypePolygon }
func (*MultiPoint) Type() GeometryType { return TypeMultiPoint }
func (*MultiLineString) Type() GeometryType { return TypeMultiLineString }
func (*MultiPolygon) Type() GeometryType { return TypeMultiPolygon }
func (*GeometryCollection) Type() GeometryType { return TypeGeometryCollection }

func (*Point) geometry() {}
func (*LineString) geometry() {}
func (*Polygon) geometry() {}
func (*MultiPoint) geometry() {}
func (*MultiLineString) geometry() {}
func (*MultiPolygon) geometry() {}
func (*GeometryCollection) geometry() {}

func IsPoint(g Geometry) bool { return g != nil && g.Type() == TypePoint }
func IsLineString(g Geometry) bool { return g != nil && g.Type() == TypeLineString }
func IsPolygon(g Geometry) bool { return g != nil && g.Type() == TypePolygon }
func IsMultiPoint(g Geometry) bool { return g != nil && g.Type() == TypeMultiPoint }
func IsMultiLineString(g Geometry) bool { return g != nil && g.Type() == TypeMultiLineString }
func IsMultiPolygon(g Geometry) bool { return g != nil && g.Type() == TypeMultiPolygon }
func IsGeometryCollection(g Geometry) bool { return g != nil && g.Type() == TypeGeometryCollection }

// geometryJSON is the wire shape shared by all geometry variants.
type geometryJSON struct {
	Type        GeometryType      `json:"type"`
	BBox        *BBox             `json:"bbox,omitempty"`
	Coordinates json.RawMessage   `json:"coordinates,omitempty"`
	Geometries  []json.RawMessage `json:"geometries,omitempty"`
}

func marshalCoordinates(t GeometryType, bbox *BBox, coords any) ([]byte, error) {
	return json.Marshal(struct {
		Type        GeometryType `json:"type"`
		BBox        *BBox        `json:"bbox,omitempty"`
		Coordinates any          `json:"coordinates"`
	}{t, bbox, coords})
}

func (g *Point) MarshalJSON() ([]byte, error) {
	return marshalCoordinates(TypePoint, g.BBox, g.Coordinates)
}

func (g *LineString) MarshalJSON() ([]byte, error) {
	return marshalCoordinates(TypeLineString, g.BBox, nonNil(g.Coordinates))
}

func (g *Polygon) MarshalJSON() ([]byte, error) {
	return marshalCoordinates(TypePolygon, g.BBox, nonNil(g.Coordinates))
}

func (g *MultiPoint) MarshalJSON() ([]byte, error) {
	return marshalCoordinates(TypeMultiPoint, g.BBox, nonNil(g.Coordinates))
}

func (g *MultiLineString) MarshalJSON() ([]byte, error) {
	return marshalCoordinates(TypeMultiLineString, g.BBox, nonNil(g.Coordinates))
}

func (g *MultiPolygon) MarshalJSON() ([]byte, error) {
	return marshalCoordinates(TypeMultiPolygon, g.BBox, nonNil(g.Coordinates))
}

func (g *GeometryCollection) MarshalJSON() ([]byte, error) {
	geometries := g.Geometries
	if geometries == nil {
		geometries = []Geometry{}
	}
	return json.Marshal(struct {
		Type       GeometryType `json:"type"`
		BBox       *BBox        `json:"bbox,omitempty"`
		Geometries []Geometry   `json:"geometries"`
	}{TypeGeometryCollection, g.BBox, geometries})
}

// nonNil makes nil slices encode as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// UnmarshalGeometry decodes a GeoJSON geometry object into its concrete type.
// The literal null decodes to a nil Geometry.
func UnmarshalGeometry(data []byte) (Geometry, error) {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil, nil
	}

	var raw geometryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode geometry: %w", err)
	}

	switch raw.Type {
	case TypePoint:
		g := &Point{BBox: raw.BBox}
		return g, decodeCoordinates(raw, &g.Coordinates)
	case TypeLineString:
		g := &LineString{BBox: raw.BBox}
		return g, decodeCoordinates(raw, &g.Coordinates)
	case TypePolygon:
		g := &Polygon{BBox: raw.BBox}
		return g, decodeCoordinates(raw, &g.Coordinates)
	case TypeMultiPoint:
		g := &MultiPoint{BBox: raw.BBox}
		return g, decodeCoordinates(raw, &g.Coordinates)
	case TypeMultiLineString:
		g := &MultiLineString{BBox: raw.BBox}
		return g, decodeCoordinates(raw, &g.Coordinates)
	case TypeMultiPolygon:
		g := &MultiPolygon{BBox: raw.BBox}
		return g, decodeCoordinates(raw, &g.Coordinates)
	case TypeGeometryCollection:
		g := &GeometryCollection{BBox: raw.BBox, Geometries: make([]Geometry, 0, len(raw.Geometries))}
		for i, child := range raw.Geometries {
			decoded, err := UnmarshalGeometry(child)
			if err != nil {
				return nil, fmt.Errorf("geometries[%d]: %w", i, err)
			}
			if decoded == nil {
				return nil, fmt.Errorf("geometries[%d]: null geometry in collection", i)
			}
			g.Geometries = append(g.Geometries, decoded)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGeometryType, raw.Type)
	}
}

func decodeCoordinates(raw geometryJSON, dst any) error {
	if len(raw.Coordinates) == 0 {
		return fmt.Errorf("%s: missing coordinates", raw.Type)
	}
	if err := json.Unmarshal(raw.Coordinates, dst); err != nil {
		return fmt.Errorf("%s: invalid coordinates: %w", raw.Type, err)
	}
	return nil
}

// decodeAs decodes data and requires the result to have the given type.
func decodeAs[T Geometry](data []byte, want GeometryType) (T, error) {
	var zero T
	g, err := UnmarshalGeometry(data)
	if err != nil {
		return zero, err
	}
	typed, ok := g.(T)
	if !ok {
		return zero, fmt.Errorf("expected %s geometry, got %v", want, typeOf(g))
	}
	return typed, nil
}

func typeOf(g Geometry) any {
	if g == nil {
		return "null"
	}
	return g.Type()
}

func (g *Point) UnmarshalJSON(data []byte) error {
	v, err := decodeAs[*Point](data, TypePoint)
	if err == nil {
		*g = *v
	}
	return err
}

func (g *LineString) UnmarshalJSON(data []byte) error {
	v, err := decodeAs[*LineString](data, TypeLineString)
	if err == nil {
		*g = *v
	}
	return err
}

func (g *Polygon) UnmarshalJSON(data []byte) error {
	v, err := decodeAs[*Polygon](data, TypePolygon)
	if err == nil {
		*g = *v
	}
	return err
}

func (g *MultiPoint) UnmarshalJSON(data []byte) error {
	v, err := decodeAs[*MultiPoint](data, TypeMultiPoint)
	if err == nil {
		*g = *v
	}
	return err
}

func (g *MultiLineString) UnmarshalJSON(data []byte) error {
	v, err := decodeAs[*MultiLineString](data, TypeMultiLineString)
	if err == nil {
		*g = *v
	}
	return err
}

func (g *MultiPolygon) UnmarshalJSON(data []byte) error {
	v, err := decodeAs[*MultiPolygon](data, TypeMultiPolygon)
	if err == nil {
		*g = *v
	}
	return err
}

func (g *GeometryCollection) UnmarshalJSON(data []byte) error {
	v, err := decodeAs[*GeometryCollection](data, TypeGeometryCollection)
	if err == nil {
		*g = *v
	}
	return err
}

// ValidateGeometry reports whether every position of a Point, LineString or
// Polygon is in range. Other geometry types and nil are reported invalid.
// Ring closure, winding order and self intersection are not checked.
func ValidateGeometry(g Geometry) bool {
	switch g := g.(type) {
	case *Point:
		return g != nil && ValidateCoordinates(g.Coordinates)
	case *LineString:
		return g != nil && allValid(g.Coordinates)
	case *Polygon:
		if g == nil {
			return false
		}
		for _, ring := range g.Coordinates {
			if !allValid(ring) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func allValid(positions []Position) bool {
	for _, p := range positions {
		if !ValidateCoordinates(p) {
			return false
		}
	}
	return true
}
