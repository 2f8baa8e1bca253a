package geojson

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCoordinates(t *testing.T) {
	testCases := []struct {
		name     string
		pos      Position
		expected bool
	}{
		{"Valid", NewPosition(100, 45), true},
		{"Longitude out of range", NewPosition(200, 0), false},
		{"Latitude out of range", NewPosition(0, -91), false},
		{"Edges inclusive", NewPosition(-180, 90), true},
		{"Elevation ignored", NewPosition3D(10, 10, 1e9), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ValidateCoordinates(tc.pos))
		})
	}
}

func TestValidateGeometry(t *testing.T) {
	square := [][]Position{{
		NewPosition(0, 0), NewPosition(1, 0), NewPosition(1, 1), NewPosition(0, 1), NewPosition(0, 0),
	}}

	assert.True(t, ValidateGeometry(NewPoint(NewPosition(10, 20))))
	assert.True(t, ValidateGeometry(NewLineString([]Position{NewPosition(0, 0), NewPosition(1, 1)})))
	assert.True(t, ValidateGeometry(NewPolygon(square)))

	assert.False(t, ValidateGeometry(nil))
	assert.False(t, ValidateGeometry(NewPoint(NewPosition(181, 0))))
	assert.False(t, ValidateGeometry(NewPolygon([][]Position{{NewPosition(0, 95)}})))
	// Only Point, LineString and Polygon are validated; the rest are rejected.
	assert.False(t, ValidateGeometry(NewMultiPoint([]Position{NewPosition(0, 0)})))

	assert.True(t, ValidateFeatureGeometry(NewFeature(NewPoint(NewPosition(1, 2)), nil, nil)))
	assert.False(t, ValidateFeatureGeometry(NewFeature(nil, nil, nil)))
	assert.False(t, ValidateFeatureGeometry(nil))
}

func TestTypeGuards(t *testing.T) {
	var g Geometry = NewMultiPolygon(nil)
	assert.True(t, IsMultiPolygon(g))
	assert.False(t, IsPolygon(g))
	assert.False(t, IsPoint(nil))
	assert.Equal(t, TypeMultiPolygon, g.Type())

	assert.True(t, IsFeature(NewFeature(nil, nil, "a")))
	assert.True(t, IsFeatureCollection(NewFeatureCollection()))
	assert.False(t, IsFeature(NewFeatureCollection()))
}

func TestGeometryJSON(t *testing.T) {
	testCases := []struct {
		name string
		json string
		typ  GeometryType
	}{
		{"Point", `{"type":"Point","coordinates":[10,20]}`, TypePoint},
		{"Point with elevation", `{"type":"Point","coordinates":[10,20,30]}`, TypePoint},
		{"LineString", `{"type":"LineString","coordinates":[[0,0],[1,1]]}`, TypeLineString},
		{"Polygon", `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`, TypePolygon},
		{"MultiPoint", `{"type":"MultiPoint","coordinates":[[0,0],[1,1]]}`, TypeMultiPoint},
		{"MultiLineString", `{"type":"MultiLineString","coordinates":[[[0,0],[1,1]]]}`, TypeMultiLineString},
		{"MultiPolygon", `{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,0]]]]}`, TypeMultiPolygon},
		{"GeometryCollection", `{"type":"GeometryCollection","geometries":[{"type":"Point","coordinates":[1,2]}]}`, TypeGeometryCollection},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := UnmarshalGeometry([]byte(tc.json))
			require.NoError(t, err)
			assert.Equal(t, tc.typ, g.Type())

			encoded, err := json.Marshal(g)
			require.NoError(t, err)
			assert.JSONEq(t, tc.json, string(encoded))
		})
	}
}

func TestGeometryJSONErrors(t *testing.T) {
	_, err := UnmarshalGeometry([]byte(`{"type":"Circle","coordinates":[0,0]}`))
	assert.True(t, errors.Is(err, ErrUnknownGeometryType))

	// Nesting depth must match the geometry type.
	_, err = UnmarshalGeometry([]byte(`{"type":"Polygon","coordinates":[[0,0],[1,1]]}`))
	assert.Error(t, err)

	_, err = UnmarshalGeometry([]byte(`{"type":"LineString","coordinates":[[[0,0]]]}`))
	assert.Error(t, err)

	_, err = UnmarshalGeometry([]byte(`{"type":"Point"}`))
	assert.Error(t, err)

	var p Polygon
	err = json.Unmarshal([]byte(`{"type":"Point","coordinates":[1,2]}`), &p)
	assert.Error(t, err)

	g, err := UnmarshalGeometry([]byte(`null`))
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestFeatureJSON(t *testing.T) {
	data := `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "id": "a", "geometry": {"type": "Point", "coordinates": [1, 2]}, "properties": {"name": "A"}},
			{"type": "Feature", "geometry": null, "properties": null}
		]
	}`

	fc, err := UnmarshalFeatureCollection([]byte(data))
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	first := fc.Features[0]
	assert.Equal(t, "a", first.ID)
	assert.True(t, IsPoint(first.Geometry))
	name, ok := first.PropertyString("name")
	assert.True(t, ok)
	assert.Equal(t, "A", name)

	assert.Nil(t, fc.Features[1].Geometry)

	encoded, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "id": "a", "geometry": {"type": "Point", "coordinates": [1, 2]}, "properties": {"name": "A"}},
			{"type": "Feature", "geometry": null, "properties": null}
		]
	}`, string(encoded))
}

func TestUnmarshalObject(t *testing.T) {
	obj, err := UnmarshalObject([]byte(`{"type":"Feature","geometry":null,"properties":{}}`))
	require.NoError(t, err)
	assert.True(t, IsFeature(obj))

	obj, err = UnmarshalObject([]byte(`{"type":"FeatureCollection","features":[]}`))
	require.NoError(t, err)
	assert.True(t, IsFeatureCollection(obj))

	obj, err = UnmarshalObject([]byte(`{"type":"LineString","coordinates":[[0,0],[1,1]]}`))
	require.NoError(t, err)
	assert.True(t, IsLineString(obj.(Geometry)))
}

func TestBBoxSliceForms(t *testing.T) {
	b2 := NewBBox2D(0, 1, 2, 3)
	assert.Equal(t, []float64{0, 1, 2, 3}, b2.Slice())
	assert.True(t, b2.Is2D())

	b3 := NewBBox3D(0, 1, -5, 2, 3, 5)
	assert.Equal(t, []float64{0, 1, -5, 2, 3, 5}, b3.Slice())
	assert.True(t, b3.Is3D())

	parsed, err := BBoxFromSlice([]float64{0, 1, -5, 2, 3, 5})
	require.NoError(t, err)
	assert.Equal(t, b3, parsed)

	_, err = BBoxFromSlice([]float64{1, 2, 3})
	assert.True(t, errors.Is(err, ErrInvalidBBox))
}

func TestUnionBBox(t *testing.T) {
	assert.Equal(t, NewBBox2D(0, 0, 3, 3), UnionBBox(NewBBox2D(0, 0, 1, 1), NewBBox2D(2, 2, 3, 3)))

	both3D := UnionBBox(NewBBox3D(0, 0, 10, 1, 1, 20), NewBBox3D(-1, 0, 5, 0, 2, 15))
	assert.Equal(t, NewBBox3D(-1, 0, 5, 1, 2, 20), both3D)

	// A 2D input drops elevation from the result.
	mixed := UnionBBox(NewBBox3D(0, 0, 10, 1, 1, 20), NewBBox2D(2, 2, 3, 3))
	assert.True(t, mixed.Is2D())
	assert.Equal(t, NewBBox2D(0, 0, 3, 3), mixed)

	// The empty sentinel is the identity of union.
	assert.Equal(t, NewBBox2D(0, 0, 1, 1), UnionBBox(EmptyBBox(), NewBBox2D(0, 0, 1, 1)))
}

func TestIsPositionInBBox(t *testing.T) {
	box := NewBBox2D(0, 0, 1, 1)
	assert.True(t, IsPositionInBBox(NewPosition(0.5, 0.5), box))
	assert.False(t, IsPositionInBBox(NewPosition(2, 2), box))
	assert.True(t, IsPositionInBBox(NewPosition(1, 0), box), "bounds are inclusive")
	assert.True(t, IsPositionInBBox(NewPosition3D(0.5, 0.5, 1000), box), "2D box ignores elevation")

	box3 := NewBBox3D(0, 0, 0, 1, 1, 100)
	assert.True(t, IsPositionInBBox(NewPosition3D(0.5, 0.5, 50), box3))
	assert.False(t, IsPositionInBBox(NewPosition3D(0.5, 0.5, 150), box3))
	assert.True(t, IsPositionInBBox(NewPosition(0.5, 0.5), box3), "2D position skips elevation")
}

func TestBBoxCenterAndPolygon(t *testing.T) {
	assert.Equal(t, NewPosition(1, 2), NewBBox2D(0, 0, 2, 4).Center())
	assert.Equal(t, NewPosition3D(1, 2, 50), NewBBox3D(0, 0, 0, 2, 4, 100).Center())

	poly := BBoxToPolygon(NewBBox2D(0, 0, 2, 4))
	require.Len(t, poly.Coordinates, 1)
	ring := poly.Coordinates[0]
	require.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[4])
	assert.Equal(t, NewPosition(2, 4), ring[2])
}

func TestValidateBBox(t *testing.T) {
	assert.True(t, ValidateBBox([]float64{0, 0, 1, 1}))
	assert.True(t, ValidateBBox([]float64{0, 0, 50, 1, 1, 10}), "elevation order is not checked")
	assert.False(t, ValidateBBox([]float64{1, 0, 0, 1}))
	assert.False(t, ValidateBBox([]float64{0, 0, 1}))
	assert.False(t, ValidateBBox([]float64{math.NaN(), 0, 1, 1}))
}

func TestEmptyBBox(t *testing.T) {
	assert.True(t, EmptyBBox().IsEmpty())
	assert.False(t, NewBBox2D(0, 0, 0, 0).IsEmpty())
}

func TestPaddedBounds(t *testing.T) {
	b := PaddedBounds([]Position{NewPosition(1, 2), NewPosition(3, -1)}, DefaultBoundsPadding)
	assert.InDelta(t, 0.999, b.SouthWest.Lon, 1e-12)
	assert.InDelta(t, -1.001, b.SouthWest.Lat, 1e-12)
	assert.InDelta(t, 3.001, b.NorthEast.Lon, 1e-12)
	assert.InDelta(t, 2.001, b.NorthEast.Lat, 1e-12)
}

func TestCRS(t *testing.T) {
	assert.True(t, IsNamedCRS(WGS84))
	assert.Equal(t, "EPSG:4326", WGS84.Properties.Name)

	linked := NewLinkedCRS("http://example.com/crs/42", "proj4")
	assert.True(t, IsLinkedCRS(linked))
	assert.False(t, IsNamedCRS(linked))

	encoded, err := json.Marshal(NewLinkedCRS("http://example.com/crs/42", ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"link","properties":{"href":"http://example.com/crs/42"}}`, string(encoded))
}
