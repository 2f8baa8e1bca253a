package mapconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kass/go-geotypes/pkg/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const roadsGeoJSON = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "id": "a", "geometry": {"type": "LineString", "coordinates": [[0, 0], [2, 1]]}, "properties": {"name": "Main St", "lanes": 2}},
		{"type": "Feature", "id": "b", "geometry": {"type": "Point", "coordinates": [5, 4]}, "properties": {"name": "Depot", "lanes": 0}}
	]
}`

const mapYAML = `
container: map
view:
  center: [2.5, 2]
  zoom: 8
  bearing: 15
layers:
  - id: osm
    name: OpenStreetMap
    type: tile
    url: https://tile.openstreetmap.org/{z}/{x}/{y}.png
    attribution: OpenStreetMap contributors
    subdomains: [a, b, c]
  - id: roads
    name: Roads
    type: vector
    source: roads.geojson
    opacity: 0.8
    style:
      stroke:
        color: "#ff0000"
        width: 2
        dashArray: [4, 2]
      text:
        field: name
        offset: [0, 12]
  - id: scan
    name: Scan
    type: raster
    url: https://example.com/scan.png
    bounds: [0, 0, 10, 10]
    visible: false
cluster:
  enabled: true
  distance: 40
  maxZoom: 14
controls:
  zoom: true
`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "roads.geojson", roadsGeoJSON)
	path := writeFixture(t, dir, "map.yaml", mapYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "map", cfg.Container)
	assert.Equal(t, [2]float64{2.5, 2}, cfg.View.Center)
	assert.Equal(t, 8.0, cfg.View.Zoom)
	require.NotNil(t, cfg.View.Bearing)
	assert.Equal(t, 15.0, *cfg.View.Bearing)

	require.Len(t, cfg.Layers, 3)
	assert.True(t, IsTileLayer(cfg.Layers[0]))
	assert.True(t, IsVectorLayer(cfg.Layers[1]))
	assert.True(t, IsRasterLayer(cfg.Layers[2]))

	tile := cfg.Layers[0].(*TileLayer)
	assert.Equal(t, "osm", tile.ID)
	assert.Equal(t, []string{"a", "b", "c"}, tile.Subdomains)
	assert.True(t, tile.IsVisible())

	roads := cfg.Layers[1].(*VectorLayer)
	require.NotNil(t, roads.Data)
	assert.Len(t, roads.Data.Features, 2)
	require.NotNil(t, roads.Style)
	assert.Equal(t, Color("#ff0000"), roads.Style.Stroke.Color)
	assert.Equal(t, []float64{4, 2}, roads.Style.Stroke.DashArray)
	assert.Equal(t, &[2]float64{0, 12}, roads.Style.Text.Offset)
	assert.InDelta(t, 0.8, *roads.Opacity, 1e-12)

	scan := cfg.Layers[2].(*RasterLayer)
	assert.False(t, scan.IsVisible())
	assert.Equal(t, &[4]float64{0, 0, 10, 10}, scan.Bounds)

	require.NotNil(t, cfg.Cluster)
	assert.True(t, cfg.Cluster.Enabled)
	assert.Equal(t, 40.0, cfg.Cluster.Distance)

	layer, ok := cfg.Layer("roads")
	assert.True(t, ok)
	assert.Same(t, roads, layer)
	_, ok = cfg.Layer("missing")
	assert.False(t, ok)

	assert.Equal(t, geojson.NewBBox2D(0, 0, 5, 4), cfg.Bounds())
}

func TestLoadUnknownLayerType(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "map.yaml", `
view: {center: [0, 0], zoom: 1}
layers:
  - {id: x, name: X, type: heatmap}
`)
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnknownLayerType)
}

func TestLoadMissingSource(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "map.yaml", `
view: {center: [0, 0], zoom: 1}
layers:
  - {id: roads, name: Roads, type: vector, source: missing.geojson}
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "layer roads")
}

func TestNewLayers(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	vector := NewVectorLayer("v", "Vector", fc, nil)
	assert.Equal(t, LayerVector, vector.Type)
	assert.True(t, *vector.Visible)
	assert.Equal(t, 1.0, *vector.Opacity)
	assert.Same(t, fc, vector.Data)

	tile := NewTileLayer("t", "Tiles", "https://tiles/{z}/{x}/{y}.png", "me")
	assert.Equal(t, LayerTile, tile.Type)
	assert.True(t, tile.IsVisible())
	assert.Equal(t, 1.0, *tile.Opacity)
	assert.Equal(t, "me", tile.Attribution)

	cfg := &MapConfig{Layers: []Layer{tile}}
	assert.True(t, cfg.Bounds().IsEmpty())
}

func TestStyledFeatureCollection(t *testing.T) {
	width := 3.0
	override := &Style{Stroke: &StrokeStyle{Width: &width}}
	fallback := &Style{Fill: &FillStyle{Color: "blue"}}

	c := &StyledFeatureCollection{
		Style: fallback,
		Features: []StyledFeature{
			{Feature: geojson.NewFeature(nil, nil, "a"), Style: override},
			{Feature: geojson.NewFeature(nil, nil, "b")},
		},
	}

	assert.Same(t, override, c.StyleFor(0))
	assert.Same(t, fallback, c.StyleFor(1))
	assert.Len(t, c.FeatureCollection().Features, 2)
}

func TestAttributeQuery(t *testing.T) {
	f := geojson.NewFeature(nil, geojson.Properties{"name": "Main Street", "lanes": float64(2)}, nil)

	testCases := []struct {
		query    AttributeQuery
		expected bool
	}{
		{AttributeQuery{"lanes", "=", 2}, true},
		{AttributeQuery{"lanes", "!=", 2}, false},
		{AttributeQuery{"lanes", ">", 1}, true},
		{AttributeQuery{"lanes", "<=", 1.5}, false},
		{AttributeQuery{"name", "like", "main%"}, true},
		{AttributeQuery{"name", "like", "M_in Street"}, true},
		{AttributeQuery{"name", "like", "%avenue"}, false},
		{AttributeQuery{"name", "in", []any{"Main Street", "Elm"}}, true},
		{AttributeQuery{"name", "not in", []any{"Main Street"}}, false},
		{AttributeQuery{"missing", "=", 1}, false},
		{AttributeQuery{"missing", "!=", 1}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.query.Field+" "+tc.query.Operator, func(t *testing.T) {
			ok, err := tc.query.Match(f)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ok)
		})
	}

	_, err := AttributeQuery{"name", "~", "x"}.Match(f)
	assert.ErrorIs(t, err, ErrUnsupportedQuery)
}

func TestQueryFilter(t *testing.T) {
	fc, err := geojson.UnmarshalFeatureCollection([]byte(roadsGeoJSON))
	require.NoError(t, err)

	near := &SpatialQuery{Type: Intersects, Geometry: geojson.BBoxToPolygon(geojson.NewBBox2D(1, 0, 3, 3))}

	q := &Query{Spatial: near}
	matched, err := q.Filter(fc)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "a", matched[0].ID)

	q = &Query{Spatial: near, Attributes: []AttributeQuery{{"name", "=", "Depot"}}, Logic: "or"}
	matched, err = q.Filter(fc)
	require.NoError(t, err)
	assert.Len(t, matched, 2)

	q = &Query{Spatial: near, Attributes: []AttributeQuery{{"name", "=", "Depot"}}}
	matched, err = q.Filter(fc)
	require.NoError(t, err)
	assert.Empty(t, matched)

	// a buffer reaches the depot
	q = &Query{Spatial: &SpatialQuery{Type: Intersects, Geometry: near.Geometry, Buffer: 250_000}}
	matched, err = q.Filter(fc)
	require.NoError(t, err)
	assert.Len(t, matched, 2)

	within := &Query{Spatial: &SpatialQuery{Type: Within, Geometry: geojson.BBoxToPolygon(geojson.NewBBox2D(-1, -1, 3, 3))}}
	matched, err = within.Filter(fc)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "a", matched[0].ID)

	_, err = (&Query{Spatial: &SpatialQuery{Type: Touches, Geometry: near.Geometry}}).Filter(fc)
	assert.ErrorIs(t, err, ErrUnsupportedQuery)

	_, err = (&Query{Logic: "xor"}).Filter(fc)
	assert.ErrorIs(t, err, ErrUnsupportedQuery)
}

func TestSpatialContains(t *testing.T) {
	square := geojson.NewFeature(geojson.BBoxToPolygon(geojson.NewBBox2D(0, 0, 10, 10)), nil, "square")

	q := &SpatialQuery{Type: Contains, Geometry: geojson.NewPoint(geojson.NewPosition(5, 5))}
	ok, err := q.Match(square)
	require.NoError(t, err)
	assert.True(t, ok)

	q.Geometry = geojson.NewPoint(geojson.NewPosition(50, 5))
	ok, err = q.Match(square)
	require.NoError(t, err)
	assert.False(t, ok)
}
