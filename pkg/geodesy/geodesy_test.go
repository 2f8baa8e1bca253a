package geodesy

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/kass/go-geotypes/pkg/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(lon, lat float64) geojson.Position {
	return geojson.NewPosition(lon, lat)
}

// oneDegree is the arc length of one degree on the model sphere.
var oneDegree = math.Pi / 180 * EarthRadius

func TestAngleConversion(t *testing.T) {
	assert.InDelta(t, math.Pi, DegreesToRadians(180), 1e-15)
	assert.InDelta(t, 90, RadiansToDegrees(math.Pi/2), 1e-12)
	assert.InDelta(t, 123.456, RadiansToDegrees(DegreesToRadians(123.456)), 1e-12)
}

func TestDistance(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     geojson.Position
		expected float64
		delta    float64
	}{
		{"Same point", pos(-122.4194, 37.7749), pos(-122.4194, 37.7749), 0, 0},
		{"One degree of latitude", pos(0, 0), pos(0, 1), oneDegree, 0.01},
		{"One degree of longitude at the equator", pos(0, 0), pos(1, 0), oneDegree, 0.01},
		{"SF to Oakland", pos(-122.4194, 37.7749), pos(-122.2712, 37.8044), 13000, 1000},
		{"SF to LA", pos(-122.4194, 37.7749), pos(-118.2437, 34.0522), 559500, 5000},
		{"Antipodal", pos(0, 0), pos(180, 0), math.Pi * EarthRadius, 1e-6},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Distance(tc.a, tc.b), tc.delta)
		})
	}
}

func TestDistanceProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		a := pos(r.Float64()*360-180, r.Float64()*180-90)
		b := pos(r.Float64()*360-180, r.Float64()*180-90)

		assert.Equal(t, 0.0, Distance(a, a), "distance to self must be 0 for %v", a)
		assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-6, "distance must be symmetric")

		d := Distance(a, b)
		assert.False(t, math.IsNaN(d))
		assert.GreaterOrEqual(t, d, 0.0)
		assert.LessOrEqual(t, d, math.Pi*EarthRadius+1e-6)
	}
}

func TestDistanceIgnoresElevation(t *testing.T) {
	assert.Equal(t,
		Distance(pos(10, 10), pos(11, 11)),
		Distance(geojson.NewPosition3D(10, 10, 500), geojson.NewPosition3D(11, 11, -500)))
}

func TestBearing(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     geojson.Position
		expected float64
	}{
		{"North", pos(0, 0), pos(0, 1), 0},
		{"East", pos(0, 0), pos(1, 0), 90},
		{"South", pos(0, 1), pos(0, 0), 180},
		{"West", pos(1, 0), pos(0, 0), 270},
		{"Same point", pos(5, 5), pos(5, 5), 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := Bearing(tc.a, tc.b)
			assert.InDelta(t, tc.expected, b, 1e-9)
			assert.GreaterOrEqual(t, b, 0.0)
			assert.Less(t, b, 360.0)
		})
	}
}

func TestDestination(t *testing.T) {
	t.Run("Zero distance is a fixed point", func(t *testing.T) {
		start := pos(12.5, -33.25)
		for _, bearing := range []float64{0, 45, 90, 200, 359} {
			d := Destination(start, 0, bearing)
			assert.InDelta(t, start.Lon, d.Lon, 1e-9)
			assert.InDelta(t, start.Lat, d.Lat, 1e-9)
		}
	})

	t.Run("One degree north", func(t *testing.T) {
		d := Destination(pos(0, 0), oneDegree, 0)
		assert.InDelta(t, 0, d.Lon, 1e-9)
		assert.InDelta(t, 1, d.Lat, 1e-9)

		d = Destination(pos(0, 0), 111195, 0)
		assert.InDelta(t, 0, d.Lon, 1e-9)
		assert.InDelta(t, 1, d.Lat, 0.01)
	})

	t.Run("Result drops elevation", func(t *testing.T) {
		d := Destination(geojson.NewPosition3D(0, 0, 100), 1000, 90)
		assert.False(t, d.HasElevation)
	})

	t.Run("Inverse of distance and bearing", func(t *testing.T) {
		a := pos(-122.4194, 37.7749)
		b := pos(-118.2437, 34.0522)
		d := Destination(a, Distance(a, b), Bearing(a, b))
		assert.InDelta(t, b.Lon, d.Lon, 1e-6)
		assert.InDelta(t, b.Lat, d.Lat, 1e-6)
	})

	t.Run("Longitude is not normalized", func(t *testing.T) {
		d := Destination(pos(179.5, 0), oneDegree, 90)
		assert.InDelta(t, 180.5, d.Lon, 1e-9)
		assert.InDelta(t, -179.5, NormalizeLongitude(d.Lon), 1e-9)
	})
}

func TestNormalizeLongitude(t *testing.T) {
	assert.Equal(t, -170.0, NormalizeLongitude(190))
	assert.Equal(t, 170.0, NormalizeLongitude(-190))
	assert.Equal(t, -180.0, NormalizeLongitude(180))
	assert.Equal(t, 45.0, NormalizeLongitude(45))
}

func TestLineLength(t *testing.T) {
	assert.Equal(t, 0.0, LineLength(geojson.NewLineString(nil)))
	assert.Equal(t, 0.0, LineLength(geojson.NewLineString([]geojson.Position{pos(1, 1)})))
	assert.Equal(t, 0.0, LineLength(nil))

	ls := geojson.NewLineString([]geojson.Position{pos(0, 0), pos(0, 1), pos(0, 2)})
	assert.InDelta(t, 2*oneDegree, LineLength(ls), 0.01)
}

func TestPolygonArea(t *testing.T) {
	square := []geojson.Position{pos(0, 0), pos(1, 0), pos(1, 1), pos(0, 1), pos(0, 0)}

	t.Run("Unit square near the equator", func(t *testing.T) {
		area := PolygonArea(geojson.NewPolygon([][]geojson.Position{square}))
		assert.Greater(t, area, 0.0)
		assert.InEpsilon(t, oneDegree*oneDegree, area, 0.01)
	})

	t.Run("Winding order does not change the sign", func(t *testing.T) {
		reversed := make([]geojson.Position, len(square))
		for i, p := range square {
			reversed[len(square)-1-i] = p
		}
		assert.InDelta(t,
			PolygonArea(geojson.NewPolygon([][]geojson.Position{square})),
			PolygonArea(geojson.NewPolygon([][]geojson.Position{reversed})), 1e-3)
	})

	t.Run("Holes are ignored", func(t *testing.T) {
		hole := []geojson.Position{pos(0.25, 0.25), pos(0.75, 0.25), pos(0.75, 0.75), pos(0.25, 0.75), pos(0.25, 0.25)}
		assert.Equal(t,
			PolygonArea(geojson.NewPolygon([][]geojson.Position{square})),
			PolygonArea(geojson.NewPolygon([][]geojson.Position{square, hole})))
	})

	t.Run("Degenerate rings", func(t *testing.T) {
		assert.Equal(t, 0.0, PolygonArea(geojson.NewPolygon([][]geojson.Position{{pos(0, 0), pos(1, 1)}})))
		assert.Equal(t, 0.0, PolygonArea(geojson.NewPolygon(nil)))
		assert.Equal(t, 0.0, PolygonArea(nil))
	})
}

func TestGeometryBBox(t *testing.T) {
	testCases := []struct {
		name     string
		geometry geojson.Geometry
		expected geojson.BBox
	}{
		{
			name:     "Point",
			geometry: geojson.NewPoint(pos(10, 20)),
			expected: geojson.NewBBox2D(10, 20, 10, 20),
		},
		{
			name:     "Point with elevation stays 2D",
			geometry: geojson.NewPoint(geojson.NewPosition3D(10, 20, 30)),
			expected: geojson.NewBBox2D(10, 20, 10, 20),
		},
		{
			name:     "LineString",
			geometry: geojson.NewLineString([]geojson.Position{pos(0, 5), pos(-3, 2), pos(4, -1)}),
			expected: geojson.NewBBox2D(-3, -1, 4, 5),
		},
		{
			name: "Polygon includes holes",
			geometry: geojson.NewPolygon([][]geojson.Position{
				{pos(0, 0), pos(2, 0), pos(2, 2), pos(0, 0)},
				{pos(3, 3)},
			}),
			expected: geojson.NewBBox2D(0, 0, 3, 3),
		},
		{
			name: "MultiPolygon",
			geometry: geojson.NewMultiPolygon([][][]geojson.Position{
				{{pos(0, 0), pos(1, 1)}},
				{{pos(10, -10), pos(11, -9)}},
			}),
			expected: geojson.NewBBox2D(0, -10, 11, 1),
		},
		{
			name: "GeometryCollection",
			geometry: geojson.NewGeometryCollection(
				geojson.NewPoint(pos(-5, 5)),
				geojson.NewMultiLineString([][]geojson.Position{{pos(1, 1), pos(7, -2)}}),
			),
			expected: geojson.NewBBox2D(-5, -2, 7, 5),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GeometryBBox(tc.geometry))
		})
	}
}

func TestGeometryBBoxEmpty(t *testing.T) {
	assert.True(t, GeometryBBox(geojson.NewGeometryCollection()).IsEmpty())
	assert.True(t, GeometryBBox(geojson.NewLineString(nil)).IsEmpty())
	assert.True(t, GeometryBBox(nil).IsEmpty())

	// An empty child does not disturb the union.
	gc := geojson.NewGeometryCollection(geojson.NewGeometryCollection(), geojson.NewPoint(pos(1, 2)))
	assert.Equal(t, geojson.NewBBox2D(1, 2, 1, 2), GeometryBBox(gc))
}

func TestFeatureCollectionBBox(t *testing.T) {
	fc := geojson.NewFeatureCollection(
		geojson.NewFeature(geojson.NewPoint(pos(0, 0)), nil, "a"),
		geojson.NewFeature(nil, geojson.Properties{"note": "no geometry"}, "b"),
		geojson.NewFeature(geojson.NewLineString([]geojson.Position{pos(2, 2), pos(3, 3)}), nil, "c"),
	)
	assert.Equal(t, geojson.NewBBox2D(0, 0, 3, 3), FeatureCollectionBBox(fc))

	assert.True(t, FeatureCollectionBBox(geojson.NewFeatureCollection()).IsEmpty())
	assert.True(t, FeatureCollectionBBox(nil).IsEmpty())
}

func TestSimplifyLineString(t *testing.T) {
	t.Run("Collinear points collapse to endpoints", func(t *testing.T) {
		ls := geojson.NewLineString([]geojson.Position{pos(0, 0), pos(1, 1), pos(2, 2), pos(3, 3), pos(4, 4)})
		for _, tolerance := range []float64{1e-9, 0.1, 10} {
			out := SimplifyLineString(ls, tolerance)
			assert.Equal(t, []geojson.Position{pos(0, 0), pos(4, 4)}, out.Coordinates)
		}
	})

	t.Run("Zero tolerance keeps every deviating point", func(t *testing.T) {
		zigzag := []geojson.Position{pos(0, 0), pos(1, 1), pos(2, 0), pos(3, 1), pos(4, 0)}
		out := SimplifyLineString(geojson.NewLineString(zigzag), 0)
		assert.Equal(t, zigzag, out.Coordinates)
	})

	t.Run("Removes small deviations", func(t *testing.T) {
		ls := geojson.NewLineString([]geojson.Position{pos(0, 0), pos(1, 0.01), pos(2, 0), pos(3, 5), pos(4, 0)})
		out := SimplifyLineString(ls, 0.1)
		assert.Equal(t, []geojson.Position{pos(0, 0), pos(2, 0), pos(3, 5), pos(4, 0)}, out.Coordinates)
	})

	t.Run("Short lines are returned as a copy", func(t *testing.T) {
		ls := geojson.NewLineString([]geojson.Position{pos(0, 0), pos(5, 5)})
		out := SimplifyLineString(ls, 100)
		assert.Equal(t, ls.Coordinates, out.Coordinates)
		assert.NotSame(t, ls, out)
	})

	t.Run("Degenerate chord uses distance to the first point", func(t *testing.T) {
		loop := geojson.NewLineString([]geojson.Position{pos(0, 0), pos(0, 3), pos(0, 0)})
		assert.Len(t, SimplifyLineString(loop, 1).Coordinates, 3)
		assert.Len(t, SimplifyLineString(loop, 5).Coordinates, 2)
	})

	t.Run("Input is not modified", func(t *testing.T) {
		coords := []geojson.Position{pos(0, 0), pos(1, 5), pos(2, 0), pos(3, 5), pos(4, 0)}
		original := append([]geojson.Position(nil), coords...)
		ls := geojson.NewLineString(coords)
		_ = SimplifyLineString(ls, 1)
		assert.Equal(t, original, ls.Coordinates)
	})

	assert.Nil(t, SimplifyLineString(nil, 1))
}

func TestSimplifyKeepsEndpoints(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	coords := make([]geojson.Position, 1000)
	for i := range coords {
		coords[i] = pos(float64(i)*0.01, math.Sin(float64(i)*0.05)+r.Float64()*0.01)
	}
	ls := geojson.NewLineString(coords)

	out := SimplifyLineString(ls, 0.05)
	require.GreaterOrEqual(t, len(out.Coordinates), 2)
	assert.Less(t, len(out.Coordinates), len(coords))
	assert.Equal(t, coords[0], out.Coordinates[0])
	assert.Equal(t, coords[len(coords)-1], out.Coordinates[len(out.Coordinates)-1])
}

func TestPointInPolygon(t *testing.T) {
	outer := []geojson.Position{pos(0, 0), pos(10, 0), pos(10, 10), pos(0, 10), pos(0, 0)}
	hole := []geojson.Position{pos(4, 4), pos(6, 4), pos(6, 6), pos(4, 6), pos(4, 4)}

	testCases := []struct {
		name     string
		point    geojson.Position
		rings    [][]geojson.Position
		expected Containment
	}{
		{"Inside", pos(5, 5), [][]geojson.Position{outer}, Inside},
		{"Outside", pos(15, 5), [][]geojson.Position{outer}, Outside},
		{"On edge", pos(10, 5), [][]geojson.Position{outer}, OnBoundary},
		{"On vertex", pos(0, 0), [][]geojson.Position{outer}, OnBoundary},
		{"Inside hole", pos(5, 5), [][]geojson.Position{outer, hole}, Outside},
		{"On hole edge", pos(4, 5), [][]geojson.Position{outer, hole}, OnBoundary},
		{"Between outer and hole", pos(2, 2), [][]geojson.Position{outer, hole}, Inside},
		{"Unclosed ring", pos(5, 5), [][]geojson.Position{outer[:4]}, Inside},
		{"Unclosed ring closing edge", pos(0, 5), [][]geojson.Position{outer[:4]}, OnBoundary},
		{"No rings", pos(0, 0), nil, Outside},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, PointInPolygon(tc.point, tc.rings))
		})
	}
}

func TestContainsPosition(t *testing.T) {
	a := [][]geojson.Position{{pos(0, 0), pos(1, 0), pos(1, 1), pos(0, 1), pos(0, 0)}}
	b := [][]geojson.Position{{pos(5, 5), pos(6, 5), pos(6, 6), pos(5, 6), pos(5, 5)}}
	mp := geojson.NewMultiPolygon([][][]geojson.Position{a, b})

	assert.Equal(t, Inside, ContainsPosition(mp, pos(5.5, 5.5)))
	assert.Equal(t, OnBoundary, ContainsPosition(mp, pos(1, 0.5)))
	assert.Equal(t, Outside, ContainsPosition(mp, pos(3, 3)))
	assert.Equal(t, Inside, ContainsPosition(geojson.NewPolygon(a), pos(0.5, 0.5)))
	assert.Equal(t, Outside, ContainsPosition(geojson.NewPoint(pos(0.5, 0.5)), pos(0.5, 0.5)))

	assert.Equal(t, "boundary", OnBoundary.String())
}

func TestCircle(t *testing.T) {
	center := pos(116.39, 39.9)
	ring := Circle(center, 1000, 0)
	require.Len(t, ring, DefaultCirclePoints+1)
	assert.Equal(t, ring[0], ring[len(ring)-1])

	for i, p := range ring[:len(ring)-1] {
		assert.InDelta(t, 1000, Distance(center, p), 1e-3, "vertex %d", i)
	}
	// The first vertex is due north.
	assert.InDelta(t, center.Lon, ring[0].Lon, 1e-9)
	assert.Greater(t, ring[0].Lat, center.Lat)

	poly := CirclePolygon(center, 500, 8)
	require.Len(t, poly.Coordinates, 1)
	assert.Len(t, poly.Coordinates[0], 9)
	assert.Equal(t, Inside, ContainsPosition(poly, center))
}

func TestBuffer(t *testing.T) {
	point := geojson.NewPoint(pos(10, 0))
	poly := Buffer(point, 1105.4)
	require.Len(t, poly.Coordinates, 1)
	ring := poly.Coordinates[0]
	require.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[4])

	box := GeometryBBox(poly)
	assert.InDelta(t, 0.01, box.North, 1e-9)
	assert.InDelta(t, -0.01, box.South, 1e-9)
	assert.InDelta(t, 10+1105.4/111320, box.East, 1e-9)
	assert.True(t, box.ContainsPosition(point.Coordinates))

	assert.Nil(t, Buffer(nil, 100))
}

func BenchmarkDistance(b *testing.B) {
	p1, p2 := pos(-122.4194, 37.7749), pos(-118.2437, 34.0522)
	for i := 0; i < b.N; i++ {
		_ = Distance(p1, p2)
	}
}

func BenchmarkSimplifyLineString(b *testing.B) {
	sizes := []int{100, 1000, 10000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("%d_points", size), func(b *testing.B) {
			coords := make([]geojson.Position, size)
			for i := range coords {
				coords[i] = pos(float64(i)*0.001, math.Sin(float64(i)*0.01))
			}
			ls := geojson.NewLineString(coords)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = SimplifyLineString(ls, 0.001)
			}
		})
	}
}

func BenchmarkPointInPolygon(b *testing.B) {
	ring := Circle(pos(0, 0), 10000, 360)
	rings := [][]geojson.Position{ring}
	for i := 0; i < b.N; i++ {
		_ = PointInPolygon(pos(0.01, 0.01), rings)
	}
}
