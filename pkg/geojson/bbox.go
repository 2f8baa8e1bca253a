package geojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBBox is returned when a bbox array has neither 4 nor 6 values.
var ErrInvalidBBox = errors.New("bbox must have 4 or 6 values")

// BBox is an axis aligned bounding box with optional elevation bounds.
// It encodes as [west, south, east, north] or
// [west, south, minElevation, east, north, maxElevation].
type BBox struct {
	West         float64
	South        float64
	East         float64
	North        float64
	MinElevation float64
	MaxElevation float64
	HasElevation bool
}

// NewBBox2D returns a bbox without elevation bounds.
func NewBBox2D(west, south, east, north float64) BBox {
	return BBox{West: west, South: south, East: east, North: north}
}

// NewBBox3D returns a bbox with elevation bounds.
func NewBBox3D(west, south, minElevation, east, north, maxElevation float64) BBox {
	return BBox{
		West:         west,
		South:        south,
		East:         east,
		North:        north,
		MinElevation: minElevation,
		MaxElevation: maxElevation,
		HasElevation: true,
	}
}

// EmptyBBox returns the sentinel produced by bbox computations over no
// positions: +Inf for west/south and -Inf for east/north. Any union with a
// real box yields that box.
func EmptyBBox() BBox {
	return NewBBox2D(math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1))
}

// IsEmpty reports whether b is the empty sentinel, i.e. it encloses nothing.
func (b BBox) IsEmpty() bool {
	return b.West > b.East || b.South > b.North
}

// Is2D reports whether b has no elevation bounds.
func (b BBox) Is2D() bool { return !b.HasElevation }

// Is3D reports whether b carries elevation bounds.
func (b BBox) Is3D() bool { return b.HasElevation }

// Slice returns the 4 or 6 value array form.
func (b BBox) Slice() []float64 {
	if b.HasElevation {
		return []float64{b.West, b.South, b.MinElevation, b.East, b.North, b.MaxElevation}
	}
	return []float64{b.West, b.South, b.East, b.North}
}

// BBoxFromSlice parses the 4 or 6 value array form.
func BBoxFromSlice(values []float64) (BBox, error) {
	switch len(values) {
	case 4:
		return NewBBox2D(values[0], values[1], values[2], values[3]), nil
	case 6:
		return NewBBox3D(values[0], values[1], values[2], values[3], values[4], values[5]), nil
	default:
		return BBox{}, fmt.Errorf("%w: got %d", ErrInvalidBBox, len(values))
	}
}

func (b BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Slice())
}

func (b *BBox) UnmarshalJSON(data []byte) error {
	var values []float64
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("invalid bbox: %w", err)
	}
	parsed, err := BBoxFromSlice(values)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// UnionBBox returns the box enclosing a and b. Elevation bounds are kept
// only when both inputs have them; a 2D input makes the result 2D.
func UnionBBox(a, b BBox) BBox {
	result := NewBBox2D(
		math.Min(a.West, b.West),
		math.Min(a.South, b.South),
		math.Max(a.East, b.East),
		math.Max(a.North, b.North),
	)
	if a.HasElevation && b.HasElevation {
		result.MinElevation = math.Min(a.MinElevation, b.MinElevation)
		result.MaxElevation = math.Max(a.MaxElevation, b.MaxElevation)
		result.HasElevation = true
	}
	return result
}

// ContainsPosition reports whether p lies inside b, bounds inclusive.
// Elevation is tested only when p has an elevation and b has elevation bounds.
func (b BBox) ContainsPosition(p Position) bool {
	inBounds := p.Lon >= b.West && p.Lon <= b.East && p.Lat >= b.South && p.Lat <= b.North
	if p.HasElevation && b.HasElevation {
		return inBounds && p.Elevation >= b.MinElevation && p.Elevation <= b.MaxElevation
	}
	return inBounds
}

// IsPositionInBBox is the function form of BBox.ContainsPosition.
func IsPositionInBBox(p Position, b BBox) bool {
	return b.ContainsPosition(p)
}

// Intersects reports whether the horizontal extents of b and o overlap.
func (b BBox) Intersects(o BBox) bool {
	return b.West <= o.East && b.East >= o.West && b.South <= o.North && b.North >= o.South
}

// Center returns the midpoint of b. A 3D box yields a 3D position.
func (b BBox) Center() Position {
	lon := (b.West + b.East) / 2
	lat := (b.South + b.North) / 2
	if b.HasElevation {
		return NewPosition3D(lon, lat, (b.MinElevation+b.MaxElevation)/2)
	}
	return NewPosition(lon, lat)
}

// Polygon returns the closed rectangular ring of b as a Polygon.
func (b BBox) Polygon() *Polygon {
	return NewPolygon([][]Position{{
		NewPosition(b.West, b.South),
		NewPosition(b.East, b.South),
		NewPosition(b.East, b.North),
		NewPosition(b.West, b.North),
		NewPosition(b.West, b.South),
	}})
}

// BBoxToPolygon is the function form of BBox.Polygon.
func BBoxToPolygon(b BBox) *Polygon {
	return b.Polygon()
}

// ValidateBBox reports whether values holds at least four numbers with
// west <= east and south <= north. Elevation bounds are not checked.
func ValidateBBox(values []float64) bool {
	if len(values) < 4 {
		return false
	}
	for _, v := range values[:4] {
		if math.IsNaN(v) {
			return false
		}
	}
	return values[0] <= values[2] && values[1] <= values[3]
}

// Bounds is a pair of corner positions.
type Bounds struct {
	SouthWest Position `json:"southWest"`
	NorthEast Position `json:"northEast"`
}

// DefaultBoundsPadding is the padding, in degrees, used by map viewers so
// shapes do not touch the viewport edge.
const DefaultBoundsPadding = 0.001

// PaddedBounds returns the corners enclosing positions, widened by pad
// degrees on every side. With no positions the corners are infinite.
func PaddedBounds(positions []Position, pad float64) Bounds {
	minLon, minLat := math.Inf(1), math.Inf(1)
	maxLon, maxLat := math.Inf(-1), math.Inf(-1)
	for _, p := range positions {
		minLon = math.Min(minLon, p.Lon)
		minLat = math.Min(minLat, p.Lat)
		maxLon = math.Max(maxLon, p.Lon)
		maxLat = math.Max(maxLat, p.Lat)
	}
	return Bounds{
		SouthWest: NewPosition(minLon-pad, minLat-pad),
		NorthEast: NewPosition(maxLon+pad, maxLat+pad),
	}
}
