// Package geojson provides GeoJSON (RFC 7946) data types: positions,
// geometries, features, bounding boxes and coordinate reference system tags.
//
// All values are plain data. Functions that derive a new value never modify
// their inputs.
package geojson

import (
	"encoding/json"
	"fmt"
)

// Position is a longitude/latitude pair with an optional elevation.
type Position struct {
	Lon          float64
	Lat          float64
	Elevation    float64
	HasElevation bool
}

// NewPosition returns a 2D position.
func NewPosition(lon, lat float64) Position {
	return Position{Lon: lon, Lat: lat}
}

// NewPosition3D returns a position carrying an elevation.
func NewPosition3D(lon, lat, elevation float64) Position {
	return Position{Lon: lon, Lat: lat, Elevation: elevation, HasElevation: true}
}

// Slice returns the position as [lon, lat] or [lon, lat, elevation].
func (p Position) Slice() []float64 {
	if p.HasElevation {
		return []float64{p.Lon, p.Lat, p.Elevation}
	}
	return []float64{p.Lon, p.Lat}
}

// WithoutElevation drops the elevation component.
func (p Position) WithoutElevation() Position {
	return Position{Lon: p.Lon, Lat: p.Lat}
}

// Equal reports whether both positions have the same components.
func (p Position) Equal(o Position) bool {
	if p.Lon != o.Lon || p.Lat != o.Lat || p.HasElevation != o.HasElevation {
		return false
	}
	return !p.HasElevation || p.Elevation == o.Elevation
}

func (p Position) String() string {
	if p.HasElevation {
		return fmt.Sprintf("[%g, %g, %g]", p.Lon, p.Lat, p.Elevation)
	}
	return fmt.Sprintf("[%g, %g]", p.Lon, p.Lat)
}

// MarshalJSON encodes the position as a 2 or 3 element array.
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Slice())
}

// UnmarshalJSON decodes a 2 or 3 element array. Extra trailing values are
// ignored as RFC 7946 allows.
func (p *Position) UnmarshalJSON(data []byte) error {
	var values []float64
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("invalid position: %w", err)
	}
	pos, err := PositionFromSlice(values)
	if err != nil {
		return err
	}
	*p = pos
	return nil
}

// PositionFromSlice builds a position from [lon, lat] or [lon, lat, elevation].
func PositionFromSlice(values []float64) (Position, error) {
	switch {
	case len(values) < 2:
		return Position{}, fmt.Errorf("position needs at least 2 values, got %d", len(values))
	case len(values) == 2:
		return NewPosition(values[0], values[1]), nil
	default:
		return NewPosition3D(values[0], values[1], values[2]), nil
	}
}

// ValidateCoordinates reports whether the position lies within
// lon [-180, 180] and lat [-90, 90]. Elevation is not checked.
func ValidateCoordinates(p Position) bool {
	return p.Lon >= -180 && p.Lon <= 180 && p.Lat >= -90 && p.Lat <= 90
}
