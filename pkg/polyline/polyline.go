// Package polyline converts line strings to and from the Google encoded
// polyline format (precision 1e5).
package polyline

import (
	"errors"
	"fmt"

	"github.com/kass/go-geotypes/pkg/geojson"
	"github.com/twpayne/go-polyline"
)

// ErrEmptyPolyline is returned when encoding or decoding an empty line.
var ErrEmptyPolyline = errors.New("empty polyline")

// EncodeLineString encodes ls. Elevations are dropped.
func EncodeLineString(ls *geojson.LineString) (string, error) {
	if ls == nil || len(ls.Coordinates) == 0 {
		return "", ErrEmptyPolyline
	}

	// the encoding orders each pair lat, lon
	coords := make([][]float64, len(ls.Coordinates))
	for i, p := range ls.Coordinates {
		coords[i] = []float64{p.Lat, p.Lon}
	}
	return string(polyline.EncodeCoords(coords)), nil
}

// DecodeLineString decodes an encoded polyline. Decoded positions are
// validated against the WGS84 ranges.
func DecodeLineString(encoded string) (*geojson.LineString, error) {
	if encoded == "" {
		return nil, ErrEmptyPolyline
	}

	coords, rest, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode polyline: %w", err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("failed to decode polyline: %d trailing bytes", len(rest))
	}

	positions := make([]geojson.Position, len(coords))
	for i, coord := range coords {
		positions[i] = geojson.NewPosition(coord[1], coord[0])
		if !geojson.ValidateCoordinates(positions[i]) {
			return nil, fmt.Errorf("decoded polyline contains invalid coordinates %v", positions[i])
		}
	}

	return geojson.NewLineString(positions), nil
}
