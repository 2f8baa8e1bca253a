// Package wkt reads and writes geometries as Well-Known Text.
package wkt

import (
	"fmt"

	"github.com/kass/go-geotypes/pkg/geojson"
	"github.com/kass/go-geotypes/pkg/geomconv"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// DefaultDecimalDigits bounds the fractional digits written per ordinate.
const DefaultDecimalDigits = 9

// Marshal encodes g as WKT with at most digits fractional digits per
// ordinate. digits <= 0 selects DefaultDecimalDigits.
func Marshal(g geojson.Geometry, digits int) (string, error) {
	if digits <= 0 {
		digits = DefaultDecimalDigits
	}

	t, err := geomconv.ToGeom(g)
	if err != nil {
		return "", err
	}

	s, err := wkt.Marshal(t, wkt.EncodeOptionWithMaxDecimalDigits(digits))
	if err != nil {
		return "", fmt.Errorf("failed to encode wkt: %w", err)
	}
	return s, nil
}

// Unmarshal decodes a WKT string.
func Unmarshal(s string) (geojson.Geometry, error) {
	t, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode wkt: %w", err)
	}
	return geomconv.FromGeom(t)
}
