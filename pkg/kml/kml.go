// Package kml exports GeoJSON features as a KML document.
package kml

import (
	"errors"
	"fmt"
	"io"

	"github.com/kass/go-geotypes/pkg/geojson"
	"github.com/kass/go-geotypes/pkg/geomconv"
	"github.com/twpayne/go-geom/encoding/kml"
	gokml "github.com/twpayne/go-kml"
)

// ErrNoGeometry is returned by Placemark for a nil feature or a feature
// without geometry.
var ErrNoGeometry = errors.New("feature has no geometry")

// Placemark builds the KML Placemark for f. The name and description
// properties become the placemark name and description.
func Placemark(f *geojson.Feature) (gokml.Element, error) {
	if f == nil || f.Geometry == nil {
		return nil, ErrNoGeometry
	}
	t, err := geomconv.ToGeom(f.Geometry)
	if err != nil {
		return nil, err
	}
	geometry, err := kml.Encode(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode geometry: %w", err)
	}

	var children []gokml.Element
	if name, ok := f.PropertyString("name"); ok {
		children = append(children, gokml.Name(name))
	}
	if description, ok := f.PropertyString("description"); ok {
		children = append(children, gokml.Description(description))
	}
	children = append(children, geometry)

	return gokml.Placemark(children...), nil
}

// Document builds a KML document with one Placemark per feature. Features
// without geometry are skipped.
func Document(fc *geojson.FeatureCollection) (*gokml.CompoundElement, error) {
	var placemarks []gokml.Element
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		placemark, err := Placemark(f)
		if err != nil {
			return nil, fmt.Errorf("features[%d]: %w", i, err)
		}
		placemarks = append(placemarks, placemark)
	}
	return gokml.KML(gokml.Document(placemarks...)), nil
}

// Encode writes fc to w as an indented KML document.
func Encode(w io.Writer, fc *geojson.FeatureCollection) error {
	doc, err := Document(fc)
	if err != nil {
		return err
	}
	return doc.WriteIndent(w, "", "  ")
}
