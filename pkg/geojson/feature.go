package geojson

import (
	"encoding/json"
	"fmt"
)

// ObjectType is the GeoJSON "type" member of a feature or feature collection.
type ObjectType string

const (
	TypeFeature           ObjectType = "Feature"
	TypeFeatureCollection ObjectType = "FeatureCollection"
)

// Properties holds arbitrary JSON member values of a feature.
type Properties map[string]any

// Feature is a geometry with properties. Geometry may be nil.
type Feature struct {
	ID         any
	Geometry   Geometry
	Properties Properties
	BBox       *BBox
}

// FeatureCollection is an ordered list of features.
type FeatureCollection struct {
	Features []*Feature
	BBox     *BBox
}

// Object is any top level GeoJSON value: a Geometry, *Feature or
// *FeatureCollection.
type Object interface{}

// NewFeature creates a feature. A nil id is omitted on encoding.
func NewFeature(geometry Geometry, properties Properties, id any) *Feature {
	return &Feature{ID: id, Geometry: geometry, Properties: properties}
}

// NewFeatureCollection creates a collection of the given features.
func NewFeatureCollection(features ...*Feature) *FeatureCollection {
	if features == nil {
		features = []*Feature{}
	}
	return &FeatureCollection{Features: features}
}

// IsFeature reports whether obj is a *Feature.
func IsFeature(obj Object) bool {
	_, ok := obj.(*Feature)
	return ok
}

// IsFeatureCollection reports whether obj is a *FeatureCollection.
func IsFeatureCollection(obj Object) bool {
	_, ok := obj.(*FeatureCollection)
	return ok
}

// ValidateFeatureGeometry reports whether f is a feature whose geometry
// passes ValidateGeometry.
func ValidateFeatureGeometry(f *Feature) bool {
	return f != nil && ValidateGeometry(f.Geometry)
}

// PropertyString returns the named property when it is a string.
func (f *Feature) PropertyString(name string) (string, bool) {
	if f == nil || f.Properties == nil {
		return "", false
	}
	s, ok := f.Properties[name].(string)
	return s, ok
}

type featureJSON struct {
	Type       ObjectType      `json:"type"`
	ID         any             `json:"id,omitempty"`
	BBox       *BBox           `json:"bbox,omitempty"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties Properties      `json:"properties"`
}

func (f *Feature) MarshalJSON() ([]byte, error) {
	geometry := json.RawMessage("null")
	if f.Geometry != nil {
		encoded, err := json.Marshal(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("failed to encode geometry: %w", err)
		}
		geometry = encoded
	}
	return json.Marshal(featureJSON{
		Type:       TypeFeature,
		ID:         f.ID,
		BBox:       f.BBox,
		Geometry:   geometry,
		Properties: f.Properties,
	})
}

func (f *Feature) UnmarshalJSON(data []byte) error {
	var raw featureJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode feature: %w", err)
	}
	if raw.Type != TypeFeature {
		return fmt.Errorf("expected type %q, got %q", TypeFeature, raw.Type)
	}

	var geometry Geometry
	if len(raw.Geometry) > 0 {
		g, err := UnmarshalGeometry(raw.Geometry)
		if err != nil {
			return err
		}
		geometry = g
	}

	*f = Feature{ID: raw.ID, Geometry: geometry, Properties: raw.Properties, BBox: raw.BBox}
	return nil
}

func (fc *FeatureCollection) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     ObjectType `json:"type"`
		BBox     *BBox      `json:"bbox,omitempty"`
		Features []*Feature `json:"features"`
	}{TypeFeatureCollection, fc.BBox, nonNil(fc.Features)})
}

func (fc *FeatureCollection) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type     ObjectType `json:"type"`
		BBox     *BBox      `json:"bbox"`
		Features []*Feature `json:"features"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode feature collection: %w", err)
	}
	if raw.Type != TypeFeatureCollection {
		return fmt.Errorf("expected type %q, got %q", TypeFeatureCollection, raw.Type)
	}
	*fc = FeatureCollection{Features: nonNil(raw.Features), BBox: raw.BBox}
	return nil
}

// UnmarshalFeatureCollection decodes a GeoJSON FeatureCollection document.
func UnmarshalFeatureCollection(data []byte) (*FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

// UnmarshalObject decodes any GeoJSON document into a Geometry, *Feature or
// *FeatureCollection depending on its type member.
func UnmarshalObject(data []byte) (Object, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode geojson: %w", err)
	}

	switch ObjectType(probe.Type) {
	case TypeFeature:
		var f Feature
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return &f, nil
	case TypeFeatureCollection:
		return UnmarshalFeatureCollection(data)
	default:
		return UnmarshalGeometry(data)
	}
}
