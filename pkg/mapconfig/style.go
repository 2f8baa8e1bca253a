// Package mapconfig describes styled layers and map views for rendering
// GeoJSON data, and loads them from YAML.
package mapconfig

import "github.com/kass/go-geotypes/pkg/geojson"

// Color is a CSS color value such as "#ff0000", "red" or "rgb(255,0,0)".
type Color string

// Style groups the optional fill, stroke, marker and text styles.
type Style struct {
	Fill   *FillStyle   `yaml:"fill,omitempty" json:"fill,omitempty"`
	Stroke *StrokeStyle `yaml:"stroke,omitempty" json:"stroke,omitempty"`
	Marker *MarkerStyle `yaml:"marker,omitempty" json:"marker,omitempty"`
	Text   *TextStyle   `yaml:"text,omitempty" json:"text,omitempty"`
}

type FillStyle struct {
	Color   Color    `yaml:"color,omitempty" json:"color,omitempty"`
	Opacity *float64 `yaml:"opacity,omitempty" json:"opacity,omitempty"`
}

type StrokeStyle struct {
	Color     Color     `yaml:"color,omitempty" json:"color,omitempty"`
	Width     *float64  `yaml:"width,omitempty" json:"width,omitempty"`
	Opacity   *float64  `yaml:"opacity,omitempty" json:"opacity,omitempty"`
	DashArray []float64 `yaml:"dashArray,omitempty" json:"dashArray,omitempty"`
	LineCap   string    `yaml:"lineCap,omitempty" json:"lineCap,omitempty"`   // butt, round, square
	LineJoin  string    `yaml:"lineJoin,omitempty" json:"lineJoin,omitempty"` // miter, round, bevel
}

type MarkerStyle struct {
	Size    *float64 `yaml:"size,omitempty" json:"size,omitempty"`
	Color   Color    `yaml:"color,omitempty" json:"color,omitempty"`
	Opacity *float64 `yaml:"opacity,omitempty" json:"opacity,omitempty"`
	Symbol  string   `yaml:"symbol,omitempty" json:"symbol,omitempty"` // circle, square, triangle, star, cross, diamond
}

// TextStyle labels features with the value of a property.
type TextStyle struct {
	Field     string      `yaml:"field,omitempty" json:"field,omitempty"`
	Font      string      `yaml:"font,omitempty" json:"font,omitempty"`
	Size      *float64    `yaml:"size,omitempty" json:"size,omitempty"`
	Color     Color       `yaml:"color,omitempty" json:"color,omitempty"`
	HaloColor Color       `yaml:"haloColor,omitempty" json:"haloColor,omitempty"`
	HaloWidth *float64    `yaml:"haloWidth,omitempty" json:"haloWidth,omitempty"`
	Offset    *[2]float64 `yaml:"offset,omitempty" json:"offset,omitempty"`
	Anchor    string      `yaml:"anchor,omitempty" json:"anchor,omitempty"`     // start, middle, end
	Baseline  string      `yaml:"baseline,omitempty" json:"baseline,omitempty"` // top, middle, bottom
}

// StyledFeature is a feature with an optional style override.
type StyledFeature struct {
	*geojson.Feature
	Style *Style
}

// StyledFeatureCollection carries a default style for its features.
type StyledFeatureCollection struct {
	Features []StyledFeature
	Style    *Style
	BBox     *geojson.BBox
}

// StyleFor returns the feature style when set, the collection default
// otherwise.
func (c *StyledFeatureCollection) StyleFor(i int) *Style {
	if s := c.Features[i].Style; s != nil {
		return s
	}
	return c.Style
}

// FeatureCollection returns the plain features of c.
func (c *StyledFeatureCollection) FeatureCollection() *geojson.FeatureCollection {
	features := make([]*geojson.Feature, len(c.Features))
	for i, f := range c.Features {
		features[i] = f.Feature
	}
	fc := geojson.NewFeatureCollection(features...)
	fc.BBox = c.BBox
	return fc
}
