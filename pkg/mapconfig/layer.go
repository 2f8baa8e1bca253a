package mapconfig

import (
	"errors"

	"github.com/kass/go-geotypes/pkg/geojson"
)

// LayerType is the layer discriminator.
type LayerType string

const (
	LayerVector LayerType = "vector"
	LayerRaster LayerType = "raster"
	LayerTile   LayerType = "tile"
)

// ErrUnknownLayerType is returned when decoding a layer with an unknown type.
var ErrUnknownLayerType = errors.New("unknown layer type")

// BaseLayer holds the fields shared by every layer.
type BaseLayer struct {
	ID       string         `yaml:"id" json:"id"`
	Name     string         `yaml:"name" json:"name"`
	Type     LayerType      `yaml:"type" json:"type"`
	Visible  *bool          `yaml:"visible,omitempty" json:"visible,omitempty"`
	Opacity  *float64       `yaml:"opacity,omitempty" json:"opacity,omitempty"`
	MinZoom  *float64       `yaml:"minZoom,omitempty" json:"minZoom,omitempty"`
	MaxZoom  *float64       `yaml:"maxZoom,omitempty" json:"maxZoom,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Layer is one of *VectorLayer, *RasterLayer or *TileLayer.
type Layer interface {
	Base() *BaseLayer
	layer()
}

// VectorLayer renders a feature collection. Source is a GeoJSON file path
// loaded into Data by Load.
type VectorLayer struct {
	BaseLayer `yaml:",inline"`
	Source    string                     `yaml:"source,omitempty" json:"source,omitempty"`
	Data      *geojson.FeatureCollection `yaml:"-" json:"data,omitempty"`
	Style     *Style                     `yaml:"style,omitempty" json:"style,omitempty"`
}

// RasterLayer renders a single georeferenced image.
type RasterLayer struct {
	BaseLayer `yaml:",inline"`
	URL       string      `yaml:"url" json:"url"`
	Bounds    *[4]float64 `yaml:"bounds,omitempty" json:"bounds,omitempty"`
}

// TileLayer renders a tile URL template such as
// https://tile.openstreetmap.org/{z}/{x}/{y}.png.
type TileLayer struct {
	BaseLayer   `yaml:",inline"`
	URL         string   `yaml:"url" json:"url"`
	Attribution string   `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	Subdomains  []string `yaml:"subdomains,omitempty" json:"subdomains,omitempty"`
}

func (l *VectorLayer) Base() *BaseLayer { return &l.BaseLayer }
func (l *RasterLayer) Base() *BaseLayer { return &l.BaseLayer }
func (l *TileLayer) Base() *BaseLayer { return &l.BaseLayer }

func (*VectorLayer) layer() {}
func (*RasterLayer) layer() {}
func (*TileLayer) layer() {}

func IsVectorLayer(l Layer) bool {
	_, ok := l.(*VectorLayer)
	return ok
}

func IsRasterLayer(l Layer) bool {
	_, ok := l.(*RasterLayer)
	return ok
}

func IsTileLayer(l Layer) bool {
	_, ok := l.(*TileLayer)
	return ok
}

// NewVectorLayer creates a visible, opaque vector layer. style may be nil.
func NewVectorLayer(id, name string, data *geojson.FeatureCollection, style *Style) *VectorLayer {
	return &VectorLayer{
		BaseLayer: newBaseLayer(id, name, LayerVector),
		Data:      data,
		Style:     style,
	}
}

// NewTileLayer creates a visible, opaque tile layer.
func NewTileLayer(id, name, url, attribution string) *TileLayer {
	return &TileLayer{
		BaseLayer:   newBaseLayer(id, name, LayerTile),
		URL:         url,
		Attribution: attribution,
	}
}

func newBaseLayer(id, name string, t LayerType) BaseLayer {
	visible, opacity := true, 1.0
	return BaseLayer{ID: id, Name: name, Type: t, Visible: &visible, Opacity: &opacity}
}

// IsVisible reports whether the layer is shown. Layers are visible unless
// explicitly hidden.
func (b *BaseLayer) IsVisible() bool {
	return b.Visible == nil || *b.Visible
}
