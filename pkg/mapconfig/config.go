package mapconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kass/go-geotypes/pkg/geodesy"
	"github.com/kass/go-geotypes/pkg/geojson"
	"gopkg.in/yaml.v3"
)

// MapView is the initial camera. Center is [longitude, latitude]; Bounds
// is [west, south, east, north].
type MapView struct {
	Center  [2]float64  `yaml:"center" json:"center"`
	Zoom    float64     `yaml:"zoom" json:"zoom"`
	Bearing *float64    `yaml:"bearing,omitempty" json:"bearing,omitempty"`
	Pitch   *float64    `yaml:"pitch,omitempty" json:"pitch,omitempty"`
	Bounds  *[4]float64 `yaml:"bounds,omitempty" json:"bounds,omitempty"`
}

// ClusterConfig controls point clustering. Distance is in pixels.
type ClusterConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Distance  float64       `yaml:"distance" json:"distance"`
	MaxZoom   float64       `yaml:"maxZoom" json:"maxZoom"`
	MinPoints *int          `yaml:"minPoints,omitempty" json:"minPoints,omitempty"`
	Style     *ClusterStyle `yaml:"style,omitempty" json:"style,omitempty"`
}

type ClusterStyle struct {
	Cluster     *Style     `yaml:"cluster,omitempty" json:"cluster,omitempty"`
	ClusterText *TextStyle `yaml:"clusterText,omitempty" json:"clusterText,omitempty"`
}

type Controls struct {
	Zoom        *bool `yaml:"zoom,omitempty" json:"zoom,omitempty"`
	Attribution *bool `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	Scale       *bool `yaml:"scale,omitempty" json:"scale,omitempty"`
	Fullscreen  *bool `yaml:"fullscreen,omitempty" json:"fullscreen,omitempty"`
}

type Interactions struct {
	DragPan         *bool `yaml:"dragPan,omitempty" json:"dragPan,omitempty"`
	ScrollZoom      *bool `yaml:"scrollZoom,omitempty" json:"scrollZoom,omitempty"`
	DoubleClickZoom *bool `yaml:"doubleClickZoom,omitempty" json:"doubleClickZoom,omitempty"`
	Keyboard        *bool `yaml:"keyboard,omitempty" json:"keyboard,omitempty"`
}

// MapConfig is the root of a map configuration file.
type MapConfig struct {
	Container    string         `yaml:"container,omitempty" json:"container,omitempty"`
	View         MapView        `yaml:"view" json:"view"`
	Layers       []Layer        `yaml:"-" json:"layers,omitempty"`
	Cluster      *ClusterConfig `yaml:"cluster,omitempty" json:"cluster,omitempty"`
	Controls     *Controls      `yaml:"controls,omitempty" json:"controls,omitempty"`
	Interactions *Interactions  `yaml:"interactions,omitempty" json:"interactions,omitempty"`
}

// UnmarshalYAML decodes layers by their type member.
func (c *MapConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain MapConfig
	var raw struct {
		plain  `yaml:",inline"`
		Layers []yaml.Node `yaml:"layers"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	*c = MapConfig(raw.plain)
	c.Layers = make([]Layer, 0, len(raw.Layers))
	for i := range raw.Layers {
		l, err := decodeLayer(&raw.Layers[i])
		if err != nil {
			return fmt.Errorf("layers[%d]: %w", i, err)
		}
		c.Layers = append(c.Layers, l)
	}
	return nil
}

func decodeLayer(node *yaml.Node) (Layer, error) {
	var probe struct {
		Type LayerType `yaml:"type"`
	}
	if err := node.Decode(&probe); err != nil {
		return nil, err
	}

	var l Layer
	switch probe.Type {
	case LayerVector:
		l = &VectorLayer{}
	case LayerRaster:
		l = &RasterLayer{}
	case LayerTile:
		l = &TileLayer{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayerType, probe.Type)
	}

	if err := node.Decode(l); err != nil {
		return nil, err
	}
	return l, nil
}

// Load reads a YAML map configuration. Vector layer sources are resolved
// relative to the directory of path and decoded into Data.
func Load(path string) (*MapConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg MapConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse map config %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for _, l := range cfg.Layers {
		vector, ok := l.(*VectorLayer)
		if !ok || vector.Source == "" {
			continue
		}

		source := vector.Source
		if !filepath.IsAbs(source) {
			source = filepath.Join(dir, source)
		}

		raw, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", vector.ID, err)
		}
		fc, err := geojson.UnmarshalFeatureCollection(raw)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", vector.ID, err)
		}
		vector.Data = fc
	}

	return &cfg, nil
}

// Bounds returns the union of the vector layer data bboxes, or
// geojson.EmptyBBox when no vector layer has data.
func (c *MapConfig) Bounds() geojson.BBox {
	bounds := geojson.EmptyBBox()
	for _, l := range c.Layers {
		if vector, ok := l.(*VectorLayer); ok && vector.Data != nil {
			bounds = geojson.UnionBBox(bounds, geodesy.FeatureCollectionBBox(vector.Data))
		}
	}
	return bounds
}

// Layer returns the layer with the given id.
func (c *MapConfig) Layer(id string) (Layer, bool) {
	for _, l := range c.Layers {
		if l.Base().ID == id {
			return l, true
		}
	}
	return nil, false
}
