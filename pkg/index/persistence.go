package index

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kass/go-geotypes/pkg/geojson"
)

// SaveToFile writes every indexed feature to filename as a GeoJSON
// FeatureCollection, with the collection bbox set to the index bounds.
func (ix *FeatureIndex) SaveToFile(filename string) error {
	fc := geojson.NewFeatureCollection(ix.Features()...)
	if bounds := ix.Bounds(); !bounds.IsEmpty() {
		fc.BBox = &bounds
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	if err := encoder.Encode(fc); err != nil {
		return fmt.Errorf("failed to encode features: %w", err)
	}

	return nil
}

// LoadFromFile replaces the index contents with the features of a GeoJSON
// FeatureCollection file.
func (ix *FeatureIndex) LoadFromFile(filename string) error {
	fc, err := ReadFeatureCollection(filename)
	if err != nil {
		return err
	}

	// Clear existing index and rebuild
	ix.Clear()
	ix.Insert(fc.Features...)

	return nil
}

// ReadFeatureCollection decodes a GeoJSON FeatureCollection file.
func ReadFeatureCollection(filename string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	return fc, nil
}
