package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kass/go-geotypes/pkg/config"
	"github.com/kass/go-geotypes/pkg/geojson"
	"github.com/kass/go-geotypes/pkg/logger"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logOptions logger.Options
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "geotool",
	Short: "GeoJSON measurement, indexing and conversion tool",
	Long: `Measure, simplify, index and convert GeoJSON data.
Positions are given as "lon,lat" or "lon,lat,elevation"; GeoJSON input is
read from a file or from stdin when the path is "-".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logOptions.Setup(); err != nil {
			return err
		}

		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
		log.Debug().Str("config", configFile).Msg("Configuration loaded")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultFile, "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logOptions.Level, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logOptions.Format, "log-format", logger.FormatAuto, "Log format (auto, console, json)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// parsePosition parses "lon,lat" or "lon,lat,elevation".
func parsePosition(s string) (geojson.Position, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geojson.Position{}, fmt.Errorf("invalid position %q: %w", s, err)
		}
		values = append(values, v)
	}
	if len(values) != 2 && len(values) != 3 {
		return geojson.Position{}, fmt.Errorf("invalid position %q: want lon,lat[,elevation]", s)
	}
	return geojson.PositionFromSlice(values)
}

func parsePositions(args []string) ([]geojson.Position, error) {
	positions := make([]geojson.Position, len(args))
	for i, arg := range args {
		p, err := parsePosition(arg)
		if err != nil {
			return nil, err
		}
		positions[i] = p
	}
	return positions, nil
}

// parseBBox parses "west,south,east,north".
func parseBBox(s string) (geojson.BBox, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geojson.BBox{}, fmt.Errorf("invalid bbox %q: %w", s, err)
		}
		values = append(values, v)
	}
	if !geojson.ValidateBBox(values) {
		return geojson.BBox{}, fmt.Errorf("%w: %q", geojson.ErrInvalidBBox, s)
	}
	return geojson.BBoxFromSlice(values)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// readObject decodes any GeoJSON document from path.
func readObject(path string) (geojson.Object, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	return geojson.UnmarshalObject(data)
}

// readFeatureCollection reads path and wraps a bare geometry or feature
// into a collection.
func readFeatureCollection(path string) (*geojson.FeatureCollection, error) {
	obj, err := readObject(path)
	if err != nil {
		return nil, err
	}
	switch obj := obj.(type) {
	case *geojson.FeatureCollection:
		return obj, nil
	case *geojson.Feature:
		return geojson.NewFeatureCollection(obj), nil
	case geojson.Geometry:
		return geojson.NewFeatureCollection(geojson.NewFeature(obj, nil, nil)), nil
	default:
		return nil, fmt.Errorf("unsupported geojson input %T", obj)
	}
}

// readGeometry reads path and returns a bare geometry or a feature's
// geometry.
func readGeometry(path string) (geojson.Geometry, error) {
	obj, err := readObject(path)
	if err != nil {
		return nil, err
	}
	switch obj := obj.(type) {
	case *geojson.Feature:
		if obj.Geometry == nil {
			return nil, fmt.Errorf("feature has no geometry")
		}
		return obj.Geometry, nil
	case geojson.Geometry:
		return obj, nil
	case nil:
		return nil, fmt.Errorf("null geometry")
	default:
		return nil, fmt.Errorf("expected a geometry or feature, got %T", obj)
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
