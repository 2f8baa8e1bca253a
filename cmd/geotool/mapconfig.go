package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kass/go-geotypes/pkg/geojson"
	"github.com/kass/go-geotypes/pkg/mapconfig"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	mapLayer string
	mapWhere []string
	mapLogic string
	mapBBox  string
)

var mapconfigCmd = &cobra.Command{
	Use:   "mapconfig <map.yaml>",
	Short: "Validate a map configuration and summarize its layers",
	Long: `Load a map configuration, resolve vector layer sources and print a
layer summary. With --layer the features of that vector layer are filtered
by --where (field,operator,value) and --bbox and written as GeoJSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mc, err := mapconfig.Load(args[0])
		if err != nil {
			return err
		}
		log.Debug().Str("file", args[0]).Int("layers", len(mc.Layers)).Msg("Map configuration loaded")

		if mapLayer != "" {
			return filterLayer(cmd, mc)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "View: center=%v zoom=%g\n", mc.View.Center, mc.View.Zoom)
		for _, l := range mc.Layers {
			base := l.Base()
			switch l := l.(type) {
			case *mapconfig.VectorLayer:
				count := 0
				if l.Data != nil {
					count = len(l.Data.Features)
				}
				fmt.Fprintf(out, "%-12s %-8s visible=%-5t features=%d\n", base.ID, base.Type, base.IsVisible(), count)
			case *mapconfig.RasterLayer:
				fmt.Fprintf(out, "%-12s %-8s visible=%-5t url=%s\n", base.ID, base.Type, base.IsVisible(), l.URL)
			case *mapconfig.TileLayer:
				fmt.Fprintf(out, "%-12s %-8s visible=%-5t url=%s\n", base.ID, base.Type, base.IsVisible(), l.URL)
			}
		}

		if bounds := mc.Bounds(); !bounds.IsEmpty() {
			fmt.Fprintf(out, "Data bounds: %v\n", bounds.Slice())
		}
		return nil
	},
}

func filterLayer(cmd *cobra.Command, mc *mapconfig.MapConfig) error {
	l, ok := mc.Layer(mapLayer)
	if !ok {
		return fmt.Errorf("layer %q not found", mapLayer)
	}
	vector, ok := l.(*mapconfig.VectorLayer)
	if !ok || vector.Data == nil {
		return fmt.Errorf("layer %q has no feature data", mapLayer)
	}

	q := &mapconfig.Query{Logic: mapLogic}
	for _, w := range mapWhere {
		a, err := parseWhere(w)
		if err != nil {
			return err
		}
		q.Attributes = append(q.Attributes, a)
	}
	if mapBBox != "" {
		bbox, err := parseBBox(mapBBox)
		if err != nil {
			return err
		}
		q.Spatial = &mapconfig.SpatialQuery{Type: mapconfig.Intersects, Geometry: bbox.Polygon()}
	}

	features, err := q.Filter(vector.Data)
	if err != nil {
		return err
	}
	log.Info().Str("layer", mapLayer).Int("matched", len(features)).Int("total", len(vector.Data.Features)).Msg("Layer filtered")
	return writeJSON(cmd.OutOrStdout(), geojson.NewFeatureCollection(features...))
}

func init() {
	mapconfigCmd.Flags().StringVarP(&mapLayer, "layer", "l", "", "Vector layer to filter")
	mapconfigCmd.Flags().StringArrayVar(&mapWhere, "where", nil, "Attribute filter field,operator,value (repeatable)")
	mapconfigCmd.Flags().StringVar(&mapLogic, "logic", "and", "Combine filters with and/or")
	mapconfigCmd.Flags().StringVar(&mapBBox, "bbox", "", "Bounding box filter (west,south,east,north)")

	rootCmd.AddCommand(mapconfigCmd)
}

// parseWhere parses "field,operator,value". Numeric values become numbers;
// in and not in take values separated by "|".
func parseWhere(s string) (mapconfig.AttributeQuery, error) {
	parts := strings.SplitN(s, ",", 3)
	if len(parts) != 3 {
		return mapconfig.AttributeQuery{}, fmt.Errorf("invalid filter %q: want field,operator,value", s)
	}

	a := mapconfig.AttributeQuery{Field: parts[0], Operator: strings.TrimSpace(parts[1])}
	switch strings.ToLower(a.Operator) {
	case "in", "not in":
		var values []any
		for _, v := range strings.Split(parts[2], "|") {
			values = append(values, parseValue(v))
		}
		a.Value = values
	default:
		a.Value = parseValue(parts[2])
	}
	return a, nil
}

func parseValue(s string) any {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return s
}
