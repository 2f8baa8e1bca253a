package main

import (
	"fmt"

	"github.com/kass/go-geotypes/pkg/geodesy"
	"github.com/kass/go-geotypes/pkg/geojson"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	simplifyTolerance float64
	circlePoints      int
	normalizeLon      bool
)

var distanceCmd = &cobra.Command{
	Use:   "distance <from> <to>",
	Short: "Great-circle distance in meters",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		positions, err := parsePositions(args)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%.3f\n", geodesy.Distance(positions[0], positions[1]))
		return nil
	},
}

var bearingCmd = &cobra.Command{
	Use:   "bearing <from> <to>",
	Short: "Initial bearing in degrees clockwise from north",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		positions, err := parsePositions(args)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%.6f\n", geodesy.Bearing(positions[0], positions[1]))
		return nil
	},
}

var destinationCmd = &cobra.Command{
	Use:   "destination <start> <meters> <bearing>",
	Short: "Position reached from start along a bearing",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := parsePosition(args[0])
		if err != nil {
			return err
		}
		var distance, bearing float64
		if _, err := fmt.Sscan(args[1], &distance); err != nil {
			return fmt.Errorf("invalid distance %q: %w", args[1], err)
		}
		if _, err := fmt.Sscan(args[2], &bearing); err != nil {
			return fmt.Errorf("invalid bearing %q: %w", args[2], err)
		}

		dest := geodesy.Destination(start, distance, bearing)
		if normalizeLon {
			dest.Lon = geodesy.NormalizeLongitude(dest.Lon)
		}
		return writeJSON(cmd.OutOrStdout(), geojson.NewPoint(dest))
	},
}

var lengthCmd = &cobra.Command{
	Use:   "length <geojson>",
	Short: "Length in meters of a LineString or MultiLineString",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := readGeometry(args[0])
		if err != nil {
			return err
		}

		var length float64
		switch g := g.(type) {
		case *geojson.LineString:
			length = geodesy.LineLength(g)
		case *geojson.MultiLineString:
			for _, line := range g.Coordinates {
				length += geodesy.LineLength(geojson.NewLineString(line))
			}
		default:
			return fmt.Errorf("length needs a LineString or MultiLineString, got %s", g.Type())
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%.3f\n", length)
		return nil
	},
}

var areaCmd = &cobra.Command{
	Use:   "area <geojson>",
	Short: "Area in square meters of a Polygon or MultiPolygon (holes ignored)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := readGeometry(args[0])
		if err != nil {
			return err
		}

		var area float64
		switch g := g.(type) {
		case *geojson.Polygon:
			area = geodesy.PolygonArea(g)
		case *geojson.MultiPolygon:
			for _, polygon := range g.Coordinates {
				area += geodesy.PolygonArea(geojson.NewPolygon(polygon))
			}
		default:
			return fmt.Errorf("area needs a Polygon or MultiPolygon, got %s", g.Type())
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%.3f\n", area)
		return nil
	},
}

var bboxCmd = &cobra.Command{
	Use:   "bbox <geojson>",
	Short: "Bounding box of a geometry, feature or feature collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fc, err := readFeatureCollection(args[0])
		if err != nil {
			return err
		}

		bbox := geodesy.FeatureCollectionBBox(fc)
		if bbox.IsEmpty() {
			return fmt.Errorf("%s has no coordinates", args[0])
		}
		return writeJSON(cmd.OutOrStdout(), bbox)
	},
}

var simplifyCmd = &cobra.Command{
	Use:   "simplify <geojson>",
	Short: "Simplify every LineString with Douglas-Peucker",
	Long: `Simplify every LineString of the input with Douglas-Peucker. The
tolerance is in degrees and defaults to simplify.tolerance of the
configuration. Other geometries are copied unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fc, err := readFeatureCollection(args[0])
		if err != nil {
			return err
		}

		tolerance := cfg.Simplify.Tolerance
		if cmd.Flags().Changed("tolerance") {
			tolerance = simplifyTolerance
		}

		before, after := 0, 0
		for _, f := range fc.Features {
			if ls, ok := f.Geometry.(*geojson.LineString); ok {
				simplified := geodesy.SimplifyLineString(ls, tolerance)
				before += len(ls.Coordinates)
				after += len(simplified.Coordinates)
				f.Geometry = simplified
			}
		}

		log.Info().
			Float64("tolerance", tolerance).
			Int("before", before).
			Int("after", after).
			Msg("Simplified line strings")
		return writeJSON(cmd.OutOrStdout(), fc)
	},
}

var containsCmd = &cobra.Command{
	Use:   "contains <geojson> <position>",
	Short: "Classify a position as inside, outside or on the boundary of a polygon",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := readGeometry(args[0])
		if err != nil {
			return err
		}
		p, err := parsePosition(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), geodesy.ContainsPosition(g, p))
		return nil
	},
}

var circleCmd = &cobra.Command{
	Use:   "circle <center> <meters>",
	Short: "Polygon approximating a circle",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		center, err := parsePosition(args[0])
		if err != nil {
			return err
		}
		var radius float64
		if _, err := fmt.Sscan(args[1], &radius); err != nil {
			return fmt.Errorf("invalid radius %q: %w", args[1], err)
		}
		return writeJSON(cmd.OutOrStdout(), geodesy.CirclePolygon(center, radius, circlePoints))
	},
}

var bufferCmd = &cobra.Command{
	Use:   "buffer <point> <meters>",
	Short: "Square buffer polygon around a point",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		center, err := parsePosition(args[0])
		if err != nil {
			return err
		}
		var distance float64
		if _, err := fmt.Sscan(args[1], &distance); err != nil {
			return fmt.Errorf("invalid distance %q: %w", args[1], err)
		}
		return writeJSON(cmd.OutOrStdout(), geodesy.Buffer(geojson.NewPoint(center), distance))
	},
}

func init() {
	destinationCmd.Flags().BoolVar(&normalizeLon, "normalize", false, "Wrap the longitude into [-180, 180)")
	simplifyCmd.Flags().Float64VarP(&simplifyTolerance, "tolerance", "t", 0, "Tolerance in degrees")
	circleCmd.Flags().IntVarP(&circlePoints, "points", "n", geodesy.DefaultCirclePoints, "Number of vertices")

	rootCmd.AddCommand(
		distanceCmd, bearingCmd, destinationCmd,
		lengthCmd, areaCmd, bboxCmd,
		simplifyCmd, containsCmd, circleCmd, bufferCmd,
	)
}
