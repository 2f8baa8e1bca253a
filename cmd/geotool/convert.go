package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/kass/go-geotypes/pkg/geojson"
	"github.com/kass/go-geotypes/pkg/kml"
	"github.com/kass/go-geotypes/pkg/polyline"
	"github.com/kass/go-geotypes/pkg/wkt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	kmlOutput   string
	wktDigits   int
	polylineCmd = &cobra.Command{
		Use:   "polyline",
		Short: "Convert LineStrings to and from encoded polylines",
	}
	wktCmd = &cobra.Command{
		Use:   "wkt",
		Short: "Convert geometries to and from Well-Known Text",
	}
)

var polylineEncodeCmd = &cobra.Command{
	Use:   "encode <geojson>",
	Short: "Encode a LineString as a polyline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := readGeometry(args[0])
		if err != nil {
			return err
		}
		ls, ok := g.(*geojson.LineString)
		if !ok {
			return fmt.Errorf("polyline needs a LineString, got %s", g.Type())
		}

		encoded, err := polyline.EncodeLineString(ls)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), encoded)
		return nil
	},
}

var polylineDecodeCmd = &cobra.Command{
	Use:   "decode <polyline>",
	Short: "Decode a polyline into a LineString",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ls, err := polyline.DecodeLineString(args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), ls)
	},
}

var kmlCmd = &cobra.Command{
	Use:   "kml <geojson>",
	Short: "Export features as a KML document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fc, err := readFeatureCollection(args[0])
		if err != nil {
			return err
		}

		if kmlOutput == "" || kmlOutput == "-" {
			return kml.Encode(cmd.OutOrStdout(), fc)
		}

		file, err := os.Create(kmlOutput)
		if err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}
		defer file.Close()

		if err := kml.Encode(file, fc); err != nil {
			return err
		}
		log.Info().Str("file", kmlOutput).Int("features", len(fc.Features)).Msg("KML written")
		return nil
	},
}

var wktEncodeCmd = &cobra.Command{
	Use:   "encode <geojson>",
	Short: "Encode a geometry as WKT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := readGeometry(args[0])
		if err != nil {
			return err
		}
		s, err := wkt.Marshal(g, wktDigits)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	},
}

var wktDecodeCmd = &cobra.Command{
	Use:   "decode <wkt>",
	Short: "Decode WKT into a GeoJSON geometry",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := wkt.Unmarshal(strings.Join(args, " "))
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), g)
	},
}

func init() {
	kmlCmd.Flags().StringVarP(&kmlOutput, "output", "o", "-", "Output file, - for stdout")
	wktEncodeCmd.Flags().IntVar(&wktDigits, "digits", wkt.DefaultDecimalDigits, "Maximum fractional digits")

	polylineCmd.AddCommand(polylineEncodeCmd, polylineDecodeCmd)
	wktCmd.AddCommand(wktEncodeCmd, wktDecodeCmd)
	rootCmd.AddCommand(polylineCmd, kmlCmd, wktCmd)
}
