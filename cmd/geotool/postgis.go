package main

import (
	"fmt"
	"time"

	"github.com/kass/go-geotypes/pkg/geojson"
	"github.com/kass/go-geotypes/pkg/postgis"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	appendFeatures bool
	pgQueryBBox    string
	compareIndex   string
)

var postgisCmd = &cobra.Command{
	Use:   "postgis",
	Short: "Load and query features in PostGIS",
}

var postgisLoadCmd = &cobra.Command{
	Use:   "load <geojson>...",
	Short: "Insert GeoJSON features into the PostGIS feature table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := postgis.Open(ctx, cfg.PostGIS)
		if err != nil {
			return err
		}
		defer store.Close()

		if !appendFeatures {
			if err := store.InitSchema(ctx); err != nil {
				return err
			}
		}

		start := time.Now()
		total := 0
		for _, path := range args {
			fc, err := readFeatureCollection(path)
			if err != nil {
				return err
			}
			n, err := store.InsertFeatures(ctx, fc.Features)
			if err != nil {
				return err
			}
			total += n
			log.Info().Str("file", path).Int("inserted", n).Msg("Loaded file")
		}
		log.Info().Int("inserted", total).Dur("elapsed", time.Since(start)).Msg("Features inserted")

		start = time.Now()
		if err := store.CreateSpatialIndex(ctx); err != nil {
			return err
		}
		log.Info().Str("table", store.Table()).Dur("elapsed", time.Since(start)).Msg("Created spatial index")
		return nil
	},
}

var postgisQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the PostGIS feature table by bounding box",
	Long: `Query the PostGIS feature table by bounding box. With --compare the
same query runs against a saved R-Tree index and both timings are logged.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		bbox, err := parseBBox(pgQueryBBox)
		if err != nil {
			return err
		}

		store, err := postgis.Open(ctx, cfg.PostGIS)
		if err != nil {
			return err
		}
		defer store.Close()

		start := time.Now()
		features, err := store.QueryBBox(ctx, bbox)
		if err != nil {
			return err
		}
		pgElapsed := time.Since(start)
		log.Info().Int("results", len(features)).Dur("elapsed", pgElapsed).Msg("PostGIS query complete")

		if compareIndex != "" {
			indexFile = compareIndex
			ix, err := loadIndex()
			if err != nil {
				return err
			}

			start = time.Now()
			indexed, err := ix.SearchBBox(bbox)
			if err != nil {
				return err
			}
			indexElapsed := time.Since(start)

			event := log.Info().
				Int("postgis_results", len(features)).
				Int("rtree_results", len(indexed)).
				Dur("postgis", pgElapsed).
				Dur("rtree", indexElapsed)
			if indexElapsed > 0 {
				event = event.Float64("speedup", float64(pgElapsed)/float64(indexElapsed))
			}
			event.Msg("Comparison")
		}

		return writeJSON(cmd.OutOrStdout(), geojson.NewFeatureCollection(features...))
	},
}

var postgisStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show feature table statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := postgis.Open(ctx, cfg.PostGIS)
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Table: %s\n", store.Table())
		fmt.Fprintf(out, "Rows: %v\n", stats["row_count"])
		fmt.Fprintf(out, "Table size: %v\n", stats["table_size"])
		fmt.Fprintf(out, "Index size: %v\n", stats["index_size"])
		return nil
	},
}

func init() {
	postgisLoadCmd.Flags().BoolVarP(&appendFeatures, "append", "a", false, "Append to the existing table instead of recreating it")
	postgisQueryCmd.Flags().StringVar(&pgQueryBBox, "bbox", "", "Bounding box (west,south,east,north)")
	postgisQueryCmd.Flags().StringVar(&compareIndex, "compare", "", "Saved index file to compare against")
	_ = postgisQueryCmd.MarkFlagRequired("bbox")

	postgisCmd.AddCommand(postgisLoadCmd, postgisQueryCmd, postgisStatsCmd)
	rootCmd.AddCommand(postgisCmd)
}
