package main

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kass/go-geotypes/pkg/geojson"
	"github.com/kass/go-geotypes/pkg/index"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	indexFile  string
	numPoints  int
	numWorkers int
	seed       int64
	genBounds  string

	queryBBox     string
	queryNear     string
	queryRadius   float64
	queryNearest  int
	queryContains string

	benchType    string
	numQueries   int
	benchBoxSize float64
	benchRadius  float64
	benchK       int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build and query an R-Tree feature index",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build <geojson>...",
	Short: "Index GeoJSON files and save the index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ix := newIndex()

		start := time.Now()
		for _, path := range args {
			fc, err := readFeatureCollection(path)
			if err != nil {
				return err
			}
			n := ix.Insert(fc.Features...)
			log.Info().Str("file", path).Int("features", len(fc.Features)).Int("indexed", n).Msg("Indexed file")
		}
		log.Info().Int64("features", ix.Size()).Dur("elapsed", time.Since(start)).Msg("Index built")

		return saveIndex(ix)
	},
}

var indexGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Index random points for benchmarking",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bounds, err := parseBBox(genBounds)
		if err != nil {
			return err
		}

		log.Info().
			Int("points", numPoints).
			Int("workers", numWorkers).
			Floats64("bounds", bounds.Slice()).
			Msg("Generating random points")

		features := generateRandomPoints(numPoints, bounds, numWorkers, seed)

		ix := newIndex()
		start := time.Now()
		ix.Insert(features...)
		elapsed := time.Since(start)
		log.Info().
			Int64("features", ix.Size()).
			Dur("elapsed", elapsed).
			Float64("points_per_sec", float64(numPoints)/elapsed.Seconds()).
			Msg("Index built")

		return saveIndex(ix)
	},
}

var indexQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query a saved index",
	Long: `Query a saved index with exactly one of --bbox, --near with --radius,
--near with --nearest, or --contains. Matching features are written as a
GeoJSON FeatureCollection.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ix, err := loadIndex()
		if err != nil {
			return err
		}

		var features []*geojson.Feature
		start := time.Now()
		switch {
		case queryBBox != "":
			bbox, err := parseBBox(queryBBox)
			if err != nil {
				return err
			}
			if features, err = ix.SearchBBox(bbox); err != nil {
				return err
			}
		case queryContains != "":
			p, err := parsePosition(queryContains)
			if err != nil {
				return err
			}
			features = ix.Containing(p)
		case queryNear != "" && queryNearest > 0:
			p, err := parsePosition(queryNear)
			if err != nil {
				return err
			}
			features = ix.Nearest(p, queryNearest)
		case queryNear != "" && queryRadius > 0:
			p, err := parsePosition(queryNear)
			if err != nil {
				return err
			}
			if features, err = ix.SearchRadius(p, queryRadius); err != nil {
				return err
			}
		default:
			return errors.New("one of --bbox, --contains, or --near with --radius or --nearest is required")
		}
		log.Info().Int("results", len(features)).Dur("elapsed", time.Since(start)).Msg("Query complete")

		return writeJSON(cmd.OutOrStdout(), geojson.NewFeatureCollection(features...))
	},
}

// BenchmarkResult summarizes one benchmark run.
type BenchmarkResult struct {
	QueryType     string
	TotalQueries  int64
	TotalDuration time.Duration
	AvgDuration   time.Duration
	QueriesPerSec float64
	MinDuration   time.Duration
	MaxDuration   time.Duration
	TotalResults  int64
	AvgResults    float64
}

var indexBenchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run concurrent random queries against a saved index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bounds, err := parseBBox(genBounds)
		if err != nil {
			return err
		}
		ix, err := loadIndex()
		if err != nil {
			return err
		}

		log.Info().
			Str("type", benchType).
			Int("queries", numQueries).
			Int("workers", numWorkers).
			Msg("Running benchmark")

		query, err := benchmarkQuery(ix, benchType)
		if err != nil {
			return err
		}
		result := runBenchmark(benchType, bounds, query)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Query type: %s\n", result.QueryType)
		fmt.Fprintf(out, "Total queries: %d\n", result.TotalQueries)
		fmt.Fprintf(out, "Total time: %v\n", result.TotalDuration)
		fmt.Fprintf(out, "Queries per second: %.0f\n", result.QueriesPerSec)
		fmt.Fprintf(out, "Average query time: %v\n", result.AvgDuration)
		fmt.Fprintf(out, "Min/Max query time: %v / %v\n", result.MinDuration, result.MaxDuration)
		fmt.Fprintf(out, "Total results found: %d\n", result.TotalResults)
		fmt.Fprintf(out, "Average results per query: %.1f\n", result.AvgResults)
		return nil
	},
}

func newIndex() *index.FeatureIndex {
	return index.NewWithOptions(cfg.Index.MinChildren, cfg.Index.MaxChildren)
}

func saveIndex(ix *index.FeatureIndex) error {
	start := time.Now()
	if err := ix.SaveToFile(indexFile); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}

	event := log.Info().Str("file", indexFile).Dur("elapsed", time.Since(start))
	if info, err := os.Stat(indexFile); err == nil {
		event = event.Float64("size_mb", float64(info.Size())/(1024*1024))
	}
	event.Msg("Index saved")
	return nil
}

func loadIndex() (*index.FeatureIndex, error) {
	ix := newIndex()
	start := time.Now()
	if err := ix.LoadFromFile(indexFile); err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}
	log.Debug().Str("file", indexFile).Int64("features", ix.Size()).Dur("elapsed", time.Since(start)).Msg("Index loaded")
	return ix, nil
}

// benchmarkQuery returns a query issuing one random request of the given
// type around a center position.
func benchmarkQuery(ix *index.FeatureIndex, queryType string) (func(center geojson.Position) (int, error), error) {
	switch queryType {
	case "box":
		return func(c geojson.Position) (int, error) {
			half := benchBoxSize / 2
			results, err := ix.SearchBBox(geojson.NewBBox2D(c.Lon-half, c.Lat-half, c.Lon+half, c.Lat+half))
			return len(results), err
		}, nil
	case "radius":
		return func(c geojson.Position) (int, error) {
			results, err := ix.SearchRadius(c, benchRadius)
			return len(results), err
		}, nil
	case "nearest":
		return func(c geojson.Position) (int, error) {
			return len(ix.Nearest(c, benchK)), nil
		}, nil
	case "contains":
		return func(c geojson.Position) (int, error) {
			return len(ix.Containing(c)), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown query type %q (box, radius, nearest, contains)", queryType)
	}
}

func runBenchmark(queryType string, bounds geojson.BBox, query func(geojson.Position) (int, error)) BenchmarkResult {
	// Prepare random query centers
	r := rand.New(rand.NewSource(seed))
	centers := make([]geojson.Position, numQueries)
	for i := range centers {
		centers[i] = randomPosition(r, bounds)
	}

	var (
		totalResults atomic.Int64
		queryCount   atomic.Int64
		minDuration  = time.Duration(math.MaxInt64)
		maxDuration  time.Duration
		mu           sync.Mutex
		wg           sync.WaitGroup
	)

	workers := max(numWorkers, 1)
	queriesPerWorker := numQueries / workers

	start := time.Now()
	for w := 0; w < workers; w++ {
		startIdx := w * queriesPerWorker
		endIdx := startIdx + queriesPerWorker
		if w == workers-1 {
			endIdx = numQueries
		}

		wg.Add(1)
		go func(workerID, start, end int) {
			defer wg.Done()

			localMin, localMax := time.Duration(math.MaxInt64), time.Duration(0)
			for i := start; i < end; i++ {
				queryStart := time.Now()
				n, err := query(centers[i])
				elapsed := time.Since(queryStart)
				if err != nil {
					log.Warn().Err(err).Int("worker", workerID).Msg("Query error")
					continue
				}

				localMin = min(localMin, elapsed)
				localMax = max(localMax, elapsed)
				totalResults.Add(int64(n))
				queryCount.Add(1)
			}

			mu.Lock()
			minDuration = min(minDuration, localMin)
			maxDuration = max(maxDuration, localMax)
			mu.Unlock()
		}(w, startIdx, endIdx)
	}
	wg.Wait()
	elapsed := time.Since(start)

	result := BenchmarkResult{
		QueryType:     queryType,
		TotalQueries:  queryCount.Load(),
		TotalDuration: elapsed,
		TotalResults:  totalResults.Load(),
		MaxDuration:   maxDuration,
	}
	if result.TotalQueries > 0 {
		result.AvgDuration = elapsed / time.Duration(result.TotalQueries)
		result.QueriesPerSec = float64(result.TotalQueries) / elapsed.Seconds()
		result.AvgResults = float64(result.TotalResults) / float64(result.TotalQueries)
		result.MinDuration = minDuration
	}
	return result
}

func randomPosition(r *rand.Rand, bounds geojson.BBox) geojson.Position {
	return geojson.NewPosition(
		bounds.West+r.Float64()*(bounds.East-bounds.West),
		bounds.South+r.Float64()*(bounds.North-bounds.South),
	)
}

// generateRandomPoints creates n point features inside bounds using the
// given number of workers.
func generateRandomPoints(n int, bounds geojson.BBox, workers int, seed int64) []*geojson.Feature {
	features := make([]*geojson.Feature, n)
	workers = max(workers, 1)

	pointsPerWorker := n / workers
	remainder := n % workers

	var wg sync.WaitGroup
	start := 0
	for w := 0; w < workers; w++ {
		size := pointsPerWorker
		if w < remainder {
			size++
		}

		wg.Add(1)
		go func(workerID, start, end int) {
			defer wg.Done()
			// Each worker gets its own random generator to avoid contention
			r := rand.New(rand.NewSource(seed + int64(workerID)))

			for i := start; i < end; i++ {
				features[i] = geojson.NewFeature(
					geojson.NewPoint(randomPosition(r, bounds)),
					geojson.Properties{"name": fmt.Sprintf("point_%d", i)},
					fmt.Sprintf("point_%d", i),
				)
			}
		}(w, start, start+size)
		start += size
	}
	wg.Wait()

	return features
}

func init() {
	indexCmd.PersistentFlags().StringVarP(&indexFile, "file", "f", "index.geojson", "Index file path")
	indexCmd.PersistentFlags().IntVarP(&numWorkers, "workers", "w", runtime.NumCPU(), "Number of worker goroutines")
	indexCmd.PersistentFlags().Int64Var(&seed, "seed", time.Now().UnixNano(), "Random seed")
	// default: roughly USA
	indexCmd.PersistentFlags().StringVar(&genBounds, "bounds", "-125,25,-66,49", "Bounds for random positions (west,south,east,north)")

	indexGenerateCmd.Flags().IntVarP(&numPoints, "points", "n", 1000000, "Number of points to generate")

	indexQueryCmd.Flags().StringVar(&queryBBox, "bbox", "", "Bounding box (west,south,east,north)")
	indexQueryCmd.Flags().StringVar(&queryNear, "near", "", "Query position for --radius or --nearest")
	indexQueryCmd.Flags().Float64VarP(&queryRadius, "radius", "r", 0, "Search radius in meters")
	indexQueryCmd.Flags().IntVarP(&queryNearest, "nearest", "k", 0, "Number of nearest features")
	indexQueryCmd.Flags().StringVar(&queryContains, "contains", "", "Position that returned polygons must contain")

	indexBenchCmd.Flags().StringVarP(&benchType, "type", "t", "box", "Query type: box, radius, nearest, contains")
	indexBenchCmd.Flags().IntVarP(&numQueries, "queries", "q", 1000, "Number of queries to run")
	indexBenchCmd.Flags().Float64Var(&benchBoxSize, "box-size", 1.0, "Box size in degrees (for box queries)")
	indexBenchCmd.Flags().Float64VarP(&benchRadius, "radius", "r", 50000, "Radius in meters (for radius queries)")
	indexBenchCmd.Flags().IntVar(&benchK, "k", 100, "Number of nearest neighbors")

	indexCmd.AddCommand(indexBuildCmd, indexGenerateCmd, indexQueryCmd, indexBenchCmd)
	rootCmd.AddCommand(indexCmd)
}
