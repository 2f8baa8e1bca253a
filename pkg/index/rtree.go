// Package index provides a thread-safe R-Tree index over GeoJSON features,
// keyed by each feature's 2D bounding box.
package index

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/dhconnelly/rtreego"
	"github.com/kass/go-geotypes/pkg/geodesy"
	"github.com/kass/go-geotypes/pkg/geojson"
)

const (
	tolerance          = 1e-9 // degrees; minimum rect side for points and lines
	DefaultMinChildren = 25
	DefaultMaxChildren = 50
	dimensions         = 2
)

// ErrInvalidBBox is returned by queries given an empty or inverted bbox.
var ErrInvalidBBox = errors.New("invalid bounding box")

// spatialFeature wraps a Feature for R-Tree indexing
type spatialFeature struct {
	*geojson.Feature
	bbox geojson.BBox
	rect *rtreego.Rect
}

func (sf *spatialFeature) Bounds() *rtreego.Rect {
	return sf.rect
}

// FeatureIndex is a thread-safe R-Tree based feature index
type FeatureIndex struct {
	tree        *rtreego.Rtree
	items       []*spatialFeature
	minChildren int
	maxChildren int
	mu          sync.RWMutex
	itemCount   atomic.Int64
}

// New creates an index with the default node fan-out.
func New() *FeatureIndex {
	return NewWithOptions(DefaultMinChildren, DefaultMaxChildren)
}

// NewWithOptions creates an index with the given R-Tree node fan-out.
// Invalid values fall back to the defaults.
func NewWithOptions(minChildren, maxChildren int) *FeatureIndex {
	if minChildren <= 0 || maxChildren < 2*minChildren {
		minChildren, maxChildren = DefaultMinChildren, DefaultMaxChildren
	}
	return &FeatureIndex{
		tree:        rtreego.NewTree(dimensions, minChildren, maxChildren),
		minChildren: minChildren,
		maxChildren: maxChildren,
	}
}

// Insert indexes features using parallel bbox computation. Features that
// are nil, have no geometry, or have an empty geometry are skipped. It
// returns the number of features indexed.
func (ix *FeatureIndex) Insert(features ...*geojson.Feature) int {
	if len(features) == 0 {
		return 0
	}

	numCPU := runtime.NumCPU()
	prepared := make([]*spatialFeature, len(features))
	var wg sync.WaitGroup

	batchSize := len(features) / numCPU
	if batchSize < 1 {
		batchSize = 1
	}

	for start := 0; start < len(features); start += batchSize {
		end := min(start+batchSize, len(features))

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for j := start; j < end; j++ {
				prepared[j] = newSpatialFeature(features[j])
			}
		}(start, end)
	}

	wg.Wait()

	ix.mu.Lock()
	defer ix.mu.Unlock()

	count := 0
	for _, item := range prepared {
		if item == nil {
			continue
		}
		ix.tree.Insert(item)
		ix.items = append(ix.items, item)
		count++
	}
	ix.itemCount.Add(int64(count))
	return count
}

func newSpatialFeature(f *geojson.Feature) *spatialFeature {
	if f == nil || f.Geometry == nil {
		return nil
	}
	bbox := geodesy.GeometryBBox(f.Geometry)
	if bbox.IsEmpty() {
		return nil
	}
	rect, err := toRect(bbox)
	if err != nil {
		return nil
	}
	return &spatialFeature{Feature: f, bbox: bbox, rect: rect}
}

func toRect(b geojson.BBox) (*rtreego.Rect, error) {
	lengths := []float64{
		math.Max(b.East-b.West, tolerance),
		math.Max(b.North-b.South, tolerance),
	}
	return rtreego.NewRect(rtreego.Point{b.West, b.South}, lengths)
}

// SearchBBox returns every feature whose bounding box intersects b.
func (ix *FeatureIndex) SearchBBox(b geojson.BBox) ([]*geojson.Feature, error) {
	if b.IsEmpty() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBBox, b.Slice())
	}
	if b.HasElevation {
		b = geojson.NewBBox2D(b.West, b.South, b.East, b.North)
	}
	if !geojson.ValidateBBox(b.Slice()) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBBox, b.Slice())
	}

	bounds, err := toRect(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBBox, err)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	results := ix.tree.SearchIntersect(bounds)

	features := make([]*geojson.Feature, 0, len(results))
	for _, result := range results {
		item, ok := result.(*spatialFeature)
		if !ok || item.Feature == nil {
			continue
		}
		// rects are padded for degenerate boxes, so recheck
		if item.bbox.Intersects(b) {
			features = append(features, item.Feature)
		}
	}

	return features, nil
}

// SearchRadius returns every feature whose bounding box comes within
// meters of center, measured along the great circle. Search windows that
// cross the antimeridian are split in two.
func (ix *FeatureIndex) SearchRadius(center geojson.Position, meters float64) ([]*geojson.Feature, error) {
	if meters < 0 || math.IsNaN(meters) {
		return nil, fmt.Errorf("invalid radius: %v", meters)
	}

	candidates := make(map[*geojson.Feature]struct{})
	var ordered []*geojson.Feature
	for _, window := range radiusWindows(center, meters) {
		found, err := ix.SearchBBox(window)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if _, seen := candidates[f]; seen {
				continue
			}
			candidates[f] = struct{}{}
			ordered = append(ordered, f)
		}
	}

	features := make([]*geojson.Feature, 0, len(ordered))
	for _, f := range ordered {
		if distanceToBBox(center, geodesy.GeometryBBox(f.Geometry)) <= meters {
			features = append(features, f)
		}
	}
	return features, nil
}

// radiusWindows converts a search radius to one or two degree windows
// inside [-180, 180].
func radiusWindows(center geojson.Position, meters float64) []geojson.BBox {
	latDelta := geodesy.RadiansToDegrees(meters / geodesy.EarthRadius)
	south, north := center.Lat-latDelta, center.Lat+latDelta

	// a window reaching a pole covers every longitude
	lonDelta := 180.0
	if south > -90 && north < 90 {
		if cos := math.Cos(geodesy.DegreesToRadians(center.Lat)); cos > 1e-12 {
			lonDelta = math.Min(latDelta/cos, 180)
		}
	}
	south, north = math.Max(south, -90), math.Min(north, 90)

	west, east := center.Lon-lonDelta, center.Lon+lonDelta
	switch {
	case lonDelta >= 180:
		return []geojson.BBox{geojson.NewBBox2D(-180, south, 180, north)}
	case west < -180:
		return []geojson.BBox{
			geojson.NewBBox2D(-180, south, east, north),
			geojson.NewBBox2D(west+360, south, 180, north),
		}
	case east > 180:
		return []geojson.BBox{
			geojson.NewBBox2D(west, south, 180, north),
			geojson.NewBBox2D(-180, south, east-360, north),
		}
	default:
		return []geojson.BBox{geojson.NewBBox2D(west, south, east, north)}
	}
}

// distanceToBBox returns the great-circle distance from p to the nearest
// point of b, trying b shifted a full turn either way.
func distanceToBBox(p geojson.Position, b geojson.BBox) float64 {
	best := math.Inf(1)
	for _, shift := range []float64{0, -360, 360} {
		shifted := geojson.NewBBox2D(b.West+shift, b.South, b.East+shift, b.North)
		best = math.Min(best, geodesy.Distance(p, nearestInBBox(p, shifted)))
	}
	return best
}

// Nearest returns up to k features ordered by the great-circle distance
// from p to the nearest point of their bounding box.
//
// The result is approximate: candidates are taken from the tree by planar
// degree distance, widened with latitude, and then reranked. Features
// across the antimeridian are not considered.
func (ix *FeatureIndex) Nearest(p geojson.Position, k int) []*geojson.Feature {
	if k <= 0 {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	results := ix.tree.NearestNeighbors(nearestCandidates(k, p.Lat), rtreego.Point{p.Lon, p.Lat})

	type ranked struct {
		feature  *geojson.Feature
		distance float64
	}
	candidates := make([]ranked, 0, len(results))
	for _, result := range results {
		item, ok := result.(*spatialFeature)
		if !ok || item == nil {
			continue
		}
		candidates = append(candidates, ranked{
			feature:  item.Feature,
			distance: geodesy.Distance(p, nearestInBBox(p, item.bbox)),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	n := min(k, len(candidates))
	features := make([]*geojson.Feature, n)
	for i := 0; i < n; i++ {
		features[i] = candidates[i].feature
	}
	return features
}

// Containing returns the Polygon and MultiPolygon features that contain p,
// boundary included.
func (ix *FeatureIndex) Containing(p geojson.Position) []*geojson.Feature {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	results := ix.tree.SearchIntersect(rtreego.Point{p.Lon, p.Lat}.ToRect(tolerance))

	var features []*geojson.Feature
	for _, result := range results {
		item, ok := result.(*spatialFeature)
		if !ok || !item.bbox.ContainsPosition(p.WithoutElevation()) {
			continue
		}
		if geodesy.ContainsPosition(item.Geometry, p) != geodesy.Outside {
			features = append(features, item.Feature)
		}
	}
	return features
}

// Features returns all indexed features in insertion order.
func (ix *FeatureIndex) Features() []*geojson.Feature {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	features := make([]*geojson.Feature, len(ix.items))
	for i, item := range ix.items {
		features[i] = item.Feature
	}
	return features
}

// Bounds returns the bbox enclosing every indexed feature, or
// geojson.EmptyBBox when the index is empty.
func (ix *FeatureIndex) Bounds() geojson.BBox {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	bounds := geojson.EmptyBBox()
	for _, item := range ix.items {
		bounds = geojson.UnionBBox(bounds, item.bbox)
	}
	return bounds
}

// Size returns the number of features in the index
func (ix *FeatureIndex) Size() int64 {
	return ix.itemCount.Load()
}

// Clear removes all features from the index
func (ix *FeatureIndex) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.tree = rtreego.NewTree(dimensions, ix.minChildren, ix.maxChildren)
	ix.items = nil
	ix.itemCount.Store(0)
}

// nearestCandidates is the number of planar neighbours fetched for k
// results. A degree of longitude shrinks by cos(lat), so planar order
// drifts from geodesic order toward the poles.
func nearestCandidates(k int, lat float64) int {
	const maxFactor = 64
	factor := 2.0
	if cos := math.Abs(math.Cos(geodesy.DegreesToRadians(lat))); cos > 2.0/maxFactor {
		factor = math.Max(factor, 2/cos)
	} else {
		factor = maxFactor
	}
	return int(math.Ceil(float64(k) * factor))
}

// nearestInBBox clamps p into b.
func nearestInBBox(p geojson.Position, b geojson.BBox) geojson.Position {
	return geojson.NewPosition(
		math.Min(math.Max(p.Lon, b.West), b.East),
		math.Min(math.Max(p.Lat, b.South), b.North),
	)
}
