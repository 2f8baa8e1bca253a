package mapconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kass/go-geotypes/pkg/geodesy"
	"github.com/kass/go-geotypes/pkg/geojson"
)

// SpatialQueryType names the spatial predicate of a query.
type SpatialQueryType string

const (
	Intersects SpatialQueryType = "intersects"
	Contains   SpatialQueryType = "contains"
	Within     SpatialQueryType = "within"
	Touches    SpatialQueryType = "touches"
	Crosses    SpatialQueryType = "crosses"
	Overlaps   SpatialQueryType = "overlaps"
)

// ErrUnsupportedQuery is returned by Match for predicates and operators it
// cannot evaluate.
var ErrUnsupportedQuery = errors.New("unsupported query")

// SpatialQuery selects features by their relation to Geometry. Buffer is
// in meters.
type SpatialQuery struct {
	Type     SpatialQueryType
	Geometry geojson.Geometry
	Buffer   float64
}

// AttributeQuery compares a feature property with Value. Operator is one of
// =, !=, >, <, >=, <=, like, in, not in.
type AttributeQuery struct {
	Field    string `yaml:"field" json:"field"`
	Operator string `yaml:"operator" json:"operator"`
	Value    any    `yaml:"value" json:"value"`
}

// Query combines an optional spatial query with attribute queries. Logic
// is "and" (default) or "or".
type Query struct {
	Spatial    *SpatialQuery
	Attributes []AttributeQuery
	Logic      string
}

// Match reports whether f satisfies q.
//
// Spatial predicates are evaluated on bounding boxes: intersects and within
// compare the feature bbox with the query bbox grown by Buffer, and contains
// tests the query bbox center against polygonal features. Other predicates
// fail with ErrUnsupportedQuery.
func (q *Query) Match(f *geojson.Feature) (bool, error) {
	var results []bool

	if q.Spatial != nil {
		ok, err := q.Spatial.Match(f)
		if err != nil {
			return false, err
		}
		results = append(results, ok)
	}

	for _, a := range q.Attributes {
		ok, err := a.Match(f)
		if err != nil {
			return false, err
		}
		results = append(results, ok)
	}

	switch strings.ToLower(q.Logic) {
	case "", "and":
		for _, ok := range results {
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case "or":
		for _, ok := range results {
			if ok {
				return true, nil
			}
		}
		return len(results) == 0, nil
	default:
		return false, fmt.Errorf("%w: logic %q", ErrUnsupportedQuery, q.Logic)
	}
}

// Filter returns the features of fc matching q.
func (q *Query) Filter(fc *geojson.FeatureCollection) ([]*geojson.Feature, error) {
	var matched []*geojson.Feature
	for _, f := range fc.Features {
		ok, err := q.Match(f)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, f)
		}
	}
	return matched, nil
}

func (s *SpatialQuery) Match(f *geojson.Feature) (bool, error) {
	if f == nil || f.Geometry == nil || s.Geometry == nil {
		return false, nil
	}

	target := bufferBBox(geodesy.GeometryBBox(s.Geometry), s.Buffer)
	box := geodesy.GeometryBBox(f.Geometry)
	if target.IsEmpty() || box.IsEmpty() {
		return false, nil
	}

	switch s.Type {
	case Intersects:
		return box.Intersects(target), nil
	case Within:
		return target.ContainsPosition(geojson.NewPosition(box.West, box.South)) &&
			target.ContainsPosition(geojson.NewPosition(box.East, box.North)), nil
	case Contains:
		return geodesy.ContainsPosition(f.Geometry, target.Center()) != geodesy.Outside, nil
	default:
		return false, fmt.Errorf("%w: spatial %q", ErrUnsupportedQuery, s.Type)
	}
}

// bufferBBox grows b by meters using the same degree conversion as
// geodesy.Buffer.
func bufferBBox(b geojson.BBox, meters float64) geojson.BBox {
	if meters <= 0 || b.IsEmpty() {
		return geojson.NewBBox2D(b.West, b.South, b.East, b.North)
	}
	grown := geodesy.Buffer(geojson.NewPoint(b.Center()), meters)
	g := geodesy.GeometryBBox(grown)
	halfW, halfH := (g.East-g.West)/2, (g.North-g.South)/2
	return geojson.NewBBox2D(b.West-halfW, b.South-halfH, b.East+halfW, b.North+halfH)
}

func (a AttributeQuery) Match(f *geojson.Feature) (bool, error) {
	if f == nil {
		return false, nil
	}
	value, present := f.Properties[a.Field]

	switch strings.ToLower(a.Operator) {
	case "=":
		return present && equal(value, a.Value), nil
	case "!=":
		return !present || !equal(value, a.Value), nil
	case ">", "<", ">=", "<=":
		if !present {
			return false, nil
		}
		c, ok := compare(value, a.Value)
		if !ok {
			return false, nil
		}
		switch a.Operator {
		case ">":
			return c > 0, nil
		case "<":
			return c < 0, nil
		case ">=":
			return c >= 0, nil
		default:
			return c <= 0, nil
		}
	case "like":
		s, ok := value.(string)
		pattern, pok := a.Value.(string)
		return ok && pok && like(s, pattern), nil
	case "in", "not in":
		values, ok := a.Value.([]any)
		if !ok {
			return false, fmt.Errorf("%w: %s needs a list value", ErrUnsupportedQuery, a.Operator)
		}
		found := false
		for _, v := range values {
			if present && equal(value, v) {
				found = true
				break
			}
		}
		return found == (strings.ToLower(a.Operator) == "in"), nil
	default:
		return false, fmt.Errorf("%w: operator %q", ErrUnsupportedQuery, a.Operator)
	}
}

func equal(a, b any) bool {
	if c, ok := compare(a, b); ok {
		return c == 0
	}
	return a == b
}

// compare orders numbers numerically and strings lexically.
func compare(a, b any) (int, bool) {
	if x, ok := toFloat(a); ok {
		if y, ok := toFloat(b); ok {
			switch {
			case x < y:
				return -1, true
			case x > y:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	x, ok := a.(string)
	y, ok2 := b.(string)
	if !ok || !ok2 {
		return 0, false
	}
	return strings.Compare(x, y), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// like matches SQL LIKE patterns: % is any run, _ is one character.
// Matching is case-insensitive.
func like(s, pattern string) bool {
	return likeRunes([]rune(strings.ToLower(s)), []rune(strings.ToLower(pattern)))
}

func likeRunes(s, p []rune) bool {
	for len(p) > 0 {
		switch p[0] {
		case '%':
			for len(p) > 0 && p[0] == '%' {
				p = p[1:]
			}
			if len(p) == 0 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if likeRunes(s[i:], p) {
					return true
				}
			}
			return false
		case '_':
			if len(s) == 0 {
				return false
			}
		default:
			if len(s) == 0 || s[0] != p[0] {
				return false
			}
		}
		s, p = s[1:], p[1:]
	}
	return len(s) == 0
}
