// Package postgis stores GeoJSON features in a PostGIS table.
package postgis

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/kass/go-geotypes/pkg/config"
	"github.com/kass/go-geotypes/pkg/geojson"
	_ "github.com/lib/pq"
)

const defaultBatchSize = 10000

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// FeatureStore persists features with their geometry in SRID 4326.
type FeatureStore struct {
	db        *sql.DB
	table     string
	batchSize int
}

// Open connects to PostGIS and verifies the connection.
func Open(ctx context.Context, cfg config.PostGIS) (*FeatureStore, error) {
	table := cfg.Table
	if table == "" {
		table = "features"
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open("postgres", cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	maxConns := cfg.MaxConnections
	if maxConns <= 0 {
		maxConns = 25
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &FeatureStore{db: db, table: table, batchSize: batchSize}, nil
}

// Table returns the feature table name.
func (s *FeatureStore) Table() string {
	return s.table
}

// InitSchema enables PostGIS and recreates the feature table.
func (s *FeatureStore) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS postgis;`,
		fmt.Sprintf(`DROP TABLE IF EXISTS %s;`, s.table),
		fmt.Sprintf(`CREATE TABLE %s (
			id TEXT PRIMARY KEY,
			geom GEOMETRY(GEOMETRY, 4326) NOT NULL,
			properties JSONB
		);`, s.table),
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}

	return nil
}

// CreateSpatialIndex creates a GIST index on the geometry column and
// refreshes planner statistics.
func (s *FeatureStore) CreateSpatialIndex(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_geom ON %s USING GIST(geom);`, s.table, s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create spatial index: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("ANALYZE %s;", s.table)); err != nil {
		return fmt.Errorf("failed to analyze table: %w", err)
	}

	return nil
}

// InsertFeatures inserts features in batched transactions and returns the
// number inserted. Features without geometry are skipped. Features without
// an id get their position in the input as id.
func (s *FeatureStore) InsertFeatures(ctx context.Context, features []*geojson.Feature) (int, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, geom, properties)
		VALUES ($1, ST_SetSRID(ST_GeomFromGeoJSON($2), 4326), $3)
	`, s.table)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}

	inserted, pending := 0, 0
	for i, f := range features {
		if f == nil || f.Geometry == nil {
			continue
		}

		id := featureID(f, i)
		geometry, err := json.Marshal(f.Geometry)
		if err != nil {
			tx.Rollback()
			return inserted, fmt.Errorf("failed to encode geometry of feature %s: %w", id, err)
		}
		properties, err := encodeProperties(f.Properties)
		if err != nil {
			tx.Rollback()
			return inserted, fmt.Errorf("failed to encode properties of feature %s: %w", id, err)
		}

		if _, err := stmt.ExecContext(ctx, id, string(geometry), properties); err != nil {
			tx.Rollback()
			return inserted, fmt.Errorf("failed to insert feature %s: %w", id, err)
		}
		pending++

		// Commit batch
		if pending == s.batchSize {
			if err := tx.Commit(); err != nil {
				return inserted, fmt.Errorf("failed to commit batch: %w", err)
			}
			inserted += pending
			pending = 0

			tx, err = s.db.BeginTx(ctx, nil)
			if err != nil {
				return inserted, fmt.Errorf("failed to begin new transaction: %w", err)
			}
			stmt, err = tx.PrepareContext(ctx, query)
			if err != nil {
				tx.Rollback()
				return inserted, fmt.Errorf("failed to prepare statement: %w", err)
			}
		}
	}

	// Commit final batch
	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("failed to commit final batch: %w", err)
	}
	return inserted + pending, nil
}

// QueryBBox returns the features whose geometry bbox intersects b.
func (s *FeatureStore) QueryBBox(ctx context.Context, b geojson.BBox) ([]*geojson.Feature, error) {
	if b.IsEmpty() {
		return nil, fmt.Errorf("%w: empty bbox", geojson.ErrInvalidBBox)
	}

	query := fmt.Sprintf(`
		SELECT id, ST_AsGeoJSON(geom), properties
		FROM %s
		WHERE geom && ST_MakeEnvelope($1, $2, $3, $4, 4326)
		ORDER BY id
	`, s.table)

	rows, err := s.db.QueryContext(ctx, query, b.West, b.South, b.East, b.North)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var results []*geojson.Feature
	for rows.Next() {
		var (
			id         string
			geometry   []byte
			properties []byte
		)
		if err := rows.Scan(&id, &geometry, &properties); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		f, err := decodeFeature(id, geometry, properties)
		if err != nil {
			return nil, err
		}
		results = append(results, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return results, nil
}

// Count returns the number of stored features.
func (s *FeatureStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count features: %w", err)
	}
	return count, nil
}

// Stats returns table and index sizes and the row count.
func (s *FeatureStore) Stats(ctx context.Context) (map[string]any, error) {
	stats := make(map[string]any)

	var tableSize, indexSize string
	err := s.db.QueryRowContext(ctx, `
		SELECT
			pg_size_pretty(pg_total_relation_size($1::regclass)),
			pg_size_pretty(pg_indexes_size($1::regclass))
	`, s.table).Scan(&tableSize, &indexSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get table size: %w", err)
	}
	stats["table_size"] = tableSize
	stats["index_size"] = indexSize

	count, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats["row_count"] = count

	return stats, nil
}

// Close closes the database connection
func (s *FeatureStore) Close() error {
	return s.db.Close()
}

func featureID(f *geojson.Feature, position int) string {
	switch id := f.ID.(type) {
	case nil:
		return fmt.Sprint(position)
	case float64:
		return fmt.Sprintf("%g", id)
	default:
		return fmt.Sprint(id)
	}
}

// encodeProperties returns nil for absent properties so the column is NULL.
func encodeProperties(p geojson.Properties) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

func decodeFeature(id string, geometry, properties []byte) (*geojson.Feature, error) {
	g, err := geojson.UnmarshalGeometry(geometry)
	if err != nil {
		return nil, fmt.Errorf("failed to decode geometry of feature %s: %w", id, err)
	}
	if g == nil {
		return nil, fmt.Errorf("feature %s has null geometry", id)
	}

	var props geojson.Properties
	if len(properties) > 0 {
		if err := json.Unmarshal(properties, &props); err != nil {
			return nil, fmt.Errorf("failed to decode properties of feature %s: %w", id, err)
		}
	}

	return geojson.NewFeature(g, props, id), nil
}
