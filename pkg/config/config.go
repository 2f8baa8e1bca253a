// Package config loads the geotool YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file read when no path is given.
const DefaultFile = "geotool.yaml"

// DSNEnv overrides PostGIS.DSN when set.
const DSNEnv = "GEOTYPES_POSTGIS_DSN"

// Config represents the root configuration file structure.
type Config struct {
	PostGIS  PostGIS  `yaml:"postgis"`
	Index    Index    `yaml:"index"`
	Simplify Simplify `yaml:"simplify"`
}

// PostGIS holds the feature store connection settings. A non-empty DSN
// takes precedence over the individual fields.
type PostGIS struct {
	DSN               string `yaml:"dsn,omitempty"`
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	User              string `yaml:"user"`
	Password          string `yaml:"password"`
	Database          string `yaml:"database"`
	SSLMode           string `yaml:"sslmode"`
	Table             string `yaml:"table"`
	MaxConnections    int    `yaml:"max_connections"`
	ConnectionTimeout int    `yaml:"connection_timeout"` // seconds
	BatchSize         int    `yaml:"batch_size"`
}

// Index holds R-Tree node fan-out.
type Index struct {
	MinChildren int `yaml:"min_children"`
	MaxChildren int `yaml:"max_children"`
}

// Simplify holds the default Douglas-Peucker tolerance in degrees.
type Simplify struct {
	Tolerance float64 `yaml:"tolerance"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		PostGIS: PostGIS{
			Host:              "localhost",
			Port:              5432,
			User:              "postgres",
			Password:          "postgres",
			Database:          "geodb",
			SSLMode:           "disable",
			Table:             "features",
			MaxConnections:    25,
			ConnectionTimeout: 5,
			BatchSize:         10000,
		},
		Index: Index{
			MinChildren: 25,
			MaxChildren: 50,
		},
		Simplify: Simplify{
			Tolerance: 0.0001,
		},
	}
}

// Load reads the YAML configuration at path on top of the defaults. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if dsn := os.Getenv(DSNEnv); dsn != "" {
		cfg.PostGIS.DSN = dsn
	}

	return cfg, nil
}

// ConnString returns the lib/pq connection string.
func (p PostGIS) ConnString() string {
	if p.DSN != "" {
		return p.DSN
	}
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, sslMode)
	if p.ConnectionTimeout > 0 {
		connStr += fmt.Sprintf(" connect_timeout=%d", p.ConnectionTimeout)
	}
	return connStr
}
