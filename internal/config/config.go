// Package config loads engine configuration from YAML with sensible
// defaults, so a project can tune routing and code tables without a
// rebuild.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds engine tuning.
type Config struct {
	// Grid
	CellSize      float64 `yaml:"cell_size"`       // obstacle grid pitch, scene units
	UnitsPerMeter float64 `yaml:"units_per_meter"` // scene units per metre
	WallThreshold uint8   `yaml:"wall_threshold"`  // raster lightness below = wall

	// Router
	MaxExploredCells int     `yaml:"max_explored_cells"`
	SnapRadius       int     `yaml:"snap_radius"`
	SimplifyEpsilon  float64 `yaml:"simplify_epsilon"`
	RouteWorkers     int     `yaml:"route_workers"`

	// Code table override (empty = built-in PEC defaults)
	CodeTablePath string `yaml:"code_table"`
}

// Default returns the engine defaults.
func Default() *Config {
	return &Config{
		CellSize:         20,
		UnitsPerMeter:    20,
		WallThreshold:    120,
		MaxExploredCells: 250000,
		SnapRadius:       10,
		SimplifyEpsilon:  0.01,
		RouteWorkers:     4,
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.CellSize <= 0 {
		return fmt.Errorf("cell_size must be positive")
	}
	if c.UnitsPerMeter <= 0 {
		return fmt.Errorf("units_per_meter must be positive")
	}
	if c.MaxExploredCells <= 0 {
		return fmt.Errorf("max_explored_cells must be positive")
	}
	if c.RouteWorkers < 1 {
		return fmt.Errorf("route_workers must be at least 1")
	}
	return nil
}
