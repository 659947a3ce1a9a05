// Package project provides project file handling and persistence.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Syntax-error2/ELECDRAFT/internal/topology"
	"github.com/Syntax-error2/ELECDRAFT/pkg/geometry"
)

// Room is a named rectangular region of the floor plan used for
// per-room load totals.
type Room struct {
	Name   string        `json:"name"`
	Bounds geometry.Rect `json:"bounds"`
}

// File represents an ELECDRAFT project file (.elecproj). It round-trips
// the full design: components, wires with their routed waypoints, rooms,
// and the floor-plan reference with its grid parameters. Loading a file
// and running one full recompute reproduces identical load results.
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`

	// Floor plan reference (relative to project file) and grid tuning
	FloorPlanPath string  `json:"floor_plan,omitempty"`
	CellSize      float64 `json:"cell_size,omitempty"`
	WallThreshold uint8   `json:"wall_threshold,omitempty"`
	UnitsPerMeter float64 `json:"units_per_meter,omitempty"`

	Rooms []Room `json:"rooms,omitempty"`

	// The design itself
	Topology *topology.Snapshot `json:"topology"`
}

// New creates a new project file with default settings.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:       1,
		Name:          name,
		Created:       now,
		Modified:      now,
		CellSize:      20,
		WallThreshold: 120,
		UnitsPerMeter: 20,
		Topology:      &topology.Snapshot{},
	}
}

// Load loads a project from an .elecproj file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("project %s: %w", path, err)
	}
	if proj.Topology == nil {
		proj.Topology = &topology.Snapshot{}
	}
	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Graph rehydrates the topology graph from the persisted snapshot.
func (p *File) Graph() *topology.Graph {
	return topology.FromSnapshot(p.Topology)
}

// SetFloorPlan stores the floor-plan path relative to the project file.
func (p *File) SetFloorPlan(projectPath, planPath string) {
	rel, err := filepath.Rel(filepath.Dir(projectPath), planPath)
	if err != nil {
		p.FloorPlanPath = planPath
	} else {
		p.FloorPlanPath = rel
	}
	p.Modified = time.Now()
}

// FloorPlanAbs returns the absolute path to the floor plan.
func (p *File) FloorPlanAbs(projectPath string) string {
	if p.FloorPlanPath == "" {
		return ""
	}
	if filepath.IsAbs(p.FloorPlanPath) {
		return p.FloorPlanPath
	}
	return filepath.Join(filepath.Dir(projectPath), p.FloorPlanPath)
}
