// Package load implements the code-compliant load calculation engine:
// amperage, breaker and conductor selection, voltage drop, and fault
// current. All functions are pure; results depend only on their inputs
// and the code table in effect.
package load

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ConductorEntry is one row of the conductor sizing table.
type ConductorEntry struct {
	// Size is the display designation, e.g. "3.5mm² THHN".
	Size string `yaml:"size" json:"size"`
	// Ampacity is the maximum current the conductor may carry at the
	// table's insulation/ambient conditions.
	Ampacity float64 `yaml:"ampacity" json:"ampacity"`
	// ResistanceOhmKm is conductor resistance in ohms per kilometre.
	ResistanceOhmKm float64 `yaml:"resistance_ohm_km" json:"resistance_ohm_km"`
}

// Table holds the code values used by the engine. Values ship with PEC
// 2017 defaults and may be overridden from a YAML file so revised code
// editions need no rebuild.
type Table struct {
	// BreakerSteps are the standard breaker ratings (ampere trip),
	// ascending.
	BreakerSteps []float64 `yaml:"breaker_steps"`
	// Conductors is the sizing table, ascending by ampacity. Copper
	// THHN/THWN-2 in raceway, 75°C column.
	Conductors []ConductorEntry `yaml:"conductors"`
	// ContinuousFactor is the multiplier for loads running 3+ hours.
	ContinuousFactor float64 `yaml:"continuous_factor"`
	// BranchVDropLimitPct is the recommended branch-circuit voltage
	// drop ceiling, percent of system voltage.
	BranchVDropLimitPct float64 `yaml:"branch_vdrop_limit_pct"`
	// FeederVDropLimitPct is the feeder-level ceiling evaluated against
	// cumulative feeder length.
	FeederVDropLimitPct float64 `yaml:"feeder_vdrop_limit_pct"`
}

// DefaultTable returns the PEC 2017 values.
func DefaultTable() *Table {
	return &Table{
		BreakerSteps: []float64{15, 20, 30, 40, 50, 60, 70, 80, 100, 125},
		Conductors: []ConductorEntry{
			{Size: "3.5mm² THHN", Ampacity: 20, ResistanceOhmKm: 5.2},
			{Size: "5.5mm² THHN", Ampacity: 30, ResistanceOhmKm: 3.3},
			{Size: "8.0mm² THHN", Ampacity: 50, ResistanceOhmKm: 2.1},
			{Size: "14.0mm² THHN", Ampacity: 60, ResistanceOhmKm: 1.3},
			{Size: "22.0mm² THHN", Ampacity: 125, ResistanceOhmKm: 0.85},
		},
		ContinuousFactor:    1.25,
		BranchVDropLimitPct: 3.0,
		FeederVDropLimitPct: 2.0,
	}
}

// LoadTable reads a code table from a YAML file. Missing fields fall back
// to the defaults, so an override file may adjust only what changed.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}
	t := DefaultTable()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("load table %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("load table %s: %w", path, err)
	}
	return t, nil
}

// Validate checks the table is usable: non-empty, positive, ascending.
func (t *Table) Validate() error {
	if len(t.BreakerSteps) == 0 {
		return fmt.Errorf("no breaker steps")
	}
	if len(t.Conductors) == 0 {
		return fmt.Errorf("no conductor entries")
	}
	if !sort.Float64sAreSorted(t.BreakerSteps) {
		return fmt.Errorf("breaker steps not ascending")
	}
	for i, c := range t.Conductors {
		if c.Ampacity <= 0 || c.ResistanceOhmKm <= 0 {
			return fmt.Errorf("conductor %q: non-positive rating", c.Size)
		}
		if i > 0 && c.Ampacity < t.Conductors[i-1].Ampacity {
			return fmt.Errorf("conductors not ascending at %q", c.Size)
		}
	}
	if t.ContinuousFactor < 1 {
		return fmt.Errorf("continuous factor below 1")
	}
	return nil
}

// BreakerFor returns the smallest standard breaker whose rating covers
// the required ampacity. When the requirement exceeds every step the
// largest step is returned with ok = false.
func (t *Table) BreakerFor(requiredAmpacity float64) (rating float64, ok bool) {
	for _, b := range t.BreakerSteps {
		if b >= requiredAmpacity {
			return b, true
		}
	}
	return t.BreakerSteps[len(t.BreakerSteps)-1], false
}

// ConductorFor returns the smallest conductor whose ampacity covers the
// requirement. When the requirement exceeds every entry the largest is
// returned with ok = false.
func (t *Table) ConductorFor(requiredAmpacity float64) (ConductorEntry, bool) {
	for _, c := range t.Conductors {
		if c.Ampacity >= requiredAmpacity {
			return c, true
		}
	}
	return t.Conductors[len(t.Conductors)-1], false
}
