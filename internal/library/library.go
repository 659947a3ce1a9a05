// Package library stores component definitions used to seed new
// components: category, default rating, and voltage. The drawing toolbox
// is populated from it; icons are a UI concern and not kept here.
package library

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/Syntax-error2/ELECDRAFT/internal/topology"
	"github.com/Syntax-error2/ELECDRAFT/pkg/geometry"
)

// Definition is a part template.
type Definition struct {
	Name       string            `json:"name"`
	Category   topology.Category `json:"category"`
	DefaultVA  float64           `json:"default_va"`
	Voltage    float64           `json:"voltage"`
	Phase      int               `json:"phase"`
	Continuous bool              `json:"continuous"`

	// Panel/feeder templates
	BusRating float64 `json:"bus_rating,omitempty"`
	Slots     int     `json:"slots,omitempty"`
}

// Library is a collection of definitions, kept sorted by name.
type Library struct {
	Definitions []*Definition `json:"definitions"`
}

// New creates an empty library.
func New() *Library {
	return &Library{Definitions: make([]*Definition, 0)}
}

// Default returns the stock toolbox definitions.
func Default() *Library {
	lib := New()
	for _, d := range []*Definition{
		{Name: "Lighting Fixture", Category: topology.CategoryLighting, DefaultVA: 100, Voltage: 230, Phase: 1, Continuous: true},
		{Name: "Emergency Light", Category: topology.CategoryLighting, DefaultVA: 50, Voltage: 230, Phase: 1, Continuous: true},
		{Name: "Duplex Outlet", Category: topology.CategoryReceptacle, DefaultVA: 180, Voltage: 230, Phase: 1},
		{Name: "GFCI Outlet", Category: topology.CategoryReceptacle, DefaultVA: 180, Voltage: 230, Phase: 1},
		{Name: "Switch", Category: topology.CategorySwitch, Voltage: 230, Phase: 1},
		{Name: "Motor", Category: topology.CategoryMotor, DefaultVA: 746, Voltage: 230, Phase: 1},
		{Name: "AC Unit", Category: topology.CategoryAC, DefaultVA: 1500, Voltage: 230, Phase: 1, Continuous: true},
		{Name: "Panelboard", Category: topology.CategoryPanel, Voltage: 230, Phase: 1, BusRating: 100, Slots: 12},
		{Name: "Feeder", Category: topology.CategoryFeeder, Voltage: 230, Phase: 3, BusRating: 225, Slots: 42},
	} {
		lib.Add(d)
	}
	return lib
}

// Add adds or replaces a definition by name.
func (lib *Library) Add(def *Definition) {
	for i, d := range lib.Definitions {
		if d.Name == def.Name {
			lib.Definitions[i] = def
			lib.sort()
			return
		}
	}
	lib.Definitions = append(lib.Definitions, def)
	lib.sort()
}

// Remove removes a definition by name.
func (lib *Library) Remove(name string) {
	for i, d := range lib.Definitions {
		if d.Name == name {
			lib.Definitions = append(lib.Definitions[:i], lib.Definitions[i+1:]...)
			return
		}
	}
}

// Find returns the definition with the given name, or nil.
func (lib *Library) Find(name string) *Definition {
	for _, d := range lib.Definitions {
		if d.Name == name {
			return d
		}
	}
	return nil
}

func (lib *Library) sort() {
	sort.Slice(lib.Definitions, func(i, j int) bool {
		return lib.Definitions[i].Name < lib.Definitions[j].Name
	})
}

// Instantiate creates a component at pos seeded from a definition.
func (d *Definition) Instantiate(name string, pos geometry.Point2D) *topology.Component {
	c := topology.NewComponent(name, d.Category, pos)
	c.VA = d.DefaultVA
	c.Voltage = d.Voltage
	c.Phase = d.Phase
	c.Continuous = d.Continuous
	c.BusRating = d.BusRating
	c.Slots = d.Slots
	if c.Phase == 0 {
		c.Phase = 1
	}
	return c
}

// Load reads a library from a JSON file.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("library: %w", err)
	}
	var lib Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("library %s: %w", path, err)
	}
	return &lib, nil
}

// Save writes the library to a JSON file.
func (lib *Library) Save(path string) error {
	data, err := json.MarshalIndent(lib, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
