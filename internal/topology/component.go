// Package topology maintains the component/wire graph of an electrical
// design: circuits, homeruns, and the panel/feeder hierarchy. Components
// and wires live in an arena keyed by id; relations are stored as id
// references so the hierarchy stays cycle-free in memory.
package topology

import (
	"github.com/google/uuid"

	"github.com/Syntax-error2/ELECDRAFT/pkg/geometry"
)

// Category classifies a component's electrical role.
type Category string

const (
	CategoryLighting   Category = "lighting"
	CategoryReceptacle Category = "receptacle"
	CategorySwitch     Category = "switch"
	CategoryMotor      Category = "motor"
	CategoryAC         Category = "ac"
	CategoryPanel      Category = "panel"
	CategoryFeeder     Category = "feeder"
	CategoryGeneric    Category = "generic"
)

// IsSource reports whether the category aggregates and supplies load
// (panels and feeders) rather than consuming it.
func (c Category) IsSource() bool {
	return c == CategoryPanel || c == CategoryFeeder
}

// Component is a placed electrical element: a load, a switch, or a
// panel/feeder aggregation point.
type Component struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Category Category         `json:"category"`
	Position geometry.Point2D `json:"position"`

	// Electrical rating
	VA          float64 `json:"va"`
	Voltage     float64 `json:"voltage"`
	Phase       int     `json:"phase"`                  // 1 or 3
	PowerFactor float64 `json:"power_factor,omitempty"` // three-phase only, 0 = 1.0
	Continuous  bool    `json:"continuous"`             // runs 3+ hours (lighting, HVAC)

	// Panel/feeder capacity attributes
	BusRating float64 `json:"bus_rating,omitempty"` // amps
	Slots     int     `json:"slots,omitempty"`      // breaker slots

	seq int // creation order within the graph
}

// NewComponent creates a component with a fresh id.
func NewComponent(name string, category Category, pos geometry.Point2D) *Component {
	return &Component{
		ID:       uuid.NewString(),
		Name:     name,
		Category: category,
		Position: pos,
		Voltage:  230,
		Phase:    1,
	}
}

// IsSource reports whether the component is a panel or feeder.
func (c *Component) IsSource() bool {
	return c.Category.IsSource()
}
