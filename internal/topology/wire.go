package topology

import (
	"github.com/Syntax-error2/ELECDRAFT/pkg/geometry"
)

// Wire connects exactly one source component to one destination component.
// Waypoints hold the routed path; Length is derived from it and feeds the
// voltage-drop calculation.
type Wire struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	DestID   string `json:"dest_id"`

	// Routed geometry
	Waypoints []geometry.Point2D `json:"waypoints,omitempty"`
	Length    float64            `json:"length"`

	// Homerun: destination is a panel/feeder and the source is an
	// in-circuit component; the destination supplies the source.
	Homerun bool `json:"homerun"`

	// Feeder: both endpoints are panels/feeders (a feeder leg of the
	// distribution hierarchy).
	Feeder bool `json:"feeder"`

	seq int // creation order, used for homerun tree ordering
}

// SetWaypoints replaces the routed path and recomputes the length.
func (w *Wire) SetWaypoints(points []geometry.Point2D) {
	w.Waypoints = points
	w.Length = geometry.PolylineLength(points)
}

// Seq returns the wire's creation sequence within its graph.
func (w *Wire) Seq() int { return w.seq }
