package topology

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/Syntax-error2/ELECDRAFT/pkg/geometry"
)

// Connection errors. The attempted edit is rejected atomically; the graph
// is unchanged when either is returned.
var (
	ErrInvalidConnection = errors.New("invalid connection")
	ErrCycleDetected     = errors.New("cycle detected")
	ErrNotFound          = errors.New("not found")
)

// Graph is the arena of components and wires for one project. It is
// mutated only from the single edit-processing path; concurrent readers
// take a Snapshot.
type Graph struct {
	components map[string]*Component
	wires      map[string]*Wire
	nextSeq    int
}

// NewGraph allocates an empty topology graph.
func NewGraph() *Graph {
	return &Graph{
		components: make(map[string]*Component),
		wires:      make(map[string]*Wire),
	}
}

// AddComponent registers a component. A missing id is assigned.
func (g *Graph) AddComponent(c *Component) *Component {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.seq = g.nextSeq
	g.nextSeq++
	g.components[c.ID] = c
	return c
}

// RemoveComponent deletes a component and every wire touching it.
// Returns the ids of the removed wires so the caller can invalidate
// derived results.
func (g *Graph) RemoveComponent(id string) ([]string, error) {
	if _, ok := g.components[id]; !ok {
		return nil, fmt.Errorf("component %s: %w", id, ErrNotFound)
	}
	var removed []string
	for wid, w := range g.wires {
		if w.SourceID == id || w.DestID == id {
			removed = append(removed, wid)
		}
	}
	sort.Strings(removed)
	for _, wid := range removed {
		delete(g.wires, wid)
	}
	delete(g.components, id)
	return removed, nil
}

// Component returns a component by id (nil if absent).
func (g *Graph) Component(id string) *Component {
	return g.components[id]
}

// Wire returns a wire by id (nil if absent).
func (g *Graph) Wire(id string) *Wire {
	return g.wires[id]
}

// Components returns all components in creation order.
func (g *Graph) Components() []*Component {
	out := make([]*Component, 0, len(g.components))
	for _, c := range g.components {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Wires returns all wires in creation order.
func (g *Graph) Wires() []*Wire {
	out := make([]*Wire, 0, len(g.wires))
	for _, w := range g.wires {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Connect creates a wire from source to destination.
//
// Classification follows the drawing convention: a wire drawn from an
// in-circuit component to a panel/feeder is a homerun (the panel supplies
// the component); a wire between two panels/feeders is a feeder leg; any
// other wire extends a circuit, with the source upstream of the
// destination.
//
// Fails with ErrInvalidConnection when the component acquiring an
// upstream already has one (no dual feeds), and with ErrCycleDetected
// when the new upstream chain would loop back on itself. Both failures
// leave the graph unchanged.
func (g *Graph) Connect(sourceID, destID string) (*Wire, error) {
	src, ok := g.components[sourceID]
	if !ok {
		return nil, fmt.Errorf("source %s: %w", sourceID, ErrNotFound)
	}
	dst, ok := g.components[destID]
	if !ok {
		return nil, fmt.Errorf("destination %s: %w", destID, ErrNotFound)
	}
	if sourceID == destID {
		return nil, fmt.Errorf("self connection on %s: %w", sourceID, ErrInvalidConnection)
	}

	homerun := dst.IsSource() && !src.IsSource()
	feeder := dst.IsSource() && src.IsSource()

	// The endpoint that gains an upstream supply from this wire.
	child, parent := destID, sourceID
	if homerun {
		child, parent = sourceID, destID
	}

	if up, ok := g.UpstreamOf(child); ok {
		return nil, fmt.Errorf("%s already fed from %s: %w", child, up, ErrInvalidConnection)
	}

	// Re-verify acyclicity of the upstream chain: the child must not be
	// an ancestor of its new parent.
	cur := parent
	for steps := 0; steps <= len(g.components); steps++ {
		up, ok := g.UpstreamOf(cur)
		if !ok {
			break
		}
		if up == child {
			return nil, fmt.Errorf("%s feeds %s upstream: %w", child, parent, ErrCycleDetected)
		}
		cur = up
	}

	w := &Wire{
		ID:       uuid.NewString(),
		SourceID: sourceID,
		DestID:   destID,
		Homerun:  homerun,
		Feeder:   feeder,
		seq:      g.nextSeq,
	}
	g.nextSeq++
	w.SetWaypoints([]geometry.Point2D{src.Position, dst.Position})
	g.wires[w.ID] = w
	return w, nil
}

// Disconnect removes a wire.
func (g *Graph) Disconnect(wireID string) error {
	if _, ok := g.wires[wireID]; !ok {
		return fmt.Errorf("wire %s: %w", wireID, ErrNotFound)
	}
	delete(g.wires, wireID)
	return nil
}

// UpstreamOf returns the id of the component supplying id, if any.
// For a homerun the supplying component is the wire's destination panel;
// otherwise it is the wire's source.
func (g *Graph) UpstreamOf(id string) (string, bool) {
	for _, w := range g.wires {
		if w.Homerun {
			if w.SourceID == id {
				return w.DestID, true
			}
		} else if w.DestID == id {
			return w.SourceID, true
		}
	}
	return "", false
}

// UpstreamChain returns the ids supplying id, nearest first, ending at
// the root source. The chain is finite because Connect rejects cycles.
func (g *Graph) UpstreamChain(id string) []string {
	var chain []string
	cur := id
	for steps := 0; steps <= len(g.components); steps++ {
		up, ok := g.UpstreamOf(cur)
		if !ok {
			break
		}
		chain = append(chain, up)
		cur = up
	}
	return chain
}

// RootSourceOf returns the ultimate feeder/panel at the top of id's
// upstream chain. A component with no upstream is its own root.
func (g *Graph) RootSourceOf(id string) string {
	chain := g.UpstreamChain(id)
	if len(chain) == 0 {
		return id
	}
	return chain[len(chain)-1]
}

// DownstreamOf returns the ids directly supplied by id, in wire creation
// order.
func (g *Graph) DownstreamOf(id string) []string {
	var out []string
	for _, w := range g.Wires() {
		if w.Homerun {
			if w.DestID == id {
				out = append(out, w.SourceID)
			}
		} else if w.SourceID == id {
			out = append(out, w.DestID)
		}
	}
	return out
}

// HomerunsOf returns the homerun wires landing on a panel or feeder, in
// creation order (tree-view ordering, not spatial order).
func (g *Graph) HomerunsOf(panelID string) []*Wire {
	var out []*Wire
	for _, w := range g.Wires() {
		if w.Homerun && w.DestID == panelID {
			out = append(out, w)
		}
	}
	return out
}

// WiresOf returns every wire touching a component, in creation order.
func (g *Graph) WiresOf(id string) []*Wire {
	var out []*Wire
	for _, w := range g.Wires() {
		if w.SourceID == id || w.DestID == id {
			out = append(out, w)
		}
	}
	return out
}

// ComponentCount returns the number of components.
func (g *Graph) ComponentCount() int { return len(g.components) }

// WireCount returns the number of wires.
func (g *Graph) WireCount() int { return len(g.wires) }

// Snapshot is a deep, read-only copy of the graph handed to consumers
// such as the SLD generator. It is always acyclic and internally
// consistent because it is taken between edits.
type Snapshot struct {
	Components []Component `json:"components"`
	Wires      []Wire      `json:"wires"`
}

// FromSnapshot rebuilds a graph from persisted state, preserving ids,
// creation order, and routed waypoints. Classification flags are
// recomputed from the component categories rather than trusted from the
// file.
func FromSnapshot(s *Snapshot) *Graph {
	g := NewGraph()
	for i := range s.Components {
		c := s.Components[i]
		g.AddComponent(&c)
	}
	for i := range s.Wires {
		w := s.Wires[i]
		src := g.components[w.SourceID]
		dst := g.components[w.DestID]
		if src == nil || dst == nil {
			continue
		}
		w.Homerun = dst.IsSource() && !src.IsSource()
		w.Feeder = dst.IsSource() && src.IsSource()
		w.seq = g.nextSeq
		g.nextSeq++
		if len(w.Waypoints) == 0 {
			w.SetWaypoints([]geometry.Point2D{src.Position, dst.Position})
		} else {
			w.Length = geometry.PolylineLength(w.Waypoints)
		}
		g.wires[w.ID] = &w
	}
	return g
}

// Snapshot copies the current graph state.
func (g *Graph) Snapshot() *Snapshot {
	s := &Snapshot{
		Components: make([]Component, 0, len(g.components)),
		Wires:      make([]Wire, 0, len(g.wires)),
	}
	for _, c := range g.Components() {
		s.Components = append(s.Components, *c)
	}
	for _, w := range g.Wires() {
		cp := *w
		cp.Waypoints = append([]geometry.Point2D(nil), w.Waypoints...)
		s.Wires = append(s.Wires, cp)
	}
	return s
}
