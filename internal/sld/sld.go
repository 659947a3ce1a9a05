// Package sld derives a single-line diagram structure from a read-only
// topology snapshot: electrical connectivity arranged in tiers, without
// physical routing detail. Rendering belongs to the viewer; this package
// only produces symbol positions and connections.
package sld

import (
	"fmt"

	"github.com/Syntax-error2/ELECDRAFT/internal/load"
	"github.com/Syntax-error2/ELECDRAFT/internal/topology"
	"github.com/Syntax-error2/ELECDRAFT/pkg/geometry"
)

// SymbolKind selects the schematic symbol for a node.
type SymbolKind string

const (
	SymbolFeeder        SymbolKind = "feeder"
	SymbolMainBreaker   SymbolKind = "main_breaker"
	SymbolPanel         SymbolKind = "panel"
	SymbolBranchBreaker SymbolKind = "branch_breaker"
	SymbolLighting      SymbolKind = "load_lighting"
	SymbolReceptacle    SymbolKind = "load_receptacle"
	SymbolMotor         SymbolKind = "load_motor"
	SymbolAC            SymbolKind = "load_ac"
	SymbolGeneric       SymbolKind = "load_generic"
)

// Node is one placed schematic symbol.
type Node struct {
	ComponentID string           `json:"component_id,omitempty"`
	WireID      string           `json:"wire_id,omitempty"` // homerun id for branch breakers
	Kind        SymbolKind       `json:"kind"`
	Label       string           `json:"label"`
	Rating      string           `json:"rating,omitempty"` // e.g. "20A"
	Position    geometry.Point2D `json:"position"`
	Tier        int              `json:"tier"`
}

// Edge joins two nodes by index.
type Edge struct {
	From   int  `json:"from"`
	To     int  `json:"to"`
	Feeder bool `json:"feeder"`
}

// Diagram is the derived schematic.
type Diagram struct {
	Nodes  []Node  `json:"nodes"`
	Edges  []Edge  `json:"edges"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Layout constants, in diagram units.
const (
	tierSpacing   = 120.0
	panelSpacing  = 220.0
	branchSpacing = 80.0
	topMargin     = 60.0
)

// ResultLookup supplies cached load results for symbol ratings. Keys are
// component ids for panels/loads and homerun wire ids for circuits. May
// be nil; ratings are then omitted.
type ResultLookup func(id string) (load.Result, bool)

// Derive builds the schematic from a snapshot. The snapshot is acyclic
// and internally consistent by the topology graph's invariants, so the
// traversal needs no cycle guards beyond the tier walk.
func Derive(snap *topology.Snapshot, results ResultLookup) *Diagram {
	d := &Diagram{}
	comps := make(map[string]*topology.Component, len(snap.Components))
	for i := range snap.Components {
		comps[snap.Components[i].ID] = &snap.Components[i]
	}

	rating := func(id string) string {
		if results == nil {
			return ""
		}
		if r, ok := results(id); ok && r.Breaker > 0 {
			return fmt.Sprintf("%.0fA", r.Breaker)
		}
		return ""
	}

	// Root sources first: feeders (or panels) with no upstream supply.
	var roots []string
	fedBy := make(map[string]string)
	for _, w := range snap.Wires {
		if w.Feeder {
			fedBy[w.DestID] = w.SourceID
		}
	}
	for i := range snap.Components {
		c := &snap.Components[i]
		if c.IsSource() {
			if _, fed := fedBy[c.ID]; !fed {
				roots = append(roots, c.ID)
			}
		}
	}

	x := panelSpacing / 2
	for _, rootID := range roots {
		x = d.placeSource(snap, comps, rootID, 0, x, rating, -1)
	}

	for _, n := range d.Nodes {
		right := n.Position.X + panelSpacing/2
		bottom := n.Position.Y + tierSpacing
		if right > d.Width {
			d.Width = right
		}
		if bottom > d.Height {
			d.Height = bottom
		}
	}
	return d
}

// placeSource lays out a feeder/panel subtree and returns the next free
// x position. parentIdx is the node index of the supplying symbol, -1 at
// the root.
func (d *Diagram) placeSource(snap *topology.Snapshot, comps map[string]*topology.Component, id string, tier int, x float64, rating func(string) string, parentIdx int) float64 {
	c := comps[id]
	if c == nil {
		return x
	}

	kind := SymbolPanel
	if c.Category == topology.CategoryFeeder {
		kind = SymbolFeeder
	}

	// A fed panel enters through its main breaker; the breaker carries
	// the panel's computed rating. A root source shows it directly.
	panelRating := rating(id)
	if parentIdx >= 0 {
		bIdx := len(d.Nodes)
		d.Nodes = append(d.Nodes, Node{
			ComponentID: id,
			Kind:        SymbolMainBreaker,
			Label:       c.Name + " main",
			Rating:      panelRating,
			Position:    geometry.Point2D{X: x, Y: topMargin + float64(tier)*tierSpacing},
			Tier:        tier,
		})
		d.Edges = append(d.Edges, Edge{From: parentIdx, To: bIdx, Feeder: true})
		parentIdx = bIdx
		panelRating = ""
		tier++
	}

	idx := len(d.Nodes)
	d.Nodes = append(d.Nodes, Node{
		ComponentID: id,
		Kind:        kind,
		Label:       c.Name,
		Rating:      panelRating,
		Position:    geometry.Point2D{X: x, Y: topMargin + float64(tier)*tierSpacing},
		Tier:        tier,
	})
	if parentIdx >= 0 {
		d.Edges = append(d.Edges, Edge{From: parentIdx, To: idx})
	}

	branchX := x
	// Branch breakers and their loads: one breaker per homerun.
	for _, w := range snap.Wires {
		if !w.Homerun || w.DestID != id {
			continue
		}
		bIdx := len(d.Nodes)
		d.Nodes = append(d.Nodes, Node{
			WireID:   w.ID,
			Kind:     SymbolBranchBreaker,
			Label:    breakerLabel(comps, w.SourceID),
			Rating:   rating(w.ID),
			Position: geometry.Point2D{X: branchX, Y: topMargin + float64(tier+1)*tierSpacing},
			Tier:     tier + 1,
		})
		d.Edges = append(d.Edges, Edge{From: idx, To: bIdx})

		d.placeCircuit(snap, comps, w.SourceID, tier+2, branchX, bIdx)
		branchX += branchSpacing
	}

	nextX := branchX
	if nextX == x {
		nextX = x + panelSpacing
	}

	// Sub-panels fed by this source.
	for _, w := range snap.Wires {
		if w.Feeder && w.SourceID == id {
			nextX = d.placeSource(snap, comps, w.DestID, tier+1, nextX, rating, idx)
		}
	}
	return nextX
}

// placeCircuit walks the circuit downstream from its origin, one symbol
// per component, stacked below the branch breaker.
func (d *Diagram) placeCircuit(snap *topology.Snapshot, comps map[string]*topology.Component, originID string, tier int, x float64, parentIdx int) {
	visited := map[string]bool{originID: true}
	queue := []struct {
		id     string
		parent int
	}{{originID, parentIdx}}

	depth := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		c := comps[cur.id]
		if c == nil {
			continue
		}
		idx := len(d.Nodes)
		d.Nodes = append(d.Nodes, Node{
			ComponentID: cur.id,
			Kind:        symbolFor(c.Category),
			Label:       c.Name,
			Position:    geometry.Point2D{X: x, Y: topMargin + float64(tier+depth)*tierSpacing},
			Tier:        tier + depth,
		})
		d.Edges = append(d.Edges, Edge{From: cur.parent, To: idx})
		depth++

		for _, w := range snap.Wires {
			if w.Homerun || w.Feeder {
				continue
			}
			var next string
			switch cur.id {
			case w.SourceID:
				next = w.DestID
			case w.DestID:
				next = w.SourceID
			default:
				continue
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, struct {
				id     string
				parent int
			}{next, idx})
		}
	}
}

func breakerLabel(comps map[string]*topology.Component, originID string) string {
	if c := comps[originID]; c != nil {
		return c.Name
	}
	return ""
}

func symbolFor(cat topology.Category) SymbolKind {
	switch cat {
	case topology.CategoryLighting:
		return SymbolLighting
	case topology.CategoryReceptacle:
		return SymbolReceptacle
	case topology.CategoryMotor:
		return SymbolMotor
	case topology.CategoryAC:
		return SymbolAC
	case topology.CategoryPanel, topology.CategoryFeeder:
		return SymbolPanel
	default:
		return SymbolGeneric
	}
}
