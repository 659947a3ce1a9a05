// Package schedule keeps derived load results consistent with the
// topology and routed geometry. Edits mark the touched node and its
// upstream chain stale; Recompute evaluates stale nodes leaves-to-root
// exactly once, converging to the same values as a full recompute.
package schedule

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/Syntax-error2/ELECDRAFT/internal/load"
	"github.com/Syntax-error2/ELECDRAFT/internal/topology"
)

// DefaultUnitsPerMeter converts scene units (canvas pixels) to metres for
// voltage-drop math. One snap-grid cell is one metre.
const DefaultUnitsPerMeter = 20.0

// Scheduler owns the cached LoadResults for components, circuits, and
// panels, and the dirty set driving incremental recomputation.
type Scheduler struct {
	graph *topology.Graph
	table *load.Table

	// UnitsPerMeter scales routed lengths into metres.
	UnitsPerMeter float64

	componentResults map[string]load.Result // component id
	circuitResults   map[string]load.Result // homerun wire id
	panelResults     map[string]load.Result // panel/feeder component id

	dirtyComponents map[string]bool
	dirtyCircuits   map[string]bool
	dirtyPanels     map[string]bool
}

// New creates a scheduler over a graph with everything stale.
func New(g *topology.Graph, t *load.Table) *Scheduler {
	s := &Scheduler{
		graph:            g,
		table:            t,
		UnitsPerMeter:    DefaultUnitsPerMeter,
		componentResults: make(map[string]load.Result),
		circuitResults:   make(map[string]load.Result),
		panelResults:     make(map[string]load.Result),
		dirtyComponents:  make(map[string]bool),
		dirtyCircuits:    make(map[string]bool),
		dirtyPanels:      make(map[string]bool),
	}
	s.MarkAll()
	return s
}

// MarkComponent marks a component and its upstream chain stale.
func (s *Scheduler) MarkComponent(id string) {
	c := s.graph.Component(id)
	if c == nil {
		// Removed component: drop its cache, ancestors were marked by
		// the caller via the removed wires.
		delete(s.componentResults, id)
		delete(s.panelResults, id)
		return
	}
	if c.IsSource() {
		s.markPanelChain(id)
		return
	}
	s.dirtyComponents[id] = true
	if circ := s.graph.CircuitOf(id); circ != nil {
		s.dirtyCircuits[circ.HomerunID] = true
		s.markPanelChain(circ.PanelID)
	}
}

// MarkWire marks everything depending on a wire's routed length stale.
func (s *Scheduler) MarkWire(wireID string) {
	w := s.graph.Wire(wireID)
	if w == nil {
		delete(s.circuitResults, wireID)
		return
	}
	if w.Feeder {
		s.markPanelChain(w.DestID)
		return
	}
	// Branch or homerun wire: every member of the circuit routes its run
	// length through it, so the whole circuit sees a new length.
	s.MarkComponent(w.SourceID)
	s.MarkComponent(w.DestID)
	for _, endpoint := range []string{w.SourceID, w.DestID} {
		circ := s.graph.CircuitOf(endpoint)
		if circ == nil {
			continue
		}
		for _, id := range circ.ComponentIDs {
			s.MarkComponent(id)
		}
		break
	}
}

// markPanelChain marks a panel and every panel above it.
func (s *Scheduler) markPanelChain(panelID string) {
	cur := panelID
	for steps := 0; steps <= s.graph.ComponentCount(); steps++ {
		if s.graph.Component(cur) == nil {
			return
		}
		s.dirtyPanels[cur] = true
		up, ok := s.graph.UpstreamOf(cur)
		if !ok {
			return
		}
		cur = up
	}
}

// MarkAll stales the entire graph (used at load time and in tests).
func (s *Scheduler) MarkAll() {
	for _, c := range s.graph.Components() {
		if c.IsSource() {
			s.dirtyPanels[c.ID] = true
		} else {
			s.dirtyComponents[c.ID] = true
		}
	}
	for _, w := range s.graph.Wires() {
		if w.Homerun {
			s.dirtyCircuits[w.ID] = true
		}
	}
}

// Stats reports what one Recompute pass did.
type Stats struct {
	Components int
	Circuits   int
	Panels     int
}

// Recompute evaluates every stale node in dependency order (components,
// then circuits, then panels bottom-up) exactly once, and clears the
// dirty set. Recomputing a stable graph changes nothing.
func (s *Scheduler) Recompute() Stats {
	var st Stats

	// Drop caches for entities that no longer exist.
	s.sweepRemoved()

	for id := range s.dirtyComponents {
		if c := s.graph.Component(id); c != nil {
			s.componentResults[id] = s.evaluateComponent(c)
			st.Components++
		}
		delete(s.dirtyComponents, id)
	}

	for id := range s.dirtyCircuits {
		if w := s.graph.Wire(id); w != nil && w.Homerun {
			s.circuitResults[id] = s.evaluateCircuit(id)
			st.Circuits++
		}
		delete(s.dirtyCircuits, id)
	}

	// Panels depend on other panels below them; order bottom-up.
	for _, id := range s.panelOrder() {
		if !s.dirtyPanels[id] {
			continue
		}
		if c := s.graph.Component(id); c != nil && c.IsSource() {
			s.panelResults[id] = s.evaluatePanel(c)
			st.Panels++
		}
		delete(s.dirtyPanels, id)
	}
	for id := range s.dirtyPanels { // panels removed from the graph
		delete(s.dirtyPanels, id)
	}
	return st
}

func (s *Scheduler) sweepRemoved() {
	for id := range s.componentResults {
		if s.graph.Component(id) == nil {
			delete(s.componentResults, id)
		}
	}
	for id := range s.circuitResults {
		if s.graph.Wire(id) == nil {
			delete(s.circuitResults, id)
		}
	}
	for id := range s.panelResults {
		if s.graph.Component(id) == nil {
			delete(s.panelResults, id)
		}
	}
}

// panelOrder returns all panels/feeders sorted so that every panel comes
// after the panels it feeds (leaves first, root feeder last). The feeder
// hierarchy is a DAG by the graph's connect invariant.
func (s *Scheduler) panelOrder() []string {
	dg := simple.NewDirectedGraph()
	idOf := make(map[string]int64)
	nameOf := make(map[int64]string)
	next := int64(1)

	nodeFor := func(id string) int64 {
		if n, ok := idOf[id]; ok {
			return n
		}
		n := next
		next++
		idOf[id] = n
		nameOf[n] = id
		dg.AddNode(simple.Node(n))
		return n
	}

	for _, c := range s.graph.Components() {
		if c.IsSource() {
			nodeFor(c.ID)
		}
	}
	for _, w := range s.graph.Wires() {
		if w.Feeder {
			// Child before parent: edge from fed panel to feeder.
			dg.SetEdge(dg.NewEdge(simple.Node(nodeFor(w.DestID)), simple.Node(nodeFor(w.SourceID))))
		}
	}

	sorted, err := topo.Sort(dg)
	if err != nil {
		// Connect rejects cycles, so this cannot happen on a graph
		// built through the public API; fall back to creation order.
		var out []string
		for _, c := range s.graph.Components() {
			if c.IsSource() {
				out = append(out, c.ID)
			}
		}
		return out
	}
	out := make([]string, 0, len(sorted))
	for _, n := range sorted {
		out = append(out, nameOf[n.ID()])
	}
	return out
}

// runLengthMeters sums the routed wire lengths from a component up to its
// supplying panel (or the chain's end), converted to metres.
func (s *Scheduler) runLengthMeters(componentID string) float64 {
	total := 0.0
	cur := componentID
	for steps := 0; steps <= s.graph.ComponentCount(); steps++ {
		up, ok := s.graph.UpstreamOf(cur)
		if !ok {
			break
		}
		for _, w := range s.graph.WiresOf(cur) {
			if w.Feeder {
				continue
			}
			if (w.Homerun && w.SourceID == cur && w.DestID == up) ||
				(!w.Homerun && w.DestID == cur && w.SourceID == up) {
				total += w.Length
				break
			}
		}
		if c := s.graph.Component(up); c != nil && c.IsSource() {
			break
		}
		cur = up
	}
	return total / s.unitsPerMeter()
}

func (s *Scheduler) unitsPerMeter() float64 {
	if s.UnitsPerMeter <= 0 {
		return DefaultUnitsPerMeter
	}
	return s.UnitsPerMeter
}

func (s *Scheduler) evaluateComponent(c *topology.Component) load.Result {
	return s.table.Evaluate(load.Input{
		VA:          c.VA,
		Voltage:     c.Voltage,
		Phase:       c.Phase,
		PowerFactor: c.PowerFactor,
		Continuous:  c.Continuous,
		LengthM:     s.runLengthMeters(c.ID),
	})
}

// evaluateCircuit aggregates a circuit's members and sizes its breaker
// from the summed load, with voltage drop over the homerun length.
func (s *Scheduler) evaluateCircuit(homerunID string) load.Result {
	w := s.graph.Wire(homerunID)
	origin := s.graph.Component(w.SourceID)

	var va float64
	continuous := false
	voltage := 230.0
	phase := 1
	pf := 0.0
	if origin != nil {
		voltage = origin.Voltage
		phase = origin.Phase
		pf = origin.PowerFactor
	}
	for _, circ := range s.graph.Circuits() {
		if circ.HomerunID != homerunID {
			continue
		}
		for _, id := range circ.ComponentIDs {
			if c := s.graph.Component(id); c != nil {
				va += c.VA
				if c.Continuous {
					continuous = true
				}
			}
		}
	}

	return s.table.Evaluate(load.Input{
		VA:          va,
		Voltage:     voltage,
		Phase:       phase,
		PowerFactor: pf,
		Continuous:  continuous,
		LengthM:     w.Length / s.unitsPerMeter(),
	})
}

// evaluatePanel sums the amps of hosted circuits plus fed sub-panels,
// checks bus capacity, and evaluates voltage drop against the cumulative
// feeder length from the root.
func (s *Scheduler) evaluatePanel(p *topology.Component) load.Result {
	var va, amps float64
	for _, circ := range s.graph.PanelCircuits(p.ID) {
		r, ok := s.circuitResults[circ.HomerunID]
		if !ok {
			r = s.evaluateCircuit(circ.HomerunID)
			s.circuitResults[circ.HomerunID] = r
		}
		va += r.VA
		amps += r.Amps
	}
	for _, sub := range s.graph.SubPanels(p.ID) {
		if r, ok := s.panelResults[sub]; ok {
			va += r.VA
			amps += r.Amps
		}
	}

	r := load.Result{
		VA:    va,
		Amps:  roundAmps(amps),
		Poles: 1,
	}
	if p.Phase == 3 {
		r.Poles = 3
	}

	breaker, ok := s.table.BreakerFor(amps)
	r.Breaker = breaker
	if !ok {
		r.Violations = append(r.Violations, load.Violation{
			Kind:    load.OverBreaker,
			Message: fmt.Sprintf("panel %s load %.1fA exceeds largest standard breaker", p.Name, amps),
		})
	}

	cond, _ := s.table.ConductorFor(amps)
	r.Conductor = cond.Size

	// Cumulative feeder length from the root feeder down to this panel.
	feederLen := s.cumulativeFeederMeters(p.ID)
	voltage := p.Voltage
	if voltage <= 0 {
		voltage = 230
	}
	vd, pct := s.table.VoltageDrop(amps, feederLen, cond.ResistanceOhmKm, voltage, p.Phase)
	r.VoltageDrop = roundAmps(vd)
	r.VoltageDropPct = roundAmps(pct)
	if pct > s.table.FeederVDropLimitPct {
		r.Violations = append(r.Violations, load.Violation{
			Kind:    load.OverVoltageDrop,
			Message: fmt.Sprintf("panel %s feeder drop %.2f%% exceeds %.1f%% limit", p.Name, pct, s.table.FeederVDropLimitPct),
		})
	}

	if p.BusRating > 0 && amps > p.BusRating {
		r.Violations = append(r.Violations, load.Violation{
			Kind:    load.OverPanelCapacity,
			Message: fmt.Sprintf("panel %s load %.1fA exceeds bus rating %.0fA", p.Name, amps, p.BusRating),
		})
	}
	return r
}

// cumulativeFeederMeters sums feeder wire lengths from the root feeder
// down to the panel.
func (s *Scheduler) cumulativeFeederMeters(panelID string) float64 {
	total := 0.0
	cur := panelID
	for steps := 0; steps <= s.graph.ComponentCount(); steps++ {
		up, ok := s.graph.UpstreamOf(cur)
		if !ok {
			break
		}
		for _, w := range s.graph.WiresOf(cur) {
			if w.Feeder && w.SourceID == up && w.DestID == cur {
				total += w.Length
				break
			}
		}
		cur = up
	}
	return total / s.unitsPerMeter()
}

// ComponentResult returns the cached result for a component.
func (s *Scheduler) ComponentResult(id string) (load.Result, bool) {
	r, ok := s.componentResults[id]
	return r, ok
}

// CircuitResult returns the cached aggregate for a circuit (by homerun
// wire id).
func (s *Scheduler) CircuitResult(homerunID string) (load.Result, bool) {
	r, ok := s.circuitResults[homerunID]
	return r, ok
}

// PanelResult returns the cached aggregate for a panel or feeder.
func (s *Scheduler) PanelResult(id string) (load.Result, bool) {
	r, ok := s.panelResults[id]
	return r, ok
}

func roundAmps(v float64) float64 {
	return math.Round(v*100) / 100
}
