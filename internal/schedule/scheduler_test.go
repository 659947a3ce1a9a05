package schedule

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Syntax-error2/ELECDRAFT/internal/load"
	"github.com/Syntax-error2/ELECDRAFT/internal/topology"
	"github.com/Syntax-error2/ELECDRAFT/pkg/geometry"
)

func pt(x, y float64) geometry.Point2D { return geometry.Point2D{X: x, Y: y} }

type plan struct {
	g                *topology.Graph
	f, p, l1, r1, l2 *topology.Component
	homerun1         *topology.Wire
}

// newPlan wires feeder -> panel with two circuits:
// circuit 1 is L1 (100VA continuous) with R1 (180VA) branched off it,
// circuit 2 is L2 (100VA continuous) alone.
func newPlan(t *testing.T) *plan {
	t.Helper()
	g := topology.NewGraph()

	f := topology.NewComponent("Utility Feeder", topology.CategoryFeeder, pt(0, 0))
	f.Phase = 3
	g.AddComponent(f)

	p := topology.NewComponent("Panel LP-1", topology.CategoryPanel, pt(200, 0))
	p.BusRating = 100
	g.AddComponent(p)

	l1 := topology.NewComponent("L1", topology.CategoryLighting, pt(200, 200))
	l1.VA = 100
	l1.Continuous = true
	g.AddComponent(l1)

	r1 := topology.NewComponent("R1", topology.CategoryReceptacle, pt(300, 200))
	r1.VA = 180
	g.AddComponent(r1)

	l2 := topology.NewComponent("L2", topology.CategoryLighting, pt(100, 200))
	l2.VA = 100
	l2.Continuous = true
	g.AddComponent(l2)

	_, err := g.Connect(f.ID, p.ID)
	require.NoError(t, err)
	hr1, err := g.Connect(l1.ID, p.ID)
	require.NoError(t, err)
	_, err = g.Connect(l1.ID, r1.ID)
	require.NoError(t, err)
	_, err = g.Connect(l2.ID, p.ID)
	require.NoError(t, err)

	return &plan{g: g, f: f, p: p, l1: l1, r1: r1, homerun1: hr1, l2: l2}
}

// requireSameResults compares every cached result of two schedulers over
// the same graph.
func requireSameResults(t *testing.T, want, got *Scheduler, pl *plan) {
	t.Helper()
	for _, c := range pl.g.Components() {
		if c.IsSource() {
			wr, wok := want.PanelResult(c.ID)
			gr, gok := got.PanelResult(c.ID)
			require.Equal(t, wok, gok, "panel %s", c.Name)
			require.Equal(t, wr, gr, "panel %s", c.Name)
			continue
		}
		wr, wok := want.ComponentResult(c.ID)
		gr, gok := got.ComponentResult(c.ID)
		require.Equal(t, wok, gok, "component %s", c.Name)
		require.Equal(t, wr, gr, "component %s", c.Name)
	}
	for _, w := range pl.g.Wires() {
		if !w.Homerun {
			continue
		}
		wr, wok := want.CircuitResult(w.ID)
		gr, gok := got.CircuitResult(w.ID)
		require.Equal(t, wok, gok)
		require.Equal(t, wr, gr)
	}
}

func TestRecomputeFull(t *testing.T) {
	pl := newPlan(t)
	s := New(pl.g, load.DefaultTable())

	st := s.Recompute()
	require.Equal(t, Stats{Components: 3, Circuits: 2, Panels: 2}, st)

	// Circuit 1 aggregates L1 + R1 and carries the continuous flag.
	cr, ok := s.CircuitResult(pl.homerun1.ID)
	require.True(t, ok)
	require.Equal(t, 280.0, cr.VA)
	require.InDelta(t, 280*1.25/230, cr.Amps, 0.01)

	// L1's run is the 200-unit homerun: 10 metres.
	lr, ok := s.ComponentResult(pl.l1.ID)
	require.True(t, ok)
	require.InDelta(t, 100*1.25/230, lr.Amps, 0.01)
	require.False(t, lr.Violated())

	// The panel's amps are the sum of its circuit amps.
	pr, ok := s.PanelResult(pl.p.ID)
	require.True(t, ok)
	var circuitAmps float64
	for _, circ := range pl.g.PanelCircuits(pl.p.ID) {
		r, _ := s.CircuitResult(circ.HomerunID)
		circuitAmps += r.Amps
	}
	require.InDelta(t, circuitAmps, pr.Amps, 0.01)
	require.Equal(t, 380.0, pr.VA)

	// The root feeder aggregates the panel it feeds.
	fr, ok := s.PanelResult(pl.f.ID)
	require.True(t, ok)
	require.Equal(t, pr.VA, fr.VA)
	require.Equal(t, pr.Amps, fr.Amps)
}

func TestRecomputeIdempotent(t *testing.T) {
	pl := newPlan(t)
	s := New(pl.g, load.DefaultTable())
	s.Recompute()

	before, _ := s.PanelResult(pl.p.ID)
	st := s.Recompute()
	require.Equal(t, Stats{}, st)
	after, _ := s.PanelResult(pl.p.ID)
	require.Equal(t, before, after)
}

func TestIncrementalMatchesFull(t *testing.T) {
	pl := newPlan(t)
	s := New(pl.g, load.DefaultTable())
	s.Recompute()

	// Edit 1: rating change.
	pl.r1.VA = 1500
	s.MarkComponent(pl.r1.ID)
	st := s.Recompute()
	require.Positive(t, st.Components)
	// Circuit 2 was untouched and not re-evaluated.
	require.Equal(t, 1, st.Circuits)

	fresh := New(pl.g, load.DefaultTable())
	fresh.Recompute()
	requireSameResults(t, fresh, s, pl)

	// Edit 2: reroute the homerun to a longer run.
	pl.homerun1.SetWaypoints([]geometry.Point2D{pt(200, 200), pt(400, 200), pt(400, 0), pt(200, 0)})
	s.MarkWire(pl.homerun1.ID)
	s.Recompute()

	fresh = New(pl.g, load.DefaultTable())
	fresh.Recompute()
	requireSameResults(t, fresh, s, pl)

	// Edit 3: new component spliced into circuit 2.
	l3 := topology.NewComponent("L3", topology.CategoryLighting, pt(100, 300))
	l3.VA = 100
	pl.g.AddComponent(l3)
	w, err := pl.g.Connect(pl.l2.ID, l3.ID)
	require.NoError(t, err)
	s.MarkComponent(l3.ID)
	s.MarkWire(w.ID)
	s.Recompute()

	fresh = New(pl.g, load.DefaultTable())
	fresh.Recompute()
	requireSameResults(t, fresh, s, pl)
}

func TestRerouteChangesVoltageDrop(t *testing.T) {
	pl := newPlan(t)
	s := New(pl.g, load.DefaultTable())
	s.Recompute()
	before, _ := s.CircuitResult(pl.homerun1.ID)

	pl.homerun1.SetWaypoints([]geometry.Point2D{pt(200, 200), pt(1200, 200), pt(1200, 0), pt(200, 0)})
	s.MarkWire(pl.homerun1.ID)
	s.Recompute()
	after, _ := s.CircuitResult(pl.homerun1.ID)

	require.Greater(t, after.VoltageDrop, before.VoltageDrop)
	require.Equal(t, before.VA, after.VA)

	// Members see the longer run too.
	rr, _ := s.ComponentResult(pl.r1.ID)
	fresh := New(pl.g, load.DefaultTable())
	fresh.Recompute()
	fr, _ := fresh.ComponentResult(pl.r1.ID)
	require.Equal(t, fr, rr)
}

func TestRemoveComponentSweepsCache(t *testing.T) {
	pl := newPlan(t)
	s := New(pl.g, load.DefaultTable())
	s.Recompute()

	// Mark before removing, while the upstream chain is still intact.
	s.MarkComponent(pl.l2.ID)
	removed, err := pl.g.RemoveComponent(pl.l2.ID)
	require.NoError(t, err)
	for _, wid := range removed {
		s.MarkWire(wid)
	}
	s.Recompute()

	_, ok := s.ComponentResult(pl.l2.ID)
	require.False(t, ok)
	for _, wid := range removed {
		_, ok := s.CircuitResult(wid)
		require.False(t, ok)
	}

	fresh := New(pl.g, load.DefaultTable())
	fresh.Recompute()
	requireSameResults(t, fresh, s, pl)
}

func TestRemoveMidCircuitComponent(t *testing.T) {
	pl := newPlan(t)
	s := New(pl.g, load.DefaultTable())
	s.Recompute()

	// Removing L1 orphans R1 and takes the branch wire with it. Mark the
	// incident wires while they still resolve to circuit members; after
	// the removal they can only sweep caches.
	s.MarkComponent(pl.l1.ID)
	for _, w := range pl.g.WiresOf(pl.l1.ID) {
		s.MarkWire(w.ID)
	}
	removed, err := pl.g.RemoveComponent(pl.l1.ID)
	require.NoError(t, err)
	for _, wid := range removed {
		s.MarkWire(wid)
	}
	s.Recompute()

	// R1 has no upstream left, so its run length and drop collapse to zero.
	rr, ok := s.ComponentResult(pl.r1.ID)
	require.True(t, ok)
	require.Zero(t, rr.VoltageDrop)
	require.Zero(t, rr.VoltageDropPct)

	fresh := New(pl.g, load.DefaultTable())
	fresh.Recompute()
	requireSameResults(t, fresh, s, pl)
}

func TestPanelCapacityViolation(t *testing.T) {
	pl := newPlan(t)
	pl.p.BusRating = 1 // absurdly small bus
	s := New(pl.g, load.DefaultTable())
	s.Recompute()

	pr, _ := s.PanelResult(pl.p.ID)
	require.True(t, pr.Violated())
	require.Equal(t, load.OverPanelCapacity, pr.Violations[0].Kind)
}

func TestRunLengthThroughBranches(t *testing.T) {
	pl := newPlan(t)
	s := New(pl.g, load.DefaultTable())
	s.Recompute()

	// R1 runs 100 units to L1 plus the 200-unit homerun: 15 metres at
	// 20 units per metre. Check via voltage drop against a direct
	// evaluation of the same length.
	rr, _ := s.ComponentResult(pl.r1.ID)
	want := load.DefaultTable().Evaluate(load.Input{VA: 180, Voltage: 230, Phase: 1, LengthM: 15})
	require.Equal(t, want, rr)
}

func TestRows(t *testing.T) {
	pl := newPlan(t)

	// An unassigned component on no circuit.
	stray := topology.NewComponent("Spare", topology.CategoryGeneric, pt(500, 500))
	stray.VA = 50
	pl.g.AddComponent(stray)

	s := New(pl.g, load.DefaultTable())
	s.Recompute()

	rows := s.Rows()
	// 2 panels + 2 circuits + 3 members + 1 unassigned.
	require.Len(t, rows, 8)
	require.Equal(t, RowPanel, rows[0].Kind)
	require.Equal(t, "Utility Feeder", rows[0].Name)

	last := rows[len(rows)-1]
	require.True(t, last.Unassigned)
	require.Equal(t, "Spare", last.Name)

	require.Equal(t, 430.0, s.TotalConnectedVA())
	require.Empty(t, s.Violations())
}
