// Package engine is the single edit-processing path of the core. Each
// edit runs to completion (topology mutation, re-route, staleness
// propagation, recompute) before the next edit is accepted, so the load
// schedule and SLD view always observe a fully consistent state.
// Structural failures reject the edit with the graph unchanged; code
// violations annotate results and never block.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Syntax-error2/ELECDRAFT/internal/floorplan"
	"github.com/Syntax-error2/ELECDRAFT/internal/load"
	"github.com/Syntax-error2/ELECDRAFT/internal/metrics"
	"github.com/Syntax-error2/ELECDRAFT/internal/project"
	"github.com/Syntax-error2/ELECDRAFT/internal/route"
	"github.com/Syntax-error2/ELECDRAFT/internal/schedule"
	"github.com/Syntax-error2/ELECDRAFT/internal/sld"
	"github.com/Syntax-error2/ELECDRAFT/internal/topology"
	"github.com/Syntax-error2/ELECDRAFT/pkg/geometry"
)

// Options tunes the engine. Zero values fall back to defaults.
type Options struct {
	Router        route.Options
	RouteWorkers  int
	UnitsPerMeter float64
}

// Engine owns the topology graph, the scheduler, and the current
// obstacle map for one open project.
type Engine struct {
	mu sync.Mutex

	graph     *topology.Graph
	sched     *schedule.Scheduler
	obstacles *floorplan.ObstacleMap // nil until a floor plan is imported
	rooms     []project.Room

	routerOpts   route.Options
	routeWorkers int
}

// New creates an engine over an empty design.
func New(table *load.Table, opts Options) *Engine {
	g := topology.NewGraph()
	return newEngine(g, table, opts)
}

func newEngine(g *topology.Graph, table *load.Table, opts Options) *Engine {
	if opts.Router.MaxExplored <= 0 {
		opts.Router = route.DefaultOptions()
	}
	if opts.RouteWorkers < 1 {
		opts.RouteWorkers = 4
	}
	s := schedule.New(g, table)
	if opts.UnitsPerMeter > 0 {
		s.UnitsPerMeter = opts.UnitsPerMeter
	}
	e := &Engine{
		graph:        g,
		sched:        s,
		routerOpts:   opts.Router,
		routeWorkers: opts.RouteWorkers,
	}
	e.sched.Recompute()
	return e
}

// FromProject rehydrates an engine from persisted state and runs one
// full recompute, reproducing the saved design's load results.
func FromProject(p *project.File, table *load.Table, m *floorplan.ObstacleMap, opts Options) *Engine {
	if opts.UnitsPerMeter <= 0 {
		opts.UnitsPerMeter = p.UnitsPerMeter
	}
	e := newEngine(p.Graph(), table, opts)
	e.obstacles = m
	e.rooms = append([]project.Room(nil), p.Rooms...)
	return e
}

// SetObstacleMap installs a rebuilt obstacle map (floor plan changed),
// re-routes every wire against it, and runs a full propagation pass.
// Wires that can no longer be routed keep their previous path; the
// failures are returned so the UI can flag them.
func (e *Engine) SetObstacleMap(m *floorplan.ObstacleMap) []error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.obstacles = m
	metrics.ObstacleMapRebuilds.Inc()

	wires := e.graph.Wires()
	reqs := make([]route.Request, 0, len(wires))
	for _, w := range wires {
		src := e.graph.Component(w.SourceID)
		dst := e.graph.Component(w.DestID)
		if src == nil || dst == nil {
			continue
		}
		reqs = append(reqs, route.Request{WireID: w.ID, A: src.Position, B: dst.Position})
	}

	var failures []error
	for _, res := range route.RouteAll(context.Background(), reqs, m, e.routerOpts, e.routeWorkers) {
		if res.Err != nil {
			failures = append(failures, res.Err)
			countRouteFailure(res.Err)
			continue
		}
		metrics.RoutesComputed.Inc()
		e.graph.Wire(res.WireID).SetWaypoints(res.Path.Points)
	}

	e.sched.MarkAll()
	e.recompute()
	return failures
}

// AddComponent places a component and recomputes its (standalone) load.
func (e *Engine) AddComponent(c *topology.Component) *topology.Component {
	e.mu.Lock()
	defer e.mu.Unlock()

	added := e.graph.AddComponent(c)
	metrics.EditsApplied.WithLabelValues("add_component").Inc()
	e.sched.MarkComponent(added.ID)
	e.recompute()
	return added
}

// RemoveComponent deletes a component and its incident wires.
func (e *Engine) RemoveComponent(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Mark the affected chains and circuit members before the graph
	// forgets them; after removal the wires resolve to nothing and only
	// their caches can be swept.
	e.sched.MarkComponent(id)
	for _, w := range e.graph.WiresOf(id) {
		e.sched.MarkWire(w.ID)
	}
	removedWires, err := e.graph.RemoveComponent(id)
	if err != nil {
		metrics.EditsRejected.WithLabelValues("not_found").Inc()
		return err
	}
	for _, wid := range removedWires {
		e.sched.MarkWire(wid)
	}
	e.sched.MarkComponent(id)
	metrics.EditsApplied.WithLabelValues("remove_component").Inc()
	e.recompute()
	return nil
}

// Connect wires source to destination, routes the wire around the
// obstacle map, and propagates. Structural failures (invalid connection,
// cycle, unroutable) reject the edit atomically.
func (e *Engine) Connect(sourceID, destID string) (*topology.Wire, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	w, err := e.graph.Connect(sourceID, destID)
	if err != nil {
		switch {
		case errors.Is(err, topology.ErrCycleDetected):
			metrics.EditsRejected.WithLabelValues("cycle").Inc()
		case errors.Is(err, topology.ErrInvalidConnection):
			metrics.EditsRejected.WithLabelValues("invalid_connection").Inc()
		default:
			metrics.EditsRejected.WithLabelValues("not_found").Inc()
		}
		return nil, err
	}

	src := e.graph.Component(sourceID)
	dst := e.graph.Component(destID)
	p, err := e.routeTimed(src.Position, dst.Position)
	if err != nil {
		// Never draw through a wall: undo the connect.
		_ = e.graph.Disconnect(w.ID)
		countRouteFailure(err)
		return nil, err
	}
	w.SetWaypoints(p.Points)

	metrics.EditsApplied.WithLabelValues("connect").Inc()
	e.sched.MarkWire(w.ID)
	e.recompute()
	return w, nil
}

// Disconnect removes a wire and propagates.
func (e *Engine) Disconnect(wireID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sched.MarkWire(wireID)
	if err := e.graph.Disconnect(wireID); err != nil {
		metrics.EditsRejected.WithLabelValues("not_found").Inc()
		return err
	}
	e.sched.MarkWire(wireID)
	metrics.EditsApplied.WithLabelValues("disconnect").Inc()
	e.recompute()
	return nil
}

// MoveComponent repositions a component and re-routes its incident wires
// concurrently. If any wire becomes unroutable the move is rolled back.
func (e *Engine) MoveComponent(id string, pos geometry.Point2D) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.graph.Component(id)
	if c == nil {
		metrics.EditsRejected.WithLabelValues("not_found").Inc()
		return topology.ErrNotFound
	}

	oldPos := c.Position
	c.Position = pos

	wires := e.graph.WiresOf(id)
	reqs := make([]route.Request, 0, len(wires))
	for _, w := range wires {
		src := e.graph.Component(w.SourceID)
		dst := e.graph.Component(w.DestID)
		reqs = append(reqs, route.Request{WireID: w.ID, A: src.Position, B: dst.Position})
	}

	results := route.RouteAll(context.Background(), reqs, e.obstacles, e.routerOpts, e.routeWorkers)
	for _, res := range results {
		if res.Err != nil {
			c.Position = oldPos
			countRouteFailure(res.Err)
			return res.Err
		}
	}
	for _, res := range results {
		metrics.RoutesComputed.Inc()
		e.graph.Wire(res.WireID).SetWaypoints(res.Path.Points)
		e.sched.MarkWire(res.WireID)
	}

	metrics.EditsApplied.WithLabelValues("move_component").Inc()
	e.sched.MarkComponent(id)
	e.recompute()
	return nil
}

// SetRating updates a component's rated VA and propagates.
func (e *Engine) SetRating(id string, va float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.graph.Component(id)
	if c == nil {
		metrics.EditsRejected.WithLabelValues("not_found").Inc()
		return topology.ErrNotFound
	}
	c.VA = va
	metrics.EditsApplied.WithLabelValues("set_rating").Inc()
	e.sched.MarkComponent(id)
	e.recompute()
	return nil
}

func (e *Engine) routeTimed(a, b geometry.Point2D) (route.Path, error) {
	start := time.Now()
	p, err := route.Route(a, b, e.obstacles, e.routerOpts)
	metrics.RouteDuration.Observe(float64(time.Since(start).Milliseconds()))
	if err == nil {
		metrics.RoutesComputed.Inc()
	}
	return p, err
}

func (e *Engine) recompute() {
	st := e.sched.Recompute()
	metrics.PropagationPasses.Inc()
	metrics.NodesRecomputed.Add(float64(st.Components + st.Circuits + st.Panels))
}

func countRouteFailure(err error) {
	var rf *route.Failure
	if errors.As(err, &rf) {
		metrics.RouteFailures.WithLabelValues(rf.Reason.String()).Inc()
	} else {
		metrics.RouteFailures.WithLabelValues("other").Inc()
	}
}

// Schedule returns the current load schedule rows.
func (e *Engine) Schedule() []schedule.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sched.Rows()
}

// Snapshot returns a read-only copy of the topology for consumers such
// as the SLD generator.
func (e *Engine) Snapshot() *topology.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.Snapshot()
}

// Diagram derives the single-line diagram with breaker ratings from the
// cached load results.
func (e *Engine) Diagram() *sld.Diagram {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.graph.Snapshot()
	return sld.Derive(snap, func(id string) (load.Result, bool) {
		if r, ok := e.sched.PanelResult(id); ok {
			return r, true
		}
		if r, ok := e.sched.CircuitResult(id); ok {
			return r, true
		}
		return e.sched.ComponentResult(id)
	})
}

// Graph exposes the underlying topology for read paths in tests and the
// CLI. Mutations must go through the engine.
func (e *Engine) Graph() *topology.Graph { return e.graph }

// Scheduler exposes cached results for read paths.
func (e *Engine) Scheduler() *schedule.Scheduler { return e.sched }

// SaveTo fills a project file from the current state.
func (e *Engine) SaveTo(p *project.File) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p.Topology = e.graph.Snapshot()
	p.Rooms = append([]project.Room(nil), e.rooms...)
	p.UnitsPerMeter = e.sched.UnitsPerMeter
}
