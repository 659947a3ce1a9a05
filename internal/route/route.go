// Package route computes obstacle-avoiding wire paths over the floor-plan
// obstacle map. Paths follow orthogonal (conduit-style) runs on the map's
// grid, found with A* search bounded by a configurable exploration budget.
// Routing is a pure function of its inputs: the same endpoints over the
// same map always yield the same path.
package route

import (
	"container/heap"
	"fmt"

	"github.com/Syntax-error2/ELECDRAFT/internal/floorplan"
	"github.com/Syntax-error2/ELECDRAFT/pkg/geometry"
)

// FailureReason classifies why a route could not be computed.
type FailureReason int

const (
	// Unreachable means no free-space path connects the endpoints.
	Unreachable FailureReason = iota
	// ExplorationBoundExceeded means the search gave up after expanding
	// the configured maximum number of cells.
	ExplorationBoundExceeded
)

func (r FailureReason) String() string {
	switch r {
	case Unreachable:
		return "unreachable"
	case ExplorationBoundExceeded:
		return "exploration bound exceeded"
	default:
		return "unknown"
	}
}

// Failure is returned when no path can be produced. The attempted edit is
// rejected by the caller; a wire is never drawn through a wall.
type Failure struct {
	Reason FailureReason
	Start  geometry.Point2D
	End    geometry.Point2D
}

func (f *Failure) Error() string {
	return fmt.Sprintf("route (%.0f,%.0f)->(%.0f,%.0f): %s",
		f.Start.X, f.Start.Y, f.End.X, f.End.Y, f.Reason)
}

// Options tunes the router.
type Options struct {
	// MaxExplored bounds the number of cells the search may expand
	// before giving up with ExplorationBoundExceeded.
	MaxExplored int

	// SnapRadius is how far (in cells) an endpoint may be nudged to the
	// nearest free cell when it falls inside a wall.
	SnapRadius int

	// SimplifyEpsilon is the Douglas-Peucker tolerance applied after
	// collinear merging. Zero skips the pass.
	SimplifyEpsilon float64
}

// DefaultOptions returns the router defaults used by the edit engine.
func DefaultOptions() Options {
	return Options{
		MaxExplored:     250000,
		SnapRadius:      10,
		SimplifyEpsilon: 0.01,
	}
}

// Path is an ordered waypoint sequence from source to destination.
// The first and last points coincide with the component positions.
type Path struct {
	Points []geometry.Point2D `json:"points"`
}

// Length returns the total path length in scene units.
func (p Path) Length() float64 {
	return geometry.PolylineLength(p.Points)
}

// Route computes an orthogonal path from a to b avoiding blocked cells.
// With a nil or obstacle-free map the path degenerates to a single
// orthogonal bend. Returns *Failure when the endpoints cannot be joined.
func Route(a, b geometry.Point2D, m *floorplan.ObstacleMap, opts Options) (Path, error) {
	if opts.MaxExplored <= 0 {
		opts = DefaultOptions()
	}

	if m == nil || m.BlockedCount() == 0 {
		return bendPath(a, b), nil
	}

	startCell, ok := m.NearestFreeCell(a, opts.SnapRadius)
	if !ok {
		return Path{}, &Failure{Reason: Unreachable, Start: a, End: b}
	}
	endCell, ok := m.NearestFreeCell(b, opts.SnapRadius)
	if !ok {
		return Path{}, &Failure{Reason: Unreachable, Start: a, End: b}
	}

	cells, reason := search(m, startCell, endCell, opts.MaxExplored)
	if reason != nil {
		return Path{}, &Failure{Reason: *reason, Start: a, End: b}
	}

	points := make([]geometry.Point2D, 0, len(cells)+2)
	points = append(points, a)
	for _, c := range cells {
		points = append(points, m.CellCenter(c))
	}
	points = append(points, b)

	points = geometry.MergeCollinear(points, 1e-6)
	if opts.SimplifyEpsilon > 0 {
		points = geometry.SimplifyPolyline(points, opts.SimplifyEpsilon)
	}
	return Path{Points: points}, nil
}

// bendPath joins a and b with one orthogonal bend (or a straight segment
// when the points are axis-aligned).
func bendPath(a, b geometry.Point2D) Path {
	if a.X == b.X || a.Y == b.Y {
		return Path{Points: []geometry.Point2D{a, b}}
	}
	return Path{Points: []geometry.Point2D{a, {X: b.X, Y: a.Y}, b}}
}

// node is an A* search state: a grid cell plus the direction it was
// entered from. Tracking direction makes the fewer-turns tie-break exact.
type node struct {
	x, y int
	dir  int8 // 0..3 = entry direction, -1 = start
}

// turnPenalty is small enough that length always dominates; among
// equal-length paths the one with fewer turns wins.
const turnPenalty = 1e-3

var (
	dxs = [4]int{1, -1, 0, 0}
	dys = [4]int{0, 0, 1, -1}
)

// search runs 4-connected A* from start to end over the obstacle grid.
// Returns the cell path (start..end inclusive), or a failure reason.
func search(m *floorplan.ObstacleMap, start, end geometry.PointInt, maxExplored int) ([]geometry.PointInt, *FailureReason) {
	cellSize := m.CellSize()
	h := func(x, y int) float64 {
		return cellSize * (float64(abs(x-end.X)) + float64(abs(y-end.Y)))
	}

	startNode := node{x: start.X, y: start.Y, dir: -1}
	if start == end {
		return []geometry.PointInt{start}, nil
	}

	// Search domain: the grid plus one surrounding ring, expanded to
	// cover endpoints placed off the plan. Without a bound the search
	// over free off-grid space would never exhaust.
	minX := min3(-1, start.X-1, end.X-1)
	maxX := max3(m.Cols(), start.X+1, end.X+1)
	minY := min3(-1, start.Y-1, end.Y-1)
	maxY := max3(m.Rows(), start.Y+1, end.Y+1)

	gScore := map[node]float64{startNode: 0}
	cameFrom := make(map[node]node)
	visited := make(map[node]bool)

	pq := &searchQueue{}
	heap.Init(pq)
	heap.Push(pq, &searchItem{node: startNode, f: h(start.X, start.Y)})

	explored := 0
	for pq.Len() > 0 {
		item := heap.Pop(pq).(*searchItem)
		cur := item.node

		if cur.x == end.X && cur.y == end.Y {
			return reconstruct(cameFrom, cur), nil
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true

		explored++
		if explored > maxExplored {
			reason := ExplorationBoundExceeded
			return nil, &reason
		}

		curG := gScore[cur]
		for d := 0; d < 4; d++ {
			nx, ny := cur.x+dxs[d], cur.y+dys[d]
			if m.CellBlocked(geometry.PointInt{X: nx, Y: ny}) {
				continue
			}
			if nx < minX || nx > maxX || ny < minY || ny > maxY {
				continue
			}

			next := node{x: nx, y: ny, dir: int8(d)}
			if visited[next] {
				continue
			}

			step := cellSize
			if cur.dir >= 0 && cur.dir != next.dir {
				step += turnPenalty * cellSize
			}
			tentative := curG + step
			prev, seen := gScore[next]
			if !seen || tentative < prev {
				gScore[next] = tentative
				cameFrom[next] = cur
				heap.Push(pq, &searchItem{node: next, f: tentative + h(nx, ny)})
			}
		}
	}

	reason := Unreachable
	return nil, &reason
}

func reconstruct(cameFrom map[node]node, endNode node) []geometry.PointInt {
	var cells []geometry.PointInt
	n := endNode
	for {
		cells = append(cells, geometry.PointInt{X: n.x, Y: n.y})
		prev, ok := cameFrom[n]
		if !ok {
			break
		}
		n = prev
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func max3(a, b, c int) int {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}

// searchItem is a node in the A* priority queue.
type searchItem struct {
	node  node
	f     float64
	index int
}

// searchQueue implements heap.Interface for A* search.
type searchQueue []*searchItem

func (pq searchQueue) Len() int           { return len(pq) }
func (pq searchQueue) Less(i, j int) bool { return pq[i].f < pq[j].f }
func (pq searchQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *searchQueue) Push(x interface{}) {
	n := len(*pq)
	item := x.(*searchItem)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *searchQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}
