// Package floorplan builds and queries the obstacle map derived from an
// imported floor plan. Walls become blocked grid cells; everything else is
// free space the router may traverse. The map is immutable once built and
// is rebuilt from scratch whenever the floor plan changes.
package floorplan

import (
	"math"

	"github.com/Syntax-error2/ELECDRAFT/pkg/geometry"
)

// DefaultCellSize is the grid pitch in scene units. Matches the drawing
// canvas snap grid.
const DefaultCellSize = 20.0

// ObstacleMap is a uniform grid over the floor plan's bounding area.
// A cell is blocked when a wall intersects it. Queries outside the grid
// report free space, so components placed off the plan can still be wired.
type ObstacleMap struct {
	origin   geometry.Point2D
	cellSize float64
	cols     int
	rows     int
	blocked  []bool
}

// NewEmpty creates an obstacle map with no blocked cells covering bounds.
// Used when the floor plan has no detected walls; routing degenerates to
// straight orthogonal runs.
func NewEmpty(bounds geometry.Rect, cellSize float64) *ObstacleMap {
	return newGrid(bounds, cellSize)
}

func newGrid(bounds geometry.Rect, cellSize float64) *ObstacleMap {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	cols := int(math.Ceil(bounds.Width/cellSize)) + 1
	rows := int(math.Ceil(bounds.Height/cellSize)) + 1
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &ObstacleMap{
		origin:   geometry.Point2D{X: bounds.X, Y: bounds.Y},
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		blocked:  make([]bool, cols*rows),
	}
}

// BuildFromWalls rasterizes vector wall polylines onto the grid.
// Degenerate segments (zero length, NaN/Inf coordinates) are skipped and
// out-of-bounds portions are clipped rather than rejected, so a malformed
// import still yields a usable map.
func BuildFromWalls(walls [][]geometry.Point2D, bounds geometry.Rect, cellSize float64) *ObstacleMap {
	m := newGrid(bounds, cellSize)
	for _, wall := range walls {
		for i := 1; i < len(wall); i++ {
			a, b := wall[i-1], wall[i]
			if !finite(a) || !finite(b) {
				continue
			}
			if a == b {
				continue
			}
			m.rasterizeSegment(a, b)
		}
	}
	return m
}

func finite(p geometry.Point2D) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// rasterizeSegment marks every cell the segment a-b passes through using
// Bresenham's line algorithm over cell coordinates.
func (m *ObstacleMap) rasterizeSegment(a, b geometry.Point2D) {
	ca := m.CellAt(a)
	cb := m.CellAt(b)

	dx := abs(cb.X - ca.X)
	dy := -abs(cb.Y - ca.Y)
	sx := 1
	if ca.X > cb.X {
		sx = -1
	}
	sy := 1
	if ca.Y > cb.Y {
		sy = -1
	}
	err := dx + dy

	x, y := ca.X, ca.Y
	for {
		m.setBlocked(x, y)
		if x == cb.X && y == cb.Y {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (m *ObstacleMap) setBlocked(x, y int) {
	if x < 0 || x >= m.cols || y < 0 || y >= m.rows {
		return
	}
	m.blocked[y*m.cols+x] = true
}

// CellAt returns the grid cell containing the scene point p.
// The cell may be outside the grid for points off the plan.
func (m *ObstacleMap) CellAt(p geometry.Point2D) geometry.PointInt {
	return geometry.PointInt{
		X: int(math.Round((p.X - m.origin.X) / m.cellSize)),
		Y: int(math.Round((p.Y - m.origin.Y) / m.cellSize)),
	}
}

// CellCenter returns the scene coordinates of a cell's center.
func (m *ObstacleMap) CellCenter(c geometry.PointInt) geometry.Point2D {
	return geometry.Point2D{
		X: m.origin.X + float64(c.X)*m.cellSize,
		Y: m.origin.Y + float64(c.Y)*m.cellSize,
	}
}

// CellBlocked reports whether a grid cell is impassable.
// Cells outside the grid are free space.
func (m *ObstacleMap) CellBlocked(c geometry.PointInt) bool {
	if c.X < 0 || c.X >= m.cols || c.Y < 0 || c.Y >= m.rows {
		return false
	}
	return m.blocked[c.Y*m.cols+c.X]
}

// IsBlocked reports whether the scene point p lies in an impassable cell.
func (m *ObstacleMap) IsBlocked(p geometry.Point2D) bool {
	return m.CellBlocked(m.CellAt(p))
}

// SegmentBlocked reports whether the straight segment a-b crosses any
// blocked cell, sampled at half-cell resolution.
func (m *ObstacleMap) SegmentBlocked(a, b geometry.Point2D) bool {
	dist := a.Distance(b)
	if dist == 0 {
		return m.IsBlocked(a)
	}
	step := m.cellSize / 2
	steps := int(math.Ceil(dist / step))
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p := geometry.Point2D{
			X: a.X + (b.X-a.X)*t,
			Y: a.Y + (b.Y-a.Y)*t,
		}
		if m.IsBlocked(p) {
			return true
		}
	}
	return false
}

// NearestFreeCell scans outward from the cell containing p in rings of
// increasing radius and returns the closest unblocked cell, up to
// maxRadius cells away.
func (m *ObstacleMap) NearestFreeCell(p geometry.Point2D, maxRadius int) (geometry.PointInt, bool) {
	center := m.CellAt(p)
	if !m.CellBlocked(center) {
		return center, true
	}

	bestDist := math.Inf(1)
	var best geometry.PointInt
	found := false

	for r := 1; r <= maxRadius; r++ {
		for dx := -r; dx <= r; dx++ {
			for _, dy := range []int{-r, r} {
				m.considerFree(center.X+dx, center.Y+dy, center, &bestDist, &best, &found)
			}
		}
		for dy := -r + 1; dy <= r-1; dy++ {
			for _, dx := range []int{-r, r} {
				m.considerFree(center.X+dx, center.Y+dy, center, &bestDist, &best, &found)
			}
		}
		if found {
			return best, true
		}
	}
	return geometry.PointInt{}, false
}

func (m *ObstacleMap) considerFree(x, y int, center geometry.PointInt, bestDist *float64, best *geometry.PointInt, found *bool) {
	c := geometry.PointInt{X: x, Y: y}
	if m.CellBlocked(c) {
		return
	}
	dx := float64(x - center.X)
	dy := float64(y - center.Y)
	d := math.Sqrt(dx*dx + dy*dy)
	if d < *bestDist {
		*bestDist = d
		*best = c
		*found = true
	}
}

// CellSize returns the grid pitch in scene units.
func (m *ObstacleMap) CellSize() float64 { return m.cellSize }

// Cols returns the number of grid columns.
func (m *ObstacleMap) Cols() int { return m.cols }

// Rows returns the number of grid rows.
func (m *ObstacleMap) Rows() int { return m.rows }

// Origin returns the scene coordinates of cell (0, 0).
func (m *ObstacleMap) Origin() geometry.Point2D { return m.origin }

// BlockedCount returns how many cells are impassable.
func (m *ObstacleMap) BlockedCount() int {
	n := 0
	for _, b := range m.blocked {
		if b {
			n++
		}
	}
	return n
}
