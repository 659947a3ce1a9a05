package route

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Syntax-error2/ELECDRAFT/internal/floorplan"
	"github.com/Syntax-error2/ELECDRAFT/pkg/geometry"
)

var bounds = geometry.Rect{X: 0, Y: 0, Width: 200, Height: 200}

func wallMap(walls ...[]geometry.Point2D) *floorplan.ObstacleMap {
	return floorplan.BuildFromWalls(walls, bounds, floorplan.DefaultCellSize)
}

// box returns the four walls of an axis-aligned rectangle.
func box(x0, y0, x1, y1 float64) [][]geometry.Point2D {
	return [][]geometry.Point2D{
		{{X: x0, Y: y0}, {X: x1, Y: y0}},
		{{X: x1, Y: y0}, {X: x1, Y: y1}},
		{{X: x1, Y: y1}, {X: x0, Y: y1}},
		{{X: x0, Y: y1}, {X: x0, Y: y0}},
	}
}

func requireClear(t *testing.T, p Path, m *floorplan.ObstacleMap) {
	t.Helper()
	for i := 1; i < len(p.Points); i++ {
		require.False(t, m.SegmentBlocked(p.Points[i-1], p.Points[i]),
			"segment %d crosses a wall", i)
	}
}

func TestRouteNoFloorPlan(t *testing.T) {
	a := geometry.Point2D{X: 0, Y: 0}
	b := geometry.Point2D{X: 60, Y: 80}

	p, err := Route(a, b, nil, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, []geometry.Point2D{a, {X: 60, Y: 0}, b}, p.Points)
	require.InDelta(t, a.Manhattan(b), p.Length(), 1e-9)
}

func TestRouteNoFloorPlanAligned(t *testing.T) {
	a := geometry.Point2D{X: 0, Y: 40}
	b := geometry.Point2D{X: 100, Y: 40}

	p, err := Route(a, b, nil, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, []geometry.Point2D{a, b}, p.Points)
}

func TestRouteEmptyMap(t *testing.T) {
	m := floorplan.NewEmpty(bounds, floorplan.DefaultCellSize)
	p, err := Route(geometry.Point2D{X: 20, Y: 20}, geometry.Point2D{X: 180, Y: 100}, m, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, p.Points, 3)
}

func TestRouteAvoidsWall(t *testing.T) {
	m := wallMap([]geometry.Point2D{{X: 100, Y: 0}, {X: 100, Y: 200}})
	a := geometry.Point2D{X: 20, Y: 100}
	b := geometry.Point2D{X: 180, Y: 100}

	p, err := Route(a, b, m, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, a, p.Points[0])
	require.Equal(t, b, p.Points[len(p.Points)-1])
	requireClear(t, p, m)
	// The wall spans the full plan, so the path detours around an end.
	require.Greater(t, p.Length(), a.Manhattan(b))
}

func TestRouteMinimalTurns(t *testing.T) {
	// A wall far from the route forces the grid search (rather than the
	// obstacle-free shortcut) without influencing the result.
	m := wallMap([]geometry.Point2D{{X: 0, Y: 200}, {X: 40, Y: 200}})
	a := geometry.Point2D{X: 20, Y: 20}
	b := geometry.Point2D{X: 180, Y: 100}

	p, err := Route(a, b, m, DefaultOptions())
	require.NoError(t, err)
	require.InDelta(t, a.Manhattan(b), p.Length(), 1e-9)
	require.Len(t, p.Points, 3)
}

func TestRouteDeterministic(t *testing.T) {
	m := wallMap([]geometry.Point2D{{X: 100, Y: 0}, {X: 100, Y: 200}})
	a := geometry.Point2D{X: 20, Y: 100}
	b := geometry.Point2D{X: 180, Y: 100}

	p1, err := Route(a, b, m, DefaultOptions())
	require.NoError(t, err)
	p2, err := Route(a, b, m, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, p1, p2)
}

func TestRouteUnreachable(t *testing.T) {
	m := wallMap(box(80, 80, 120, 120)...)
	a := geometry.Point2D{X: 100, Y: 20}
	b := geometry.Point2D{X: 100, Y: 100} // inside the box

	_, err := Route(a, b, m, DefaultOptions())
	require.Error(t, err)
	var f *Failure
	require.True(t, errors.As(err, &f))
	require.Equal(t, Unreachable, f.Reason)
}

func TestRouteThroughGap(t *testing.T) {
	// Same box, but the top wall leaves an opening.
	walls := [][]geometry.Point2D{
		{{X: 80, Y: 80}, {X: 84, Y: 80}},
		{{X: 116, Y: 80}, {X: 120, Y: 80}},
		{{X: 120, Y: 80}, {X: 120, Y: 120}},
		{{X: 120, Y: 120}, {X: 80, Y: 120}},
		{{X: 80, Y: 120}, {X: 80, Y: 80}},
	}
	m := wallMap(walls...)
	a := geometry.Point2D{X: 100, Y: 20}
	b := geometry.Point2D{X: 100, Y: 100}

	p, err := Route(a, b, m, DefaultOptions())
	require.NoError(t, err)
	requireClear(t, p, m)
}

func TestRouteExplorationBound(t *testing.T) {
	m := wallMap([]geometry.Point2D{{X: 100, Y: 0}, {X: 100, Y: 200}})
	opts := DefaultOptions()
	opts.MaxExplored = 2

	_, err := Route(geometry.Point2D{X: 20, Y: 100}, geometry.Point2D{X: 180, Y: 100}, m, opts)
	var f *Failure
	require.True(t, errors.As(err, &f))
	require.Equal(t, ExplorationBoundExceeded, f.Reason)
}

func TestRouteSnapsEndpointOffWall(t *testing.T) {
	m := wallMap([]geometry.Point2D{{X: 100, Y: 0}, {X: 100, Y: 200}})
	a := geometry.Point2D{X: 100, Y: 100} // on the wall
	b := geometry.Point2D{X: 20, Y: 100}

	p, err := Route(a, b, m, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, a, p.Points[0])
	require.Equal(t, b, p.Points[len(p.Points)-1])
}

func TestFailureError(t *testing.T) {
	f := &Failure{Reason: Unreachable, Start: geometry.Point2D{X: 1, Y: 2}, End: geometry.Point2D{X: 3, Y: 4}}
	require.Contains(t, f.Error(), "unreachable")
}
