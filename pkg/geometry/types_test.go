package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 100, 50)
	require.True(t, r.Contains(Point2D{X: 10, Y: 10})) // edges inclusive
	require.True(t, r.Contains(Point2D{X: 110, Y: 60}))
	require.True(t, r.Contains(r.Center()))
	require.False(t, r.Contains(Point2D{X: 9, Y: 30}))
	require.False(t, r.Contains(Point2D{X: 50, Y: 61}))
}

func TestRectIntersects(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	require.True(t, a.Intersects(NewRect(5, 5, 10, 10)))
	require.False(t, a.Intersects(NewRect(20, 20, 5, 5)))
	// Touching edges do not intersect.
	require.False(t, a.Intersects(NewRect(10, 0, 5, 5)))
}

func TestRectUnion(t *testing.T) {
	u := NewRect(0, 0, 10, 10).Union(NewRect(5, 5, 20, 2))
	require.Equal(t, NewRect(0, 0, 25, 10), u)
}

func TestBoundingBox(t *testing.T) {
	box := BoundingBox([]Point2D{{3, 4}, {-1, 8}, {5, 2}})
	require.Equal(t, Rect{X: -1, Y: 2, Width: 6, Height: 6}, box)
	require.Equal(t, Rect{}, BoundingBox(nil))
}

func TestPointArithmetic(t *testing.T) {
	p := NewPoint2D(3, 4)
	require.Equal(t, Point2D{5, 6}, p.Add(Point2D{2, 2}))
	require.Equal(t, Point2D{1, 2}, p.Sub(Point2D{2, 2}))
	require.Equal(t, Point2D{6, 8}, p.Scale(2))
	require.InDelta(t, 5.0, Point2D{}.Distance(p), 1e-9)
	require.Equal(t, Point2D{2, 3}, PointInt{X: 2, Y: 3}.ToFloat())
}
