package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPolylineLength(t *testing.T) {
	pts := []Point2D{{0, 0}, {3, 0}, {3, 4}}
	require.InDelta(t, 7.0, PolylineLength(pts), 1e-9)
	require.Zero(t, PolylineLength(nil))
	require.Zero(t, PolylineLength(pts[:1]))
}

func TestMergeCollinear(t *testing.T) {
	pts := []Point2D{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {2, 2}}
	merged := MergeCollinear(pts, 1e-9)
	require.Equal(t, []Point2D{{0, 0}, {2, 0}, {2, 2}}, merged)
}

func TestMergeCollinearKeepsBends(t *testing.T) {
	pts := []Point2D{{0, 0}, {1, 1}, {2, 0}}
	require.Equal(t, pts, MergeCollinear(pts, 1e-9))
}

func TestSimplifyPolyline(t *testing.T) {
	pts := []Point2D{{0, 0}, {1, 0.001}, {2, 0}, {2, 5}}
	simplified := SimplifyPolyline(pts, 0.01)
	require.Equal(t, []Point2D{{0, 0}, {2, 0}, {2, 5}}, simplified)
}

func TestPointToSegmentDistance(t *testing.T) {
	a, b := Point2D{0, 0}, Point2D{10, 0}
	require.InDelta(t, 3.0, PointToSegmentDistance(5, 3, a, b), 1e-9)
	// Beyond the segment end, distance is to the endpoint.
	require.InDelta(t, 5.0, PointToSegmentDistance(13, 4, a, b), 1e-9)
}

func TestManhattan(t *testing.T) {
	require.InDelta(t, 7.0, Point2D{1, 2}.Manhattan(Point2D{4, 6}), 1e-9)
}
