package route

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Syntax-error2/ELECDRAFT/pkg/geometry"
)

func TestRouteAllKeepsRequestOrder(t *testing.T) {
	m := wallMap([]geometry.Point2D{{X: 100, Y: 0}, {X: 100, Y: 200}})

	var reqs []Request
	for i := 0; i < 20; i++ {
		reqs = append(reqs, Request{
			WireID: fmt.Sprintf("w%d", i),
			A:      geometry.Point2D{X: 20, Y: float64(i * 10)},
			B:      geometry.Point2D{X: 180, Y: float64(i * 10)},
		})
	}

	results := RouteAll(context.Background(), reqs, m, DefaultOptions(), 4)
	require.Len(t, results, len(reqs))
	for i, res := range results {
		require.Equal(t, reqs[i].WireID, res.WireID)
		require.NoError(t, res.Err)
		requireClear(t, res.Path, m)
	}
}

func TestRouteAllMatchesSequential(t *testing.T) {
	m := wallMap([]geometry.Point2D{{X: 100, Y: 0}, {X: 100, Y: 200}})
	reqs := []Request{
		{WireID: "a", A: geometry.Point2D{X: 20, Y: 40}, B: geometry.Point2D{X: 180, Y: 40}},
		{WireID: "b", A: geometry.Point2D{X: 20, Y: 160}, B: geometry.Point2D{X: 180, Y: 160}},
	}

	concurrent := RouteAll(context.Background(), reqs, m, DefaultOptions(), 2)
	for i, req := range reqs {
		p, err := Route(req.A, req.B, m, DefaultOptions())
		require.NoError(t, err)
		require.NoError(t, concurrent[i].Err)
		require.Equal(t, p, concurrent[i].Path)
	}
}

func TestRouteAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := wallMap([]geometry.Point2D{{X: 100, Y: 0}, {X: 100, Y: 200}})
	reqs := []Request{{WireID: "a", A: geometry.Point2D{X: 20, Y: 40}, B: geometry.Point2D{X: 180, Y: 40}}}

	results := RouteAll(ctx, reqs, m, DefaultOptions(), 2)
	require.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestRouteAllEmpty(t *testing.T) {
	require.Empty(t, RouteAll(context.Background(), nil, nil, DefaultOptions(), 4))
}
