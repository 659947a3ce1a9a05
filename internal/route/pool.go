package route

import (
	"context"
	"sync"

	"github.com/Syntax-error2/ELECDRAFT/internal/floorplan"
	"github.com/Syntax-error2/ELECDRAFT/pkg/geometry"
)

// Request identifies one wire to route.
type Request struct {
	WireID string
	A, B   geometry.Point2D
}

// Result pairs a request with its routed path or failure.
type Result struct {
	WireID string
	Path   Path
	Err    error
}

// RouteAll routes independent wires concurrently over a shared read-only
// obstacle map. Results are returned in request order; the caller merges
// them back into the topology before load calculation reads path lengths.
// A cancelled context leaves unprocessed requests with ctx.Err().
func RouteAll(ctx context.Context, reqs []Request, m *floorplan.ObstacleMap, opts Options, workers int) []Result {
	results := make([]Result, len(reqs))
	if len(reqs) == 0 {
		return results
	}
	if workers <= 0 {
		workers = 4
	}
	if workers > len(reqs) {
		workers = len(reqs)
	}

	jobs := make(chan int, len(reqs))
	for i := range reqs {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					results[i] = Result{WireID: reqs[i].WireID, Err: err}
					continue
				}
				p, err := Route(reqs[i].A, reqs[i].B, m, opts)
				results[i] = Result{WireID: reqs[i].WireID, Path: p, Err: err}
			}
		}()
	}
	wg.Wait()
	return results
}
