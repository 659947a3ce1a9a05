package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EditsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "elecdraft_edits_applied_total",
		Help: "Total number of edits applied to the topology, labelled by kind.",
	}, []string{"kind"})

	EditsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "elecdraft_edits_rejected_total",
		Help: "Total number of edits rejected, labelled by reason.",
	}, []string{"reason"})

	RoutesComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "elecdraft_routes_computed_total",
		Help: "Total number of wire routes successfully computed.",
	})

	RouteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "elecdraft_route_failures_total",
		Help: "Total number of failed route computations, labelled by reason.",
	}, []string{"reason"})

	PropagationPasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "elecdraft_propagation_passes_total",
		Help: "Total number of incremental recompute passes.",
	})

	NodesRecomputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "elecdraft_nodes_recomputed_total",
		Help: "Total number of load results recomputed across all passes.",
	})

	RouteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "elecdraft_route_duration_ms",
		Help:    "Single wire route computation latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	ObstacleMapRebuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "elecdraft_obstacle_map_rebuilds_total",
		Help: "Total number of obstacle map rebuilds from floor-plan changes.",
	})
)
