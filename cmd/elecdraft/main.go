// Command elecdraft loads a project file, recomputes the load schedule,
// and prints it with any code violations.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Syntax-error2/ELECDRAFT/internal/config"
	"github.com/Syntax-error2/ELECDRAFT/internal/engine"
	"github.com/Syntax-error2/ELECDRAFT/internal/floorplan"
	"github.com/Syntax-error2/ELECDRAFT/internal/load"
	"github.com/Syntax-error2/ELECDRAFT/internal/project"
	"github.com/Syntax-error2/ELECDRAFT/internal/route"
	"github.com/Syntax-error2/ELECDRAFT/internal/schedule"
	"github.com/Syntax-error2/ELECDRAFT/internal/version"
)

func main() {
	projectPath := flag.String("project", "", "Path to .elecproj project file")
	configPath := flag.String("config", "", "Optional engine config YAML")
	planPath := flag.String("floorplan", "", "Override floor-plan image path")
	showSLD := flag.Bool("sld", false, "Print the derived single-line diagram")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("elecdraft %s (commit %s, built %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if *projectPath == "" {
		fmt.Println("Usage: elecdraft -project <path.elecproj> [-config engine.yaml] [-floorplan plan.png] [-sld]")
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}

	table := load.DefaultTable()
	if cfg.CodeTablePath != "" {
		var err error
		table, err = load.LoadTable(cfg.CodeTablePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load code table: %v\n", err)
			os.Exit(1)
		}
	}

	proj, err := project.Load(*projectPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load project: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Project: %s (%d components, %d wires)\n",
		proj.Name, len(proj.Topology.Components), len(proj.Topology.Wires))

	var obstacles *floorplan.ObstacleMap
	plan := *planPath
	if plan == "" {
		plan = proj.FloorPlanAbs(*projectPath)
	}
	if plan != "" {
		opts := floorplan.DefaultRasterOptions()
		opts.CellSize = cfg.CellSize
		opts.WallThreshold = cfg.WallThreshold
		obstacles, err = floorplan.LoadImageMap(plan, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to build obstacle map: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Obstacle map: %dx%d cells, %d blocked\n",
			obstacles.Cols(), obstacles.Rows(), obstacles.BlockedCount())
	}

	eng := engine.FromProject(proj, table, obstacles, engine.Options{
		Router: route.Options{
			MaxExplored:     cfg.MaxExploredCells,
			SnapRadius:      cfg.SnapRadius,
			SimplifyEpsilon: cfg.SimplifyEpsilon,
		},
		RouteWorkers:  cfg.RouteWorkers,
		UnitsPerMeter: cfg.UnitsPerMeter,
	})

	printSchedule(eng.Schedule())

	if rooms := eng.RoomLoads(); len(rooms) > 0 {
		fmt.Println("\nRoom totals:")
		for _, r := range rooms {
			fmt.Printf("  %-20s %8.0f VA (%d components)\n", r.Name, r.VA, r.Components)
		}
	}
	fmt.Printf("\nTotal connected load: %.0f VA\n", eng.Scheduler().TotalConnectedVA())

	if *showSLD {
		printDiagram(eng)
	}

	if v := eng.Scheduler().Violations(); len(v) > 0 {
		fmt.Printf("\n%d violation(s):\n", len(v))
		for _, violation := range v {
			fmt.Printf("  [%s] %s\n", violation.Kind, violation.Message)
		}
		os.Exit(2)
	}
}

func printSchedule(rows []schedule.Row) {
	fmt.Println("\nLoad schedule:")
	fmt.Printf("  %-32s %10s %8s %8s %-14s %8s\n",
		"Description", "Load (VA)", "Amps", "Breaker", "Wire", "V-Drop")
	for _, row := range rows {
		indent := ""
		switch row.Kind {
		case schedule.RowCircuit:
			indent = "  "
		case schedule.RowComponent:
			indent = "    "
		}
		name := indent + row.Name
		if row.Unassigned {
			name += " (unassigned)"
		}
		flag := ""
		if row.Result.Violated() {
			flag = " !"
		}
		fmt.Printf("  %-32s %10.0f %8.2f %7.0fA %-14s %7.2f%%%s\n",
			name, row.Result.VA, row.Result.Amps, row.Result.Breaker,
			row.Result.Conductor, row.Result.VoltageDropPct, flag)
	}
}

func printDiagram(eng *engine.Engine) {
	d := eng.Diagram()
	fmt.Printf("\nSingle-line diagram: %d symbols, %d connections\n", len(d.Nodes), len(d.Edges))
	for _, n := range d.Nodes {
		fmt.Printf("  %s%-16s %-24s at (%.0f, %.0f)\n",
			strings.Repeat("  ", n.Tier), n.Kind, labelWithRating(n.Label, n.Rating), n.Position.X, n.Position.Y)
	}
}

func labelWithRating(label, rating string) string {
	if rating == "" {
		return label
	}
	return label + " [" + rating + "]"
}
