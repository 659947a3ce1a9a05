package schedule

import (
	"github.com/Syntax-error2/ELECDRAFT/internal/load"
)

// RowKind identifies the hierarchy level of a schedule row.
type RowKind string

const (
	RowPanel     RowKind = "panel"
	RowCircuit   RowKind = "circuit"
	RowComponent RowKind = "component"
)

// Row is one line of the live load schedule handed to the UI after each
// propagation pass.
type Row struct {
	Kind       RowKind     `json:"kind"`
	ID         string      `json:"id"` // component id, or homerun wire id for circuits
	Name       string      `json:"name"`
	Result     load.Result `json:"result"`
	Unassigned bool        `json:"unassigned,omitempty"` // not attached to any panel
}

// Rows builds the ordered schedule table from cached results: each panel
// (creation order) followed by its circuits (homerun creation order) and
// their member components, then components on no circuit. Call after
// Recompute so every cache entry is current.
func (s *Scheduler) Rows() []Row {
	var rows []Row
	assigned := make(map[string]bool)

	for _, p := range s.graph.Components() {
		if !p.IsSource() {
			continue
		}
		assigned[p.ID] = true
		r, _ := s.PanelResult(p.ID)
		rows = append(rows, Row{Kind: RowPanel, ID: p.ID, Name: p.Name, Result: r})

		for _, circ := range s.graph.PanelCircuits(p.ID) {
			cr, _ := s.CircuitResult(circ.HomerunID)
			name := ""
			if origin := s.graph.Component(circ.OriginID); origin != nil {
				name = origin.Name
			}
			rows = append(rows, Row{Kind: RowCircuit, ID: circ.HomerunID, Name: name, Result: cr})

			for _, id := range circ.ComponentIDs {
				c := s.graph.Component(id)
				if c == nil {
					continue
				}
				assigned[id] = true
				res, _ := s.ComponentResult(id)
				rows = append(rows, Row{Kind: RowComponent, ID: id, Name: c.Name, Result: res})
			}
		}
	}

	for _, c := range s.graph.Components() {
		if assigned[c.ID] || c.IsSource() {
			continue
		}
		res, _ := s.ComponentResult(c.ID)
		rows = append(rows, Row{Kind: RowComponent, ID: c.ID, Name: c.Name, Result: res, Unassigned: true})
	}
	return rows
}

// TotalConnectedVA sums the rated VA of every non-source component.
func (s *Scheduler) TotalConnectedVA() float64 {
	total := 0.0
	for _, c := range s.graph.Components() {
		if !c.IsSource() {
			total += c.VA
		}
	}
	return total
}

// Violations collects every violation currently cached, panel rows first.
func (s *Scheduler) Violations() []load.Violation {
	var out []load.Violation
	for _, row := range s.Rows() {
		out = append(out, row.Result.Violations...)
	}
	return out
}
