package topology

// Circuit is a maximal group of components and wires sharing one
// overcurrent device: the breaker behind the homerun wire that lands on
// the supplying panel. Membership is derived, never stored.
type Circuit struct {
	HomerunID    string   // the homerun wire
	PanelID      string   // supplying panel or feeder
	OriginID     string   // circuit origin (the homerun's drawn source)
	ComponentIDs []string // members including the origin, BFS order
	WireIDs      []string // member wires including the homerun
}

// Circuits derives every circuit in the graph, one per homerun wire, in
// homerun creation order. Members are the components reachable downstream
// from the circuit origin without crossing another breaker boundary.
func (g *Graph) Circuits() []Circuit {
	var out []Circuit
	for _, hr := range g.Wires() {
		if !hr.Homerun {
			continue
		}
		c := Circuit{
			HomerunID: hr.ID,
			PanelID:   hr.DestID,
			OriginID:  hr.SourceID,
			WireIDs:   []string{hr.ID},
		}

		visited := map[string]bool{c.OriginID: true}
		queue := []string{c.OriginID}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			c.ComponentIDs = append(c.ComponentIDs, cur)

			for _, w := range g.Wires() {
				if w.Homerun || w.Feeder {
					continue
				}
				var next string
				switch cur {
				case w.SourceID:
					next = w.DestID
				case w.DestID:
					next = w.SourceID
				default:
					continue
				}
				if visited[next] {
					continue
				}
				visited[next] = true
				c.WireIDs = append(c.WireIDs, w.ID)
				queue = append(queue, next)
			}
		}
		out = append(out, c)
	}
	return out
}

// CircuitOf returns the circuit containing a component, or nil when the
// component is not attached to any homerun.
func (g *Graph) CircuitOf(componentID string) *Circuit {
	for _, c := range g.Circuits() {
		for _, id := range c.ComponentIDs {
			if id == componentID {
				cc := c
				return &cc
			}
		}
	}
	return nil
}

// PanelCircuits returns the circuits hosted directly by a panel, in
// homerun creation order.
func (g *Graph) PanelCircuits(panelID string) []Circuit {
	var out []Circuit
	for _, c := range g.Circuits() {
		if c.PanelID == panelID {
			out = append(out, c)
		}
	}
	return out
}

// SubPanels returns the panels/feeders directly fed by id, in wire
// creation order.
func (g *Graph) SubPanels(id string) []string {
	var out []string
	for _, w := range g.Wires() {
		if w.Feeder && w.SourceID == id {
			out = append(out, w.DestID)
		}
	}
	return out
}
