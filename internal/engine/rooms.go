package engine

import (
	"github.com/Syntax-error2/ELECDRAFT/internal/project"
)

// RoomLoad is the aggregate connected load inside one room rectangle.
type RoomLoad struct {
	Name       string  `json:"name"`
	VA         float64 `json:"va"`
	Components int     `json:"components"`
}

// SetRooms replaces the room regions used for per-room totals.
func (e *Engine) SetRooms(rooms []project.Room) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rooms = append([]project.Room(nil), rooms...)
}

// AddRoom appends a room region.
func (e *Engine) AddRoom(r project.Room) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rooms = append(e.rooms, r)
}

// RoomLoads sums the rated VA of the components physically inside each
// room's rectangle. Panels and feeders are aggregation points, not
// loads, and are excluded.
func (e *Engine) RoomLoads() []RoomLoad {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]RoomLoad, 0, len(e.rooms))
	for _, room := range e.rooms {
		rl := RoomLoad{Name: room.Name}
		for _, c := range e.graph.Components() {
			if c.IsSource() {
				continue
			}
			if room.Bounds.Contains(c.Position) {
				rl.VA += c.VA
				rl.Components++
			}
		}
		out = append(out, rl)
	}
	return out
}
