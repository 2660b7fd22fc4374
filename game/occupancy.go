package game

import "github.com/plus3/blockfall/ecs"

// OccupancySystem rebuilds the frozen-cell coordinate set every frame. A
// full rebuild keeps the index trivially consistent with the entity data no
// matter how cells were added or removed since the last frame.
type OccupancySystem struct {
	Cells ecs.Query[struct {
		*Cell
		*Position
	}]
	Occupancy ecs.Singleton[Occupancy]
}

func (s *OccupancySystem) Execute(frame *ecs.UpdateFrame) {
	occupancy := s.Occupancy.Get()
	if occupancy.Cells == nil {
		occupancy.Cells = make(map[Position]bool)
	}
	clear(occupancy.Cells)

	for cell := range s.Cells.Values() {
		if cell.Kind == CellFrozen {
			occupancy.Cells[*cell.Position] = true
		}
	}
}
