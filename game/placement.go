package game

import "github.com/plus3/blockfall/ecs"

// PlacementSystem freezes the active cell once it rests on the floor or on
// a frozen cell, then recycles the same entity as the next active cell at
// the spawn position. It runs after FallSystem in the same fixed set, so a
// cell that just reached its resting row freezes on the same tick.
//
// The frozen cell is spawned through the command buffer and lands in the
// occupancy index on the next frame's rebuild. That index is stale within
// a frame, but the active cell restarts at the top row on every placement,
// so it cannot reach the fresh cell again before the rebuild.
type PlacementSystem struct {
	Active    ecs.Singleton[ActiveRef]
	Occupancy ecs.Singleton[Occupancy]
	Settings  ecs.Singleton[Settings]
	Pause     ecs.Singleton[PauseState]
}

func (s *PlacementSystem) Execute(frame *ecs.UpdateFrame) {
	if s.Pause.Get().Paused {
		return
	}

	pos := activePosition(frame.Storage, s.Active.Get())
	if pos == nil {
		return
	}

	occupancy := s.Occupancy.Get()
	resting := pos.Y == 0 || occupancy.Occupied(Position{X: pos.X, Y: pos.Y - 1})
	if !resting {
		return
	}

	frame.Commands.Spawn(
		Cell{Kind: CellFrozen},
		Position{X: pos.X, Y: pos.Y},
		Size{Width: 1, Height: 1},
		Transform{},
	)
	*pos = s.Settings.Get().SpawnPosition()
}
