package game

import "github.com/plus3/blockfall/ecs"

// FallSystem moves the active cell one row down per gravity tick. It must
// run before PlacementSystem in the same fixed set: the cell first reaches
// its resting row, then the same tick's placement check freezes it there.
type FallSystem struct {
	Active ecs.Singleton[ActiveRef]
	Pause  ecs.Singleton[PauseState]
}

func (s *FallSystem) Execute(frame *ecs.UpdateFrame) {
	if s.Pause.Get().Paused {
		return
	}

	pos := activePosition(frame.Storage, s.Active.Get())
	if pos == nil {
		return
	}

	if pos.Y > 0 {
		pos.Y--
	}
}
