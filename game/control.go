package game

import "github.com/plus3/blockfall/ecs"

// ControlSystem applies the held keys to the active cell. It runs on its
// own fixed cadence so a held key repeats at a steady rate independent of
// the frame rate. One tick moves at most one cell, left winning over right
// and horizontal over down; a held key blocked by a wall still consumes
// the tick.
type ControlSystem struct {
	Keys     ecs.Singleton[KeyState]
	Active   ecs.Singleton[ActiveRef]
	Settings ecs.Singleton[Settings]
	Pause    ecs.Singleton[PauseState]
}

func (s *ControlSystem) Execute(frame *ecs.UpdateFrame) {
	if s.Pause.Get().Paused {
		return
	}

	pos := activePosition(frame.Storage, s.Active.Get())
	if pos == nil {
		return
	}

	grid := s.Settings.Get().Grid
	switch keys := s.Keys.Get(); {
	case keys.Left:
		if pos.X > 0 {
			pos.X--
		}
	case keys.Right:
		if pos.X < grid.Width-1 {
			pos.X++
		}
	case keys.Down:
		if pos.Y > 0 {
			pos.Y--
		}
	}
}

// activePosition resolves the active-cell reference to its grid position,
// nil when the reference is unset or no longer alive.
func activePosition(storage *ecs.Storage, active *ActiveRef) *Position {
	if active == nil || active.Ref == nil {
		return nil
	}
	id, ok := storage.ResolveEntityRef(active.Ref)
	if !ok {
		return nil
	}
	return ecs.ReadComponent[Position](storage, id)
}
