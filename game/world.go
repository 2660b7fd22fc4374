package game

import "github.com/plus3/blockfall/ecs"

// Setup creates every game singleton and spawns the first active cell. Call
// it once on a fresh storage whose registry includes the game components.
func Setup(storage *ecs.Storage, settings Settings) {
	ecs.NewSingleton(storage, settings)
	ecs.NewSingleton(storage, Palette{
		Background: settings.Colors.Background.Color(),
		Active:     settings.Colors.Active.Color(),
		Frozen:     settings.Colors.Frozen.Color(),
	})
	ecs.NewSingleton(storage, Occupancy{Cells: make(map[Position]bool)})
	ecs.NewSingleton(storage, KeyState{})
	ecs.NewSingleton(storage, PauseState{})
	ecs.NewSingleton(storage, Viewport{})
	ecs.NewSingleton(storage, Screen{})

	active := storage.Spawn(
		Cell{Kind: CellActive},
		settings.SpawnPosition(),
		Size{Width: 1, Height: 1},
		Transform{},
	)
	ecs.NewSingleton(storage, ActiveRef{Ref: storage.CreateEntityRef(active)})
}

// Reset returns a running game to its initial state on the same storage:
// frozen cells are deleted, the occupancy index and key snapshot cleared,
// the game unpaused and the active cell moved back to the spawn position.
// The active entity itself survives, so ActiveRef stays valid.
func Reset(storage *ecs.Storage) {
	cells := ecs.NewView[struct{ *Cell }](storage)
	var frozen []ecs.EntityId
	for id, item := range cells.Iter() {
		if item.Cell.Kind == CellFrozen {
			frozen = append(frozen, id)
		}
	}
	for _, id := range frozen {
		storage.Delete(id)
	}

	var occupancy *Occupancy
	if storage.ReadSingleton(&occupancy) {
		clear(occupancy.Cells)
	}

	var keys *KeyState
	if storage.ReadSingleton(&keys) {
		*keys = KeyState{}
	}

	var pause *PauseState
	if storage.ReadSingleton(&pause) {
		pause.Paused = false
	}

	var settings *Settings
	var active *ActiveRef
	if storage.ReadSingleton(&settings) && storage.ReadSingleton(&active) {
		if pos := activePosition(storage, active); pos != nil {
			*pos = settings.SpawnPosition()
		}
	}

	storage.Compact()
}
