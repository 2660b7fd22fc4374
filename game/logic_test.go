package game_test

import (
	"testing"

	"github.com/plus3/blockfall/ecs"
	"github.com/plus3/blockfall/game"
	"github.com/stretchr/testify/assert"
)

// testSettings uses dyadic cadences so the fixed-timestep accumulators stay
// exact: four control ticks per Once(1.0), one fall tick, no rounding drift.
func testSettings() game.Settings {
	settings := game.DefaultSettings()
	settings.Cadence.FallSeconds = 1.0
	settings.Cadence.ControlSeconds = 0.25
	return settings
}

// newTestGame builds the headless logic pipeline: no input polling (tests
// write KeyState directly) and no render systems.
func newTestGame(settings game.Settings) (*ecs.Storage, *ecs.Scheduler) {
	registry := ecs.NewComponentRegistry()
	game.RegisterComponents(registry)
	storage := ecs.NewStorage(registry)
	game.Setup(storage, settings)

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&game.OccupancySystem{})
	scheduler.RegisterFixed(settings.Cadence.ControlSeconds, &game.ControlSystem{})
	scheduler.RegisterFixed(settings.Cadence.FallSeconds, &game.FallSystem{}, &game.PlacementSystem{})
	return storage, scheduler
}

func mustSingleton[T any](t *testing.T, storage *ecs.Storage) *T {
	t.Helper()
	var value *T
	if !storage.ReadSingleton(&value) {
		t.Fatalf("missing singleton %T", value)
	}
	return value
}

func activeCell(t *testing.T, storage *ecs.Storage) *game.Position {
	t.Helper()
	active := mustSingleton[game.ActiveRef](t, storage)
	id, ok := storage.ResolveEntityRef(active.Ref)
	if !ok {
		t.Fatal("active cell reference is dead")
	}
	pos := ecs.ReadComponent[game.Position](storage, id)
	if pos == nil {
		t.Fatal("active cell has no position")
	}
	return pos
}

func frozenCells(storage *ecs.Storage) []game.Position {
	view := ecs.NewView[struct {
		*game.Cell
		*game.Position
	}](storage)

	var cells []game.Position
	for _, item := range view.Iter() {
		if item.Cell.Kind == game.CellFrozen {
			cells = append(cells, *item.Position)
		}
	}
	return cells
}

func TestSetupSpawnsActiveCellAtSpawnPosition(t *testing.T) {
	storage, _ := newTestGame(testSettings())

	assert.Equal(t, game.Position{X: 5, Y: 15}, *activeCell(t, storage))
	assert.Empty(t, frozenCells(storage))
}

func TestActiveCellFallsOnGravityTicks(t *testing.T) {
	storage, scheduler := newTestGame(testSettings())

	scheduler.Once(1.0)
	assert.Equal(t, game.Position{X: 5, Y: 14}, *activeCell(t, storage))

	scheduler.Once(1.0)
	scheduler.Once(1.0)
	assert.Equal(t, game.Position{X: 5, Y: 12}, *activeCell(t, storage))
}

func TestControlMovesActiveCell(t *testing.T) {
	t.Run("left", func(t *testing.T) {
		storage, scheduler := newTestGame(testSettings())
		mustSingleton[game.KeyState](t, storage).Left = true

		scheduler.Once(0.25)

		assert.Equal(t, game.Position{X: 4, Y: 15}, *activeCell(t, storage))
	})

	t.Run("right", func(t *testing.T) {
		storage, scheduler := newTestGame(testSettings())
		mustSingleton[game.KeyState](t, storage).Right = true

		scheduler.Once(0.25)

		assert.Equal(t, game.Position{X: 6, Y: 15}, *activeCell(t, storage))
	})

	t.Run("down", func(t *testing.T) {
		storage, scheduler := newTestGame(testSettings())
		mustSingleton[game.KeyState](t, storage).Down = true

		scheduler.Once(0.25)

		assert.Equal(t, game.Position{X: 5, Y: 14}, *activeCell(t, storage))
	})

	t.Run("one cell per tick with every key held", func(t *testing.T) {
		storage, scheduler := newTestGame(testSettings())
		keys := mustSingleton[game.KeyState](t, storage)
		keys.Left = true
		keys.Right = true
		keys.Down = true

		scheduler.Once(0.25)

		// Left wins; the tick moves exactly one cell.
		assert.Equal(t, game.Position{X: 4, Y: 15}, *activeCell(t, storage))
	})

	t.Run("clamped at the left wall", func(t *testing.T) {
		storage, scheduler := newTestGame(testSettings())
		activeCell(t, storage).X = 0
		keys := mustSingleton[game.KeyState](t, storage)
		keys.Left = true
		keys.Right = true

		scheduler.Once(0.25)

		// The blocked left key still consumes the tick, so the
		// simultaneously held right key does not sneak a move in.
		assert.Equal(t, game.Position{X: 0, Y: 15}, *activeCell(t, storage))
	})

	t.Run("clamped at the right wall", func(t *testing.T) {
		storage, scheduler := newTestGame(testSettings())
		activeCell(t, storage).X = 7
		mustSingleton[game.KeyState](t, storage).Right = true

		scheduler.Once(0.25)

		assert.Equal(t, game.Position{X: 7, Y: 15}, *activeCell(t, storage))
	})

	t.Run("held key repeats across ticks", func(t *testing.T) {
		storage, scheduler := newTestGame(testSettings())
		mustSingleton[game.KeyState](t, storage).Left = true

		scheduler.Once(0.25)
		scheduler.Once(0.25)
		scheduler.Once(0.25)

		assert.Equal(t, game.Position{X: 2, Y: 15}, *activeCell(t, storage))
	})
}

func TestPauseFreezesGameplay(t *testing.T) {
	storage, scheduler := newTestGame(testSettings())
	mustSingleton[game.PauseState](t, storage).Paused = true
	mustSingleton[game.KeyState](t, storage).Left = true

	scheduler.Once(1.0)
	assert.Equal(t, game.Position{X: 5, Y: 15}, *activeCell(t, storage))
	assert.Empty(t, frozenCells(storage))

	mustSingleton[game.PauseState](t, storage).Paused = false
	mustSingleton[game.KeyState](t, storage).Left = false

	scheduler.Once(1.0)
	assert.Equal(t, game.Position{X: 5, Y: 14}, *activeCell(t, storage))
}

func TestPlacementAtFloor(t *testing.T) {
	storage, scheduler := newTestGame(testSettings())

	// Spawn row is y=15; the 15th gravity tick reaches the floor and the
	// same tick's placement freezes the cell there.
	for range 15 {
		scheduler.Once(1.0)
	}

	assert.Equal(t, []game.Position{{X: 5, Y: 0}}, frozenCells(storage))
	assert.Equal(t, game.Position{X: 5, Y: 15}, *activeCell(t, storage))
}

func TestPlacementOnStack(t *testing.T) {
	storage, scheduler := newTestGame(testSettings())

	for range 15 {
		scheduler.Once(1.0)
	}
	// The second cell rests one row above the first after 14 more ticks.
	for range 14 {
		scheduler.Once(1.0)
	}

	assert.ElementsMatch(t,
		[]game.Position{{X: 5, Y: 0}, {X: 5, Y: 1}},
		frozenCells(storage))
	assert.Equal(t, game.Position{X: 5, Y: 15}, *activeCell(t, storage))
}

func TestPlacementRecyclesActiveEntity(t *testing.T) {
	storage, scheduler := newTestGame(testSettings())
	active := mustSingleton[game.ActiveRef](t, storage)
	before, ok := storage.ResolveEntityRef(active.Ref)
	assert.True(t, ok)

	for range 15 {
		scheduler.Once(1.0)
	}

	after, ok := storage.ResolveEntityRef(active.Ref)
	assert.True(t, ok)
	assert.Equal(t, before, after)

	kind := ecs.ReadComponent[game.Cell](storage, after)
	assert.Equal(t, game.CellActive, kind.Kind)
}

func TestOccupancyRebuild(t *testing.T) {
	storage, scheduler := newTestGame(testSettings())
	storage.Spawn(
		game.Cell{Kind: game.CellFrozen},
		game.Position{X: 2, Y: 0},
		game.Size{Width: 1, Height: 1},
		game.Transform{},
	)

	// Once(0) runs the frame systems without advancing the cadences.
	scheduler.Once(0)

	occupancy := mustSingleton[game.Occupancy](t, storage)
	assert.True(t, occupancy.Occupied(game.Position{X: 2, Y: 0}))
	assert.False(t, occupancy.Occupied(game.Position{X: 5, Y: 15}))
	assert.Len(t, occupancy.Cells, 1)
}

func TestReset(t *testing.T) {
	storage, scheduler := newTestGame(testSettings())

	for range 15 {
		scheduler.Once(1.0)
	}
	scheduler.Once(1.0)
	scheduler.Once(1.0)
	mustSingleton[game.PauseState](t, storage).Paused = true
	mustSingleton[game.KeyState](t, storage).Down = true

	game.Reset(storage)

	assert.Empty(t, frozenCells(storage))
	assert.Equal(t, game.Position{X: 5, Y: 15}, *activeCell(t, storage))
	assert.False(t, mustSingleton[game.PauseState](t, storage).Paused)
	assert.Equal(t, game.KeyState{}, *mustSingleton[game.KeyState](t, storage))
	assert.Empty(t, mustSingleton[game.Occupancy](t, storage).Cells)

	// The world keeps running after a reset.
	scheduler.Once(1.0)
	assert.Equal(t, game.Position{X: 5, Y: 14}, *activeCell(t, storage))
}
