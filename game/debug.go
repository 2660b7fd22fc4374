package game

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/blockfall/ecs"
	"github.com/plus3/blockfall/ecs/debugui"
)

// SpawnDebugWindows adds the game's playfield window next to the generic
// ECS overlay windows. It renders whenever the overlay is visible.
func SpawnDebugWindows(storage *ecs.Storage) {
	storage.Spawn(debugui.ImguiItem{
		Render: func() { renderPlayfieldWindow(storage) },
	})
}

func renderPlayfieldWindow(storage *ecs.Storage) {
	var settings *Settings
	if !storage.ReadSingleton(&settings) {
		return
	}

	imgui.SetNextWindowPosV(imgui.NewVec2(10, 420), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(280, 200), imgui.CondOnce)
	if !imgui.BeginV("Playfield", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	var pause *PauseState
	if storage.ReadSingleton(&pause) && pause.Paused {
		imgui.Text("PAUSED")
		imgui.Separator()
	}

	var active *ActiveRef
	storage.ReadSingleton(&active)
	if pos := activePosition(storage, active); pos != nil {
		imgui.Text(fmt.Sprintf("Active cell: (%d, %d)", pos.X, pos.Y))
	} else {
		imgui.Text("Active cell: none")
	}

	var keys *KeyState
	if storage.ReadSingleton(&keys) {
		imgui.Text(fmt.Sprintf("Keys: left=%t right=%t down=%t up=%t",
			keys.Left, keys.Right, keys.Down, keys.Up))
	}

	imgui.Separator()
	imgui.Text(fmt.Sprintf("Grid: %dx%d, spawn column %d",
		settings.Grid.Width, settings.Grid.Height, settings.Grid.SpawnColumn))
	imgui.Text(fmt.Sprintf("Cadence: fall %gs, control %gs",
		settings.Cadence.FallSeconds, settings.Cadence.ControlSeconds))

	var occupancy *Occupancy
	if storage.ReadSingleton(&occupancy) {
		imgui.Separator()
		imgui.Text(fmt.Sprintf("Frozen cells: %d", len(occupancy.Cells)))
		imgui.Text(fmt.Sprintf("Stack heights: %v", columnHeights(occupancy, settings.Grid)))
	}

	imgui.End()
}

// columnHeights is the per-column stack height, counting rows up to and
// including the highest frozen cell.
func columnHeights(occupancy *Occupancy, grid GridSettings) []int {
	heights := make([]int, grid.Width)
	for p := range occupancy.Cells {
		if p.X < 0 || p.X >= grid.Width {
			continue
		}
		if h := p.Y + 1; h > heights[p.X] {
			heights[p.X] = h
		}
	}
	return heights
}
