// Package game implements a minimal falling-block prototype on the ECS
// runtime: a single 1x1 active cell falls on a fixed cadence, is nudged by
// held arrow keys on a faster cadence, and freezes into the playfield when
// it reaches the floor or lands on a frozen cell. Frozen cells accumulate
// for the lifetime of the process; there is no line clearing, scoring or
// game over.
//
//go:generate go run github.com/plus3/blockfall/cmd/ecsgen
package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/blockfall/ecs"
)

// CellKind distinguishes the player-controlled cell from landed ones. It is
// a per-entity tag value, not a marker component type: every cell entity
// carries the same component set and systems branch on the kind.
type CellKind uint8

const (
	CellActive CellKind = iota
	CellFrozen
)

// Cell marks an entity as part of the playfield.
//
//ecsgen:component
type Cell struct {
	Kind CellKind
}

// Position is a logical grid coordinate, x in [0, width), y in [0, height),
// with y growing upward from the floor.
//
//ecsgen:component
type Position struct {
	X, Y int
}

// Size is a logical extent in grid units. Every cell in this game is 1x1;
// the size only feeds the render scale.
//
//ecsgen:component
type Size struct {
	Width, Height float32
}

// Transform is a pixel-space rectangle in a centered, y-up coordinate
// system: (0,0) is the window center and W/H are the scaled cell extent.
// Recomputed every render frame so window resizes apply immediately.
//
//ecsgen:component
type Transform struct {
	X, Y float32
	W, H float32
}

// ActiveRef is a singleton holding the reference to the one active cell.
// The reference stays valid across compaction; systems resolve it instead
// of scanning for the active kind.
type ActiveRef struct {
	Ref *ecs.EntityRef
}

// Occupancy is a singleton with the frozen-cell coordinate set, rebuilt
// every frame so the placement check is a map lookup.
type Occupancy struct {
	Cells map[Position]bool
}

func (o *Occupancy) Occupied(p Position) bool {
	return o.Cells[p]
}

// KeyState is a singleton snapshot of the held directional keys, taken once
// per frame at the host edge. Consumers never touch the input device.
type KeyState struct {
	Left, Right, Down, Up bool
}

// PauseState is a singleton gating the logic systems.
type PauseState struct {
	Paused bool
}

// Viewport is a singleton with the current render target size in pixels.
type Viewport struct {
	W, H float32
}

// Screen is a singleton carrying the frame's render target. Set by the host
// before the render scheduler runs; nil outside a draw.
type Screen struct {
	*ebiten.Image
}

// Palette holds the cell colors, built once from Settings at startup.
type Palette struct {
	Background color.RGBA
	Active     color.RGBA
	Frozen     color.RGBA
}
