package game

import (
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/blockfall/ecs"
)

// RenderSystem fills the screen with the background color and draws every
// cell as a solid rectangle. Transforms are y-up around the window center
// while the screen is y-down from the top-left, so the y axis flips here
// and nowhere else.
type RenderSystem struct {
	Screen   ecs.Singleton[Screen]
	Palette  ecs.Singleton[Palette]
	Viewport ecs.Singleton[Viewport]
	Cells    ecs.Query[struct {
		*Cell
		*Transform
	}]
}

func (s *RenderSystem) Execute(frame *ecs.UpdateFrame) {
	screen := s.Screen.Get()
	if screen == nil || screen.Image == nil {
		return
	}

	palette := s.Palette.Get()
	screen.Fill(palette.Background)

	viewport := s.Viewport.Get()
	halfW := viewport.W / 2
	halfH := viewport.H / 2

	for cell := range s.Cells.Values() {
		cellColor := palette.Frozen
		if cell.Kind == CellActive {
			cellColor = palette.Active
		}
		x := halfW + cell.Transform.X - cell.Transform.W/2
		y := halfH - cell.Transform.Y - cell.Transform.H/2
		vector.DrawFilledRect(screen.Image, x, y, cell.Transform.W, cell.Transform.H, cellColor, false)
	}
}
