package game

import "github.com/plus3/blockfall/ecs"

// ScaleSystem sizes every cell's transform to the current viewport: one
// grid unit maps to viewport/extent pixels per axis. Runs in the render
// scheduler so resizes take effect on the frame they happen.
type ScaleSystem struct {
	Cells ecs.Query[struct {
		*Size
		*Transform
	}]
	Viewport ecs.Singleton[Viewport]
	Settings ecs.Singleton[Settings]
}

func (s *ScaleSystem) Execute(frame *ecs.UpdateFrame) {
	viewport := s.Viewport.Get()
	grid := s.Settings.Get().Grid
	tileW := viewport.W / float32(grid.Width)
	tileH := viewport.H / float32(grid.Height)

	for cell := range s.Cells.Values() {
		cell.Transform.W = cell.Size.Width * tileW
		cell.Transform.H = cell.Size.Height * tileH
	}
}

// TranslationSystem places every cell's transform center in the centered,
// y-up pixel space: grid cell (0,0) maps to the bottom-left tile of the
// window, (width-1, height-1) to the top-right one.
type TranslationSystem struct {
	Cells ecs.Query[struct {
		*Position
		*Transform
	}]
	Viewport ecs.Singleton[Viewport]
	Settings ecs.Singleton[Settings]
}

func (s *TranslationSystem) Execute(frame *ecs.UpdateFrame) {
	viewport := s.Viewport.Get()
	grid := s.Settings.Get().Grid
	tileW := viewport.W / float32(grid.Width)
	tileH := viewport.H / float32(grid.Height)

	for cell := range s.Cells.Values() {
		cell.Transform.X = float32(cell.Position.X)*tileW - viewport.W/2 + tileW/2
		cell.Transform.Y = float32(cell.Position.Y)*tileH - viewport.H/2 + tileH/2
	}
}
