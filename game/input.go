package game

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/blockfall/ecs"
	"github.com/plus3/blockfall/ecs/debugui"
)

// PollInputSystem snapshots the held directional keys into the KeyState
// singleton once per frame. While the debug overlay wants the keyboard the
// snapshot reads all-released, so cells never move under an overlay edit.
// Everything downstream consumes KeyState, which keeps the logic systems
// headless-testable.
type PollInputSystem struct {
	Keys       ecs.Singleton[KeyState]
	ImguiInput ecs.Singleton[debugui.ImguiInputState]
}

func (s *PollInputSystem) Execute(frame *ecs.UpdateFrame) {
	keys := s.Keys.Get()

	if capture := s.ImguiInput.Get(); capture != nil && capture.WantCaptureKeyboard {
		*keys = KeyState{}
		return
	}

	keys.Left = ebiten.IsKeyPressed(ebiten.KeyArrowLeft)
	keys.Right = ebiten.IsKeyPressed(ebiten.KeyArrowRight)
	keys.Down = ebiten.IsKeyPressed(ebiten.KeyArrowDown)
	keys.Up = ebiten.IsKeyPressed(ebiten.KeyArrowUp)
}
