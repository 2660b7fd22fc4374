// Package ebiten bridges the debug overlay to the Ebiten game engine through
// the cimgui-go Ebiten backend.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend so it can be
// stored as an ECS singleton. Call BeginFrame before running the update
// scheduler, EndFrame after it, and Draw from the host's Draw.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// NewBackend creates the Ebiten ImGui backend.
func NewBackend() ImguiBackend {
	return ImguiBackend{EbitenBackend: ebitenbackend.NewEbitenBackend()}
}
