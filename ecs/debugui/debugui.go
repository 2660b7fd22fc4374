// Package debugui provides an immediate-mode debug overlay for ECS
// applications using Dear ImGui. It ships a set of built-in inspection
// windows (storage and scheduler statistics, an entity browser, a component
// inspector) and renders any ImguiItem components the application spawns.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/blockfall/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function. Spawn
// one for each application window that should render while the overlay is
// visible.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks Dear ImGui's input capture state as a singleton.
// Input systems should ignore keys and clicks the overlay is consuming.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// OverlayState is a singleton controlling overlay visibility. The host flips
// Visible from its debug key; while hidden the overlay renders nothing and
// captures no input.
type OverlayState struct {
	Visible bool
}

// RegisterComponents registers the overlay's component types.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
	ecs.RegisterComponent[ImguiInputState](registry)
	ecs.RegisterComponent[OverlayState](registry)
}

// OverlaySystem drives the debug overlay: it updates the ImguiInputState
// singleton, renders the built-in windows and defers the render functions of
// all ImguiItem components. Register it with the scheduler that runs between
// the backend's BeginFrame and EndFrame calls.
type OverlaySystem struct {
	Items      ecs.Query[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]
	State      ecs.Singleton[OverlayState]

	Stats     StatsWindow
	Browser   EntityBrowserWindow
	Inspector ComponentInspectorWindow

	scheduler *ecs.Scheduler
}

// NewOverlaySystem returns an overlay for the storage, reporting execution
// statistics for the given scheduler. The ImguiInputState and OverlayState
// singletons are created if the storage does not hold them yet; the overlay
// starts hidden.
func NewOverlaySystem(storage *ecs.Storage, scheduler *ecs.Scheduler) *OverlaySystem {
	return &OverlaySystem{
		InputState: *ecs.NewSingleton[ImguiInputState](storage),
		State:      *ecs.NewSingleton[OverlayState](storage),
		scheduler:  scheduler,
	}
}

// Execute updates input capture state and queues all window render functions
// for execution after the frame's structural changes.
func (o *OverlaySystem) Execute(frame *ecs.UpdateFrame) {
	input := o.InputState.Get()

	if !o.State.Get().Visible {
		input.WantCaptureMouse = false
		input.WantCaptureKeyboard = false
		return
	}

	input.WantCaptureMouse = imgui.CurrentIO().WantCaptureMouse()
	input.WantCaptureKeyboard = imgui.CurrentIO().WantCaptureKeyboard()

	storage := frame.Storage
	dt := float32(frame.DeltaTime)
	frame.Commands.Defer(func() {
		o.Stats.render(storage, o.scheduler, dt)
		o.Browser.render(storage)
		o.Inspector.render(storage, o.Browser.Selected())
	})

	for item := range o.Items.Values() {
		frame.Commands.Defer(item.Render)
	}
}
