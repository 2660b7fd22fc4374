package main

import (
	"flag"
	"log"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/blockfall/ecs"
	"github.com/plus3/blockfall/ecs/debugui"
	debugui_ebiten "github.com/plus3/blockfall/ecs/debugui/ebiten"
	"github.com/plus3/blockfall/game"
)

type Game struct {
	Storage         *ecs.Storage
	Scheduler       *ecs.Scheduler
	RenderScheduler *ecs.Scheduler
	Backend         *ecs.Singleton[debugui_ebiten.ImguiBackend]
	Screen          *ecs.Singleton[game.Screen]
	Viewport        *ecs.Singleton[game.Viewport]
	Overlay         *ecs.Singleton[debugui.OverlayState]
	Pause           *ecs.Singleton[game.PauseState]
}

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file. Defaults to ./blockfall.yaml when present.")
	debug := flag.Bool("debug", false, "Start with the debug overlay visible.")
	vsync := flag.Bool("vsync", true, "Synchronize rendering with the display refresh rate.")
	flag.Parse()

	settings, err := game.LoadSettings(*configPath)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	backend := debugui_ebiten.NewBackend()
	width, height := settings.WindowSize()
	backend.CreateWindow(settings.Window.Title, width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(*vsync)
	imgui.CurrentIO().SetIniFilename("") // Disable imgui.ini

	registry := ecs.NewComponentRegistry()
	game.RegisterComponents(registry)
	debugui.RegisterComponents(registry)

	storage := ecs.NewStorage(registry)
	game.Setup(storage, settings)
	ecs.NewSingleton(storage, backend)
	game.SpawnDebugWindows(storage)

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(debugui.NewOverlaySystem(storage, scheduler))
	scheduler.Register(&game.PollInputSystem{})
	scheduler.Register(&game.OccupancySystem{})
	scheduler.RegisterFixed(settings.Cadence.ControlSeconds, &game.ControlSystem{})
	scheduler.RegisterFixed(settings.Cadence.FallSeconds, &game.FallSystem{}, &game.PlacementSystem{})

	renderScheduler := ecs.NewScheduler(storage)
	renderScheduler.Register(&game.ScaleSystem{})
	renderScheduler.Register(&game.TranslationSystem{})
	renderScheduler.Register(&game.RenderSystem{})

	overlay := ecs.NewSingleton[debugui.OverlayState](storage)
	if *debug {
		overlay.Get().Visible = true
	}

	g := &Game{
		Storage:         storage,
		Scheduler:       scheduler,
		RenderScheduler: renderScheduler,
		Backend:         ecs.NewSingleton[debugui_ebiten.ImguiBackend](storage),
		Screen:          ecs.NewSingleton[game.Screen](storage),
		Viewport:        ecs.NewSingleton[game.Viewport](storage),
		Overlay:         overlay,
		Pause:           ecs.NewSingleton[game.PauseState](storage),
	}

	if err := ebiten.RunGame(g); err != nil {
		log.Fatalf("Game exited with error: %v", err)
	}
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyQ) || ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		game.Reset(g.Storage)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		pause := g.Pause.Get()
		pause.Paused = !pause.Paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		state := g.Overlay.Get()
		state.Visible = !state.Visible
	}

	// The overlay system renders between BeginFrame and EndFrame.
	backend := g.Backend.Get()
	backend.BeginFrame()
	g.Scheduler.Once(1.0 / 60.0)
	backend.EndFrame()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	viewport := g.Viewport.Get()
	viewport.W = float32(screen.Bounds().Dx())
	viewport.H = float32(screen.Bounds().Dy())

	target := g.Screen.Get()
	target.Image = screen
	g.RenderScheduler.Once(0)
	target.Image = nil

	// Game content first, ImGui on top.
	g.Backend.Get().Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.Backend.Get().Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}
