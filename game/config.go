package game

import (
	"fmt"
	"image/color"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "blockfall.yaml"

// Settings is the full game configuration. Values omitted from a config
// file keep their defaults.
type Settings struct {
	Window  WindowSettings  `yaml:"window"`
	Grid    GridSettings    `yaml:"grid"`
	Cadence CadenceSettings `yaml:"cadence"`
	Colors  ColorSettings   `yaml:"colors"`
}

type WindowSettings struct {
	Title string `yaml:"title"`
	// BaseHeight is the initial window height in pixels; the width follows
	// from the grid aspect ratio.
	BaseHeight int `yaml:"base_height"`
}

type GridSettings struct {
	Width       int `yaml:"width"`
	Height      int `yaml:"height"`
	SpawnColumn int `yaml:"spawn_column"`
}

type CadenceSettings struct {
	// FallSeconds is the fixed timestep of the gravity systems,
	// ControlSeconds the faster one polling held keys.
	FallSeconds    float64 `yaml:"fall_seconds"`
	ControlSeconds float64 `yaml:"control_seconds"`
}

type ColorSettings struct {
	Background RGB `yaml:"background"`
	Active     RGB `yaml:"active"`
	Frozen     RGB `yaml:"frozen"`
}

// RGB is a config-friendly opaque color.
type RGB struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

func (c RGB) Color() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

func DefaultSettings() Settings {
	return Settings{
		Window: WindowSettings{
			Title:      "Blockfall",
			BaseHeight: 500,
		},
		Grid: GridSettings{
			Width:       8,
			Height:      16,
			SpawnColumn: 5,
		},
		Cadence: CadenceSettings{
			FallSeconds:    0.6,
			ControlSeconds: 0.06,
		},
		Colors: ColorSettings{
			Background: RGB{R: 230, G: 230, B: 230},
			Active:     RGB{R: 255, G: 0, B: 0},
			Frozen:     RGB{R: 26, G: 26, B: 26},
		},
	}
}

// LoadSettings reads configuration from path when given, otherwise from
// blockfall.yaml in the working directory when present, otherwise returns
// the defaults. An explicit path that cannot be read is an error; a missing
// fallback file is not.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return settings, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return settings, fmt.Errorf("parse config %s: %w", path, err)
		}
		return settings, settings.Validate()
	}

	if data, err := os.ReadFile(defaultConfigFile); err == nil {
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return settings, fmt.Errorf("parse config %s: %w", defaultConfigFile, err)
		}
	}

	return settings, settings.Validate()
}

func (s Settings) Validate() error {
	if s.Grid.Width <= 0 || s.Grid.Height <= 0 {
		return fmt.Errorf("grid extent must be positive, got %dx%d", s.Grid.Width, s.Grid.Height)
	}
	if s.Grid.SpawnColumn < 0 || s.Grid.SpawnColumn >= s.Grid.Width {
		return fmt.Errorf("spawn column %d outside grid width %d", s.Grid.SpawnColumn, s.Grid.Width)
	}
	if s.Cadence.FallSeconds <= 0 || s.Cadence.ControlSeconds <= 0 {
		return fmt.Errorf("cadences must be positive, got fall=%g control=%g", s.Cadence.FallSeconds, s.Cadence.ControlSeconds)
	}
	if s.Window.BaseHeight <= 0 {
		return fmt.Errorf("window base height must be positive, got %d", s.Window.BaseHeight)
	}
	return nil
}

// SpawnPosition is the top-row cell where the active cell (re)spawns.
func (s Settings) SpawnPosition() Position {
	return Position{X: s.Grid.SpawnColumn, Y: s.Grid.Height - 1}
}

// WindowSize derives the initial window extent from the base height and the
// grid aspect ratio, so one logical cell starts out square.
func (s Settings) WindowSize() (width, height int) {
	return s.Window.BaseHeight * s.Grid.Width / s.Grid.Height, s.Window.BaseHeight
}
