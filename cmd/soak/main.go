package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/plus3/blockfall/ecs"
	"github.com/plus3/blockfall/game"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total wall-clock duration the soak should run for.")
	tick := flag.Duration("tick", 16*time.Millisecond, "The simulated time advanced per update.")
	seed := flag.Uint64("seed", 1, "Seed for the random key script.")
	resetEvery := flag.Duration("reset-every", 0, "Reset the playfield after this much simulated time. Zero disables resets.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	settings := game.DefaultSettings()

	log.Println("Starting soak run...")
	log.Printf("Playfield %dx%d, fall %gs, control %gs\n",
		settings.Grid.Width, settings.Grid.Height,
		settings.Cadence.FallSeconds, settings.Cadence.ControlSeconds)

	// Headless pipeline: no input polling, no rendering. Keys come from a
	// seeded random script instead of the keyboard.
	registry := ecs.NewComponentRegistry()
	game.RegisterComponents(registry)
	storage := ecs.NewStorage(registry)
	game.Setup(storage, settings)

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&game.OccupancySystem{})
	scheduler.RegisterFixed(settings.Cadence.ControlSeconds, &game.ControlSystem{})
	scheduler.RegisterFixed(settings.Cadence.FallSeconds, &game.FallSystem{}, &game.PlacementSystem{})

	var keys *game.KeyState
	storage.ReadSingleton(&keys)

	report := &Report{
		Duration:       *duration,
		Tick:           *tick,
		Seed:           *seed,
		GridWidth:      settings.Grid.Width,
		GridHeight:     settings.Grid.Height,
		GCPauseMetrics: *gcPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	rng := rand.New(rand.NewPCG(*seed, *seed))

	log.Printf("Running soak for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var totalUpdates int64
	var simulated, sinceReset time.Duration

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			// Occasionally change which key is held, if any.
			if rng.IntN(8) == 0 {
				*keys = game.KeyState{}
				switch rng.IntN(4) {
				case 0:
					keys.Left = true
				case 1:
					keys.Right = true
				case 2:
					keys.Down = true
				}
			}

			updateStart := time.Now()
			scheduler.Once(tick.Seconds())
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))

			totalUpdates++
			simulated += *tick
			sinceReset += *tick

			if *resetEvery > 0 && sinceReset >= *resetEvery {
				game.Reset(storage)
				report.Resets++
				sinceReset = 0
			}
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.SimulatedTime = simulated
	report.UpdateTime.Finalize()
	report.FrozenCells = countFrozen(storage)

	stats := storage.CollectStats()
	report.EntityCount = stats.TotalEntityCount
	report.ArchetypeCount = stats.ArchetypeCount

	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Soak finished.")

	fmt.Println("\n\n--- Soak Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")
}

func countFrozen(storage *ecs.Storage) int {
	view := ecs.NewView[struct{ *game.Cell }](storage)

	count := 0
	for _, item := range view.Iter() {
		if item.Cell.Kind == game.CellFrozen {
			count++
		}
	}
	return count
}
