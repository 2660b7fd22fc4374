package debugui

import (
	"fmt"
	"strings"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/blockfall/ecs"
)

const defaultFrameHistory = 120

// StatsWindow shows storage statistics, a frame time graph and per-system
// scheduler timings. The zero value is ready to use.
type StatsWindow struct {
	frameHistory []float32
	frameIndex   int
}

func (w *StatsWindow) render(storage *ecs.Storage, scheduler *ecs.Scheduler, deltaTime float32) {
	if !imgui.BeginV("Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	if len(w.frameHistory) == 0 {
		w.frameHistory = make([]float32, defaultFrameHistory)
	}
	w.frameHistory[w.frameIndex] = deltaTime * 1000.0
	w.frameIndex = (w.frameIndex + 1) % len(w.frameHistory)

	stats := storage.CollectStats()

	imgui.Text(fmt.Sprintf("Entities: %d", stats.TotalEntityCount))
	imgui.Text(fmt.Sprintf("Archetypes: %d", stats.ArchetypeCount))
	imgui.Text(fmt.Sprintf("Singletons: %d", stats.SingletonCount))

	var avgFrameTime float32
	for _, ft := range w.frameHistory {
		avgFrameTime += ft
	}
	avgFrameTime /= float32(len(w.frameHistory))

	if avgFrameTime > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avgFrameTime, 1000.0/avgFrameTime))
	}

	imgui.Separator()
	imgui.Text("Frame Time (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &w.frameHistory[0], int32(len(w.frameHistory)))

	if scheduler != nil {
		w.renderSystemTable(scheduler)
	}

	if imgui.TreeNodeStr("Archetypes") {
		w.renderArchetypeTable(stats)
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Singletons") {
		for _, name := range stats.SingletonTypes {
			imgui.BulletText(name)
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (w *StatsWindow) renderSystemTable(scheduler *ecs.Scheduler) {
	if !imgui.TreeNodeStr("Systems") {
		return
	}

	stats := scheduler.GetStats()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if imgui.BeginTableV("SystemStatsTable", 6, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("System")
		imgui.TableSetupColumn("Step")
		imgui.TableSetupColumn("Runs")
		imgui.TableSetupColumn("Last")
		imgui.TableSetupColumn("Avg")
		imgui.TableSetupColumn("Max")
		imgui.TableHeadersRow()

		for _, sys := range stats.Systems {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			imgui.Text(sys.Name)

			imgui.TableNextColumn()
			if sys.FixedStep > 0 {
				imgui.Text(fmt.Sprintf("%gs", sys.FixedStep))
			} else {
				imgui.Text("frame")
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", sys.ExecutionCount))

			imgui.TableNextColumn()
			imgui.Text(formatDuration(sys.LastDuration))

			imgui.TableNextColumn()
			imgui.Text(formatDuration(sys.AvgDuration))

			imgui.TableNextColumn()
			imgui.Text(formatDuration(sys.MaxDuration))
		}

		imgui.EndTable()
	}

	imgui.TreePop()
}

func (w *StatsWindow) renderArchetypeTable(stats *ecs.StorageStats) {
	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if imgui.BeginTableV("ArchStatsTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("ID")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Entities")
		imgui.TableHeadersRow()

		for _, arch := range stats.ArchetypeBreakdown {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("0x%X", arch.ID))

			imgui.TableNextColumn()
			imgui.Text(strings.Join(arch.ComponentTypes, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", arch.EntityCount))
		}

		imgui.EndTable()
	}
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}
