package debugui

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/blockfall/ecs"
)

const defaultPageSize = 100

type entityRow struct {
	id             ecs.EntityId
	archetypeId    uint32
	componentTypes []string
}

// EntityBrowserWindow lists live entities in a filterable, sortable table.
// The selection is held as an EntityRef, so it follows the entity across
// archetype moves and compaction and clears when the entity dies. The zero
// value is ready to use.
type EntityBrowserWindow struct {
	rows               []entityRow
	lastArchetypeCount int
	lastEntityCount    int

	selected       *ecs.EntityRef
	filterText     string
	sortColumn     int
	sortDescending bool
	pageSize       int
	page           int
}

func (w *EntityBrowserWindow) render(storage *ecs.Storage) {
	if !imgui.BeginV("Entities", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	if w.pageSize <= 0 {
		w.pageSize = defaultPageSize
	}

	w.rebuildIfStale(storage)

	imgui.InputTextWithHint("##filter", "Filter...", &w.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear") {
		w.filterText = ""
	}

	rows := w.filteredRows()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity")
		imgui.TableSetupColumn("Archetype")
		imgui.TableSetupColumn("Components")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			w.sortColumn = int(spec.ColumnIndex())
			w.sortDescending = spec.SortDirection() != imgui.SortDirectionAscending
			w.sortRows()
			sortSpecs.SetSpecsDirty(false)
			rows = w.filteredRows()
		}

		selectedId, _ := storage.ResolveEntityRef(w.selected)

		start := w.page * w.pageSize
		if start >= len(rows) {
			start = 0
			w.page = 0
		}
		end := min(start+w.pageSize, len(rows))

		for _, row := range rows[start:end] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			if imgui.SelectableBoolV(fmt.Sprintf("%d", row.id), row.id == selectedId, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				w.selected = storage.CreateEntityRef(row.id)
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("0x%X", row.archetypeId))

			imgui.TableNextColumn()
			imgui.Text(strings.Join(row.componentTypes, ", "))
		}

		imgui.EndTable()
	}

	if len(rows) > w.pageSize {
		totalPages := (len(rows) + w.pageSize - 1) / w.pageSize
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", w.page+1, totalPages, len(rows)))
		imgui.SameLine()
		if imgui.Button("Prev") && w.page > 0 {
			w.page--
		}
		imgui.SameLine()
		if imgui.Button("Next") && w.page < totalPages-1 {
			w.page++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(rows)))
	}

	imgui.End()
}

// Selected returns the reference for the selected entity, or nil when
// nothing is selected or the selection has died.
func (w *EntityBrowserWindow) Selected() *ecs.EntityRef {
	if w.selected == nil || w.selected.Id == 0 {
		return nil
	}
	return w.selected
}

// rebuildIfStale recollects the rows when the storage shape changed. Both
// archetype and entity counts are checked; deletes and spawns within an
// existing archetype must invalidate the cache too.
func (w *EntityBrowserWindow) rebuildIfStale(storage *ecs.Storage) {
	archetypes := storage.GetArchetypes()
	entityCount := 0
	for _, archetype := range archetypes {
		entityCount += archetype.Len()
	}

	if w.rows != nil && len(archetypes) == w.lastArchetypeCount && entityCount == w.lastEntityCount {
		return
	}
	w.lastArchetypeCount = len(archetypes)
	w.lastEntityCount = entityCount

	w.rows = make([]entityRow, 0, entityCount)
	for _, archetype := range archetypes {
		names := typeNames(archetype.Types())
		for id := range archetype.Iter() {
			w.rows = append(w.rows, entityRow{
				id:             id,
				archetypeId:    archetype.ID(),
				componentTypes: names,
			})
		}
	}

	w.sortRows()
}

func (w *EntityBrowserWindow) sortRows() {
	sort.Slice(w.rows, func(i, j int) bool {
		a, b := w.rows[i], w.rows[j]
		if w.sortDescending {
			a, b = b, a
		}

		switch w.sortColumn {
		case 1:
			return a.archetypeId < b.archetypeId
		case 2:
			return strings.Join(a.componentTypes, ",") < strings.Join(b.componentTypes, ",")
		default:
			return a.id < b.id
		}
	})
}

func (w *EntityBrowserWindow) filteredRows() []entityRow {
	if w.filterText == "" {
		return w.rows
	}

	needle := strings.ToLower(w.filterText)
	filtered := make([]entityRow, 0, len(w.rows))

	for _, row := range w.rows {
		if strings.Contains(fmt.Sprintf("%d", row.id), needle) ||
			strings.Contains(fmt.Sprintf("0x%x", row.archetypeId), needle) ||
			strings.Contains(strings.ToLower(strings.Join(row.componentTypes, " ")), needle) {
			filtered = append(filtered, row)
		}
	}

	return filtered
}

func typeNames(types []reflect.Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}
