package debugui

import (
	"testing"

	"github.com/plus3/blockfall/ecs"
)

type debugPos struct{ X, Y float64 }
type debugTag struct{ Label string }

func newBrowserStorage() *ecs.Storage {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[debugPos](registry)
	ecs.RegisterComponent[debugTag](registry)
	return ecs.NewStorage(registry)
}

func TestEntityBrowserFilter(t *testing.T) {
	w := &EntityBrowserWindow{rows: []entityRow{
		{id: 12, archetypeId: 0xA1, componentTypes: []string{"demo.Position", "demo.Velocity"}},
		{id: 30, archetypeId: 0xB2, componentTypes: []string{"demo.Position"}},
		{id: 45, archetypeId: 0xB2, componentTypes: []string{"demo.Health"}},
	}}

	t.Run("empty filter returns everything", func(t *testing.T) {
		if got := w.filteredRows(); len(got) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(got))
		}
	})

	t.Run("matches component names case-insensitively", func(t *testing.T) {
		w.filterText = "VELOCITY"
		got := w.filteredRows()
		if len(got) != 1 || got[0].id != 12 {
			t.Fatalf("expected row 12, got %v", got)
		}
	})

	t.Run("matches archetype id in hex", func(t *testing.T) {
		w.filterText = "0xb2"
		got := w.filteredRows()
		if len(got) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(got))
		}
	})

	t.Run("matches entity id digits", func(t *testing.T) {
		w.filterText = "45"
		got := w.filteredRows()
		if len(got) != 1 || got[0].id != 45 {
			t.Fatalf("expected row 45, got %v", got)
		}
	})

	t.Run("no match yields no rows", func(t *testing.T) {
		w.filterText = "zzz"
		if got := w.filteredRows(); len(got) != 0 {
			t.Fatalf("expected no rows, got %v", got)
		}
	})
}

func TestEntityBrowserSort(t *testing.T) {
	newWindow := func() *EntityBrowserWindow {
		return &EntityBrowserWindow{rows: []entityRow{
			{id: 3, archetypeId: 2, componentTypes: []string{"b"}},
			{id: 1, archetypeId: 9, componentTypes: []string{"c"}},
			{id: 2, archetypeId: 4, componentTypes: []string{"a"}},
		}}
	}

	t.Run("defaults to ascending entity id", func(t *testing.T) {
		w := newWindow()
		w.sortRows()
		for i, want := range []ecs.EntityId{1, 2, 3} {
			if w.rows[i].id != want {
				t.Fatalf("row %d: expected id %d, got %d", i, want, w.rows[i].id)
			}
		}
	})

	t.Run("sorts by archetype id", func(t *testing.T) {
		w := newWindow()
		w.sortColumn = 1
		w.sortRows()
		for i, want := range []ecs.EntityId{3, 2, 1} {
			if w.rows[i].id != want {
				t.Fatalf("row %d: expected id %d, got %d", i, want, w.rows[i].id)
			}
		}
	})

	t.Run("descending flips the order", func(t *testing.T) {
		w := newWindow()
		w.sortColumn = 2
		w.sortDescending = true
		w.sortRows()
		for i, want := range []ecs.EntityId{1, 3, 2} {
			if w.rows[i].id != want {
				t.Fatalf("row %d: expected id %d, got %d", i, want, w.rows[i].id)
			}
		}
	})
}

func TestEntityBrowserRebuild(t *testing.T) {
	storage := newBrowserStorage()
	w := &EntityBrowserWindow{}

	ids := []ecs.EntityId{
		storage.Spawn(debugPos{X: 1}),
		storage.Spawn(debugPos{X: 2}),
		storage.Spawn(debugPos{X: 3}),
	}

	w.rebuildIfStale(storage)
	if len(w.rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(w.rows))
	}

	// A delete leaves the archetype count unchanged but must still
	// invalidate the cache.
	storage.Delete(ids[1])
	w.rebuildIfStale(storage)
	if len(w.rows) != 2 {
		t.Fatalf("expected 2 rows after delete, got %d", len(w.rows))
	}
	for _, row := range w.rows {
		if row.id == ids[1] {
			t.Fatalf("deleted entity %d still listed", ids[1])
		}
	}

	// A new archetype shows up on the next rebuild.
	storage.Spawn(debugTag{Label: "marker"})
	w.rebuildIfStale(storage)
	if len(w.rows) != 3 {
		t.Fatalf("expected 3 rows after new archetype, got %d", len(w.rows))
	}

	// Unchanged storage keeps the cached rows.
	before := &w.rows[0]
	w.rebuildIfStale(storage)
	if before != &w.rows[0] {
		t.Fatal("cache rebuilt without a storage change")
	}
}

func TestEntityBrowserSelected(t *testing.T) {
	storage := newBrowserStorage()
	w := &EntityBrowserWindow{}

	if w.Selected() != nil {
		t.Fatal("expected no selection on a fresh window")
	}

	id := storage.Spawn(debugPos{X: 1})
	w.selected = storage.CreateEntityRef(id)

	ref := w.Selected()
	if ref == nil || ref.Id != id {
		t.Fatalf("expected selection %d, got %v", id, ref)
	}

	// The selection clears itself when the entity dies.
	storage.Delete(id)
	if w.Selected() != nil {
		t.Fatal("expected selection to clear after delete")
	}
}
