package ecs

import (
	"iter"
	"reflect"
	"slices"
	"weak"

	"github.com/kamstrup/intmap"
)

// Archetype holds every entity that has exactly one combination of component
// types. Components live in per-type columns; an entity occupies the same
// slot index in each column.
type Archetype struct {
	id      uint32
	types   []reflect.Type
	columns []componentColumn
	refs    *intmap.Map[EntityId, weak.Pointer[EntityRef]]
}

// NewArchetype creates an archetype for the given sorted component types.
// Panics if any of the types is missing from the registry.
func NewArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:      id,
		types:   types,
		columns: make([]componentColumn, len(types)),
		refs:    intmap.New[EntityId, weak.Pointer[EntityRef]](256),
	}

	for idx, typ := range types {
		factory := registry.getFactory(typ)
		if factory == nil {
			panic("component type " + typ.String() + " not registered")
		}
		a.columns[idx] = factory()
	}

	return a
}

// Spawn appends the components to their columns and returns the slot index.
// Every column hands out the same index because they grow in lockstep.
func (a *Archetype) Spawn(components []any) uint32 {
	var slot int
	for _, comp := range components {
		compType := reflect.TypeOf(comp)
		if compType.Kind() == reflect.Ptr {
			compType = compType.Elem()
		}

		for idx, typ := range a.types {
			if typ == compType {
				slot = a.columns[idx].Append(comp)
			}
		}
	}

	return uint32(slot)
}

// GetComponent returns a pointer (as any) to the component of the given type
// at the slot, or nil if the archetype lacks the type or the slot is empty.
func (a *Archetype) GetComponent(index uint32, compType reflect.Type) any {
	for i, typ := range a.types {
		if typ == compType {
			return a.columns[i].Get(int(index))
		}
	}
	return nil
}

// Delete empties the entity's slot in every column. The slot index is
// recycled for later spawns; surviving slots keep their indices. Any
// EntityRef pointing at the entity is zeroed.
func (a *Archetype) Delete(index uint32) {
	entityId := NewEntityId(a.id, index)

	if weakPtr, ok := a.refs.Get(entityId); ok {
		if ref := weakPtr.Value(); ref != nil {
			ref.Id = 0
			ref.Archetype = nil
		}
		a.refs.Del(entityId)
	}

	for _, column := range a.columns {
		column.Delete(int(index))
	}
}

// HasComponent reports whether the archetype stores the given component type.
func (a *Archetype) HasComponent(compType reflect.Type) bool {
	return slices.Contains(a.types, compType)
}

// ID returns the archetype's identifier. Ids are derived from the sorted
// component type names, so the same component set maps to the same id in
// every run.
func (a *Archetype) ID() uint32 {
	return a.id
}

// Types returns the archetype's component types in sorted order.
func (a *Archetype) Types() []reflect.Type {
	return a.types
}

// Len returns the number of live entities in the archetype.
func (a *Archetype) Len() int {
	if len(a.columns) == 0 {
		return 0
	}
	return a.columns[0].Len()
}

// Compact rewrites all columns without holes. Slot indices change; live
// EntityRefs are rewritten to the new indices, so refs survive compaction
// while raw EntityIds and component pointers do not.
func (a *Archetype) Compact() {
	if len(a.columns) == 0 {
		return
	}

	// Columns share slot layout, so the first column's mapping holds for all.
	indexMap := a.columns[0].Compact()
	for i := 1; i < len(a.columns); i++ {
		a.columns[i].Compact()
	}

	moved := make(map[EntityId]weak.Pointer[EntityRef])
	for oldIdx, newIdx := range indexMap {
		oldId := NewEntityId(a.id, uint32(oldIdx))
		weakPtr, ok := a.refs.Get(oldId)
		if !ok {
			continue
		}
		if ref := weakPtr.Value(); ref != nil {
			newId := NewEntityId(a.id, uint32(newIdx))
			ref.Id = newId
			moved[newId] = weakPtr
		}
		// Dead weak pointers are dropped along with the old entries.
	}

	a.refs.Clear()
	for newId, weakPtr := range moved {
		a.refs.Put(newId, weakPtr)
	}
}

// Iter yields the EntityId of every live entity in the archetype.
func (a *Archetype) Iter() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		if len(a.columns) == 0 {
			return
		}

		for index := range a.columns[0].Iter() {
			if !yield(NewEntityId(a.id, uint32(index))) {
				return
			}
		}
	}
}
