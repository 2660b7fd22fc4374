package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

// iface mirrors the runtime layout of a non-empty interface value. Views use
// it to pull the raw data pointer out of a component returned as any.
type iface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

var entityIdType = reflect.TypeFor[EntityId]()

// View projects entities onto a result struct T. Each pointer field of T
// names a component the entity must have and is filled with a direct pointer
// into storage; each EntityId field (named or embedded) is filled with the
// entity's id. Field pointers stay valid until the entity is deleted, moved,
// or compacted.
//
// Views match archetypes on every iteration. Inside systems prefer Query,
// which adds archetype caching and is refreshed by the Scheduler.
type View[T any] struct {
	storage *Storage

	compTypes   []reflect.Type
	compOffsets []uintptr
	idOffsets   []uintptr
}

// NewView creates a view for the result struct T. Panics if T is not a
// struct or has a field that is neither a component pointer nor an EntityId.
func NewView[T any](storage *Storage) *View[T] {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v := &View[T]{storage: storage}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if field.Type == entityIdType {
			v.idOffsets = append(v.idOffsets, field.Offset)
			continue
		}

		if field.Type.Kind() != reflect.Ptr {
			panic("View struct fields must be component pointers or ecs.EntityId, got " + field.Type.String())
		}

		v.compTypes = append(v.compTypes, field.Type.Elem())
		v.compOffsets = append(v.compOffsets, field.Offset)
	}

	return v
}

// Fill populates *ptr for the given entity. Returns false if the entity does
// not exist or is missing any of the view's components.
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	archetype, ok := v.storage.archetypes[id.ArchetypeId()]
	if !ok {
		return false
	}

	structPtr := unsafe.Pointer(ptr)

	for i, compType := range v.compTypes {
		component := archetype.GetComponent(id.Index(), compType)
		if component == nil {
			return false
		}

		fieldPtr := unsafe.Pointer(uintptr(structPtr) + v.compOffsets[i])
		*(*unsafe.Pointer)(fieldPtr) = (*iface)(unsafe.Pointer(&component)).data
	}

	v.fillIds(structPtr, id)
	return true
}

// Get returns a populated result struct for the entity, or nil if the entity
// is missing any of the view's components.
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

// GetRef is Get through an EntityRef; returns nil for a dead ref.
func (v *View[T]) GetRef(ref *EntityRef) *T {
	entityId, ok := v.storage.ResolveEntityRef(ref)
	if !ok {
		return nil
	}
	return v.Get(entityId)
}

// Iter yields (id, result) for every entity that has all of the view's
// components. Do not spawn or delete entities mid-iteration; defer
// structural changes through Commands.
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		for _, archetype := range v.storage.archetypes {
			if !v.matchesArchetype(archetype) {
				continue
			}
			if len(archetype.columns) == 0 {
				continue
			}

			columnIndices := v.columnIndices(archetype)

			var result T
			resultPtr := unsafe.Pointer(&result)

			for index := range archetype.columns[0].Iter() {
				entityId := NewEntityId(archetype.id, uint32(index))
				if !v.populateResult(resultPtr, archetype, index, columnIndices, entityId) {
					continue
				}
				if !yield(entityId, result) {
					return
				}
			}
		}
	}
}

// Values yields only the result structs, for callers that do not need ids.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// matchesArchetype reports whether the archetype carries every component the
// view projects.
func (v *View[T]) matchesArchetype(archetype *Archetype) bool {
	for _, compType := range v.compTypes {
		if !archetype.HasComponent(compType) {
			return false
		}
	}
	return true
}

// columnIndices maps each view component to its column position within the
// archetype (-1 when absent).
func (v *View[T]) columnIndices(archetype *Archetype) []int {
	indices := make([]int, len(v.compTypes))
	for i, compType := range v.compTypes {
		indices[i] = -1
		for idx, archetypeType := range archetype.types {
			if archetypeType == compType {
				indices[i] = idx
				break
			}
		}
	}
	return indices
}

// populateResult writes component pointers and entity ids straight into the
// result struct through precomputed field offsets, skipping reflection on
// the per-entity path.
func (v *View[T]) populateResult(resultPtr unsafe.Pointer, archetype *Archetype, index int, columnIndices []int, id EntityId) bool {
	for i, columnIdx := range columnIndices {
		if columnIdx == -1 {
			return false
		}

		component := archetype.columns[columnIdx].Get(index)
		if component == nil {
			return false
		}

		fieldPtr := unsafe.Pointer(uintptr(resultPtr) + v.compOffsets[i])
		*(*unsafe.Pointer)(fieldPtr) = (*iface)(unsafe.Pointer(&component)).data
	}

	v.fillIds(resultPtr, id)
	return true
}

func (v *View[T]) fillIds(structPtr unsafe.Pointer, id EntityId) {
	for _, offset := range v.idOffsets {
		*(*EntityId)(unsafe.Pointer(uintptr(structPtr) + offset)) = id
	}
}
