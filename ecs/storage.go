package ecs

import (
	"reflect"
	"slices"
	"strings"
	"weak"
)

// Storage owns all entities, grouped into archetypes by their component set,
// plus the singleton components that are not tied to any entity. A Storage is
// not safe for concurrent use; drive it from a single goroutine, normally
// through a Scheduler.
type Storage struct {
	archetypes map[uint32]*Archetype
	singletons map[reflect.Type]*singletonEntry
	registry   *ComponentRegistry
}

// NewStorage creates an empty storage backed by the given registry.
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		archetypes: make(map[uint32]*Archetype),
		singletons: make(map[reflect.Type]*singletonEntry),
		registry:   registry,
	}
}

// Spawn creates an entity from the given components and returns its id.
// Components may be passed by value or by pointer. Panics when called with
// no components or with an unregistered component type.
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	types := sortedComponentTypes(components)
	archetypeId := archetypeHash(types)

	archetype, exists := s.archetypes[archetypeId]
	if !exists {
		archetype = NewArchetype(archetypeId, types, s.registry)
		s.archetypes[archetypeId] = archetype
	}

	index := archetype.Spawn(components)
	return NewEntityId(archetypeId, index)
}

// Delete removes the entity and zeroes any EntityRef pointing at it.
// Deleting an unknown id is a no-op.
func (s *Storage) Delete(id EntityId) {
	if archetype, ok := s.archetypes[id.ArchetypeId()]; ok {
		archetype.Delete(id.Index())
	}
}

// GetComponent returns a pointer (as any) to the entity's component of the
// given type, or nil if the entity or component does not exist. The pointer
// stays valid until the entity is deleted, moved, or compacted.
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok {
		return nil
	}
	return archetype.GetComponent(id.Index(), compType)
}

// HasComponent reports whether the entity's archetype carries the component
// type.
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok {
		return false
	}
	return archetype.HasComponent(compType)
}

// AddComponent moves the entity to the archetype that also includes the new
// component and returns its new id. The old id goes stale; EntityRefs are
// carried over.
func (s *Storage) AddComponent(id EntityId, component any) EntityId {
	oldArchetype := s.archetypes[id.ArchetypeId()]

	compType := reflect.TypeOf(component)
	if compType.Kind() == reflect.Ptr {
		compType = compType.Elem()
	}

	newTypes := make([]reflect.Type, 0, len(oldArchetype.types)+1)
	newTypes = append(newTypes, oldArchetype.types...)
	newTypes = append(newTypes, compType)
	sortTypesByName(newTypes)

	newArchetype := s.ensureArchetype(newTypes)

	components := make([]any, 0, len(newTypes))
	for _, typ := range newTypes {
		if typ == compType {
			components = append(components, component)
		} else {
			components = append(components, oldArchetype.GetComponent(id.Index(), typ))
		}
	}

	return s.moveEntity(id, oldArchetype, newArchetype, components)
}

// RemoveComponent moves the entity to the archetype without the component
// type and returns its new id. Removing the last component deletes the
// entity and returns 0.
func (s *Storage) RemoveComponent(id EntityId, compType reflect.Type) EntityId {
	oldArchetype := s.archetypes[id.ArchetypeId()]

	newTypes := make([]reflect.Type, 0, len(oldArchetype.types)-1)
	for _, typ := range oldArchetype.types {
		if typ != compType {
			newTypes = append(newTypes, typ)
		}
	}

	if len(newTypes) == 0 {
		oldArchetype.Delete(id.Index())
		return 0
	}

	newArchetype := s.ensureArchetype(newTypes)

	components := make([]any, 0, len(newTypes))
	for _, typ := range newTypes {
		components = append(components, oldArchetype.GetComponent(id.Index(), typ))
	}

	return s.moveEntity(id, oldArchetype, newArchetype, components)
}

// ensureArchetype returns the archetype for the sorted type set, creating it
// on first use.
func (s *Storage) ensureArchetype(types []reflect.Type) *Archetype {
	archetypeId := archetypeHash(types)
	archetype, exists := s.archetypes[archetypeId]
	if !exists {
		archetype = NewArchetype(archetypeId, types, s.registry)
		s.archetypes[archetypeId] = archetype
	}
	return archetype
}

// moveEntity spawns the component set into the target archetype, rewires any
// EntityRef, and deletes the source slot.
func (s *Storage) moveEntity(id EntityId, from, to *Archetype, components []any) EntityId {
	weakPtr, hasRef := from.refs.Get(id)

	newIndex := to.Spawn(components)
	newId := NewEntityId(to.id, newIndex)

	if hasRef {
		if ref := weakPtr.Value(); ref != nil {
			ref.Id = newId
			ref.Archetype = to
		}
		from.refs.Del(id)
		to.refs.Put(newId, weakPtr)
	}

	from.Delete(id.Index())
	return newId
}

// CreateEntityRef returns the stable reference for the entity, reusing the
// live one if it already exists. Returns nil for an unknown id.
func (s *Storage) CreateEntityRef(id EntityId) *EntityRef {
	archetype := s.archetypes[id.ArchetypeId()]
	if archetype == nil {
		return nil
	}

	if weakPtr, ok := archetype.refs.Get(id); ok {
		if ref := weakPtr.Value(); ref != nil {
			return ref
		}
		// The referent was collected; drop the dead pointer.
		archetype.refs.Del(id)
	}

	ref := &EntityRef{
		Id:        id,
		Archetype: archetype,
	}
	archetype.refs.Put(id, weak.Make(ref))
	return ref
}

// ResolveEntityRef returns the entity's current id, or false if the ref is
// nil or the entity has been deleted.
func (s *Storage) ResolveEntityRef(ref *EntityRef) (EntityId, bool) {
	if ref == nil || ref.Id == 0 {
		return 0, false
	}
	return ref.Id, true
}

// InvalidateEntityRef detaches the ref from its entity without deleting the
// entity. Reports whether the ref was live.
func (s *Storage) InvalidateEntityRef(ref *EntityRef) bool {
	if ref == nil || ref.Id == 0 {
		return false
	}

	if archetype := s.archetypes[ref.Id.ArchetypeId()]; archetype != nil {
		archetype.refs.Del(ref.Id)
	}

	ref.Id = 0
	ref.Archetype = nil
	return true
}

// GetArchetype returns the archetype for the component set, or nil if no
// entity with exactly that set has been spawned. Components may be passed by
// value or pointer, in any order.
func (s *Storage) GetArchetype(components ...any) *Archetype {
	return s.archetypes[archetypeHash(sortedComponentTypes(components))]
}

// GetArchetypeByTypes is GetArchetype for callers that already hold
// reflect.Types. The slice is sorted in place.
func (s *Storage) GetArchetypeByTypes(types []reflect.Type) *Archetype {
	sortTypesByName(types)
	return s.archetypes[archetypeHash(types)]
}

// GetArchetypeById returns the archetype with the given id, or nil.
func (s *Storage) GetArchetypeById(id uint32) *Archetype {
	return s.archetypes[id]
}

// GetArchetypes returns all archetypes ordered by id.
func (s *Storage) GetArchetypes() []*Archetype {
	archetypes := make([]*Archetype, 0, len(s.archetypes))
	for _, a := range s.archetypes {
		archetypes = append(archetypes, a)
	}
	slices.SortFunc(archetypes, func(a, b *Archetype) int {
		if a.id < b.id {
			return -1
		}
		if a.id > b.id {
			return 1
		}
		return 0
	})
	return archetypes
}

// Compact rewrites every archetype's columns without holes. EntityRefs stay
// valid; raw EntityIds and component pointers taken before the call do not.
func (s *Storage) Compact() {
	for _, archetype := range s.archetypes {
		archetype.Compact()
	}
}

// sortedComponentTypes derives the sorted component type set from a slice of
// component values. Pointers are unwrapped one level; a component itself must
// be a value type.
func sortedComponentTypes(components []any) []reflect.Type {
	types := make([]reflect.Type, 0, len(components))
	for _, comp := range components {
		compType := reflect.TypeOf(comp)
		if compType.Kind() == reflect.Ptr {
			compType = compType.Elem()
		}

		switch compType.Kind() {
		case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
			panic("components cannot be pointers, maps, channels, or functions")
		}

		types = append(types, compType)
	}
	sortTypesByName(types)
	return types
}

func sortTypesByName(types []reflect.Type) {
	slices.SortFunc(types, func(a, b reflect.Type) int {
		return strings.Compare(a.String(), b.String())
	})
}

// archetypeHash maps a sorted type set to an archetype id by running FNV-1a
// over the type names. Hashing names rather than runtime type pointers keeps
// ids identical across processes, which keeps archetype ids comparable
// between runs in stats output.
func archetypeHash(types []reflect.Type) uint32 {
	const (
		offsetBasis uint32 = 2166136261
		prime       uint32 = 16777619
	)

	h := offsetBasis
	for _, t := range types {
		name := t.String()
		for i := 0; i < len(name); i++ {
			h ^= uint32(name[i])
			h *= prime
		}
		// Separator byte so adjacent names never run together.
		h ^= uint32(';')
		h *= prime
	}
	return h
}

// ComponentReader is the read side of Storage used by ReadComponent.
type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent returns a typed pointer to the entity's component, or nil if
// the entity or component does not exist.
func ReadComponent[T any](reader ComponentReader, entityId EntityId) *T {
	comp, _ := reader.GetComponent(entityId, reflect.TypeFor[T]()).(*T)
	return comp
}
