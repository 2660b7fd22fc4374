package ecs

import (
	"iter"
	"unsafe"
)

// Query is a View plus two levels of caching: the list of matching archetypes
// (rebuilt when archetypes appear) and the flat entity/result arrays for the
// current frame (rebuilt by Refresh).
//
// Declare Query fields on a system struct; the Scheduler binds them at
// registration and calls Refresh on all of them before any system runs, so
// every system in a frame iterates the same snapshot. Standalone queries must
// call Refresh themselves. Iterating a query that was never refreshed panics.
type Query[T any] struct {
	view    *View[T]
	storage *Storage

	cachedArchetypes   []*Archetype
	lastArchetypeCount int

	cachedEntities []EntityId
	cachedResults  []T
	cacheValid     bool
}

// NewQuery creates a standalone query. Call Refresh before iterating.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init binds the query to a storage and clears all caches. The Scheduler
// calls this for Query fields of registered systems.
func (q *Query[T]) Init(storage *Storage) {
	q.view = NewView[T](storage)
	q.storage = storage
	q.cachedArchetypes = nil
	q.lastArchetypeCount = -1
	q.cacheValid = false
}

// Refresh rebuilds the entity and result caches from current storage.
// Component pointers inside cached results point into storage, so data
// written through them between refreshes is immediately visible; structural
// changes (spawns, deletes, moves) only show up after the next Refresh.
func (q *Query[T]) Refresh() {
	if count := len(q.storage.archetypes); count != q.lastArchetypeCount {
		q.cachedArchetypes = nil
		q.lastArchetypeCount = count
	}

	if q.cachedArchetypes == nil {
		q.cachedArchetypes = make([]*Archetype, 0)
		for _, archetype := range q.storage.archetypes {
			if q.view.matchesArchetype(archetype) {
				q.cachedArchetypes = append(q.cachedArchetypes, archetype)
			}
		}
	}

	q.cachedEntities = q.cachedEntities[:0]
	q.cachedResults = q.cachedResults[:0]

	for _, archetype := range q.cachedArchetypes {
		for id, result := range q.iterArchetype(archetype) {
			q.cachedEntities = append(q.cachedEntities, id)
			q.cachedResults = append(q.cachedResults, result)
		}
	}

	q.cacheValid = true
}

func (q *Query[T]) iterArchetype(archetype *Archetype) iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		if len(archetype.columns) == 0 {
			return
		}

		columnIndices := q.view.columnIndices(archetype)

		var result T
		resultPtr := unsafe.Pointer(&result)

		for index := range archetype.columns[0].Iter() {
			entityId := NewEntityId(archetype.id, uint32(index))
			if !q.view.populateResult(resultPtr, archetype, index, columnIndices, entityId) {
				continue
			}
			if !yield(entityId, result) {
				return
			}
		}
	}
}

// Iter yields (id, result) from the cache built by the last Refresh.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	q.mustBeRefreshed()

	return func(yield func(EntityId, T) bool) {
		for i := range q.cachedEntities {
			if !yield(q.cachedEntities[i], q.cachedResults[i]) {
				return
			}
		}
	}
}

// Values yields only the cached result structs.
func (q *Query[T]) Values() iter.Seq[T] {
	q.mustBeRefreshed()

	return func(yield func(T) bool) {
		for i := range q.cachedResults {
			if !yield(q.cachedResults[i]) {
				return
			}
		}
	}
}

// Count returns the number of entities in the cache built by the last
// Refresh.
func (q *Query[T]) Count() int {
	q.mustBeRefreshed()
	return len(q.cachedEntities)
}

func (q *Query[T]) mustBeRefreshed() {
	if !q.cacheValid {
		panic("Query used before Refresh; register the owning system with a Scheduler or call Refresh directly")
	}
}
