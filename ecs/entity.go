package ecs

// EntityId packs an entity's location into a single value: the owning
// archetype's id in the upper 32 bits and the slot index in the lower 32.
// The zero EntityId is never handed out and doubles as a "no entity" value.
type EntityId uint64

// NewEntityId builds an EntityId from an archetype id and a slot index.
func NewEntityId(archetypeId uint32, index uint32) EntityId {
	return EntityId(uint64(archetypeId)<<32 | uint64(index))
}

// ArchetypeId returns the id of the archetype the entity lives in.
func (e EntityId) ArchetypeId() uint32 {
	return uint32(e >> 32)
}

// Index returns the entity's slot index within its archetype.
func (e EntityId) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// EntityRef is a stable handle to an entity. Plain EntityIds go stale when an
// entity moves between archetypes or storage is compacted; an EntityRef is
// updated in place on every move and zeroed when the entity is deleted.
// Obtain one through Storage.CreateEntityRef.
type EntityRef struct {
	Id        EntityId
	Archetype *Archetype
}
