package ecs

import "reflect"

// Commands buffers structural changes while systems iterate and applies them
// when the Scheduler flushes at the end of the frame. Queueing against an
// EntityId is safe even when an earlier command this frame moves the entity
// to another archetype (its id changes) or deletes it; Flush resolves ids
// through the moves it has already applied and drops commands aimed at dead
// entities.
type Commands struct {
	spawns  []spawnCommand
	deletes []EntityId
	adds    []addComponentCommand
	removes []removeComponentCommand
	defers  []func()
}

func newCommands() *Commands {
	return &Commands{}
}

type spawnCommand struct {
	components []any
}

type addComponentCommand struct {
	entity    EntityId
	component any
}

type removeComponentCommand struct {
	entity   EntityId
	compType reflect.Type
}

// Spawn queues an entity spawn with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// Delete queues an entity deletion.
func (c *Commands) Delete(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues adding a component to an entity.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.adds = append(c.adds, addComponentCommand{
		entity:    entity,
		component: component,
	})
}

// RemoveComponent queues removing a component type from an entity.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{
		entity:   entity,
		compType: compType,
	})
}

// Defer queues an arbitrary function to run after all structural changes.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Flush applies the buffered commands to storage in a fixed order — deletes,
// removes, adds, spawns, deferred functions — then resets the buffer. Ids
// queued by systems are remapped through any archetype moves applied earlier
// in the flush; commands against entities deleted this frame are skipped.
func (c *Commands) Flush(storage *Storage) {
	// moved tracks where each touched entity went: old id -> current id,
	// with 0 marking a deleted entity. Chains form when an entity moves
	// more than once per frame.
	moved := make(map[EntityId]EntityId)
	resolve := func(id EntityId) (EntityId, bool) {
		for {
			next, ok := moved[id]
			if !ok {
				return id, true
			}
			if next == 0 {
				return 0, false
			}
			id = next
		}
	}

	for _, id := range c.deletes {
		current, alive := resolve(id)
		if !alive {
			continue
		}
		storage.Delete(current)
		moved[current] = 0
	}

	for _, cmd := range c.removes {
		current, alive := resolve(cmd.entity)
		if !alive {
			continue
		}
		// RemoveComponent returns 0 when it removed the last component,
		// which the map already treats as deleted.
		moved[current] = storage.RemoveComponent(current, cmd.compType)
	}

	for _, cmd := range c.adds {
		current, alive := resolve(cmd.entity)
		if !alive {
			continue
		}
		moved[current] = storage.AddComponent(current, cmd.component)
	}

	for _, cmd := range c.spawns {
		storage.Spawn(cmd.components...)
	}

	for _, fn := range c.defers {
		fn()
	}

	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
}
