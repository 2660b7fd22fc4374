package ecs

import "reflect"

// ComponentRegistry maps component types to their column factories. Every
// Storage owns one registry, so independent ECS instances never share type
// state.
type ComponentRegistry struct {
	factories map[reflect.Type]func() componentColumn
}

// NewComponentRegistry creates an empty component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() componentColumn),
	}
}

// RegisterComponent makes the component type T usable with storages built on
// this registry. Spawning an unregistered type panics, so registration is a
// startup concern.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeFor[T]()
	r.factories[t] = func() componentColumn {
		return &blockColumn[T]{}
	}
}

func (r *ComponentRegistry) getFactory(t reflect.Type) func() componentColumn {
	return r.factories[t]
}
