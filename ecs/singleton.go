package ecs

import (
	"reflect"
	"unsafe"
)

// singletonEntry pins one singleton component on the heap. The pointer never
// changes for the lifetime of the storage, so cached Singleton accessors stay
// valid even when the value is overwritten.
type singletonEntry struct {
	typ     reflect.Type
	box     any // *T, keeps the value reachable
	dataPtr unsafe.Pointer
}

// AddSingleton stores a single instance of the component's type, passed as T
// or *T. If the type already has a singleton the value is overwritten in
// place and existing accessors keep working.
func (s *Storage) AddSingleton(component any) {
	rv := reflect.ValueOf(component)

	var box reflect.Value
	if rv.Kind() == reflect.Ptr {
		box = rv
	} else {
		box = reflect.New(rv.Type())
		box.Elem().Set(rv)
	}
	typ := box.Type().Elem()

	if entry, ok := s.singletons[typ]; ok {
		reflect.NewAt(typ, entry.dataPtr).Elem().Set(box.Elem())
		return
	}

	s.singletons[typ] = &singletonEntry{
		typ:     typ,
		box:     box.Interface(),
		dataPtr: unsafe.Pointer(box.Pointer()),
	}
}

// ReadSingleton fills target, which must be a pointer to a component pointer
// (**T), with the singleton of that type. Reports whether the singleton
// exists; on false the target is set to nil.
func (s *Storage) ReadSingleton(target any) bool {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.Type().Elem().Kind() != reflect.Ptr {
		panic("ReadSingleton target must be a pointer to a component pointer")
	}

	typ := rv.Type().Elem().Elem()
	entry, ok := s.singletons[typ]
	if !ok {
		rv.Elem().SetZero()
		return false
	}

	rv.Elem().Set(reflect.NewAt(typ, entry.dataPtr))
	return true
}

func (s *Storage) getSingletonEntry(typ reflect.Type) *singletonEntry {
	return s.singletons[typ]
}

// Singleton is a typed accessor for a storage singleton, cached so Get is a
// pointer cast after the first lookup. Declare Singleton fields on a system
// struct and the Scheduler binds them at registration; or create one
// directly with NewSingleton.
type Singleton[T any] struct {
	storage       *Storage
	componentPtr  unsafe.Pointer
	componentType reflect.Type
}

// NewSingleton returns an accessor for T's singleton, creating the singleton
// if the storage does not hold one yet. A missing singleton is created from
// the optional initializer (zero value otherwise); an existing singleton
// keeps its current value and the initializer is ignored.
func NewSingleton[T any](storage *Storage, initializer ...T) *Singleton[T] {
	componentType := reflect.TypeFor[T]()

	entry := storage.getSingletonEntry(componentType)
	if entry == nil {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		storage.AddSingleton(value)
		entry = storage.getSingletonEntry(componentType)
	}

	return &Singleton[T]{
		storage:       storage,
		componentPtr:  entry.dataPtr,
		componentType: componentType,
	}
}

// Init binds the accessor to a storage. The Scheduler calls this for
// Singleton fields of registered systems.
func (s *Singleton[T]) Init(storage *Storage) {
	s.storage = storage
	s.componentType = reflect.TypeFor[T]()
	s.updateCache()
}

// Get returns the singleton, or nil if it has not been added to storage.
func (s *Singleton[T]) Get() *T {
	if s.componentPtr == nil {
		s.updateCache()
	}
	if s.componentPtr == nil {
		return nil
	}
	return (*T)(s.componentPtr)
}

// Exists reports whether the singleton has been added to storage.
func (s *Singleton[T]) Exists() bool {
	if s.componentPtr == nil {
		s.updateCache()
	}
	return s.componentPtr != nil
}

func (s *Singleton[T]) updateCache() {
	if s.storage == nil {
		return
	}
	if entry := s.storage.getSingletonEntry(s.componentType); entry != nil {
		s.componentPtr = entry.dataPtr
	} else {
		s.componentPtr = nil
	}
}
