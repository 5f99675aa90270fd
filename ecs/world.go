package ecs

import "github.com/milk9111/workbench/ecs/component"

// System updates a world each tick.
type System interface {
	Update(w *World)
}

// componentStore is the type-erased view of a sparseSet used when an entity
// is destroyed and all of its components must go with it.
type componentStore interface {
	remove(id entityID) bool
}

// World owns entities and their component stores.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]componentStore
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]componentStore)}
}

func storeFor[T any](w *World, kind component.ComponentKind[T], create bool) *sparseSet[T] {
	if w == nil || !kind.Valid() {
		return nil
	}
	if s, ok := w.stores[kind.ID()]; ok {
		typed, _ := s.(*sparseSet[T])
		return typed
	}
	if !create {
		return nil
	}
	if w.stores == nil {
		w.stores = make(map[component.ComponentID]componentStore)
	}
	s := &sparseSet[T]{}
	w.stores[kind.ID()] = s
	return s
}
