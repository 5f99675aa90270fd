package component

import (
	"errors"
	"reflect"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
)

// ComponentID numbers component stores process-wide, starting at 1.
type ComponentID uint32

var nextComponentID atomic.Uint32

// ComponentKind names one component store. The same kind value is shared by
// every world, so a kind declared at package level works everywhere.
type ComponentKind[T any] struct {
	id   ComponentID
	name string
}

func NewComponentKind[T any]() ComponentKind[T] {
	return ComponentKind[T]{
		id:   ComponentID(nextComponentID.Add(1)),
		name: reflect.TypeFor[T]().String(),
	}
}

func (k ComponentKind[T]) ID() ComponentID {
	return k.id
}

// Name is the Go type the kind stores, e.g. "component.Transform".
func (k ComponentKind[T]) Name() string {
	return k.name
}

func (k ComponentKind[T]) String() string {
	if !k.Valid() {
		return "invalid"
	}
	return k.name
}

func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

// ComponentHandle is what packages export for each component type; callers
// ask it for the kind.
type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

func NewComponent[T any]() ComponentHandle[T] {
	return ComponentHandle[T]{kind: NewComponentKind[T]()}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] {
	return h.kind
}
