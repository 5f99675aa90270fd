package ecs

import "fmt"

// Entity is a generational handle. The low half names a slot and the high half
// counts how many times that slot has been handed out, so a handle kept past
// its entity's destruction never matches the slot's next occupant.
type Entity uint64

type entityID uint32
type generation uint32

const (
	slotBits = 32
	slotMask = 1<<slotBits - 1
)

// NoEntity is the zero handle. No live entity ever has it.
const NoEntity Entity = 0

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<slotBits | uint64(id))
}

// EntityFromRaw rebuilds a handle that a component stored as a plain integer,
// such as a pointer target or a gizmo binding.
func EntityFromRaw(raw uint64) Entity {
	return Entity(raw)
}

// Raw returns the handle as a plain integer for components that cannot import
// this package.
func (e Entity) Raw() uint64 {
	return uint64(e)
}

func (e Entity) id() entityID {
	return entityID(uint64(e) & slotMask)
}

func (e Entity) generation() generation {
	return generation(uint64(e) >> slotBits)
}

func (e Entity) String() string {
	if e == NoEntity {
		return "none"
	}
	return fmt.Sprintf("#%d@%d", e.id(), e.generation())
}

func (e Entity) Valid() bool {
	return e.id() > 0
}
