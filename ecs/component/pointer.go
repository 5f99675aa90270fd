package component

import "math"

// Pointer is the per-world pointer state written by the pointer system.
type Pointer struct {
	X, Y float64

	Down         bool
	JustPressed  bool
	JustReleased bool

	PressX, PressY float64
	// Target is the raw handle of the entity the press landed on.
	Target uint64
	Handle GizmoAxis
}

// Travel is the distance moved since the press.
func (p Pointer) Travel() float64 {
	return math.Hypot(p.X-p.PressX, p.Y-p.PressY)
}

var PointerComponent = NewComponent[Pointer]()

// PointerClickRequest is a marker added to an entity that was clicked this
// tick: pressed and released on the same entity.
type PointerClickRequest struct{}

var PointerClickRequestComponent = NewComponent[PointerClickRequest]()

// PointerUpRequest is a marker added to the entity a press started on when the
// pointer is released.
type PointerUpRequest struct{}

var PointerUpRequestComponent = NewComponent[PointerUpRequest]()
