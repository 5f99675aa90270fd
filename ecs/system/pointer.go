package system

import (
	"github.com/milk9111/workbench/ecs"
	"github.com/milk9111/workbench/ecs/component"
)

// ClickSlop is how far the pointer may travel between press and release for
// the release to still count as a click.
const ClickSlop = 4.0

// PointerSource reports the raw pointer each tick.
type PointerSource interface {
	Position() (x, y float64)
	Pressed() bool
}

// PointerSystem turns raw pointer state into the world's Pointer component
// and into click and release requests on the entity a press landed on.
type PointerSystem struct {
	source PointerSource
	pick   *ecs.PickWorld
}

func NewPointerSystem(source PointerSource, pick *ecs.PickWorld) *PointerSystem {
	if pick == nil {
		pick = ecs.NewPickWorld()
	}
	return &PointerSystem{source: source, pick: pick}
}

func (s *PointerSystem) Update(w *ecs.World) {
	if s == nil || w == nil || s.source == nil {
		return
	}

	p := ensurePointer(w)
	x, y := s.source.Position()
	down := s.source.Pressed()

	p.X, p.Y = x, y
	p.JustPressed = down && !p.Down
	p.JustReleased = !down && p.Down
	p.Down = down

	s.pick.Sync(w)

	if p.JustPressed {
		p.PressX, p.PressY = x, y
		p.Target, p.Handle = 0, component.GizmoAxisNone
		if owner, axis, ok := GizmoHandleAt(w, x, y); ok {
			p.Target, p.Handle = owner.Raw(), axis
		} else if e, ok := s.pick.Pick(x, y); ok {
			p.Target = e.Raw()
		}
	}

	if !p.JustReleased || p.Target == 0 {
		return
	}
	target := ecs.EntityFromRaw(p.Target)
	p.Target, p.Handle = 0, component.GizmoAxisNone
	if !ecs.IsAlive(w, target) {
		return
	}
	if p.Travel() <= ClickSlop {
		if under, ok := s.pick.Pick(x, y); ok && under == target {
			_ = ecs.Add(w, target, component.PointerClickRequestComponent.Kind(), &component.PointerClickRequest{})
		}
	}
	_ = ecs.Add(w, target, component.PointerUpRequestComponent.Kind(), &component.PointerUpRequest{})
}

// CurrentPointer returns the world's pointer state, if a pointer system has
// run.
func CurrentPointer(w *ecs.World) (*component.Pointer, bool) {
	e, ok := ecs.First(w, component.PointerComponent.Kind())
	if !ok {
		return nil, false
	}
	return ecs.Get(w, e, component.PointerComponent.Kind())
}

func ensurePointer(w *ecs.World) *component.Pointer {
	if p, ok := CurrentPointer(w); ok {
		return p
	}
	p := &component.Pointer{}
	_ = ecs.Add(w, ecs.CreateEntity(w), component.PointerComponent.Kind(), p)
	return p
}

// GizmoHandleAt finds the gizmo handle under (x, y) and the entity the gizmo
// is bound to.
func GizmoHandleAt(w *ecs.World, x, y float64) (ecs.Entity, component.GizmoAxis, bool) {
	var (
		owner ecs.Entity
		axis  component.GizmoAxis
	)
	ecs.ForEach(w, component.TransformGizmoComponent.Kind(), func(_ ecs.Entity, g *component.TransformGizmo) {
		if axis != component.GizmoAxisNone {
			return
		}
		raw, ok := g.Control.Object()
		if !ok {
			return
		}
		target := ecs.EntityFromRaw(raw)
		cx, cy, ok := entityCenter(w, target)
		if !ok {
			return
		}
		if a := component.GizmoHandleAt(cx, cy, x, y); a != component.GizmoAxisNone {
			owner, axis = target, a
		}
	})
	return owner, axis, axis != component.GizmoAxisNone
}

func entityCenter(w *ecs.World, e ecs.Entity) (float64, float64, bool) {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return 0, 0, false
	}
	b, ok := ecs.Get(w, e, component.BoundsComponent.Kind())
	if !ok {
		return t.X, t.Y, true
	}
	cx, cy := b.Center(*t)
	return cx, cy, true
}
