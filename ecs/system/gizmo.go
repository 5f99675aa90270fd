package system

import (
	"github.com/milk9111/workbench/ecs"
	"github.com/milk9111/workbench/ecs/component"
)

// GizmoSystem applies handle drags to the entity a gizmo is bound to. A
// detached gizmo moves nothing.
type GizmoSystem struct{}

func NewGizmoSystem() *GizmoSystem {
	return &GizmoSystem{}
}

func (s *GizmoSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	p, ok := CurrentPointer(w)
	if !ok {
		return
	}

	ecs.ForEach(w, component.TransformGizmoComponent.Kind(), func(_ ecs.Entity, g *component.TransformGizmo) {
		c := g.Control
		raw, ok := c.Object()
		if !ok {
			return
		}
		t, ok := ecs.Get(w, ecs.EntityFromRaw(raw), component.TransformComponent.Kind())
		if !ok {
			return
		}

		if p.JustPressed && p.Target == raw && p.Handle != component.GizmoAxisNone {
			c.Active = p.Handle
			c.GrabX, c.GrabY = t.GrabOffset(p.X, p.Y)
		}
		if c.Active == component.GizmoAxisNone {
			return
		}

		// An axis handle keeps the other coordinate of the grab point fixed.
		x, y := t.X+c.GrabX, t.Y+c.GrabY
		switch c.Active {
		case component.GizmoAxisX:
			x = p.X
		case component.GizmoAxisY:
			y = p.Y
		case component.GizmoAxisFree:
			x, y = p.X, p.Y
		}
		t.Follow(x, y, c.GrabX, c.GrabY)
		if !p.Down {
			c.Active = component.GizmoAxisNone
		}
	})
}
