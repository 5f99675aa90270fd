package system

import (
	"github.com/milk9111/workbench/ecs"
	"github.com/milk9111/workbench/ecs/component"
)

// DragControlsSystem moves an entity with the pointer while its drag controls
// are enabled and the press started on the entity body rather than on a gizmo
// handle.
type DragControlsSystem struct{}

func NewDragControlsSystem() *DragControlsSystem {
	return &DragControlsSystem{}
}

func (s *DragControlsSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	p, ok := CurrentPointer(w)
	if !ok {
		return
	}

	ecs.ForEach2(w, component.DragControlsComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, dc *component.DragControls, t *component.Transform) {
		if !dc.Enabled {
			dc.Dragging = false
			return
		}
		if p.JustPressed && p.Target == e.Raw() && p.Handle == component.GizmoAxisNone {
			dc.Dragging = true
			dc.GrabX, dc.GrabY = t.GrabOffset(p.X, p.Y)
		}
		if !dc.Dragging {
			return
		}
		t.Follow(p.X, p.Y, dc.GrabX, dc.GrabY)
		if !p.Down {
			dc.Dragging = false
		}
	})
}
