package component

// GizmoAxis names a gizmo handle.
type GizmoAxis int

const (
	GizmoAxisNone GizmoAxis = iota
	GizmoAxisX
	GizmoAxisY
	GizmoAxisFree
)

func (a GizmoAxis) String() string {
	switch a {
	case GizmoAxisX:
		return "x"
	case GizmoAxisY:
		return "y"
	case GizmoAxisFree:
		return "free"
	default:
		return "none"
	}
}

// GizmoControl is the manipulation binding of a gizmo. Detach severs the
// binding so a gizmo being torn down can no longer move its object.
type GizmoControl struct {
	object   uint64
	attached bool

	Active GizmoAxis
	GrabX  float64
	GrabY  float64
}

func (c *GizmoControl) Attach(object uint64) {
	if c == nil {
		return
	}
	c.object = object
	c.attached = true
	c.Active = GizmoAxisNone
}

func (c *GizmoControl) Detach() {
	if c == nil {
		return
	}
	c.object = 0
	c.attached = false
	c.Active = GizmoAxisNone
}

// Object returns the raw handle of the bound entity.
func (c *GizmoControl) Object() (uint64, bool) {
	if c == nil || !c.attached {
		return 0, false
	}
	return c.object, true
}

// TransformGizmo is the scene-wide transform handle. At most one entity in a
// world carries it.
type TransformGizmo struct {
	Control *GizmoControl
	// Serial increases with every gizmo created in a world.
	Serial uint64
}

var TransformGizmoComponent = NewComponent[TransformGizmo]()

const (
	GizmoHandleLength = 48.0
	GizmoHandleWidth  = 8.0
	GizmoFreeSize     = 12.0
)

// GizmoHandleAt returns the handle of a gizmo centred at (cx, cy) under the
// point (x, y). The X handle points right, the Y handle points up.
func GizmoHandleAt(cx, cy, x, y float64) GizmoAxis {
	half := GizmoHandleWidth / 2
	switch {
	case x >= cx-GizmoFreeSize/2 && x <= cx+GizmoFreeSize/2 && y >= cy-GizmoFreeSize/2 && y <= cy+GizmoFreeSize/2:
		return GizmoAxisFree
	case x >= cx && x <= cx+GizmoHandleLength && y >= cy-half && y <= cy+half:
		return GizmoAxisX
	case y <= cy && y >= cy-GizmoHandleLength && x >= cx-half && x <= cx+half:
		return GizmoAxisY
	}
	return GizmoAxisNone
}
