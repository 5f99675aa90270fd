package component

// DragControls lets the pointer move an entity directly. Only the owning
// entity creates or removes it; other code may only flip Enabled.
type DragControls struct {
	Enabled bool

	Dragging bool
	GrabX    float64
	GrabY    float64
}

var DragControlsComponent = NewComponent[DragControls]()
