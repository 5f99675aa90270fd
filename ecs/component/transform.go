package component

// Transform is the top-left position of an entity in world units. Scale and
// rotation come from the scene and are drawn, but picking and dragging only
// look at the position.
type Transform struct {
	X        float64
	Y        float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
}

// NewTransform places an unscaled, unrotated entity at (x, y).
func NewTransform(x, y float64) *Transform {
	return &Transform{X: x, Y: y, ScaleX: 1, ScaleY: 1}
}

// GrabOffset is the offset from the origin to the point (x, y) that was
// grabbed.
func (t Transform) GrabOffset(x, y float64) (dx, dy float64) {
	return x - t.X, y - t.Y
}

// Follow moves the origin so the point grabbed at offset (dx, dy) sits under
// (x, y).
func (t *Transform) Follow(x, y, dx, dy float64) {
	t.X, t.Y = x-dx, y-dy
}

var TransformComponent = NewComponent[Transform]()
