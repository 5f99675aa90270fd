package component

// Bounds is the pickable extent of an entity, measured from its Transform.
type Bounds struct {
	Width  float64
	Height float64
}

func (b Bounds) Contains(t Transform, x, y float64) bool {
	return x >= t.X && x <= t.X+b.Width && y >= t.Y && y <= t.Y+b.Height
}

func (b Bounds) Center(t Transform) (float64, float64) {
	return t.X + b.Width/2, t.Y + b.Height/2
}

var BoundsComponent = NewComponent[Bounds]()
