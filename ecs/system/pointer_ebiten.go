package system

import "github.com/hajimehoshi/ebiten/v2"

// EbitenPointer reads the mouse through ebiten. Offset and Scale map window
// pixels to world units.
type EbitenPointer struct {
	OffsetX, OffsetY float64
	Scale            float64
}

func (p EbitenPointer) Position() (float64, float64) {
	x, y := ebiten.CursorPosition()
	scale := p.Scale
	if scale == 0 {
		scale = 1
	}
	return float64(x)/scale + p.OffsetX, float64(y)/scale + p.OffsetY
}

func (p EbitenPointer) Pressed() bool {
	return ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
}

// ScriptedPointer is a PointerSource driven by code, used by the session
// simulator and tests.
type ScriptedPointer struct {
	X, Y float64
	Down bool
}

func (p *ScriptedPointer) Position() (float64, float64) {
	return p.X, p.Y
}

func (p *ScriptedPointer) Pressed() bool {
	return p.Down
}
