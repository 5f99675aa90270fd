package system

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/workbench/ecs"
	"github.com/milk9111/workbench/ecs/component"
	"golang.org/x/image/colornames"
)

// RenderSystem draws pickable entities as boxes and the gizmo as handles.
type RenderSystem struct {
	OffsetX, OffsetY float64
	Scale            float64
}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{Scale: 1}
}

func (r *RenderSystem) Update(*ecs.World) {}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}

	ecs.ForEach2(w, component.TransformComponent.Kind(), component.BoundsComponent.Kind(), func(e ecs.Entity, t *component.Transform, b *component.Bounds) {
		x, y := r.toScreen(t.X, t.Y)
		wdt, hgt := float32(b.Width*r.scale()), float32(b.Height*r.scale())

		fill := color.Color(colornames.Slategray)
		if dc, ok := ecs.Get(w, e, component.DragControlsComponent.Kind()); ok && dc.Enabled {
			fill = colornames.Steelblue
		}
		vector.FillRect(screen, x, y, wdt, hgt, fill, false)
		vector.StrokeRect(screen, x, y, wdt, hgt, 1, colornames.Lightgrey, false)

		if name, ok := ecs.Get(w, e, component.NameComponent.Kind()); ok {
			ebitenutil.DebugPrintAt(screen, name.Value, int(x)+4, int(y)+4)
		}
	})

	ecs.ForEach(w, component.TransformGizmoComponent.Kind(), func(_ ecs.Entity, g *component.TransformGizmo) {
		raw, ok := g.Control.Object()
		if !ok {
			return
		}
		cx, cy, ok := entityCenter(w, ecs.EntityFromRaw(raw))
		if !ok {
			return
		}
		r.drawGizmo(screen, cx, cy, g.Control.Active)
	})
}

func (r *RenderSystem) drawGizmo(screen *ebiten.Image, cx, cy float64, active component.GizmoAxis) {
	sx, sy := r.toScreen(cx, cy)
	length := float32(component.GizmoHandleLength * r.scale())
	width := float32(3)

	xColor := color.Color(colornames.Red)
	yColor := color.Color(colornames.Limegreen)
	freeColor := color.Color(colornames.Gold)
	switch active {
	case component.GizmoAxisX:
		xColor = colornames.White
	case component.GizmoAxisY:
		yColor = colornames.White
	case component.GizmoAxisFree:
		freeColor = colornames.White
	}

	vector.StrokeLine(screen, sx, sy, sx+length, sy, width, xColor, true)
	vector.StrokeLine(screen, sx, sy, sx, sy-length, width, yColor, true)
	half := float32(component.GizmoFreeSize * r.scale() / 2)
	vector.FillRect(screen, sx-half, sy-half, half*2, half*2, freeColor, false)
}

func (r *RenderSystem) scale() float64 {
	if r.Scale == 0 {
		return 1
	}
	return r.Scale
}

func (r *RenderSystem) toScreen(x, y float64) (float32, float32) {
	return float32((x - r.OffsetX) * r.scale()), float32((y - r.OffsetY) * r.scale())
}
