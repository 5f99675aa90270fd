package ecs

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/workbench/ecs/component"
)

type pickShape struct {
	entity Entity
	shape  *cp.Shape
	bb     cp.BB
}

// PickWorld mirrors pickable entities into a Chipmunk space so pointer
// positions can be resolved to entities with a point query.
type PickWorld struct {
	space  *cp.Space
	shapes map[entityID]*pickShape
	owners map[*cp.Shape]Entity
}

func NewPickWorld() *PickWorld {
	return &PickWorld{
		space:  cp.NewSpace(),
		shapes: make(map[entityID]*pickShape),
		owners: make(map[*cp.Shape]Entity),
	}
}

// Sync adds, moves and drops static shapes so the space matches every live
// entity carrying both a Transform and Bounds.
func (pw *PickWorld) Sync(w *World) {
	if pw == nil || w == nil {
		return
	}
	seen := make(map[entityID]struct{}, len(pw.shapes))
	ForEach2(w, component.TransformComponent.Kind(), component.BoundsComponent.Kind(), func(e Entity, t *component.Transform, b *component.Bounds) {
		if b.Width <= 0 || b.Height <= 0 {
			return
		}
		seen[e.id()] = struct{}{}
		bb := cp.BB{L: t.X, B: t.Y, R: t.X + b.Width, T: t.Y + b.Height}
		if ps, ok := pw.shapes[e.id()]; ok {
			if ps.entity == e && ps.bb == bb {
				return
			}
			pw.drop(e.id())
		}
		shape := cp.NewBox2(pw.space.StaticBody, bb, 0)
		pw.space.AddShape(shape)
		pw.shapes[e.id()] = &pickShape{entity: e, shape: shape, bb: bb}
		pw.owners[shape] = e
	})
	for id := range pw.shapes {
		if _, ok := seen[id]; !ok {
			pw.drop(id)
		}
	}
}

// Pick returns the entity whose bounds contain (x, y).
func (pw *PickWorld) Pick(x, y float64) (Entity, bool) {
	if pw == nil || pw.space == nil {
		return 0, false
	}
	info := pw.space.PointQueryNearest(cp.Vector{X: x, Y: y}, 0, cp.SHAPE_FILTER_ALL)
	if info == nil || info.Shape == nil {
		return 0, false
	}
	e, ok := pw.owners[info.Shape]
	return e, ok
}

func (pw *PickWorld) drop(id entityID) {
	ps, ok := pw.shapes[id]
	if !ok {
		return
	}
	pw.space.RemoveShape(ps.shape)
	delete(pw.owners, ps.shape)
	delete(pw.shapes, id)
}
