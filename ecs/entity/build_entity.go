package entity

import (
	"errors"
	"fmt"
	"sort"

	"github.com/milk9111/workbench/ecs"
	"github.com/milk9111/workbench/ecs/component"
	"github.com/milk9111/workbench/ecs/system"
	"github.com/milk9111/workbench/replication"
	"github.com/milk9111/workbench/scene"
)

type buildContext struct {
	Scene   scene.Spec
	Object  replication.ObjectID
	Session *replication.Session
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"transform":          addTransform,
	"bounds":             addBounds,
	"drag_controls":      addDragControls,
	"transform_controls": addTransformControls,
}

// transform_controls reads drag_controls when it starts, so it goes last.
var componentBuildOrder = []string{
	"transform",
	"bounds",
	"drag_controls",
	"transform_controls",
}

// BuildScene creates one entity per scene entry and announces each to the
// session. An entity whose object was already despawned upstream is still
// built; the validity system removes it on the next tick.
func BuildScene(w *ecs.World, spec scene.Spec, session *replication.Session) ([]ecs.Entity, error) {
	if w == nil {
		return nil, fmt.Errorf("build scene: world is nil")
	}
	out := make([]ecs.Entity, 0, len(spec.Entities))
	for _, es := range spec.Entities {
		e, err := BuildEntity(w, spec, es, session)
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, nil
}

func BuildEntity(w *ecs.World, spec scene.Spec, es scene.EntitySpec, session *replication.Session) (ecs.Entity, error) {
	for name := range es.Components {
		if _, ok := componentRegistry[name]; !ok {
			return 0, fmt.Errorf("build entity %q: unknown component %q", es.Name, name)
		}
	}

	ctx := &buildContext{Scene: spec, Object: spec.ObjectID(es), Session: session}
	if session != nil {
		if err := session.Spawn(ctx.Object); err != nil && !errors.Is(err, replication.ErrDespawned) {
			return 0, fmt.Errorf("build entity %q: %w", es.Name, err)
		}
	}

	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: es.Name}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.NetworkIdentityComponent.Kind(), &component.NetworkIdentity{ID: ctx.Object}); err != nil {
		return 0, err
	}

	for _, name := range componentBuildOrder {
		raw, ok := es.Components[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity %q: %s: %w", es.Name, name, err)
		}
	}
	return e, nil
}

// FindByName returns the live entity with the given name.
func FindByName(w *ecs.World, name string) (ecs.Entity, bool) {
	var found ecs.Entity
	ecs.ForEach(w, component.NameComponent.Kind(), func(e ecs.Entity, n *component.Name) {
		if !found.Valid() && n.Value == name {
			found = e
		}
	})
	return found, found.Valid()
}

// Names returns the names of every live named entity, sorted.
func Names(w *ecs.World) []string {
	var out []string
	ecs.ForEach(w, component.NameComponent.Kind(), func(_ ecs.Entity, n *component.Name) {
		out = append(out, n.Value)
	})
	sort.Strings(out)
	return out
}

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := scene.DecodeComponentSpec[scene.TransformComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	if spec.ScaleX == 0 {
		spec.ScaleX = 1
	}
	if spec.ScaleY == 0 {
		spec.ScaleY = 1
	}
	t := component.NewTransform(spec.X, spec.Y)
	t.ScaleX, t.ScaleY, t.Rotation = spec.ScaleX, spec.ScaleY, spec.Rotation
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func addBounds(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := scene.DecodeComponentSpec[scene.BoundsComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode bounds spec: %w", err)
	}
	if spec.Width < 0 || spec.Height < 0 {
		return fmt.Errorf("bounds must not be negative")
	}
	return ecs.Add(w, e, component.BoundsComponent.Kind(), &component.Bounds{Width: spec.Width, Height: spec.Height})
}

func addDragControls(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := scene.DecodeComponentSpec[scene.DragControlsComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode drag controls spec: %w", err)
	}
	enabled := true
	if spec.Enabled != nil {
		enabled = *spec.Enabled
	}
	return ecs.Add(w, e, component.DragControlsComponent.Kind(), &component.DragControls{Enabled: enabled})
}

func addTransformControls(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := scene.DecodeComponentSpec[scene.TransformControlsComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform controls spec: %w", err)
	}
	tc := &component.TransformControls{}
	if ctx.Session != nil {
		tc.DragControlsDisabled = system.BindDragControlsDisabled(ctx.Session, ctx.Object)
		if spec.DragControlsDisabled {
			if err := tc.DragControlsDisabled.Set(true); err != nil {
				return err
			}
		}
	}
	return ecs.Add(w, e, component.TransformControlsComponent.Kind(), tc)
}
