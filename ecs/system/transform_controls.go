package system

import (
	"github.com/milk9111/workbench/ecs"
	"github.com/milk9111/workbench/ecs/component"
	"github.com/milk9111/workbench/replication"
	"go.uber.org/zap"
)

// TransformControlsSystem hands the scene's single transform gizmo to the
// entity that was clicked last, and suspends an entity's drag controls once
// the pointer is released on it. The suspension is latched in a replicated
// flag so every participant converges on it.
type TransformControlsSystem struct {
	session *replication.Session
	log     *zap.Logger
	serial  uint64
}

func NewTransformControlsSystem(session *replication.Session, log *zap.Logger) *TransformControlsSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &TransformControlsSystem{session: session, log: log.Named("transform_controls")}
}

func (s *TransformControlsSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	s.Sync(w)

	// Clicks before releases: a click that also ends a drag first takes the
	// gizmo, then suspends dragging.
	ecs.ForEach(w, component.PointerClickRequestComponent.Kind(), func(e ecs.Entity, _ *component.PointerClickRequest) {
		_ = ecs.Remove(w, e, component.PointerClickRequestComponent.Kind())
		if !ecs.Has(w, e, component.TransformControlsComponent.Kind()) {
			return
		}
		s.Activate(w, e)
	})

	ecs.ForEach(w, component.PointerUpRequestComponent.Kind(), func(e ecs.Entity, _ *component.PointerUpRequest) {
		_ = ecs.Remove(w, e, component.PointerUpRequestComponent.Kind())
		tc, ok := ecs.Get(w, e, component.TransformControlsComponent.Kind())
		if !ok {
			return
		}
		s.Release(w, e, tc)
	})
}

// Sync binds every TransformControls to its replicated flag and re-applies
// latched suspensions that are new since the last sync.
func (s *TransformControlsSystem) Sync(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	ecs.ForEach(w, component.TransformControlsComponent.Kind(), func(e ecs.Entity, tc *component.TransformControls) {
		s.bind(w, e, tc)
		s.converge(w, e, tc)
	})
}

// DragSuspensionSyncSystem runs a TransformControlsSystem's Sync on its own,
// so latches received this tick land before drag input is processed.
type DragSuspensionSyncSystem struct {
	controls *TransformControlsSystem
}

func NewDragSuspensionSyncSystem(controls *TransformControlsSystem) *DragSuspensionSyncSystem {
	return &DragSuspensionSyncSystem{controls: controls}
}

func (s *DragSuspensionSyncSystem) Update(w *ecs.World) {
	if s == nil {
		return
	}
	s.controls.Sync(w)
}

// Activate tears down every gizmo in the world and attaches a fresh one to e.
func (s *TransformControlsSystem) Activate(w *ecs.World, e ecs.Entity) bool {
	if !ecs.IsAlive(w, e) {
		return false
	}

	evicted := 0
	ecs.ForEach(w, component.TransformGizmoComponent.Kind(), func(owner ecs.Entity, g *component.TransformGizmo) {
		g.Control.Detach()
		_ = ecs.Remove(w, owner, component.TransformGizmoComponent.Kind())
		evicted++
	})

	s.serial++
	control := &component.GizmoControl{}
	control.Attach(e.Raw())
	if err := ecs.Add(w, e, component.TransformGizmoComponent.Kind(), &component.TransformGizmo{Control: control, Serial: s.serial}); err != nil {
		s.log.Error("attach gizmo", zap.Stringer("entity", e), zap.Error(err))
		return false
	}
	s.log.Debug("gizmo attached", zap.Stringer("entity", e), zap.Int("evicted", evicted), zap.Uint64("serial", s.serial))
	return true
}

// Release disables e's drag controls, if it has any, and latches the
// replicated flag whether or not drag controls were found.
func (s *TransformControlsSystem) Release(w *ecs.World, e ecs.Entity, tc *component.TransformControls) {
	if tc == nil {
		return
	}
	s.bind(w, e, tc)
	DisableDragControls(w, e)
	if err := tc.DragControlsDisabled.Set(true); err != nil {
		s.log.Warn("replicate drag suspension", zap.Stringer("entity", e), zap.Error(err))
	}
	tc.Seen = tc.DragControlsDisabled.Stamp()
}

// converge re-applies a latched suspension on start and whenever a newer
// value of the flag has arrived from another participant.
func (s *TransformControlsSystem) converge(w *ecs.World, e ecs.Entity, tc *component.TransformControls) {
	flag := tc.DragControlsDisabled
	stamp := flag.Stamp()
	if tc.Started && stamp == tc.Seen {
		return
	}
	tc.Started = true
	tc.Seen = stamp
	if flag.Get() {
		DisableDragControls(w, e)
	}
}

// bind creates the replicated flag for entities built without one.
func (s *TransformControlsSystem) bind(w *ecs.World, e ecs.Entity, tc *component.TransformControls) {
	if tc.DragControlsDisabled != nil {
		return
	}
	if s.session == nil {
		s.session = replication.NewSession("local", nil, s.log)
	}
	obj := replication.ObjectID("local/" + e.String())
	if id, ok := ecs.Get(w, e, component.NetworkIdentityComponent.Kind()); ok && id.ID != "" {
		obj = id.ID
	}
	tc.DragControlsDisabled = BindDragControlsDisabled(s.session, obj)
}

// BindDragControlsDisabled returns the latch field for obj.
func BindDragControlsDisabled(session *replication.Session, obj replication.ObjectID) *replication.Bool {
	return session.Bool(obj, component.DragControlsDisabledField, replication.Latch())
}

// DisableDragControls turns off e's drag controls. It reports whether e has
// any; their absence is not an error.
func DisableDragControls(w *ecs.World, e ecs.Entity) bool {
	dc, ok := ecs.Get(w, e, component.DragControlsComponent.Kind())
	if !ok {
		return false
	}
	dc.Enabled = false
	dc.Dragging = false
	return true
}
