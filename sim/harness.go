// Package sim runs several session participants against one in-memory hub,
// each with its own world, so multi-participant behaviour can be driven from
// tests, scripts and the viewer.
package sim

import (
	"fmt"
	"sort"

	"github.com/milk9111/workbench/ecs"
	"github.com/milk9111/workbench/ecs/component"
	"github.com/milk9111/workbench/ecs/entity"
	"github.com/milk9111/workbench/ecs/system"
	"github.com/milk9111/workbench/replication"
	"github.com/milk9111/workbench/scene"
	"go.uber.org/zap"
)

type Harness struct {
	// PointerFor, when set, supplies the pointer source of each participant
	// that joins. Participants default to a ScriptedPointer.
	PointerFor func(name string) system.PointerSource

	hub   *replication.Hub
	spec  scene.Spec
	log   *zap.Logger
	peers map[string]*Peer
	order []string
}

func New(spec scene.Spec, log *zap.Logger) *Harness {
	if log == nil {
		log = zap.NewNop()
	}
	return &Harness{
		hub:   replication.NewHub(log),
		spec:  spec,
		log:   log,
		peers: make(map[string]*Peer),
	}
}

func (h *Harness) Hub() *replication.Hub {
	return h.hub
}

func (h *Harness) Scene() scene.Spec {
	return h.spec
}

// Join connects a new participant, applies the hub snapshot and builds the
// scene into a fresh world.
func (h *Harness) Join(name string) (*Peer, error) {
	if _, ok := h.peers[name]; ok {
		return nil, fmt.Errorf("sim: participant %q already joined", name)
	}
	log := h.log.With(zap.String("peer", name))
	session, err := replication.Join(h.hub, scene.NewReplicaID(), log)
	if err != nil {
		return nil, fmt.Errorf("sim: join %q: %w", name, err)
	}
	var source system.PointerSource
	if h.PointerFor != nil {
		source = h.PointerFor(name)
	}
	p := newPeer(name, session, source, log)
	if _, err := entity.BuildScene(p.World, h.spec, session); err != nil {
		_ = session.Leave()
		return nil, fmt.Errorf("sim: join %q: %w", name, err)
	}
	h.peers[name] = p
	h.order = append(h.order, name)
	log.Info("participant joined", zap.String("replica", string(session.ID())))
	return p, nil
}

// Leave disconnects a participant. Its world keeps running so the validity
// system can tear its entities down; the participant stays addressable until
// it rejoins.
func (h *Harness) Leave(name string) error {
	p, ok := h.peers[name]
	if !ok {
		return fmt.Errorf("sim: unknown participant %q", name)
	}
	if err := p.Session.Leave(); err != nil {
		return err
	}
	h.log.Info("participant left", zap.String("peer", name))
	return nil
}

// Rejoin replaces a participant with a fresh one under the same name, as a
// reconnecting client would.
func (h *Harness) Rejoin(name string) (*Peer, error) {
	if p, ok := h.peers[name]; ok {
		if p.Session.Connected() {
			if err := p.Session.Leave(); err != nil {
				return nil, err
			}
		}
		delete(h.peers, name)
		h.order = removeName(h.order, name)
	}
	return h.Join(name)
}

// Reload rebuilds every participant's world from spec. Replicated state held
// by the sessions survives, so latched flags re-apply on start.
func (h *Harness) Reload(spec scene.Spec) error {
	h.spec = spec
	for _, name := range h.order {
		p := h.peers[name]
		if !p.Session.Connected() {
			continue
		}
		p.reset()
		if _, err := entity.BuildScene(p.World, spec, p.Session); err != nil {
			return fmt.Errorf("sim: reload %q: %w", name, err)
		}
	}
	h.log.Info("scene reloaded", zap.String("scene", spec.Name))
	return nil
}

// Despawn removes a scene entity on behalf of the authority.
func (h *Harness) Despawn(entityName string) error {
	for _, es := range h.spec.Entities {
		if es.Name == entityName {
			return h.hub.Despawn(h.spec.ObjectID(es))
		}
	}
	return fmt.Errorf("sim: scene %q has no entity %q", h.spec.Name, entityName)
}

func (h *Harness) Peer(name string) (*Peer, bool) {
	p, ok := h.peers[name]
	return p, ok
}

// Peers returns participants in join order.
func (h *Harness) Peers() []*Peer {
	out := make([]*Peer, 0, len(h.order))
	for _, name := range h.order {
		out = append(out, h.peers[name])
	}
	return out
}

// Tick advances every participant n times, in join order.
func (h *Harness) Tick(n int) {
	for i := 0; i < n; i++ {
		for _, name := range h.order {
			h.peers[name].Tick()
		}
	}
}

// Peer is one participant: a session plus the world it drives.
type Peer struct {
	Name      string
	Session   *replication.Session
	World     *ecs.World
	Scheduler *ecs.Scheduler
	Pointer   *system.ScriptedPointer
	Picks     *ecs.PickWorld
	Controls  *system.TransformControlsSystem

	source system.PointerSource
	log    *zap.Logger
}

func newPeer(name string, session *replication.Session, source system.PointerSource, log *zap.Logger) *Peer {
	p := &Peer{
		Name:    name,
		Session: session,
		Pointer: &system.ScriptedPointer{},
		source:  source,
		log:     log,
	}
	if p.source == nil {
		p.source = p.Pointer
	}
	p.reset()
	return p
}

func (p *Peer) reset() {
	p.World = ecs.NewWorld()
	p.Picks = ecs.NewPickWorld()
	p.Controls = system.NewTransformControlsSystem(p.Session, p.log)
	p.Scheduler = p.schedule()
}

// schedule wires the systems in tick order. Remote updates are drained
// first so a despawn that arrives this tick is seen by the validity check,
// which runs before anything can act on the entity. Latches that arrived are
// applied before input so a drag in progress cannot move a suspended entity.
func (p *Peer) schedule() *ecs.Scheduler {
	return ecs.NewScheduler(
		system.NewReplicationSystem(p.Session, p.log),
		system.NewSessionValiditySystem(p.Session, p.log),
		system.NewDragSuspensionSyncSystem(p.Controls),
		system.NewPointerSystem(p.source, p.Picks),
		system.NewDragControlsSystem(),
		system.NewGizmoSystem(),
		p.Controls,
	)
}

func (p *Peer) Tick() {
	p.Scheduler.Update(p.World)
}

// Click queues an activation on the named entity and ticks once.
func (p *Peer) Click(name string) error {
	e, err := p.lookup(name)
	if err != nil {
		return err
	}
	if err := ecs.Add(p.World, e, component.PointerClickRequestComponent.Kind(), &component.PointerClickRequest{}); err != nil {
		return err
	}
	p.Tick()
	return nil
}

// Release queues a pointer release on the named entity and ticks once.
func (p *Peer) Release(name string) error {
	e, err := p.lookup(name)
	if err != nil {
		return err
	}
	if err := ecs.Add(p.World, e, component.PointerUpRequestComponent.Kind(), &component.PointerUpRequest{}); err != nil {
		return err
	}
	p.Tick()
	return nil
}

// Drag presses at (x0, y0), moves to (x1, y1) and releases, one tick per step.
func (p *Peer) Drag(x0, y0, x1, y1 float64) {
	p.Pointer.X, p.Pointer.Y, p.Pointer.Down = x0, y0, true
	p.Tick()
	p.Pointer.X, p.Pointer.Y = x1, y1
	p.Tick()
	p.Pointer.Down = false
	p.Tick()
}

func (p *Peer) lookup(name string) (ecs.Entity, error) {
	e, ok := entity.FindByName(p.World, name)
	if !ok {
		return 0, fmt.Errorf("sim: %s has no live entity %q", p.Name, name)
	}
	return e, nil
}

// EntityState is a read-only summary of one entity as a participant sees it.
type EntityState struct {
	Name                 string
	X, Y                 float64
	HasGizmo             bool
	HasDragControls      bool
	DragEnabled          bool
	DragControlsDisabled bool
}

func (p *Peer) State(name string) (EntityState, bool) {
	e, ok := entity.FindByName(p.World, name)
	if !ok {
		return EntityState{}, false
	}
	st := EntityState{Name: name}
	if t, ok := ecs.Get(p.World, e, component.TransformComponent.Kind()); ok {
		st.X, st.Y = t.X, t.Y
	}
	if g, ok := ecs.Get(p.World, e, component.TransformGizmoComponent.Kind()); ok {
		_, st.HasGizmo = g.Control.Object()
	}
	if dc, ok := ecs.Get(p.World, e, component.DragControlsComponent.Kind()); ok {
		st.HasDragControls = true
		st.DragEnabled = dc.Enabled
	}
	if tc, ok := ecs.Get(p.World, e, component.TransformControlsComponent.Kind()); ok && tc.DragControlsDisabled != nil {
		st.DragControlsDisabled = tc.DragControlsDisabled.Get()
	}
	return st, true
}

// GizmoOwner returns the name of the entity holding the gizmo.
func (p *Peer) GizmoOwner() (string, bool) {
	var owner string
	ecs.ForEach(p.World, component.TransformGizmoComponent.Kind(), func(e ecs.Entity, _ *component.TransformGizmo) {
		if n, ok := ecs.Get(p.World, e, component.NameComponent.Kind()); ok {
			owner = n.Value
		}
	})
	return owner, owner != ""
}

func (p *Peer) GizmoCount() int {
	return ecs.Count(p.World, component.TransformGizmoComponent.Kind())
}

// Names returns the live entity names in this participant's world.
func (p *Peer) Names() []string {
	names := entity.Names(p.World)
	sort.Strings(names)
	return names
}

func removeName(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
