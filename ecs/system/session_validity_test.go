package system

import (
	"testing"

	"github.com/milk9111/workbench/ecs"
	"github.com/milk9111/workbench/ecs/component"
	"github.com/milk9111/workbench/replication"
)

func TestSessionValiditySystem(t *testing.T) {
	tests := []struct {
		name  string
		id    replication.ObjectID
		spawn bool
		after func(t *testing.T, s *replication.Session)
		alive bool
	}{
		{"live_object", "crate", true, nil, true},
		{"empty_identity", "", false, nil, false},
		{"unknown_object", "ghost", false, nil, false},
		{"despawned", "crate", true, func(t *testing.T, s *replication.Session) { must(t, s.Despawn("crate")) }, false},
		{"left_session", "crate", true, func(t *testing.T, s *replication.Session) { must(t, s.Leave()) }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			session := replication.NewSession("local", nil, nil)
			if tc.spawn {
				must(t, session.Spawn(tc.id))
			}
			if tc.after != nil {
				tc.after(t, session)
			}

			w := ecs.NewWorld()
			e := ecs.CreateEntity(w)
			must(t, ecs.Add(w, e, component.NetworkIdentityComponent.Kind(), &component.NetworkIdentity{ID: tc.id}))
			bystander := ecs.CreateEntity(w)

			NewSessionValiditySystem(session, nil).Update(w)

			if got := ecs.IsAlive(w, e); got != tc.alive {
				t.Fatalf("alive = %v, want %v", got, tc.alive)
			}
			if !ecs.IsAlive(w, bystander) {
				t.Fatalf("entities without identity must be left alone")
			}
		})
	}
}

func TestSessionValidityWithoutSession(t *testing.T) {
	w := ecs.NewWorld()
	named := ecs.CreateEntity(w)
	must(t, ecs.Add(w, named, component.NetworkIdentityComponent.Kind(), &component.NetworkIdentity{ID: "anything"}))
	empty := ecs.CreateEntity(w)
	must(t, ecs.Add(w, empty, component.NetworkIdentityComponent.Kind(), &component.NetworkIdentity{}))

	NewSessionValiditySystem(nil, nil).Update(w)

	if !ecs.IsAlive(w, named) {
		t.Fatalf("without a session any non-empty identity is valid")
	}
	if ecs.IsAlive(w, empty) {
		t.Fatalf("empty identity should be destroyed")
	}
}

func TestStaleEntityGetsNoTransitions(t *testing.T) {
	session := replication.NewSession("local", nil, nil)
	must(t, session.Spawn("crate"))
	must(t, session.Spawn("barrel"))

	w := ecs.NewWorld()
	crate := newTestEntity(t, w, entityOpts{id: "crate", controls: true, drag: true})
	barrel := newTestEntity(t, w, entityOpts{id: "barrel", controls: true, drag: true, x: 100})
	sched := ecs.NewScheduler(
		NewSessionValiditySystem(session, nil),
		NewTransformControlsSystem(session, nil),
	)
	sched.Update(w)

	controls := controlsOf(t, w, barrel)
	must(t, session.Despawn("barrel"))
	must(t, ecs.Add(w, barrel, component.PointerClickRequestComponent.Kind(), &component.PointerClickRequest{}))
	must(t, ecs.Add(w, barrel, component.PointerUpRequestComponent.Kind(), &component.PointerUpRequest{}))

	sched.Update(w)

	if ecs.IsAlive(w, barrel) {
		t.Fatalf("despawned entity should be destroyed")
	}
	if n := ecs.Count(w, component.TransformGizmoComponent.Kind()); n != 0 {
		t.Fatalf("destroyed entity must not receive a gizmo, got %d", n)
	}
	if controls.DragControlsDisabled.Get() {
		t.Fatalf("destroyed entity must not latch the flag")
	}
	if !ecs.IsAlive(w, crate) {
		t.Fatalf("live entity destroyed")
	}
}

func TestSessionValidityRequiresIdentityForControls(t *testing.T) {
	tests := []struct {
		name    string
		session *replication.Session
		alive   bool
	}{
		{"with_session", replication.NewSession("local", nil, nil), false},
		{"offline_world", nil, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			anonymous := newTestEntity(t, w, entityOpts{controls: true})
			plain := newTestEntity(t, w, entityOpts{drag: true})

			NewSessionValiditySystem(tc.session, nil).Update(w)

			if got := ecs.IsAlive(w, anonymous); got != tc.alive {
				t.Fatalf("alive = %v, want %v", got, tc.alive)
			}
			if !ecs.IsAlive(w, plain) {
				t.Fatalf("entities without transform controls must be left alone")
			}
		})
	}
}

func TestRemoteDespawnLandsBeforeActivation(t *testing.T) {
	hub := replication.NewHub(nil)
	alice, err := replication.Join(hub, "alice", nil)
	must(t, err)
	must(t, alice.Spawn("crate"))
	must(t, alice.Spawn("barrel"))

	w := ecs.NewWorld()
	crate := newTestEntity(t, w, entityOpts{id: "crate", controls: true, drag: true})
	barrel := newTestEntity(t, w, entityOpts{id: "barrel", controls: true, drag: true, x: 100})
	controls := NewTransformControlsSystem(alice, nil)
	sched := ecs.NewScheduler(
		NewReplicationSystem(alice, nil),
		NewSessionValiditySystem(alice, nil),
		NewDragSuspensionSyncSystem(controls),
		controls,
	)

	must(t, ecs.Add(w, barrel, component.PointerClickRequestComponent.Kind(), &component.PointerClickRequest{}))
	sched.Update(w)

	must(t, hub.Despawn("crate"))
	must(t, ecs.Add(w, crate, component.PointerClickRequestComponent.Kind(), &component.PointerClickRequest{}))
	must(t, ecs.Add(w, crate, component.PointerUpRequestComponent.Kind(), &component.PointerUpRequest{}))
	sched.Update(w)

	if ecs.IsAlive(w, crate) {
		t.Fatalf("crate should be destroyed in the tick its despawn arrives")
	}
	if owners := gizmoOwners(w); len(owners) != 1 || owners[0] != barrel {
		t.Fatalf("expected barrel to keep the gizmo, got %v", owners)
	}
	if BindDragControlsDisabled(alice, "crate").Get() {
		t.Fatalf("despawned crate must not latch the flag")
	}
}
