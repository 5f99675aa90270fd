package system

import (
	"github.com/milk9111/workbench/ecs"
	"github.com/milk9111/workbench/ecs/component"
	"github.com/milk9111/workbench/replication"
	"go.uber.org/zap"
)

// SessionValiditySystem destroys entities whose network identity the session
// no longer recognizes, and, when a session is attached, transform-controlled
// entities that have no identity at all. It must run before any system that
// acts on entities, right after remote updates are drained, so a stale entity
// is gone before anything can act on it.
type SessionValiditySystem struct {
	session *replication.Session
	log     *zap.Logger
}

func NewSessionValiditySystem(session *replication.Session, log *zap.Logger) *SessionValiditySystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionValiditySystem{session: session, log: log.Named("validity")}
}

func (s *SessionValiditySystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	ecs.ForEach(w, component.NetworkIdentityComponent.Kind(), func(e ecs.Entity, id *component.NetworkIdentity) {
		if s.valid(id) {
			return
		}
		s.log.Debug("destroying stale entity", zap.Stringer("entity", e), zap.String("object", string(id.ID)))
		ecs.DestroyEntity(w, e)
	})

	if s.session == nil {
		return
	}
	// Replicated behaviour needs an identity the session can vouch for.
	ecs.ForEach(w, component.TransformControlsComponent.Kind(), func(e ecs.Entity, _ *component.TransformControls) {
		if ecs.Has(w, e, component.NetworkIdentityComponent.Kind()) {
			return
		}
		s.log.Debug("destroying entity without identity", zap.Stringer("entity", e))
		ecs.DestroyEntity(w, e)
	})
}

func (s *SessionValiditySystem) valid(id *component.NetworkIdentity) bool {
	if id == nil || id.ID == "" {
		return false
	}
	if s.session == nil {
		return true
	}
	return s.session.Has(id.ID)
}
