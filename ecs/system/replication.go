package system

import (
	"errors"

	"github.com/milk9111/workbench/ecs"
	"github.com/milk9111/workbench/replication"
	"go.uber.org/zap"
)

// ReplicationSystem drains the session's transport once per tick so remote
// writes are visible to every system that runs after it.
type ReplicationSystem struct {
	session *replication.Session
	log     *zap.Logger
}

func NewReplicationSystem(session *replication.Session, log *zap.Logger) *ReplicationSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReplicationSystem{session: session, log: log.Named("replication")}
}

func (s *ReplicationSystem) Update(w *ecs.World) {
	if s == nil || s.session == nil || !s.session.Connected() {
		return
	}
	n, err := s.session.Poll()
	if err != nil {
		if !errors.Is(err, replication.ErrClosed) {
			s.log.Warn("poll failed", zap.Error(err))
		}
		return
	}
	if n > 0 {
		s.log.Debug("applied remote updates", zap.Int("count", n))
	}
}
