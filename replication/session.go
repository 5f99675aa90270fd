// Package replication keeps small pieces of object state consistent across
// the participants of a shared editing session.
//
// Each participant owns a Session. Writes are stamped with a Lamport clock
// and merged last-writer-wins, so applying the same update twice, or
// applying updates out of order, converges to the same state everywhere.
package replication

import (
	"fmt"

	"go.uber.org/zap"
)

type Session struct {
	id        ReplicaID
	transport Transport
	log       *zap.Logger

	clock  uint64
	closed bool

	live   map[ObjectID]struct{}
	dead   map[ObjectID]struct{}
	fields map[fieldKey]*register
}

// NewSession creates a participant over t. A nil transport gives an offline
// session whose writes stay local.
func NewSession(id ReplicaID, t Transport, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		id:        id,
		transport: t,
		log:       log.Named("session").With(zap.String("replica", string(id))),
		live:      make(map[ObjectID]struct{}),
		dead:      make(map[ObjectID]struct{}),
		fields:    make(map[fieldKey]*register),
	}
}

// Join connects a new participant to h and applies the hub's snapshot before
// returning.
func Join(h *Hub, id ReplicaID, log *zap.Logger) (*Session, error) {
	t, err := h.Connect(id)
	if err != nil {
		return nil, err
	}
	s := NewSession(id, t, log)
	if _, err := s.Poll(); err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("replication: join %s: %w", id, err)
	}
	return s, nil
}

func (s *Session) ID() ReplicaID {
	return s.id
}

func (s *Session) Connected() bool {
	return s != nil && !s.closed
}

// Spawn announces obj as live. Spawning a live object is a no-op; spawning a
// despawned one fails with ErrDespawned.
func (s *Session) Spawn(obj ObjectID) error {
	if obj == "" {
		return fmt.Errorf("replication: spawn: %w", ErrUnknownObject)
	}
	if s.closed {
		return ErrClosed
	}
	if _, gone := s.dead[obj]; gone {
		return fmt.Errorf("replication: spawn %s: %w", obj, ErrDespawned)
	}
	if _, ok := s.live[obj]; ok {
		return nil
	}
	s.live[obj] = struct{}{}
	return s.publish(Envelope{Op: OpSpawn, Object: obj, Stamp: s.tick()})
}

// Despawn removes obj for every participant.
func (s *Session) Despawn(obj ObjectID) error {
	if s.closed {
		return ErrClosed
	}
	if _, gone := s.dead[obj]; gone {
		return nil
	}
	s.forget(obj)
	return s.publish(Envelope{Op: OpDespawn, Object: obj, Stamp: s.tick()})
}

// Has reports whether obj is live in the session as this participant last
// saw it. A participant that has left the session recognizes nothing.
func (s *Session) Has(obj ObjectID) bool {
	if s == nil || s.closed || obj == "" {
		return false
	}
	_, ok := s.live[obj]
	return ok
}

// Poll applies every envelope queued on the transport and returns how many
// changed local state. Malformed envelopes are logged and skipped.
func (s *Session) Poll() (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if s.transport == nil {
		return 0, nil
	}
	msgs, err := s.transport.Receive()
	if err != nil {
		return 0, fmt.Errorf("replication: poll %s: %w", s.id, err)
	}
	applied := 0
	for _, msg := range msgs {
		env, err := DecodeEnvelope(msg)
		if err != nil {
			s.log.Warn("skipping envelope", zap.Error(err))
			continue
		}
		if s.apply(env) {
			applied++
		}
	}
	return applied, nil
}

// Leave disconnects from the session. Afterwards Has reports false for every
// object and writes fail with ErrClosed.
func (s *Session) Leave() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.transport == nil {
		return nil
	}
	if err := s.transport.Close(); err != nil {
		return fmt.Errorf("replication: leave %s: %w", s.id, err)
	}
	return nil
}

// Objects returns the number of live objects this participant knows about.
func (s *Session) Objects() int {
	return len(s.live)
}

func (s *Session) apply(env Envelope) bool {
	if env.Stamp.Clock > s.clock {
		s.clock = env.Stamp.Clock
	}
	if _, gone := s.dead[env.Object]; gone {
		return false
	}
	switch env.Op {
	case OpSpawn:
		if _, ok := s.live[env.Object]; ok {
			return false
		}
		s.live[env.Object] = struct{}{}
		return true
	case OpDespawn:
		s.forget(env.Object)
		s.log.Debug("object despawned", zap.String("object", string(env.Object)), zap.String("stamp", env.Stamp.String()))
		return true
	case OpSet:
		reg := s.register(fieldKey{object: env.Object, field: env.Field})
		return reg.merge(env.Value, env.Stamp, env.Latch, env.Zero)
	}
	return false
}

func (s *Session) forget(obj ObjectID) {
	delete(s.live, obj)
	s.dead[obj] = struct{}{}
	for key, reg := range s.fields {
		if key.object == obj {
			// Field handles may still be held by components; reset them in
			// place instead of orphaning them.
			*reg = register{latch: reg.latch, zero: reg.zero}
		}
	}
}

func (s *Session) register(key fieldKey) *register {
	reg, ok := s.fields[key]
	if !ok {
		reg = &register{}
		s.fields[key] = reg
	}
	return reg
}

func (s *Session) tick() Stamp {
	s.clock++
	return Stamp{Clock: s.clock, Replica: s.id}
}

func (s *Session) publish(env Envelope) error {
	if s.transport == nil {
		return nil
	}
	data, err := EncodeEnvelope(env)
	if err != nil {
		return err
	}
	if err := s.transport.Publish(data); err != nil {
		return fmt.Errorf("replication: publish %s %s: %w", env.Op, env.Object, err)
	}
	return nil
}
