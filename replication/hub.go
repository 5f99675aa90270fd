package replication

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// HubReplica is the replica id the hub stamps its own writes with.
const HubReplica ReplicaID = "~hub"

// Hub is an in-memory authoritative relay. It merges every published envelope
// into its own state, forwards the envelopes that changed that state to every
// other connection, and hands a snapshot of the merged state to each new
// connection so late joiners converge.
type Hub struct {
	mu    sync.Mutex
	log   *zap.Logger
	clock uint64

	conns  map[ReplicaID]*hubConn
	live   map[ObjectID]Stamp
	dead   map[ObjectID]Stamp
	fields map[fieldKey]*register
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log:    log.Named("hub"),
		conns:  make(map[ReplicaID]*hubConn),
		live:   make(map[ObjectID]Stamp),
		dead:   make(map[ObjectID]Stamp),
		fields: make(map[fieldKey]*register),
	}
}

// Connect registers a participant and queues the current snapshot for it.
func (h *Hub) Connect(id ReplicaID) (Transport, error) {
	if id == "" || id == HubReplica {
		return nil, fmt.Errorf("replication: connect %q: invalid replica id", id)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[id]; ok {
		return nil, fmt.Errorf("replication: connect %s: %w", id, ErrDuplicateReplica)
	}
	snapshot, err := h.snapshotLocked()
	if err != nil {
		return nil, err
	}
	c := &hubConn{hub: h, id: id, inbox: snapshot}
	h.conns[id] = c
	h.log.Debug("replica connected", zap.String("replica", string(id)), zap.Int("snapshot", len(snapshot)))
	return c, nil
}

// Despawn removes an object on behalf of the authority, as when ownership is
// revoked upstream. Every participant drops the object on its next poll.
func (h *Hub) Despawn(obj ObjectID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clock++
	env := Envelope{Op: OpDespawn, Object: obj, Stamp: Stamp{Clock: h.clock, Replica: HubReplica}}
	if !h.applyLocked(env) {
		return nil
	}
	data, err := EncodeEnvelope(env)
	if err != nil {
		return err
	}
	h.relayLocked(nil, data)
	return nil
}

// Replicas returns the connected replica ids in sorted order.
func (h *Hub) Replicas() []ReplicaID {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]ReplicaID, 0, len(h.conns))
	for id := range h.conns {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Live reports whether the hub's merged state holds obj.
func (h *Hub) Live(obj ObjectID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.live[obj]
	return ok
}

func (h *Hub) publish(from *hubConn, data []byte) error {
	env, err := DecodeEnvelope(data)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if from.closed {
		return ErrClosed
	}
	if env.Stamp.Clock > h.clock {
		h.clock = env.Stamp.Clock
	}
	if !h.applyLocked(env) {
		h.log.Debug("dropped stale update",
			zap.String("op", env.Op.String()),
			zap.String("object", string(env.Object)),
			zap.String("stamp", env.Stamp.String()))
		return nil
	}
	h.relayLocked(from, data)
	return nil
}

func (h *Hub) relayLocked(from *hubConn, data []byte) {
	for _, c := range h.conns {
		if c == from {
			continue
		}
		c.inbox = append(c.inbox, data)
	}
}

func (h *Hub) applyLocked(env Envelope) bool {
	if _, gone := h.dead[env.Object]; gone {
		return false
	}
	switch env.Op {
	case OpSpawn:
		if _, ok := h.live[env.Object]; ok {
			return false
		}
		h.live[env.Object] = env.Stamp
		return true
	case OpDespawn:
		delete(h.live, env.Object)
		h.dead[env.Object] = env.Stamp
		for key := range h.fields {
			if key.object == env.Object {
				delete(h.fields, key)
			}
		}
		return true
	case OpSet:
		key := fieldKey{object: env.Object, field: env.Field}
		reg, ok := h.fields[key]
		if !ok {
			reg = &register{}
			h.fields[key] = reg
		}
		return reg.merge(env.Value, env.Stamp, env.Latch, env.Zero)
	}
	return false
}

// snapshotLocked encodes the merged state in a stable order: despawns, then
// spawns, then field values of live objects.
func (h *Hub) snapshotLocked() ([][]byte, error) {
	var envs []Envelope
	for obj, stamp := range h.dead {
		envs = append(envs, Envelope{Op: OpDespawn, Object: obj, Stamp: stamp})
	}
	for obj, stamp := range h.live {
		envs = append(envs, Envelope{Op: OpSpawn, Object: obj, Stamp: stamp})
	}
	for key, reg := range h.fields {
		if _, ok := h.live[key.object]; !ok {
			continue
		}
		envs = append(envs, Envelope{
			Op:     OpSet,
			Object: key.object,
			Field:  key.field,
			Value:  reg.value,
			Latch:  reg.latch,
			Zero:   reg.zero,
			Stamp:  reg.stamp,
		})
	}
	slices.SortFunc(envs, func(a, b Envelope) int {
		if a.Op != b.Op {
			if a.Op == OpDespawn || b.Op == OpDespawn {
				if a.Op == OpDespawn {
					return -1
				}
				return 1
			}
			return int(a.Op) - int(b.Op)
		}
		if c := strings.Compare(string(a.Object), string(b.Object)); c != 0 {
			return c
		}
		return strings.Compare(a.Field, b.Field)
	})

	out := make([][]byte, 0, len(envs))
	for _, env := range envs {
		data, err := EncodeEnvelope(env)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

type hubConn struct {
	hub    *Hub
	id     ReplicaID
	inbox  [][]byte
	closed bool
}

func (c *hubConn) Publish(msg []byte) error {
	return c.hub.publish(c, msg)
}

func (c *hubConn) Receive() ([][]byte, error) {
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	out := c.inbox
	c.inbox = nil
	return out, nil
}

func (c *hubConn) Close() error {
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.inbox = nil
	if c.hub.conns[c.id] == c {
		delete(c.hub.conns, c.id)
	}
	c.hub.log.Debug("replica disconnected", zap.String("replica", string(c.id)))
	return nil
}
