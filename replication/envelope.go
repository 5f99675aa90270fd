package replication

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ObjectID names a replicated object. Every participant that loads the same
// scene derives the same ids.
type ObjectID string

// ReplicaID names one session participant.
type ReplicaID string

// Stamp orders writes: higher Clock wins, ties broken by Replica.
type Stamp struct {
	Clock   uint64    `cbor:"1,keyasint"`
	Replica ReplicaID `cbor:"2,keyasint,omitempty"`
}

func (s Stamp) IsZero() bool {
	return s.Clock == 0 && s.Replica == ""
}

// After reports whether s supersedes o.
func (s Stamp) After(o Stamp) bool {
	if s.Clock != o.Clock {
		return s.Clock > o.Clock
	}
	return s.Replica > o.Replica
}

func (s Stamp) String() string {
	return fmt.Sprintf("%d@%s", s.Clock, s.Replica)
}

type Op uint8

const (
	OpSpawn Op = iota + 1
	OpDespawn
	OpSet
)

func (o Op) String() string {
	switch o {
	case OpSpawn:
		return "spawn"
	case OpDespawn:
		return "despawn"
	case OpSet:
		return "set"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Envelope is one replicated update on the wire.
type Envelope struct {
	Op     Op              `cbor:"1,keyasint"`
	Object ObjectID        `cbor:"2,keyasint"`
	Field  string          `cbor:"3,keyasint,omitempty"`
	Value  cbor.RawMessage `cbor:"4,keyasint,omitempty"`
	Latch  bool            `cbor:"5,keyasint,omitempty"`
	Stamp  Stamp           `cbor:"6,keyasint"`
	// Zero is the encoding of the field's zero value; latch merges compare
	// against it.
	Zero cbor.RawMessage `cbor:"7,keyasint,omitempty"`
}

func EncodeEnvelope(env Envelope) ([]byte, error) {
	data, err := marshal(env)
	if err != nil {
		return nil, fmt.Errorf("replication: encode %s %s: %w", env.Op, env.Object, err)
	}
	return data, nil
}

func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("replication: decode envelope: %w", err)
	}
	if env.Object == "" {
		return Envelope{}, fmt.Errorf("replication: decode envelope: %w", ErrUnknownObject)
	}
	switch env.Op {
	case OpSpawn, OpDespawn:
	case OpSet:
		if env.Field == "" {
			return Envelope{}, fmt.Errorf("replication: decode envelope: set without field")
		}
	default:
		return Envelope{}, fmt.Errorf("replication: decode envelope: unknown %s", env.Op)
	}
	return env, nil
}
