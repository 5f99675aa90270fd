package replication

import (
	"bytes"
	"fmt"

	"go.uber.org/zap"
)

type fieldOptions struct {
	latch bool
}

type FieldOption func(*fieldOptions)

// Latch makes a field one-way: once it holds a non-zero value, writes of the
// zero value are ignored locally and by the hub.
func Latch() FieldOption {
	return func(o *fieldOptions) { o.latch = true }
}

// Field is a replicated value of one object. Reads return whichever write,
// local or remote, carries the newest stamp.
type Field[T comparable] struct {
	s     *Session
	key   fieldKey
	latch bool
	zero  []byte
}

// Bool is the replicated boolean used for flags.
type Bool = Field[bool]

func NewField[T comparable](s *Session, obj ObjectID, name string, opts ...FieldOption) *Field[T] {
	var o fieldOptions
	for _, opt := range opts {
		opt(&o)
	}
	var zero T
	zeroBytes, err := marshal(zero)
	if err != nil {
		panic(fmt.Sprintf("replication: field %s.%s: encode zero value: %v", obj, name, err))
	}
	f := &Field[T]{s: s, key: fieldKey{object: obj, field: name}, latch: o.latch, zero: zeroBytes}
	reg := s.register(f.key)
	if f.latch {
		reg.latch = true
	}
	if reg.zero == nil {
		reg.zero = zeroBytes
	}
	return f
}

func (s *Session) Bool(obj ObjectID, name string, opts ...FieldOption) *Bool {
	return NewField[bool](s, obj, name, opts...)
}

func (f *Field[T]) Object() ObjectID {
	return f.key.object
}

func (f *Field[T]) Name() string {
	return f.key.field
}

func (f *Field[T]) Get() T {
	var v T
	if f == nil || f.s == nil {
		return v
	}
	reg, ok := f.s.fields[f.key]
	if !ok || len(reg.value) == 0 {
		return v
	}
	if err := unmarshal(reg.value, &v); err != nil {
		f.s.log.Warn("undecodable field value", zap.String("object", string(f.key.object)), zap.String("field", f.key.field), zap.Error(err))
		var zero T
		return zero
	}
	return v
}

// Stamp returns the stamp of the held value; zero when never written.
func (f *Field[T]) Stamp() Stamp {
	if f == nil || f.s == nil {
		return Stamp{}
	}
	if reg, ok := f.s.fields[f.key]; ok {
		return reg.stamp
	}
	return Stamp{}
}

// Set writes v locally and publishes it. Writing the value already held is a
// no-op, as is writing the zero value to a set latch. The local write stands
// even when publishing fails.
func (f *Field[T]) Set(v T) error {
	if f == nil || f.s == nil {
		return ErrClosed
	}
	data, err := marshal(v)
	if err != nil {
		return fmt.Errorf("replication: set %s.%s: %w", f.key.object, f.key.field, err)
	}
	reg := f.s.register(f.key)
	if !reg.stamp.IsZero() && bytes.Equal(reg.value, data) {
		return nil
	}
	if f.latch && reg.holdsNonZero() && bytes.Equal(data, f.zero) {
		return nil
	}
	stamp := f.s.tick()
	if !reg.merge(data, stamp, f.latch, f.zero) {
		return nil
	}
	if f.s.closed {
		return ErrClosed
	}
	return f.s.publish(Envelope{
		Op:     OpSet,
		Object: f.key.object,
		Field:  f.key.field,
		Value:  data,
		Latch:  f.latch,
		Zero:   f.zero,
		Stamp:  stamp,
	})
}
