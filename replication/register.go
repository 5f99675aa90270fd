package replication

import "bytes"

type fieldKey struct {
	object ObjectID
	field  string
}

// register is a last-writer-wins cell holding an encoded value. A latch
// register additionally refuses to go back to the zero value once it has held
// a non-zero one.
type register struct {
	value []byte
	stamp Stamp
	latch bool
	// zero is the encoding of the field's zero value, used by latch merges.
	zero []byte
}

// merge applies a write and reports whether the held value or stamp changed.
func (r *register) merge(value []byte, stamp Stamp, latch bool, zero []byte) bool {
	if latch {
		r.latch = true
	}
	if zero != nil && r.zero == nil {
		r.zero = append([]byte(nil), zero...)
	}
	if !r.stamp.IsZero() && !stamp.After(r.stamp) {
		return false
	}
	if r.latch && r.holdsNonZero() && r.isZero(value) {
		return false
	}
	r.value = append(r.value[:0], value...)
	r.stamp = stamp
	return true
}

func (r *register) isZero(value []byte) bool {
	if len(value) == 0 {
		return true
	}
	return r.zero != nil && bytes.Equal(value, r.zero)
}

func (r *register) holdsNonZero() bool {
	return !r.stamp.IsZero() && !r.isZero(r.value)
}
