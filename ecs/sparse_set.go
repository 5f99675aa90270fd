package ecs

// sparseSet is a cache-friendly component storage keyed by entity slot id.
// Values are stored by pointer so systems can mutate them in place.
type sparseSet[T any] struct {
	dense  []entityID
	values []*T
	sparse []int
}

func (s *sparseSet[T]) has(id entityID) bool {
	if int(id) >= len(s.sparse) {
		return false
	}
	idx := s.sparse[id]
	return idx >= 0 && idx < len(s.dense) && s.dense[idx] == id
}

func (s *sparseSet[T]) get(id entityID) (*T, bool) {
	if !s.has(id) {
		return nil, false
	}
	return s.values[s.sparse[id]], true
}

func (s *sparseSet[T]) set(id entityID, v *T) {
	for int(id) >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if s.has(id) {
		s.values[s.sparse[id]] = v
		return
	}
	s.dense = append(s.dense, id)
	s.values = append(s.values, v)
	s.sparse[id] = len(s.dense) - 1
}

func (s *sparseSet[T]) remove(id entityID) bool {
	if !s.has(id) {
		return false
	}
	idx := s.sparse[id]
	last := len(s.dense) - 1
	lastID := s.dense[last]

	s.dense[idx] = lastID
	s.values[idx] = s.values[last]
	s.sparse[lastID] = idx

	s.values[last] = nil
	s.dense = s.dense[:last]
	s.values = s.values[:last]
	s.sparse[id] = -1
	return true
}

func (s *sparseSet[T]) len() int {
	return len(s.dense)
}

// ids returns a copy of the dense id list so callers may mutate the set
// while iterating.
func (s *sparseSet[T]) ids() []entityID {
	out := make([]entityID, len(s.dense))
	copy(out, s.dense)
	return out
}
