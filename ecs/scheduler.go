package ecs

// Scheduler runs systems in registration order, one at a time, and counts the
// ticks it has run.
type Scheduler struct {
	systems []System
	ticks   uint64
}

func NewScheduler(systems ...System) *Scheduler {
	s := &Scheduler{systems: make([]System, 0, len(systems))}
	for _, system := range systems {
		s.Add(system)
	}
	return s
}

// Add appends system to the tick. Nil systems are skipped.
func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

// Update runs one tick over w.
func (s *Scheduler) Update(w *World) {
	if s == nil {
		return
	}
	s.ticks++
	for _, system := range s.systems {
		system.Update(w)
	}
}

func (s *Scheduler) Ticks() uint64 {
	if s == nil {
		return 0
	}
	return s.ticks
}

// Index reports where system runs in the tick, or -1 if it is not scheduled.
func (s *Scheduler) Index(system System) int {
	for i, candidate := range s.systems {
		if candidate == system {
			return i
		}
	}
	return -1
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}
