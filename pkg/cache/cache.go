package cache

import "sync"

// Slot holds at most one value. Put overwrites any previous value, Take
// removes and returns it. Concurrent writers race; the last Put wins.
type Slot[T any] struct {
	mu  sync.Mutex
	val T
	set bool
}

func (s *Slot[T]) Put(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.val = v
	s.set = true
}

// Take returns the stored value and clears the slot. The second return is
// false when the slot was empty.
func (s *Slot[T]) Take() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.val, s.set
	var zero T
	s.val, s.set = zero, false
	return v, ok
}

func (s *Slot[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.val, s.set = zero, false
}
