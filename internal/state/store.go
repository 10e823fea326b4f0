package state

import "sync"

// Store guards a Herd so that mutations happen one at a time.
type Store struct {
	herd Herd
	mu   sync.RWMutex
}

// NewStore wraps an initial herd.
func NewStore(initial Herd) *Store {
	return &Store{herd: initial}
}

// Read runs fn with shared access. fn must not retain h.
func (s *Store) Read(fn func(h *Herd)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.herd)
}

// Snapshot returns a deep copy of the current herd.
func (s *Store) Snapshot() Herd {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.herd.Clone()
}

// Update runs fn with exclusive access. fn works on a copy; the copy only
// replaces the stored herd when fn succeeds, so a failed update never leaves
// partial changes behind.
func (s *Store) Update(fn func(h *Herd) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.herd.Clone()
	if err := fn(&draft); err != nil {
		return err
	}
	s.herd = draft
	return nil
}
