package store

import "sync"

// Sequencer orders generated results per key by the time their requests
// started. A result is written only if no later-started request for the same
// key has been written already, so a slow response can never overwrite a newer
// one. Requests that fail never commit and so never supersede anything.
type Sequencer struct {
	mu      sync.Mutex
	issued  map[string]uint64
	applied map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{
		issued:  make(map[string]uint64),
		applied: make(map[string]uint64),
	}
}

// Begin issues a ticket for key, ordered after every earlier ticket.
func (s *Sequencer) Begin(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[key]++
	return s.issued[key]
}

// Commit runs apply unless a later ticket for key has already been committed.
// No ticket can be issued or committed while apply runs, so a check-then-write
// cannot interleave with another request. apply must not use the Sequencer.
func (s *Sequencer) Commit(key string, ticket uint64, apply func() error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket <= s.applied[key] {
		return false, nil
	}
	s.applied[key] = ticket
	return true, apply()
}
