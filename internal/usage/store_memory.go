package usage

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu     sync.Mutex
	data   map[string]Usage
	policy Policy
	now    func() time.Time
}

func newMemoryStore(policy Policy, now func() time.Time) *memoryStore {
	return &memoryStore{
		data:   make(map[string]Usage),
		policy: policy,
		now:    now,
	}
}

// current must be called with mu held.
func (s *memoryStore) current(userID string) Usage {
	now := s.now().UTC()
	u, ok := s.data[userID]
	if !ok {
		u = s.policy.fresh(now)
	}
	u, _ = s.policy.roll(u, now)
	s.data[userID] = u
	return u
}

func (s *memoryStore) EnsurePeriod(ctx context.Context, userID string) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current(userID), nil
}

func (s *memoryStore) Consume(ctx context.Context, userID string, n int) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.current(userID)
	if n <= 0 {
		return u, nil
	}
	if u.Used+n > u.Limit {
		return Usage{}, ErrLimitReached
	}
	u.Used += n
	s.data[userID] = u
	return u, nil
}

func (s *memoryStore) Refund(ctx context.Context, userID string, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.current(userID)
	u.Used -= n
	if u.Used < 0 {
		u.Used = 0
	}
	s.data[userID] = u
	return nil
}

func (s *memoryStore) Reset(ctx context.Context, userID string) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.policy.fresh(s.now().UTC())
	s.data[userID] = u
	return u, nil
}
