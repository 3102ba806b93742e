package snapshots

import (
	"context"
	"sync"

	"resume-builder/resume/store"
)

// MemoryRepo keeps encoded blobs in memory. It is used in development and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]byte)}
}

func (r *MemoryRepo) Load(ctx context.Context, userID string) (store.State, error) {
	if err := ctx.Err(); err != nil {
		return store.State{}, err
	}
	r.mu.RLock()
	blob, ok := r.data[userID]
	r.mu.RUnlock()
	if !ok {
		return store.State{}, ErrNotFound
	}
	return Decode(blob)
}

func (r *MemoryRepo) Save(ctx context.Context, userID string, state store.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	blob, err := Encode(state)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.data[userID] = blob
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.data, userID)
	r.mu.Unlock()
	return nil
}

// Raw returns the stored blob for userID, for inspection.
func (r *MemoryRepo) Raw(userID string) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	blob, ok := r.data[userID]
	return blob, ok
}

var _ Repo = (*MemoryRepo)(nil)
