// Package sessions owns one resume Store per identity and hydrates it from
// the snapshot repo on first use.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/snapshots"
	"resume-builder/resume/store"
)

// Registry maps user ids to their live Store.
type Registry struct {
	repo snapshots.Repo

	mu     sync.Mutex
	stores map[string]*store.Store
}

func NewRegistry(repo snapshots.Repo) *Registry {
	return &Registry{
		repo:   repo,
		stores: make(map[string]*store.Store),
	}
}

// Get returns the Store for userID, rehydrating it from its snapshot the first
// time. A missing snapshot starts from defaults; an unreadable one is logged
// and replaced on the next write.
// The snapshot is loaded without holding the registry lock; when two first
// loads race, the Store inserted first wins.
func (r *Registry) Get(ctx context.Context, userID string) (*store.Store, error) {
	r.mu.Lock()
	st, ok := r.stores[userID]
	r.mu.Unlock()
	if ok {
		return st, nil
	}

	state, err := r.repo.Load(ctx, userID)
	switch {
	case err == nil:
	case errors.Is(err, snapshots.ErrNotFound):
		state = store.DefaultState()
	case errors.Is(err, snapshots.ErrCorrupt):
		telemetry.Warn("session.snapshot_corrupt", map[string]any{"user_id": userID, "error": err})
		state = store.DefaultState()
	default:
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	loaded := store.Open(state, store.WithPersister(r.persister(userID)))

	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.stores[userID]; ok {
		return st, nil
	}
	r.stores[userID] = loaded
	return loaded, nil
}

func (r *Registry) persister(userID string) store.Persister {
	inner := snapshots.Persister(r.repo, userID)
	return store.PersisterFunc(func(ctx context.Context, state store.State) error {
		if err := inner.Save(ctx, state); err != nil {
			metrics.IncPersistFailure()
			telemetry.Error("session.persist_failed", map[string]any{"user_id": userID, "error": err})
			return err
		}
		return nil
	})
}

// Claim moves a guest's resume to a signed-in user. The user's own saved
// resume wins when it already has one; otherwise the guest state is copied
// over and the guest record removed.
func (r *Registry) Claim(ctx context.Context, guestID, userID string) (claimed bool, err error) {
	if guestID == "" || guestID == userID {
		return false, nil
	}

	_, err = r.repo.Load(ctx, userID)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, snapshots.ErrNotFound), errors.Is(err, snapshots.ErrCorrupt):
	default:
		return false, fmt.Errorf("load user snapshot: %w", err)
	}

	guest, err := r.Get(ctx, guestID)
	if err != nil {
		return false, err
	}
	state := guest.State()

	target, err := r.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if err := target.Replace(ctx, state); err != nil {
		return false, err
	}

	if err := r.repo.Delete(ctx, guestID); err != nil {
		telemetry.Warn("session.guest_cleanup_failed", map[string]any{"user_id": guestID, "error": err})
	}
	r.mu.Lock()
	delete(r.stores, guestID)
	r.mu.Unlock()
	return true, nil
}

