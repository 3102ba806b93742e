package snapshots

import (
	"context"

	"resume-builder/resume/store"
)

// Repo stores one builder state per user.
type Repo interface {
	// Load returns ErrNotFound when the user has no saved state and ErrCorrupt
	// when the stored blob is unreadable.
	Load(ctx context.Context, userID string) (store.State, error)
	Save(ctx context.Context, userID string, state store.State) error
	Delete(ctx context.Context, userID string) error
}

// Persister binds a repo to one user so a Store can write through it.
func Persister(repo Repo, userID string) store.Persister {
	return store.PersisterFunc(func(ctx context.Context, state store.State) error {
		return repo.Save(ctx, userID, state)
	})
}
