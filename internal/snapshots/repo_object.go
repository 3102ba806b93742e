package snapshots

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/util"
	"resume-builder/resume/store"
)

// maxBlobBytes bounds how much of a stored object is read back.
const maxBlobBytes = 4 << 20

// ObjectRepo stores each blob as <hash(user)>/resume-storage.json in an object store.
type ObjectRepo struct {
	Store object.ObjectStore
}

// Key is the storage key of userID's blob.
func Key(userID string) string {
	return path.Join(util.HashUserKey(userID), StorageName+".json")
}

func (r *ObjectRepo) Load(ctx context.Context, userID string) (store.State, error) {
	rc, err := r.Store.Open(ctx, Key(userID))
	if errors.Is(err, object.ErrNotFound) {
		return store.State{}, ErrNotFound
	}
	if err != nil {
		return store.State{}, fmt.Errorf("open snapshot: %w", err)
	}
	defer rc.Close()

	blob, err := io.ReadAll(io.LimitReader(rc, maxBlobBytes))
	if err != nil {
		return store.State{}, fmt.Errorf("read snapshot: %w", err)
	}
	return Decode(blob)
}

func (r *ObjectRepo) Save(ctx context.Context, userID string, state store.State) error {
	blob, err := Encode(state)
	if err != nil {
		return err
	}
	if _, err := r.Store.SaveWithKey(ctx, Key(userID), "application/json", bytes.NewReader(blob)); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *ObjectRepo) Delete(ctx context.Context, userID string) error {
	return r.Store.Delete(ctx, Key(userID))
}

var _ Repo = (*ObjectRepo)(nil)
