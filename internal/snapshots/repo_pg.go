package snapshots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"resume-builder/resume/store"
)

// PGRepo stores blobs in the resume_states table.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Load(ctx context.Context, userID string) (store.State, error) {
	const query = `SELECT state FROM resume_states WHERE user_key = $1`

	var blob []byte
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return store.State{}, ErrNotFound
	}
	if err != nil {
		return store.State{}, fmt.Errorf("select snapshot: %w", err)
	}
	return Decode(blob)
}

func (r *PGRepo) Save(ctx context.Context, userID string, state store.State) error {
	const query = `
INSERT INTO resume_states (user_key, state, created_at, updated_at)
VALUES ($1, $2, now(), now())
ON CONFLICT (user_key) DO UPDATE
SET state = EXCLUDED.state,
    updated_at = now()`

	blob, err := Encode(state)
	if err != nil {
		return err
	}
	if _, err := r.DB.ExecContext(ctx, query, userID, blob); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, userID string) error {
	const query = `DELETE FROM resume_states WHERE user_key = $1`
	if _, err := r.DB.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
