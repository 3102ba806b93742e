package usage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGStore keeps AI usage in the ai_usage table.
type PGStore struct {
	DB     *sql.DB
	policy Policy
	now    func() time.Time
}

// NewPGStore constructs a Postgres-backed usage store.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db, now: time.Now}
}

func (s *PGStore) EnsurePeriod(ctx context.Context, userID string) (u Usage, err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	u, err = s.lockAndEnsure(ctx, tx, userID)
	if err != nil {
		return Usage{}, err
	}
	if err = tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *PGStore) Consume(ctx context.Context, userID string, n int) (u Usage, err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	u, err = s.lockAndEnsure(ctx, tx, userID)
	if err != nil {
		return Usage{}, err
	}
	if n > 0 {
		if u.Used+n > u.Limit {
			err = ErrLimitReached
			return Usage{}, err
		}
		u.Used += n
		if _, err = tx.ExecContext(ctx, `UPDATE ai_usage SET used = $1 WHERE user_id = $2`, u.Used, userID); err != nil {
			return Usage{}, err
		}
	}
	if err = tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *PGStore) Refund(ctx context.Context, userID string, n int) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE ai_usage SET used = GREATEST(used - $1, 0) WHERE user_id = $2`, n, userID)
	return err
}

func (s *PGStore) Reset(ctx context.Context, userID string) (Usage, error) {
	u := s.policy.fresh(s.clock())
	if _, err := s.DB.ExecContext(ctx, `
INSERT INTO ai_usage (user_id, plan, limit_amount, used, resets_at)
VALUES ($1, $2, $3, 0, $4)
ON CONFLICT (user_id) DO UPDATE SET used = 0, limit_amount = EXCLUDED.limit_amount, resets_at = EXCLUDED.resets_at`,
		userID, u.Plan, u.Limit, u.ResetsAt); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *PGStore) clock() time.Time {
	if s.now == nil {
		return time.Now().UTC()
	}
	return s.now().UTC()
}

func (s *PGStore) lockAndEnsure(ctx context.Context, tx *sql.Tx, userID string) (Usage, error) {
	var u Usage
	row := tx.QueryRowContext(ctx, `
SELECT plan, limit_amount, used, resets_at FROM ai_usage WHERE user_id = $1 FOR UPDATE`, userID)
	err := row.Scan(&u.Plan, &u.Limit, &u.Used, &u.ResetsAt)
	now := s.clock()
	if errors.Is(err, sql.ErrNoRows) {
		u = s.policy.fresh(now)
		if _, err = tx.ExecContext(ctx, `
INSERT INTO ai_usage (user_id, plan, limit_amount, used, resets_at) VALUES ($1, $2, $3, $4, $5)`,
			userID, u.Plan, u.Limit, u.Used, u.ResetsAt); err != nil {
			return Usage{}, err
		}
		return u, nil
	}
	if err != nil {
		return Usage{}, err
	}

	if rolled, ok := s.policy.roll(u, now); ok {
		u = rolled
		if _, err = tx.ExecContext(ctx, `UPDATE ai_usage SET used = $1, limit_amount = $2, resets_at = $3 WHERE user_id = $4`,
			u.Used, u.Limit, u.ResetsAt, userID); err != nil {
			return Usage{}, err
		}
	}
	return u, nil
}
