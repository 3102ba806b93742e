package usage

import (
	"context"
	"time"

	"resume-builder/internal/shared/telemetry"
)

type store interface {
	EnsurePeriod(ctx context.Context, userID string) (Usage, error)
	Consume(ctx context.Context, userID string, n int) (Usage, error)
	Refund(ctx context.Context, userID string, n int) error
	Reset(ctx context.Context, userID string) (Usage, error)
}

// Service meters AI calls per user. A zero Limit disables metering.
type Service struct {
	store  store
	policy Policy
}

// NewService constructs a Service with an in-memory store.
func NewService(policy Policy) *Service {
	policy = normalize(policy)
	return &Service{store: newMemoryStore(policy, time.Now), policy: policy}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore *PGStore, policy Policy) *Service {
	policy = normalize(policy)
	pgStore.policy = policy
	return &Service{store: pgStore, policy: policy}
}

func normalize(p Policy) Policy {
	if p.Period <= 0 {
		p.Period = 24 * time.Hour
	}
	if p.Limit < 0 {
		p.Limit = 0
	}
	return p
}

// Enabled reports whether credits are enforced.
func (s *Service) Enabled() bool {
	return s != nil && s.policy.Limit > 0
}

// EnsurePeriod returns the current usage, starting a new window if the old one ended.
func (s *Service) EnsurePeriod(ctx context.Context, userID string) (Usage, error) {
	if !s.Enabled() {
		return Usage{Plan: defaultPlan}, nil
	}
	return s.store.EnsurePeriod(ctx, userID)
}

// Charge takes one credit for an AI call. The returned refund gives the
// credit back and must be called when the call fails.
func (s *Service) Charge(ctx context.Context, userID string) (refund func(), err error) {
	if !s.Enabled() {
		return func() {}, nil
	}
	if _, err := s.store.Consume(ctx, userID, 1); err != nil {
		return nil, err
	}
	return func() {
		// The request context may already be cancelled.
		if err := s.store.Refund(context.WithoutCancel(ctx), userID, 1); err != nil {
			telemetry.Warn("usage.refund_failed", map[string]any{
				"user_id": userID,
				"error":   err,
			})
		}
	}, nil
}

// Reset sets usage to zero and restarts the window.
func (s *Service) Reset(ctx context.Context, userID string) (Usage, error) {
	if !s.Enabled() {
		return Usage{Plan: defaultPlan}, nil
	}
	return s.store.Reset(ctx, userID)
}
