package users

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Service struct {
	Repo Repo
	now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, now: time.Now}
}

// UpsertFromAuth persists the identity returned by the OAuth provider.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" {
		return errors.New("user id and email are required")
	}
	if user.LastLoginAt.IsZero() {
		user.LastLoginAt = s.clock().UTC()
	}
	return s.Repo.Upsert(ctx, user)
}

// RecordLogin adapts UpsertFromAuth to the sign-in callback.
func (s *Service) RecordLogin(ctx context.Context, userID, email, name, picture string) error {
	return s.UpsertFromAuth(ctx, User{
		ID:         userID,
		Email:      email,
		FullName:   name,
		PictureURL: picture,
	})
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
