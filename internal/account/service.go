package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resume-builder/internal/shared/telemetry"
)

// ResumeClaimer moves a guest's saved resume state to a signed-in user.
type ResumeClaimer interface {
	Claim(ctx context.Context, guestUserID, userID string) (bool, error)
}

// DocumentClaimer reassigns a guest's archived uploads.
type DocumentClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, userID string) (int, error)
}

type Service struct {
	Resumes   ResumeClaimer
	Documents DocumentClaimer
}

type ClaimResult struct {
	ClaimedResume     bool `json:"claimedResume"`
	MigratedDocuments int  `json:"migratedDocuments"`
}

// NewService builds the claim service. documents may be nil when uploads are
// not archived.
func NewService(resumes ResumeClaimer, documents DocumentClaimer) *Service {
	return &Service{Resumes: resumes, Documents: documents}
}

func (s *Service) ClaimGuest(ctx context.Context, guestUserID, userID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(userID) == "" {
		return ClaimResult{}, errors.New("guestUserID and userID are required")
	}
	if guestUserID == userID {
		return ClaimResult{}, nil
	}

	var result ClaimResult
	if s.Resumes != nil {
		claimed, err := s.Resumes.Claim(ctx, guestUserID, userID)
		if err != nil {
			return ClaimResult{}, fmt.Errorf("claim resume: %w", err)
		}
		result.ClaimedResume = claimed
	}
	if s.Documents != nil {
		n, err := s.Documents.ClaimGuest(ctx, guestUserID, userID)
		if err != nil {
			return result, fmt.Errorf("claim documents: %w", err)
		}
		result.MigratedDocuments = n
	}

	telemetry.Info("account.guest_claimed", map[string]any{
		"user_id":            userID,
		"claimed_resume":     result.ClaimedResume,
		"migrated_documents": result.MigratedDocuments,
	})
	return result, nil
}

// Claim satisfies the sign-in flow's claimer so a Google login carries over
// the guest's documents as well as the resume.
func (s *Service) Claim(ctx context.Context, guestUserID, userID string) (bool, error) {
	result, err := s.ClaimGuest(ctx, guestUserID, userID)
	return result.ClaimedResume, err
}
