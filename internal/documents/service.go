package documents

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/extract"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
)

// Service archives uploaded resumes and their extracted text.
type Service struct {
	Store object.ObjectStore
	Repo  DocumentsRepo
	now   func() time.Time
	newID func() string
}

// NewService constructs a Service.
func NewService(store object.ObjectStore, repo DocumentsRepo) *Service {
	return &Service{Store: store, Repo: repo, now: time.Now, newID: uuid.NewString}
}

// Archive saves the upload, extracts its text from the stored copy and
// records the document. It returns the extracted text.
func (s *Service) Archive(ctx context.Context, userID, fileName, mimeType string, data []byte) (string, error) {
	if strings.TrimSpace(fileName) == "" || len(data) == 0 {
		return "", ErrInvalidInput
	}

	storageKey, size, _, err := s.Store.Save(ctx, userID, fileName, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	text, err := extract.ExtractText(ctx, s.Store, storageKey, mimeType, fileName)
	if err != nil {
		return "", err
	}

	doc := Document{
		ID:               s.newID(),
		UserID:           userID,
		FileName:         fileName,
		MimeType:         mimeType,
		SizeBytes:        size,
		StorageKey:       storageKey,
		ExtractedTextKey: storageKey + ".extracted.txt",
		CreatedAt:        s.now().UTC(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		// The text is still usable; only the history entry is lost.
		telemetry.Warn("documents.record_failed", map[string]any{
			"user_id":     userID,
			"storage_key": storageKey,
			"error":       err,
		})
	}
	return text, nil
}

// List returns the user's most recent uploads.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Document, error) {
	if userID == "" {
		return nil, errors.New("user id required")
	}
	return s.Repo.ListByUser(ctx, userID, limit)
}

// Open returns a document and a reader for its original bytes.
func (s *Service) Open(ctx context.Context, userID, documentID string) (Document, io.ReadCloser, error) {
	doc, err := s.Repo.GetByID(ctx, userID, documentID)
	if err != nil {
		return Document{}, nil, err
	}
	body, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		return Document{}, nil, err
	}
	return doc, body, nil
}
