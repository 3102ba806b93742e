package documents

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a document does not exist for the caller.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput is returned for uploads without a file name or body.
	ErrInvalidInput = errors.New("invalid document input")
)

// Document is an archived resume upload owned by a user.
type Document struct {
	ID               string
	UserID           string
	FileName         string
	MimeType         string
	SizeBytes        int64
	StorageKey       string
	ExtractedTextKey string
	CreatedAt        time.Time
}

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID string    `json:"documentId"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID: doc.ID,
		FileName:   doc.FileName,
		MimeType:   doc.MimeType,
		SizeBytes:  doc.SizeBytes,
		UploadedAt: doc.CreatedAt,
	}
}
