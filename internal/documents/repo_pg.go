package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, user_id, file_name, mime_type, size_bytes, storage_key, extracted_text_key, created_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (id, user_id, file_name, mime_type, size_bytes, storage_key, extracted_text_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	var extractedKey sql.NullString
	if doc.ExtractedTextKey != "" {
		extractedKey = sql.NullString{String: doc.ExtractedTextKey, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		doc.MimeType,
		doc.SizeBytes,
		doc.StorageKey,
		extractedKey,
		doc.CreatedAt,
	)
	return err
}

// GetByID returns a document owned by userID.
func (r *PGRepo) GetByID(ctx context.Context, userID, documentID string) (Document, error) {
	query := `SELECT ` + selectColumns + ` FROM documents WHERE user_id = $1 AND id = $2`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, userID, documentID))
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return doc, err
}

// ListByUser returns the newest documents first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + selectColumns + ` FROM documents WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var extractedKey sql.NullString
	if err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.StorageKey,
		&extractedKey,
		&doc.CreatedAt,
	); err != nil {
		return Document{}, err
	}
	doc.ExtractedTextKey = extractedKey.String
	return doc, nil
}

// ClaimGuest reassigns the guest's documents to userID.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, userID string) (int, error) {
	if guestUserID == userID {
		return 0, nil
	}
	res, err := r.DB.ExecContext(ctx, `UPDATE documents SET user_id = $1 WHERE user_id = $2`, userID, guestUserID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
