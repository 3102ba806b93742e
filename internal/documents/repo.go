package documents

import "context"

// DocumentsRepo defines persistence operations for documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userID, documentID string) (Document, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Document, error)
	// ClaimGuest reassigns every document owned by guestUserID and reports
	// how many moved.
	ClaimGuest(ctx context.Context, guestUserID, userID string) (int, error)
}
