package documents

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of DocumentsRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Document // userID -> documents, oldest first
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Document),
	}
}

// Create appends a document to the user's history.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.UserID] = append(r.data[doc.UserID], doc)
	return nil
}

// GetByID returns a document by ID for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, doc := range r.data[userID] {
		if doc.ID == documentID {
			return doc, nil
		}
	}
	return Document{}, ErrNotFound
}

// ListByUser returns the newest documents first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	docs := r.data[userID]
	out := make([]Document, 0, len(docs))
	for i := len(docs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, docs[i])
	}
	return out, nil
}

// ClaimGuest moves the guest's documents onto userID's history.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if guestUserID == userID {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[guestUserID]
	if len(docs) == 0 {
		return 0, nil
	}
	for _, doc := range docs {
		doc.UserID = userID
		r.data[userID] = append(r.data[userID], doc)
	}
	sort.SliceStable(r.data[userID], func(i, j int) bool {
		return r.data[userID][i].CreatedAt.Before(r.data[userID][j].CreatedAt)
	})
	delete(r.data, guestUserID)
	return len(docs), nil
}
