package driven

import (
	"context"

	"github.com/retainhq/retain/internal/core/domain"
)

// DocumentStore persists uploaded documents and their extracted text.
type DocumentStore interface {
	// Save creates or updates a document.
	Save(ctx context.Context, doc domain.Document) error

	// Get retrieves a document by ID.
	// Returns domain.ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// ListByKnowledgeBase returns the documents of a knowledge base,
	// most recently uploaded first.
	ListByKnowledgeBase(ctx context.Context, kbID string) ([]domain.Document, error)

	// ContentByKnowledgeBase returns the extracted text of every
	// document in a knowledge base that has content, in upload order.
	ContentByKnowledgeBase(ctx context.Context, kbID string) ([]string, error)

	// Delete removes a document.
	// Returns domain.ErrNotFound if it doesn't exist.
	Delete(ctx context.Context, id string) error
}
