package driven

import (
	"context"

	"github.com/retainhq/retain/internal/core/domain"
)

// KnowledgeBaseStore persists knowledge bases.
type KnowledgeBaseStore interface {
	// Save creates or updates a knowledge base.
	Save(ctx context.Context, kb domain.KnowledgeBase) error

	// Get retrieves a knowledge base by ID.
	// Returns domain.ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.KnowledgeBase, error)

	// List returns all knowledge bases, most recently created first.
	List(ctx context.Context) ([]domain.KnowledgeBase, error)

	// Delete removes a knowledge base and everything under it.
	// Returns domain.ErrNotFound if it doesn't exist.
	Delete(ctx context.Context, id string) error
}
