package driving

import (
	"context"

	"github.com/retainhq/retain/internal/core/domain"
)

// LibraryService manages knowledge bases and their documents.
type LibraryService interface {
	// CreateKnowledgeBase creates a knowledge base.
	CreateKnowledgeBase(ctx context.Context, name, description string) (*domain.KnowledgeBase, error)

	// ListKnowledgeBases returns all knowledge bases, most recent first.
	ListKnowledgeBases(ctx context.Context) ([]domain.KnowledgeBase, error)

	// GetKnowledgeBase retrieves a knowledge base by ID.
	GetKnowledgeBase(ctx context.Context, id string) (*domain.KnowledgeBase, error)

	// UpdateKnowledgeBase renames or redescribes a knowledge base.
	UpdateKnowledgeBase(ctx context.Context, id, name, description string) (*domain.KnowledgeBase, error)

	// DeleteKnowledgeBase removes a knowledge base, its documents and
	// their stored files.
	DeleteKnowledgeBase(ctx context.Context, id string) error

	// UploadDocument stores an uploaded file under a knowledge base and
	// extracts its text. Extraction failure fails the upload with
	// ErrExtractionFailed and removes the stored file.
	UploadDocument(ctx context.Context, kbID, filename string, data []byte) (*domain.Document, error)

	// ListDocuments returns the documents of a knowledge base.
	ListDocuments(ctx context.Context, kbID string) ([]domain.Document, error)

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// DeleteDocument removes a document and its stored file.
	DeleteDocument(ctx context.Context, id string) error

	// SupportedExtensions returns the file extensions uploads accept.
	SupportedExtensions() []string
}
