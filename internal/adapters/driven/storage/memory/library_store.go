package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/retainhq/retain/internal/core/domain"
	"github.com/retainhq/retain/internal/core/ports/driven"
)

// Ensure KnowledgeBaseStore implements the interface.
var _ driven.KnowledgeBaseStore = (*KnowledgeBaseStore)(nil)

// KnowledgeBaseStore is an in-memory implementation of driven.KnowledgeBaseStore.
type KnowledgeBaseStore struct {
	mu  sync.RWMutex
	kbs map[string]domain.KnowledgeBase

	// docs, when wired, receives cascading deletes.
	docs *DocumentStore
}

// NewKnowledgeBaseStore creates a new in-memory knowledge base store.
// A non-nil document store participates in cascading deletes, matching
// the SQLite store's foreign key behaviour.
func NewKnowledgeBaseStore(docs *DocumentStore) *KnowledgeBaseStore {
	return &KnowledgeBaseStore{
		kbs:  make(map[string]domain.KnowledgeBase),
		docs: docs,
	}
}

// Save stores or updates a knowledge base.
func (s *KnowledgeBaseStore) Save(_ context.Context, kb domain.KnowledgeBase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kbs[kb.ID] = kb
	return nil
}

// Get retrieves a knowledge base by ID.
func (s *KnowledgeBaseStore) Get(_ context.Context, id string) (*domain.KnowledgeBase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kb, ok := s.kbs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &kb, nil
}

// List returns all knowledge bases, most recently created first.
func (s *KnowledgeBaseStore) List(_ context.Context) ([]domain.KnowledgeBase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kbs := make([]domain.KnowledgeBase, 0, len(s.kbs))
	for _, kb := range s.kbs {
		kbs = append(kbs, kb)
	}
	sort.Slice(kbs, func(i, j int) bool {
		return kbs[i].CreatedAt.After(kbs[j].CreatedAt)
	})
	return kbs, nil
}

// Delete removes a knowledge base and cascades to its documents.
func (s *KnowledgeBaseStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.kbs[id]; !ok {
		s.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(s.kbs, id)
	s.mu.Unlock()

	if s.docs != nil {
		s.docs.deleteByKnowledgeBase(ctx, id)
	}
	return nil
}

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]domain.Document)}
}

// Save stores or updates a document.
func (s *DocumentStore) Save(_ context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

// Get retrieves a document by ID.
func (s *DocumentStore) Get(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListByKnowledgeBase returns the documents of a knowledge base, most
// recently uploaded first.
func (s *DocumentStore) ListByKnowledgeBase(_ context.Context, kbID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.Document
	for _, doc := range s.docs {
		if doc.KnowledgeBaseID == kbID {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
	return docs, nil
}

// ContentByKnowledgeBase returns extracted text of documents with
// content, in upload order.
func (s *DocumentStore) ContentByKnowledgeBase(_ context.Context, kbID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.Document
	for _, doc := range s.docs {
		if doc.KnowledgeBaseID == kbID && doc.Content != nil && *doc.Content != "" {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.Before(docs[j].UploadedAt)
	})

	contents := make([]string, 0, len(docs))
	for _, doc := range docs {
		contents = append(contents, *doc.Content)
	}
	return contents, nil
}

// Delete removes a document.
func (s *DocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *DocumentStore) deleteByKnowledgeBase(_ context.Context, kbID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, doc := range s.docs {
		if doc.KnowledgeBaseID == kbID {
			delete(s.docs, id)
		}
	}
}
