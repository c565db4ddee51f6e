package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/retainhq/retain/internal/cache"
	"github.com/retainhq/retain/internal/core/domain"
	"github.com/retainhq/retain/internal/core/ports/driven"
	"github.com/retainhq/retain/internal/core/ports/driving"
	"github.com/retainhq/retain/internal/extractors"
	"github.com/retainhq/retain/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// LibraryService manages knowledge bases and their documents, including
// the files on disk behind them.
type LibraryService struct {
	kbStore      driven.KnowledgeBaseStore
	docStore     driven.DocumentStore
	registry     *extractors.Registry
	uploadDir    string
	contentCache *cache.Cache[string]
}

// NewLibraryService creates a new library service. The content cache is
// shared with the quiz service so uploads and deletions invalidate the
// aggregated text it reads.
func NewLibraryService(
	kbStore driven.KnowledgeBaseStore,
	docStore driven.DocumentStore,
	registry *extractors.Registry,
	uploadDir string,
	contentCache *cache.Cache[string],
) *LibraryService {
	return &LibraryService{
		kbStore:      kbStore,
		docStore:     docStore,
		registry:     registry,
		uploadDir:    uploadDir,
		contentCache: contentCache,
	}
}

// CreateKnowledgeBase creates a knowledge base.
func (s *LibraryService) CreateKnowledgeBase(ctx context.Context, name, description string) (*domain.KnowledgeBase, error) {
	kb := domain.NewKnowledgeBase(name, description)
	if err := kb.Validate(); err != nil {
		return nil, err
	}
	if err := s.kbStore.Save(ctx, kb); err != nil {
		return nil, err
	}
	logger.Debug("created knowledge base %s (%s)", kb.ID, kb.Name)
	return &kb, nil
}

// ListKnowledgeBases returns all knowledge bases, most recent first.
func (s *LibraryService) ListKnowledgeBases(ctx context.Context) ([]domain.KnowledgeBase, error) {
	return s.kbStore.List(ctx)
}

// GetKnowledgeBase retrieves a knowledge base by ID.
func (s *LibraryService) GetKnowledgeBase(ctx context.Context, id string) (*domain.KnowledgeBase, error) {
	return s.kbStore.Get(ctx, id)
}

// UpdateKnowledgeBase renames or redescribes a knowledge base.
func (s *LibraryService) UpdateKnowledgeBase(ctx context.Context, id, name, description string) (*domain.KnowledgeBase, error) {
	kb, err := s.kbStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	kb.Name = name
	kb.Description = description
	kb.Touch()
	if err := kb.Validate(); err != nil {
		return nil, err
	}

	if err := s.kbStore.Save(ctx, *kb); err != nil {
		return nil, err
	}
	return kb, nil
}

// DeleteKnowledgeBase removes a knowledge base, its documents and their
// stored files. File removal failures are logged, not fatal; the rows
// cascade regardless.
func (s *LibraryService) DeleteKnowledgeBase(ctx context.Context, id string) error {
	docs, err := s.docStore.ListByKnowledgeBase(ctx, id)
	if err != nil {
		return err
	}
	for i := range docs {
		if err := os.Remove(docs[i].FilePath); err != nil && !os.IsNotExist(err) {
			logger.Warn("removing file %s: %v", docs[i].FilePath, err)
		}
	}

	if err := s.kbStore.Delete(ctx, id); err != nil {
		return err
	}
	s.contentCache.Invalidate(id)
	return nil
}

// UploadDocument stores an uploaded file under a knowledge base and
// extracts its text. Extraction failure is fatal to the upload: the
// file is removed and nothing is persisted.
func (s *LibraryService) UploadDocument(ctx context.Context, kbID, filename string, data []byte) (*domain.Document, error) {
	if _, err := s.kbStore.Get(ctx, kbID); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", domain.ErrInvalidInput)
	}
	if int64(len(data)) > domain.MaxDocumentSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrInvalidInput, domain.MaxDocumentSize)
	}

	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	extractor, ok := s.registry.Lookup(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)",
			domain.ErrUnsupportedFileType, ext, strings.Join(s.registry.SupportedExtensions(), ", "))
	}

	doc := domain.NewDocument(kbID, filename, extractor.FileType(), "", int64(len(data)), nil)

	// One directory per knowledge base, files named by document ID so
	// uploads with the same filename never collide.
	dir := filepath.Join(s.uploadDir, kbID)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	path := filepath.Join(dir, doc.ID+"."+strings.ToLower(ext))
	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, fmt.Errorf("writing upload: %w", err)
	}
	doc.FilePath = path

	content, err := extractor.Extract(ctx, path)
	if err != nil {
		s.removeFile(path)
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtractionFailed, filename, err)
	}
	doc.Content = &content

	if err := doc.Validate(); err != nil {
		s.removeFile(path)
		return nil, err
	}
	if err := s.docStore.Save(ctx, doc); err != nil {
		// Don't leave an orphaned file behind.
		s.removeFile(path)
		return nil, err
	}

	s.contentCache.Invalidate(kbID)
	logger.Debug("uploaded document %s (%s, %d bytes)", doc.ID, filename, doc.FileSize)
	return &doc, nil
}

// ListDocuments returns the documents of a knowledge base.
func (s *LibraryService) ListDocuments(ctx context.Context, kbID string) ([]domain.Document, error) {
	if _, err := s.kbStore.Get(ctx, kbID); err != nil {
		return nil, err
	}
	return s.docStore.ListByKnowledgeBase(ctx, kbID)
}

// GetDocument retrieves a document by ID.
func (s *LibraryService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	return s.docStore.Get(ctx, id)
}

// DeleteDocument removes a document and its stored file.
func (s *LibraryService) DeleteDocument(ctx context.Context, id string) error {
	doc, err := s.docStore.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.docStore.Delete(ctx, id); err != nil {
		return err
	}
	s.removeFile(doc.FilePath)
	s.contentCache.Invalidate(doc.KnowledgeBaseID)
	return nil
}

// SupportedExtensions returns the file extensions uploads accept.
func (s *LibraryService) SupportedExtensions() []string {
	return s.registry.SupportedExtensions()
}

func (s *LibraryService) removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("removing file %s: %v", path, err)
	}
}
