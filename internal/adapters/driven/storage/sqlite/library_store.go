package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/retainhq/retain/internal/core/domain"
	"github.com/retainhq/retain/internal/core/ports/driven"
)

// ==================== Knowledge Base Store ====================

// knowledgeBaseStore implements driven.KnowledgeBaseStore.
type knowledgeBaseStore struct {
	store *Store
}

var _ driven.KnowledgeBaseStore = (*knowledgeBaseStore)(nil)

// Save stores or updates a knowledge base.
func (s *knowledgeBaseStore) Save(ctx context.Context, kb domain.KnowledgeBase) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO knowledge_bases (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			updated_at = excluded.updated_at
	`, kb.ID, kb.Name, nullString(kb.Description), kb.CreatedAt, kb.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving knowledge base: %w", err)
	}
	return nil
}

// Get retrieves a knowledge base by ID.
func (s *knowledgeBaseStore) Get(ctx context.Context, id string) (*domain.KnowledgeBase, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM knowledge_bases WHERE id = ?
	`, id)

	kb, err := scanKnowledgeBase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning knowledge base: %w", err)
	}
	return kb, nil
}

// List returns all knowledge bases, most recently created first.
func (s *knowledgeBaseStore) List(ctx context.Context) ([]domain.KnowledgeBase, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM knowledge_bases ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing knowledge bases: %w", err)
	}
	defer rows.Close()

	var kbs []domain.KnowledgeBase
	for rows.Next() {
		kb, err := scanKnowledgeBase(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning knowledge base: %w", err)
		}
		kbs = append(kbs, *kb)
	}
	return kbs, rows.Err()
}

// Delete removes a knowledge base; documents, questions and sessions
// cascade.
func (s *knowledgeBaseStore) Delete(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, `DELETE FROM knowledge_bases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting knowledge base: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanKnowledgeBase(row scanner) (*domain.KnowledgeBase, error) {
	var kb domain.KnowledgeBase
	var description sql.NullString
	if err := row.Scan(&kb.ID, &kb.Name, &description, &kb.CreatedAt, &kb.UpdatedAt); err != nil {
		return nil, err
	}
	kb.Description = description.String
	return &kb, nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// Save stores or updates a document.
func (s *documentStore) Save(ctx context.Context, doc domain.Document) error {
	var content sql.NullString
	if doc.Content != nil {
		content = sql.NullString{String: *doc.Content, Valid: true}
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, knowledge_base_id, filename, file_type, file_path, file_size, content_text, upload_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			file_type = excluded.file_type,
			file_path = excluded.file_path,
			file_size = excluded.file_size,
			content_text = excluded.content_text
	`, doc.ID, doc.KnowledgeBaseID, doc.Filename, string(doc.FileType),
		doc.FilePath, doc.FileSize, content, doc.UploadedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// Get retrieves a document by ID.
func (s *documentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, knowledge_base_id, filename, file_type, file_path, file_size, content_text, upload_date
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return doc, nil
}

// ListByKnowledgeBase returns the documents of a knowledge base, most
// recently uploaded first.
func (s *documentStore) ListByKnowledgeBase(ctx context.Context, kbID string) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, knowledge_base_id, filename, file_type, file_path, file_size, content_text, upload_date
		FROM documents WHERE knowledge_base_id = ? ORDER BY upload_date DESC
	`, kbID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// ContentByKnowledgeBase returns the extracted text of every document
// with content, in upload order.
func (s *documentStore) ContentByKnowledgeBase(ctx context.Context, kbID string) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT content_text FROM documents
		WHERE knowledge_base_id = ? AND content_text IS NOT NULL AND content_text != ''
		ORDER BY upload_date ASC
	`, kbID)
	if err != nil {
		return nil, fmt.Errorf("loading document content: %w", err)
	}
	defer rows.Close()

	var contents []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scanning content: %w", err)
		}
		contents = append(contents, content)
	}
	return contents, rows.Err()
}

// Delete removes a document.
func (s *documentStore) Delete(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanDocument(row scanner) (*domain.Document, error) {
	var doc domain.Document
	var fileType string
	var content sql.NullString
	if err := row.Scan(&doc.ID, &doc.KnowledgeBaseID, &doc.Filename, &fileType,
		&doc.FilePath, &doc.FileSize, &content, &doc.UploadedAt); err != nil {
		return nil, err
	}

	parsed, err := domain.ParseFileType(fileType)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", doc.ID, err)
	}
	doc.FileType = parsed

	if content.Valid {
		doc.Content = &content.String
	}
	return &doc, nil
}
