package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxDocumentSize is the largest accepted upload (100 MiB).
const MaxDocumentSize = 100 * 1024 * 1024

// FileType identifies the format of an uploaded document.
// The set is closed: adding a format means adding a constant here and an
// extractor for it.
type FileType string

// Supported document formats.
const (
	FileTypePDF  FileType = "pdf"
	FileTypeEPUB FileType = "epub"
	FileTypeTXT  FileType = "txt"
)

// ParseFileType converts a stored or user-supplied tag into a FileType.
// Unknown tags are a hard error. The original system silently fell back to
// plain text here, which masked corrupted rows; we reject instead.
func ParseFileType(s string) (FileType, error) {
	switch FileType(s) {
	case FileTypePDF, FileTypeEPUB, FileTypeTXT:
		return FileType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, s)
	}
}

// String returns the string representation.
func (t FileType) String() string {
	return string(t)
}

// Document is one uploaded artifact inside a knowledge base. Content holds
// the extracted text and is nil until extraction succeeds; it is never
// partially populated. Documents are immutable after creation except for
// deletion.
type Document struct {
	ID              string
	KnowledgeBaseID string
	Filename        string
	FileType        FileType
	FilePath        string
	FileSize        int64
	Content         *string
	UploadedAt      time.Time
}

// NewDocument creates a document record with a fresh ID and timestamp.
func NewDocument(kbID, filename string, fileType FileType, filePath string, fileSize int64, content *string) Document {
	return Document{
		ID:              uuid.New().String(),
		KnowledgeBaseID: kbID,
		Filename:        filename,
		FileType:        fileType,
		FilePath:        filePath,
		FileSize:        fileSize,
		Content:         content,
		UploadedAt:      time.Now().UTC(),
	}
}

// Validate checks filename and size constraints.
func (d Document) Validate() error {
	if d.Filename == "" || len(d.Filename) > MaxNameLength {
		return ErrInvalidInput
	}
	if d.FileSize <= 0 || d.FileSize > MaxDocumentSize {
		return ErrInvalidInput
	}
	if _, err := ParseFileType(string(d.FileType)); err != nil {
		return err
	}
	return nil
}
