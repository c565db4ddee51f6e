package extractors

import (
	"context"
	"os"

	"github.com/retainhq/retain/internal/core/domain"
)

// Ensure PlainText implements the interface.
var _ Extractor = (*PlainText)(nil)

// PlainText passes file contents through verbatim. No heuristics, no
// truncation; invalid UTF-8 bytes are carried as-is.
type PlainText struct{}

// NewPlainText creates a plain text extractor.
func NewPlainText() *PlainText {
	return &PlainText{}
}

// FileType returns the format this extractor handles.
func (e *PlainText) FileType() domain.FileType {
	return domain.FileTypeTXT
}

// Extract reads the file and returns its contents unchanged. Reading is
// ordinary file I/O and needs no offloading.
func (e *PlainText) Extract(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
