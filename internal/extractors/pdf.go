package extractors

import (
	"bytes"
	"context"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/retainhq/retain/internal/core/domain"
)

// Ensure PDF implements the interface.
var _ Extractor = (*PDF)(nil)

// PDF extracts text from PDF files using ledongthuc/pdf (pure Go, no CGO).
type PDF struct{}

// NewPDF creates a PDF extractor.
func NewPDF() *PDF {
	return &PDF{}
}

// FileType returns the format this extractor handles.
func (e *PDF) FileType() domain.FileType {
	return domain.FileTypePDF
}

// Extract reads the whole file and runs the byte-stream text extraction
// pass off the caller's goroutine. A decode or structural failure surfaces
// as a *FormatError with the parser diagnostic preserved.
func (e *PDF) Extract(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return runOffThread(ctx, func() (string, error) {
		reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return "", formatErr(domain.FileTypePDF, err)
		}

		var text strings.Builder
		for i := 1; i <= reader.NumPage(); i++ {
			page := reader.Page(i)
			if page.V.IsNull() {
				continue
			}
			pageText, err := page.GetPlainText(nil)
			if err != nil {
				// Skip unreadable pages rather than discarding the rest.
				continue
			}
			pageText = strings.TrimSpace(pageText)
			if pageText == "" {
				continue
			}
			if text.Len() > 0 {
				text.WriteString("\n\n")
			}
			text.WriteString(pageText)
		}

		return text.String(), nil
	})
}
