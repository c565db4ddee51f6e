package extractors

import (
	"context"
	"errors"
	"fmt"

	"github.com/retainhq/retain/internal/core/domain"
)

// Extractor converts one file of a known format into plain text.
//
// Errors are typed so callers can branch without string matching:
//   - *FormatError: the bytes do not parse as the claimed format
//   - ErrUnsupportedFormat: no extractor registered for the extension
//   - ErrWorkerFailed: the offloaded parse goroutine crashed
//   - anything else: an I/O failure reading the path
type Extractor interface {
	// Extract reads the file at path and returns its extracted text.
	Extract(ctx context.Context, path string) (string, error)

	// FileType returns the format this extractor handles.
	FileType() domain.FileType
}

// Sentinel errors for extraction.
var (
	// ErrUnsupportedFormat indicates no extractor handles the format.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrWorkerFailed indicates the goroutine running a CPU-bound parse
	// panicked. Distinct from a parse failure: the input may have been
	// fine, the worker was not.
	ErrWorkerFailed = errors.New("extraction worker failed")
)

// FormatError indicates the file's bytes do not parse as the claimed
// format. Detail preserves the underlying parser diagnostic.
type FormatError struct {
	Format domain.FileType
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("%s parsing failed: %s", e.Format, e.Detail)
}

// Unwrap returns the underlying parser error, if any.
func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatErr(format domain.FileType, err error) *FormatError {
	return &FormatError{Format: format, Detail: err.Error(), Err: err}
}

// runOffThread executes a CPU-bound parse on its own goroutine and joins
// the result. A panic in fn becomes ErrWorkerFailed; a caller that stops
// waiting abandons the result, which the buffered channel lets the worker
// deliver without leaking.
func runOffThread(ctx context.Context, fn func() (string, error)) (string, error) {
	type outcome struct {
		text string
		err  error
	}
	ch := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("%w: %v", ErrWorkerFailed, r)}
			}
		}()
		text, err := fn()
		ch <- outcome{text: text, err: err}
	}()

	select {
	case out := <-ch:
		return out.text, out.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
