package extractors

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retainhq/retain/internal/core/domain"
)

func TestPDF_Extract(t *testing.T) {
	e := NewPDF()

	t.Run("non-PDF bytes return a format error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fake.pdf")
		require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))

		_, err := e.Extract(context.Background(), path)

		require.Error(t, err)
		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Equal(t, domain.FileTypePDF, formatErr.Format)
	})

	t.Run("missing file returns the filesystem error", func(t *testing.T) {
		_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))

		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("truncated header returns a format error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "truncated.pdf")
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

		_, err := e.Extract(context.Background(), path)

		// The parser rejects the file either by error or by panic; the
		// recover path maps panics to ErrWorkerFailed.
		require.Error(t, err)
	})
}

func TestPDF_FileType(t *testing.T) {
	assert.Equal(t, domain.FileTypePDF, NewPDF().FileType())
}

func TestRunOffThread(t *testing.T) {
	t.Run("returns the worker result", func(t *testing.T) {
		got, err := runOffThread(context.Background(), func() (string, error) {
			return "done", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "done", got)
	})

	t.Run("recovers a panicking worker", func(t *testing.T) {
		_, err := runOffThread(context.Background(), func() (string, error) {
			panic("parser blew up")
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrWorkerFailed)
		assert.Contains(t, err.Error(), "parser blew up")
	})

	t.Run("returns the context error when cancelled first", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		release := make(chan struct{})
		defer close(release)

		_, err := runOffThread(ctx, func() (string, error) {
			<-release
			return "too late", nil
		})

		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("honours deadlines", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		release := make(chan struct{})
		defer close(release)

		_, err := runOffThread(ctx, func() (string, error) {
			<-release
			return "too late", nil
		})

		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
