package extractors

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retainhq/retain/internal/core/domain"
)

func TestPlainText_Extract(t *testing.T) {
	e := NewPlainText()

	t.Run("returns file contents verbatim", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		content := "first line\n\n  indented second line\ttabbed\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		got, err := e.Extract(context.Background(), path)

		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("empty file yields empty string", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.txt")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		got, err := e.Extract(context.Background(), path)

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("missing file returns the filesystem error", func(t *testing.T) {
		_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))

		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestPlainText_FileType(t *testing.T) {
	assert.Equal(t, domain.FileTypeTXT, NewPlainText().FileType())
}
