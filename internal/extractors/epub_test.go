package extractors

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retainhq/retain/internal/core/domain"
)

// writeEPUB builds a minimal but well-formed EPUB on disk from a map of
// archive members.
func writeEPUB(t *testing.T, members map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range members {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return path
}

const testContainerXML = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

func TestEPUB_Extract(t *testing.T) {
	e := NewEPUB()

	t.Run("walks the spine in reading order", func(t *testing.T) {
		opf := `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <manifest>
    <item id="ch2" href="chapter2.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
</package>`
		path := writeEPUB(t, map[string]string{
			"META-INF/container.xml": testContainerXML,
			"OEBPS/content.opf":      opf,
			"OEBPS/chapter1.xhtml":   "<html><body><p>Chapter one.</p></body></html>",
			"OEBPS/chapter2.xhtml":   "<html><body><p>Chapter two.</p></body></html>",
		})

		got, err := e.Extract(context.Background(), path)

		require.NoError(t, err)
		assert.Equal(t, "\nChapter one.\n\n\nChapter two.\n\n", got)
	})

	t.Run("normalises break and paragraph tags to newlines", func(t *testing.T) {
		opf := `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <manifest>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="ch1"/>
  </spine>
</package>`
		path := writeEPUB(t, map[string]string{
			"META-INF/container.xml": testContainerXML,
			"OEBPS/content.opf":      opf,
			"OEBPS/ch1.xhtml":        "<body>first<br/>second<br>third</body>",
		})

		got, err := e.Extract(context.Background(), path)

		require.NoError(t, err)
		assert.Equal(t, "first\nsecond\nthird\n", got)
	})

	t.Run("skips spine entries with missing files", func(t *testing.T) {
		opf := `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <manifest>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ghost" href="ghost.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="ghost"/>
    <itemref idref="ch1"/>
  </spine>
</package>`
		path := writeEPUB(t, map[string]string{
			"META-INF/container.xml": testContainerXML,
			"OEBPS/content.opf":      opf,
			"OEBPS/ch1.xhtml":        "<p>still here</p>",
		})

		got, err := e.Extract(context.Background(), path)

		require.NoError(t, err)
		assert.Equal(t, "\nstill here\n\n", got)
	})

	t.Run("empty spine items still contribute their newline", func(t *testing.T) {
		opf := `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <manifest>
    <item id="blank" href="blank.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="blank"/>
    <itemref idref="ch1"/>
  </spine>
</package>`
		path := writeEPUB(t, map[string]string{
			"META-INF/container.xml": testContainerXML,
			"OEBPS/content.opf":      opf,
			"OEBPS/blank.xhtml":      "<html><body></body></html>",
			"OEBPS/ch1.xhtml":        "words",
		})

		got, err := e.Extract(context.Background(), path)

		require.NoError(t, err)
		assert.Equal(t, "\nwords\n", got)
	})

	t.Run("non-zip bytes return a format error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fake.epub")
		require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0o644))

		_, err := e.Extract(context.Background(), path)

		require.Error(t, err)
		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Equal(t, domain.FileTypeEPUB, formatErr.Format)
	})

	t.Run("zip without a container manifest returns a format error", func(t *testing.T) {
		path := writeEPUB(t, map[string]string{
			"mimetype": "application/epub+zip",
		})

		_, err := e.Extract(context.Background(), path)

		require.Error(t, err)
		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Contains(t, formatErr.Error(), "container manifest")
	})

	t.Run("missing file returns the filesystem error", func(t *testing.T) {
		_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "absent.epub"))

		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text passes through",
			input: "no tags here",
			want:  "no tags here",
		},
		{
			name:  "tags are removed",
			input: "<em>hello</em> <strong>world</strong>",
			want:  "hello world",
		},
		{
			name:  "attributes do not leak",
			input: `<a href="http://example.com">link</a>`,
			want:  "link",
		},
		{
			name:  "paragraph tags become newlines",
			input: "<p>one</p><p>two</p>",
			want:  "\none\n\ntwo\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMarkup(tt.input))
		})
	}
}
