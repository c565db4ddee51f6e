package extractors

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/retainhq/retain/internal/core/domain"
)

// Ensure EPUB implements the interface.
var _ Extractor = (*EPUB)(nil)

// EPUB extracts text from EPUB files. An EPUB is a zip container with an
// OPF package document that names the content files and their reading
// order (the spine). Content files are XHTML; the markup is stripped with
// a lightweight tag scanner rather than a full HTML parse, which keeps
// the extractor dependency-free and is enough for reading-order text.
type EPUB struct{}

// NewEPUB creates an EPUB extractor.
func NewEPUB() *EPUB {
	return &EPUB{}
}

// FileType returns the format this extractor handles.
func (e *EPUB) FileType() domain.FileType {
	return domain.FileTypeEPUB
}

// container.xml points at the OPF package document.
type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

// The OPF package document: the manifest maps item ids to hrefs, the
// spine lists item ids in reading order.
type epubPackage struct {
	Manifest struct {
		Items []struct {
			ID   string `xml:"id,attr"`
			Href string `xml:"href,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

// Extract walks the spine in order and concatenates the stripped text of
// each content document. Spine entries whose files are missing or
// unreadable are skipped so one bad chapter does not sink the book.
func (e *EPUB) Extract(ctx context.Context, filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}

	return runOffThread(ctx, func() (string, error) {
		archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return "", formatErr(domain.FileTypeEPUB, err)
		}

		files := make(map[string]*zip.File, len(archive.File))
		for _, f := range archive.File {
			files[f.Name] = f
		}

		opfPath, err := opfLocation(files)
		if err != nil {
			return "", formatErr(domain.FileTypeEPUB, err)
		}

		opfData, err := readZipFile(files, opfPath)
		if err != nil {
			return "", formatErr(domain.FileTypeEPUB, err)
		}

		var pkg epubPackage
		if err := xml.Unmarshal(opfData, &pkg); err != nil {
			return "", formatErr(domain.FileTypeEPUB, fmt.Errorf("parse package document: %w", err))
		}

		hrefs := make(map[string]string, len(pkg.Manifest.Items))
		for _, item := range pkg.Manifest.Items {
			hrefs[item.ID] = item.Href
		}

		// Content hrefs are relative to the OPF's own directory.
		baseDir := path.Dir(opfPath)

		var text strings.Builder
		for _, ref := range pkg.Spine.ItemRefs {
			href, ok := hrefs[ref.IDRef]
			if !ok {
				continue
			}
			name := href
			if baseDir != "." {
				name = path.Join(baseDir, href)
			}
			content, err := readZipFile(files, name)
			if err != nil {
				continue
			}
			// Each retrievable item contributes its stripped text plus a
			// newline, even when the text is empty, so chapter boundaries
			// stay stable.
			text.WriteString(stripMarkup(string(content)))
			text.WriteString("\n")
		}

		return text.String(), nil
	})
}

// opfLocation reads META-INF/container.xml and returns the path of the
// first rootfile.
func opfLocation(files map[string]*zip.File) (string, error) {
	data, err := readZipFile(files, "META-INF/container.xml")
	if err != nil {
		return "", fmt.Errorf("read container manifest: %w", err)
	}

	var container epubContainer
	if err := xml.Unmarshal(data, &container); err != nil {
		return "", fmt.Errorf("parse container manifest: %w", err)
	}
	if len(container.Rootfiles) == 0 || container.Rootfiles[0].FullPath == "" {
		return "", fmt.Errorf("container manifest names no rootfile")
	}
	return container.Rootfiles[0].FullPath, nil
}

func readZipFile(files map[string]*zip.File, name string) ([]byte, error) {
	f, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("archive member %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Block-ish tags become newlines before tags are stripped, so paragraph
// structure survives into the plain text.
var blockTagReplacer = strings.NewReplacer(
	"<br>", "\n",
	"<br/>", "\n",
	"<p>", "\n",
	"</p>", "\n",
)

// stripMarkup drops everything between < and > and keeps the rest.
func stripMarkup(content string) string {
	content = blockTagReplacer.Replace(content)

	var out strings.Builder
	out.Grow(len(content))
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			out.WriteRune(r)
		}
	}
	return out.String()
}
