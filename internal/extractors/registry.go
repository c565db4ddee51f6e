package extractors

import (
	"sort"
	"strings"
)

// Registry maps file extensions to their extractors. Lookups are
// case-insensitive and tolerate a leading dot, so ".PDF" and "pdf"
// resolve to the same extractor.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry creates a registry with the built-in extractors registered.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Extractor)}
	r.Register("txt", NewPlainText())
	r.Register("pdf", NewPDF())
	r.Register("epub", NewEPUB())
	return r
}

// Register adds an extractor under the given extension, replacing any
// existing registration.
func (r *Registry) Register(ext string, e Extractor) {
	r.byExt[normaliseExt(ext)] = e
}

// Lookup returns the extractor for an extension, reporting whether one
// is registered.
func (r *Registry) Lookup(ext string) (Extractor, bool) {
	e, ok := r.byExt[normaliseExt(ext)]
	return e, ok
}

// SupportedExtensions returns the registered extensions in sorted order.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func normaliseExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
