// Package extractors converts uploaded files of known formats into plain
// UTF-8 text. Each supported format (plain text, PDF, EPUB) has its own
// extractor behind a uniform interface; the Registry maps file extensions
// to extractors and is the single seam for adding formats.
//
// Extraction is pure with respect to process state. CPU-bound parsing runs
// off the caller's goroutine with panic capture, so a crashing parse
// surfaces as an error rather than taking the request down or hanging.
package extractors
