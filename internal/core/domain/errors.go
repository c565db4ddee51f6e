package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFileType indicates a persisted or requested file type
	// outside the supported set (pdf, epub, txt).
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrNoContent indicates a knowledge base has no extracted document
	// text to build AI context from.
	ErrNoContent = errors.New("no document content available")

	// ErrAINotConfigured indicates no AI provider configuration has been
	// saved yet. Quiz features are unavailable until one is.
	ErrAINotConfigured = errors.New("AI provider not configured")

	// ErrInsufficientHistory indicates a review session requested more
	// questions than the answered history contains.
	ErrInsufficientHistory = errors.New("insufficient answer history")

	// ErrExtractionFailed indicates an uploaded file could not be parsed
	// as its claimed format. The upload is rejected and the file removed.
	ErrExtractionFailed = errors.New("document parsing failed")
)
