package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/retainhq/retain/internal/adapters/driven/ai"
	"github.com/retainhq/retain/internal/core/domain"
	"github.com/retainhq/retain/internal/core/ports/driven"
	"github.com/retainhq/retain/internal/logger"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("encoding response: %v", err)
	}
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// writeError maps a service error onto an HTTP status and body.
func writeError(w http.ResponseWriter, err error) {
	var providerErr *driven.ProviderError
	var configErr *ai.ConfigError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found", Details: err.Error()})
	case errors.Is(err, domain.ErrAINotConfigured):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "AI not configured",
			Details: "configure an AI provider before using quiz features",
		})
	case errors.Is(err, domain.ErrNoContent):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "no document content",
			Details: "upload documents with extractable text first",
		})
	case errors.Is(err, domain.ErrExtractionFailed):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "document parsing failed", Details: err.Error()})
	case errors.Is(err, domain.ErrUnsupportedFileType),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInsufficientHistory):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request", Details: err.Error()})
	case errors.As(err, &configErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid AI configuration", Details: err.Error()})
	case errors.As(err, &providerErr):
		logger.Warn("AI provider failure: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "AI provider unavailable", Details: err.Error()})
	default:
		logger.Error("request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// decodeJSON reads a request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
