package rest

import (
	"errors"
	"net/http"

	"github.com/retainhq/retain/internal/core/domain"
)

type aiConfigRequest struct {
	Provider    string   `json:"provider"`
	APIKey      string   `json:"api_key"`
	APIURL      string   `json:"api_url"`
	ModelName   string   `json:"model_name"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
}

func (s *Server) handleGetAIConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.settings.GetAIConfig(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Unconfigured installs get the defaults rather than a 404
			// so the settings screen can prefill them.
			writeJSON(w, http.StatusOK, aiConfigResponse{
				Provider:    string(domain.AIProviderDeepSeek),
				MaxTokens:   domain.DefaultMaxTokens,
				Temperature: domain.DefaultTemperature,
			})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAIConfigResponse(*cfg))
}

func (s *Server) handleSaveAIConfig(w http.ResponseWriter, r *http.Request) {
	var req aiConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	cfg := domain.AIConfig{
		Provider:  domain.AIProviderType(req.Provider),
		APIKey:    req.APIKey,
		APIURL:    req.APIURL,
		ModelName: req.ModelName,
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature != nil {
		cfg.Temperature = *req.Temperature
	}

	if err := s.settings.SaveAIConfig(r.Context(), cfg); err != nil {
		writeError(w, err)
		return
	}

	saved, err := s.settings.GetAIConfig(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "AI configuration saved",
		"config":  toAIConfigResponse(*saved),
	})
}

func (s *Server) handleTestAIConnection(w http.ResponseWriter, r *http.Request) {
	ok, err := s.settings.TestAIConnection(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "failed",
			"message": "AI provider did not respond",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "AI provider connection successful",
	})
}
