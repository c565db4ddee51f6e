// Package local provides an AI provider adapter for OpenAI-compatible
// local inference servers (LocalAI, LM Studio, llama.cpp server).
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/retainhq/retain/internal/core/domain"
	"github.com/retainhq/retain/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.AIProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultModel   = "local-model"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for a local inference server.
type Config struct {
	// APIURL is the server base URL, e.g. http://localhost:8080 (required).
	// The /v1/chat/completions path is appended.
	APIURL string

	// Model is the model name to request (default: local-model).
	Model string

	// MaxTokens caps the completion length (default: domain.DefaultMaxTokens).
	MaxTokens int

	// Temperature controls sampling randomness (default: domain.DefaultTemperature).
	Temperature float64

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Provider generates questions and grades answers via a local
// OpenAI-compatible server. No authentication is sent.
type Provider struct {
	client      *http.Client
	apiURL      string
	model       string
	maxTokens   int
	temperature float64
}

// chatRequest is the /v1/chat/completions request format.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []chatMsg `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// chatMsg is the chat message format.
type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the /v1/chat/completions response format.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// New creates a local provider.
func New(cfg Config) (*Provider, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("local: API URL is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = domain.DefaultMaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = domain.DefaultTemperature
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Provider{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiURL:      strings.TrimSuffix(cfg.APIURL, "/"),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

const questionSystemPrompt = "You are a professional educational assistant. Based on the provided learning material content, generate a thoughtful question to test the learner's understanding. The question should: 1) Test understanding of core concepts 2) Require comprehensive thinking 3) Avoid simple factual questions. Please return only the question itself without other explanations."

const evaluateSystemPrompt = "You are a professional educational assessment assistant. Please evaluate the learner's answer and provide constructive feedback. Evaluation criteria: accuracy, completeness, depth. Please return the evaluation result in JSON format, including: score (integer 0-100), feedback (detailed feedback), suggestions (array of improvement suggestions)."

const fallbackSuggestion = "Please refer to the reference material to further improve your answer"

// GenerateQuestion produces a single open-ended question grounded in the
// supplied source material.
func (p *Provider) GenerateQuestion(ctx context.Context, material string) (string, error) {
	messages := []chatMsg{
		{Role: "system", Content: questionSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Generate a question based on the following learning material:\n\n%s", material)},
	}

	question, err := p.chatCompletion(ctx, messages)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(question), nil
}

// EvaluateAnswer grades an answer against the question and source
// material. When the model's reply is not the requested JSON shape the
// reply text itself becomes the feedback of a degraded evaluation.
func (p *Provider) EvaluateAnswer(ctx context.Context, question, answer, material string) (domain.Evaluation, error) {
	messages := []chatMsg{
		{Role: "system", Content: evaluateSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(
			"Reference material:\n%s\n\nQuestion: %s\n\nLearner's answer: %s\n\nPlease evaluate this answer and return a JSON-formatted evaluation result.",
			material, question, answer,
		)},
	}

	reply, err := p.chatCompletion(ctx, messages)
	if err != nil {
		return domain.Evaluation{}, err
	}

	return parseEvaluation(reply, fallbackSuggestion), nil
}

// TestConnection probes the server with a minimal chat request.
func (p *Provider) TestConnection(ctx context.Context) bool {
	messages := []chatMsg{
		{Role: "user", Content: "Hello, this is a connection test."},
	}
	_, err := p.chatCompletion(ctx, messages)
	return err == nil
}

func (p *Provider) chatCompletion(ctx context.Context, messages []chatMsg) (string, error) {
	reqBody := chatRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", &driven.ProviderError{Message: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.apiURL+"/v1/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", &driven.ProviderError{Message: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &driven.ProviderError{Message: "send request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &driven.ProviderError{Message: "read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &driven.ProviderError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", &driven.ProviderError{Message: "decode response", Err: err}
	}

	if len(chatResp.Choices) == 0 {
		return "", &driven.ProviderError{Message: "no response choices returned"}
	}

	return chatResp.Choices[0].Message.Content, nil
}

// evaluationReply is the JSON shape the evaluation prompt asks for.
// Pointer fields and the nil slice distinguish a missing key from a zero
// value; all three keys must be present or the reply takes the fallback
// path.
type evaluationReply struct {
	Score       *int     `json:"score"`
	Feedback    *string  `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

// parseEvaluation interprets the model's reply. Models often wrap JSON in
// markdown fences or surrounding prose, so the first balanced object is
// cut out before unmarshalling. An unparseable reply degrades to a fixed
// score with the raw reply as feedback instead of failing the request.
func parseEvaluation(reply, suggestion string) domain.Evaluation {
	candidate := extractJSONObject(reply)
	if candidate != "" {
		var parsed evaluationReply
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil &&
			parsed.Score != nil && parsed.Feedback != nil && parsed.Suggestions != nil {
			return domain.Evaluation{
				Score:       domain.ClampScore(*parsed.Score),
				Feedback:    *parsed.Feedback,
				Suggestions: parsed.Suggestions,
			}
		}
	}

	return domain.Evaluation{
		Score:       domain.DegradedScore,
		Feedback:    reply,
		Suggestions: []string{suggestion},
	}
}

// extractJSONObject returns the first top-level {...} span in s, or
// empty when none exists.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
