// Package deepseek provides an AI provider adapter using the DeepSeek API.
package deepseek

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
	DefaultBaseURL = "https://api.deepseek.com/v1"
	DefaultModel   = "deepseek-chat"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the DeepSeek provider.
type Config struct {
	// APIKey is the DeepSeek API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.deepseek.com/v1).
	BaseURL string

	// Model is the chat model to use (default: deepseek-chat).
	Model string

	// MaxTokens caps the completion length (default: domain.DefaultMaxTokens).
	MaxTokens int

	// Temperature controls sampling randomness (default: domain.DefaultTemperature).
	Temperature float64

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Provider generates questions and grades answers via DeepSeek.
// Prompts are Chinese; DeepSeek's chat models respond in kind.
type Provider struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
}

// chatRequest is the DeepSeek /chat/completions request format.
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

// chatResponse is the DeepSeek /chat/completions response format.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// New creates a DeepSeek provider.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("deepseek: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
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
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

const questionSystemPrompt = "你是一个专业的教育助手。基于提供的学习材料内容，生成一个有深度的问题来测试学习者对内容的理解。问题应该：1) 测试核心概念的理解 2) 需要综合思考 3) 避免简单的事实性问题。请只返回问题本身，不要包含其他解释。"

const evaluateSystemPrompt = "你是一个专业的教育评估助手。请评估学习者的答案，并提供建设性的反馈。评估标准：准确性、完整性、深度。请以JSON格式返回评估结果，包含：score(0-100的整数)、feedback(详细反馈)、suggestions(改进建议数组)。"

const fallbackSuggestion = "请参考参考材料进一步完善答案"

// GenerateQuestion produces a single open-ended question grounded in the
// supplied source material.
func (p *Provider) GenerateQuestion(ctx context.Context, material string) (string, error) {
	messages := []chatMsg{
		{Role: "system", Content: questionSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("基于以下学习材料生成一个问题：\n\n%s", material)},
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
			"参考材料：\n%s\n\n问题：%s\n\n学习者答案：%s\n\n请评估这个答案并返回JSON格式的评估结果。",
			material, question, answer,
		)},
	}

	reply, err := p.chatCompletion(ctx, messages)
	if err != nil {
		return domain.Evaluation{}, err
	}

	return parseEvaluation(reply, fallbackSuggestion), nil
}

// TestConnection probes the API with a minimal chat request.
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
		p.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", &driven.ProviderError{Message: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

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
