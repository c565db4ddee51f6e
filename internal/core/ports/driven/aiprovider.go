package driven

import (
	"context"
	"fmt"

	"github.com/retainhq/retain/internal/core/domain"
)

// AIProvider generates review questions and grades answers against
// source material.
//
// Implementations may include:
//   - DeepSeek (hosted, bearer-token auth)
//   - LocalAI / any OpenAI-compatible local inference server
type AIProvider interface {
	// GenerateQuestion produces a single open-ended question grounded in
	// the supplied source material.
	GenerateQuestion(ctx context.Context, material string) (string, error)

	// EvaluateAnswer grades a user's answer to a question against the
	// source material. When the model's reply cannot be parsed into a
	// structured evaluation, implementations return a degraded
	// evaluation carrying the raw reply rather than an error.
	EvaluateAnswer(ctx context.Context, question, answer, material string) (domain.Evaluation, error)

	// TestConnection reports whether the provider is reachable with the
	// configured credentials. It never returns an error; unreachable
	// simply means false.
	TestConnection(ctx context.Context) bool
}

// ProviderError describes a failed request to an AI provider backend.
type ProviderError struct {
	// StatusCode is the HTTP status returned by the backend, or zero
	// when the request never completed.
	StatusCode int

	// Message is a short description of what failed.
	Message string

	// Err is the underlying transport or decode error, if any.
	Err error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ai provider: %s (status %d)", e.Message, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("ai provider: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("ai provider: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
