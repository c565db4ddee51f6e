package driven

import (
	"context"

	"github.com/retainhq/retain/internal/core/domain"
)

// QuizStore persists generated questions and graded answers.
type QuizStore interface {
	// SaveQuestion records a generated question.
	SaveQuestion(ctx context.Context, q domain.Question) error

	// GetQuestion retrieves a question by ID.
	// Returns domain.ErrNotFound if it doesn't exist.
	GetQuestion(ctx context.Context, id string) (*domain.Question, error)

	// SaveAnswer records a graded answer.
	SaveAnswer(ctx context.Context, a domain.Answer) error

	// History returns question/answer pairs for a knowledge base that
	// match the filter, most recent first.
	History(ctx context.Context, kbID string, filter domain.HistoryFilter) ([]domain.HistoryItem, error)

	// RandomQuestions returns up to n answered questions of a knowledge
	// base in random order. Unanswered questions are not eligible.
	RandomQuestions(ctx context.Context, kbID string, n int) ([]domain.Question, error)
}
