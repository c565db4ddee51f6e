package driving

import (
	"context"

	"github.com/retainhq/retain/internal/core/domain"
)

// QuizService generates questions from a knowledge base and grades
// answers to them.
type QuizService interface {
	// GenerateQuestion asks the configured AI provider for a question
	// grounded in the knowledge base's extracted content.
	GenerateQuestion(ctx context.Context, kbID string) (*domain.Question, error)

	// SubmitAnswer grades an answer to a previously generated question
	// and records the result.
	SubmitAnswer(ctx context.Context, questionID, answerText string) (*domain.Answer, error)

	// History returns past question/answer pairs for a knowledge base,
	// most recent first, optionally filtered by score and date range.
	History(ctx context.Context, kbID string, filter domain.HistoryFilter) ([]domain.HistoryItem, error)
}
