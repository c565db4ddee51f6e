package driving

import (
	"context"

	"github.com/retainhq/retain/internal/core/domain"
)

// ReviewService serves review rounds over past questions and reports
// learning progress.
type ReviewService interface {
	// RandomQuestion picks one answered question of a knowledge base at
	// random. Returns domain.ErrNotFound when no history exists yet.
	RandomQuestion(ctx context.Context, kbID string) (*domain.Question, error)

	// ReviewQuestions returns up to count answered questions in random
	// order. A count of zero falls back to the default batch size;
	// counts outside 1-20 are rejected.
	ReviewQuestions(ctx context.Context, kbID string, count int) ([]domain.Question, error)

	// SubmitReviewAnswer records a fresh answer to a past question,
	// grading it through the AI provider when one is configured and
	// storing it ungraded otherwise.
	SubmitReviewAnswer(ctx context.Context, questionID, answerText string) (*domain.Answer, error)

	// RecordSession stores a review session. The knowledge base must
	// have at least questionsCount answered questions to draw from.
	RecordSession(ctx context.Context, kbID string, questionsCount int, averageScore *float64) (*domain.ReviewSession, error)

	// UpdateSessionScore sets the average score of a finished session.
	UpdateSessionScore(ctx context.Context, sessionID string, averageScore float64) (*domain.ReviewSession, error)

	// ListSessions returns the sessions of a knowledge base, most
	// recent first.
	ListSessions(ctx context.Context, kbID string) ([]domain.ReviewSession, error)

	// Progress summarises answer history into aggregate statistics and
	// a score trend.
	Progress(ctx context.Context, kbID string) (*domain.LearningProgress, error)
}
