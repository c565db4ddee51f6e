package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/retainhq/retain/internal/core/domain"
	"github.com/retainhq/retain/internal/core/ports/driven"
	"github.com/retainhq/retain/internal/core/ports/driving"
	"github.com/retainhq/retain/internal/logger"
)

// Ensure ReviewService implements the interface.
var _ driving.ReviewService = (*ReviewService)(nil)

// Batch size bounds for review question requests.
const (
	defaultReviewBatch = 5
	maxReviewBatch     = 20
)

// ReviewService serves review rounds over past questions and reports
// learning progress. Grading of review answers is delegated to the quiz
// service when an AI provider is configured.
type ReviewService struct {
	reviewStore driven.ReviewStore
	quizStore   driven.QuizStore
	kbStore     driven.KnowledgeBaseStore
	quiz        driving.QuizService
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviewStore driven.ReviewStore,
	quizStore driven.QuizStore,
	kbStore driven.KnowledgeBaseStore,
	quiz driving.QuizService,
) *ReviewService {
	return &ReviewService{
		reviewStore: reviewStore,
		quizStore:   quizStore,
		kbStore:     kbStore,
		quiz:        quiz,
	}
}

// RandomQuestion picks one answered question at random.
func (s *ReviewService) RandomQuestion(ctx context.Context, kbID string) (*domain.Question, error) {
	if _, err := s.kbStore.Get(ctx, kbID); err != nil {
		return nil, err
	}

	questions, err := s.quizStore.RandomQuestions(ctx, kbID, 1)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no answered questions to review yet", domain.ErrNotFound)
	}
	return &questions[0], nil
}

// ReviewQuestions returns up to count answered questions in random order.
func (s *ReviewService) ReviewQuestions(ctx context.Context, kbID string, count int) ([]domain.Question, error) {
	if count == 0 {
		count = defaultReviewBatch
	}
	if count < 1 || count > maxReviewBatch {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", domain.ErrInvalidInput, maxReviewBatch)
	}
	if _, err := s.kbStore.Get(ctx, kbID); err != nil {
		return nil, err
	}

	questions, err := s.quizStore.RandomQuestions(ctx, kbID, count)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no answered questions to review yet", domain.ErrNotFound)
	}
	return questions, nil
}

// SubmitReviewAnswer records a fresh answer to a past question. With a
// configured AI provider the answer is graded like a quiz answer; when
// grading is impossible (no provider, or the source material is gone)
// it is stored ungraded.
func (s *ReviewService) SubmitReviewAnswer(ctx context.Context, questionID, answerText string) (*domain.Answer, error) {
	answer, err := s.quiz.SubmitAnswer(ctx, questionID, answerText)
	if err == nil {
		return answer, nil
	}
	if !errors.Is(err, domain.ErrAINotConfigured) && !errors.Is(err, domain.ErrNoContent) {
		return nil, err
	}

	if _, err := s.quizStore.GetQuestion(ctx, questionID); err != nil {
		return nil, err
	}
	ungraded := domain.NewAnswer(questionID, answerText)
	if err := ungraded.Validate(); err != nil {
		return nil, fmt.Errorf("%w: answer must be 1-%d characters", domain.ErrInvalidInput, domain.MaxAnswerLength)
	}
	if err := s.quizStore.SaveAnswer(ctx, ungraded); err != nil {
		return nil, err
	}
	logger.Debug("stored ungraded review answer %s for question %s", ungraded.ID, questionID)
	return &ungraded, nil
}

// RecordSession stores a review session. The knowledge base must have at
// least questionsCount answered questions to draw from.
func (s *ReviewService) RecordSession(ctx context.Context, kbID string, questionsCount int, averageScore *float64) (*domain.ReviewSession, error) {
	if _, err := s.kbStore.Get(ctx, kbID); err != nil {
		return nil, err
	}
	if questionsCount <= 0 {
		return nil, fmt.Errorf("%w: questions count must be positive", domain.ErrInvalidInput)
	}
	if averageScore != nil && (*averageScore < 0 || *averageScore > 100) {
		return nil, fmt.Errorf("%w: average score must be within 0-100", domain.ErrInvalidInput)
	}

	history, err := s.quizStore.History(ctx, kbID, domain.HistoryFilter{})
	if err != nil {
		return nil, err
	}
	if len(history) < questionsCount {
		return nil, fmt.Errorf("%w: requested %d questions but only %d answered",
			domain.ErrInsufficientHistory, questionsCount, len(history))
	}

	session := domain.NewReviewSession(kbID, questionsCount)
	session.AverageScore = averageScore
	if err := s.reviewStore.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateSessionScore sets the average score of a finished session.
func (s *ReviewService) UpdateSessionScore(ctx context.Context, sessionID string, averageScore float64) (*domain.ReviewSession, error) {
	if averageScore < 0 || averageScore > 100 {
		return nil, fmt.Errorf("%w: average score must be within 0-100", domain.ErrInvalidInput)
	}
	if err := s.reviewStore.UpdateSessionScore(ctx, sessionID, averageScore); err != nil {
		return nil, err
	}
	return s.reviewStore.GetSession(ctx, sessionID)
}

// ListSessions returns the sessions of a knowledge base, most recent first.
func (s *ReviewService) ListSessions(ctx context.Context, kbID string) ([]domain.ReviewSession, error) {
	if _, err := s.kbStore.Get(ctx, kbID); err != nil {
		return nil, err
	}
	return s.reviewStore.ListSessions(ctx, kbID)
}

// Progress summarises answer history into aggregate statistics and a
// score trend.
func (s *ReviewService) Progress(ctx context.Context, kbID string) (*domain.LearningProgress, error) {
	if _, err := s.kbStore.Get(ctx, kbID); err != nil {
		return nil, err
	}

	history, err := s.quizStore.History(ctx, kbID, domain.HistoryFilter{})
	if err != nil {
		return nil, err
	}
	sessions, err := s.reviewStore.CountSessions(ctx, kbID)
	if err != nil {
		return nil, err
	}

	progress := domain.ComputeProgress(history, sessions)
	return &progress, nil
}
