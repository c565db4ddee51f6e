package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/retainhq/retain/internal/cache"
	"github.com/retainhq/retain/internal/core/domain"
	"github.com/retainhq/retain/internal/core/ports/driven"
	"github.com/retainhq/retain/internal/core/ports/driving"
	"github.com/retainhq/retain/internal/logger"
)

// Ensure QuizService implements the interface.
var _ driving.QuizService = (*QuizService)(nil)

// QuizService generates questions from knowledge base content and
// grades answers with the configured AI provider.
type QuizService struct {
	quizStore    driven.QuizStore
	docStore     driven.DocumentStore
	configStore  driven.AIConfigStore
	factory      driven.AIProviderFactory
	contentCache *cache.Cache[string]
}

// NewQuizService creates a new quiz service.
func NewQuizService(
	quizStore driven.QuizStore,
	docStore driven.DocumentStore,
	configStore driven.AIConfigStore,
	factory driven.AIProviderFactory,
	contentCache *cache.Cache[string],
) *QuizService {
	return &QuizService{
		quizStore:    quizStore,
		docStore:     docStore,
		configStore:  configStore,
		factory:      factory,
		contentCache: contentCache,
	}
}

// GenerateQuestion asks the configured provider for a question grounded
// in the knowledge base's extracted content.
func (s *QuizService) GenerateQuestion(ctx context.Context, kbID string) (*domain.Question, error) {
	material, err := s.material(ctx, kbID)
	if err != nil {
		return nil, err
	}

	provider, err := s.provider(ctx)
	if err != nil {
		return nil, err
	}

	text, err := provider.GenerateQuestion(ctx, material)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: provider returned an empty question", domain.ErrInvalidInput)
	}

	question := domain.NewQuestion(kbID, text, snippet(material))
	if err := question.Validate(); err != nil {
		return nil, err
	}
	if err := s.quizStore.SaveQuestion(ctx, question); err != nil {
		return nil, err
	}

	logger.Debug("generated question %s for knowledge base %s", question.ID, kbID)
	return &question, nil
}

// SubmitAnswer grades an answer to a previously generated question and
// records the result.
func (s *QuizService) SubmitAnswer(ctx context.Context, questionID, answerText string) (*domain.Answer, error) {
	question, err := s.quizStore.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	answer := domain.NewAnswer(questionID, answerText)
	if err := answer.Validate(); err != nil {
		return nil, err
	}

	material, err := s.material(ctx, question.KnowledgeBaseID)
	if err != nil {
		return nil, err
	}

	provider, err := s.provider(ctx)
	if err != nil {
		return nil, err
	}

	eval, err := provider.EvaluateAnswer(ctx, question.Text, answerText, material)
	if err != nil {
		return nil, err
	}

	answer = answer.Graded(eval)
	if err := s.quizStore.SaveAnswer(ctx, answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

// History returns past question/answer pairs, most recent first.
func (s *QuizService) History(ctx context.Context, kbID string, filter domain.HistoryFilter) ([]domain.HistoryItem, error) {
	return s.quizStore.History(ctx, kbID, filter)
}

// material returns the aggregated extracted text of a knowledge base,
// read through the shared content cache.
func (s *QuizService) material(ctx context.Context, kbID string) (string, error) {
	if cached, ok := s.contentCache.Get(kbID); ok {
		return cached, nil
	}

	contents, err := s.docStore.ContentByKnowledgeBase(ctx, kbID)
	if err != nil {
		return "", err
	}

	material := strings.TrimSpace(strings.Join(contents, "\n\n"))
	if material == "" {
		return "", domain.ErrNoContent
	}

	s.contentCache.Set(kbID, material)
	return material, nil
}

// provider builds an AI provider from the stored configuration.
func (s *QuizService) provider(ctx context.Context) (driven.AIProvider, error) {
	cfg, err := s.configStore.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrAINotConfigured
		}
		return nil, err
	}
	return buildProvider(s.factory, *cfg)
}

// snippetLength is how much of the material is kept as the question's
// stored context.
const snippetLength = 500

// snippet keeps the head of the material, marking truncation with an
// ellipsis.
func snippet(material string) string {
	runes := []rune(material)
	if len(runes) <= snippetLength {
		return material
	}
	return string(runes[:snippetLength]) + "..."
}
