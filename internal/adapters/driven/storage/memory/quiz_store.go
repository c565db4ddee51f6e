package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"github.com/retainhq/retain/internal/core/domain"
	"github.com/retainhq/retain/internal/core/ports/driven"
)

// Ensure QuizStore implements the interface.
var _ driven.QuizStore = (*QuizStore)(nil)

// QuizStore is an in-memory implementation of driven.QuizStore.
type QuizStore struct {
	mu        sync.RWMutex
	questions map[string]domain.Question
	answers   map[string]domain.Answer
}

// NewQuizStore creates a new in-memory quiz store.
func NewQuizStore() *QuizStore {
	return &QuizStore{
		questions: make(map[string]domain.Question),
		answers:   make(map[string]domain.Answer),
	}
}

// SaveQuestion records a generated question.
func (s *QuizStore) SaveQuestion(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[q.ID] = q
	return nil
}

// GetQuestion retrieves a question by ID.
func (s *QuizStore) GetQuestion(_ context.Context, id string) (*domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &q, nil
}

// SaveAnswer records a graded answer.
func (s *QuizStore) SaveAnswer(_ context.Context, a domain.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[a.ID] = a
	return nil
}

// History returns question/answer pairs matching the filter, most
// recent first.
func (s *QuizStore) History(_ context.Context, kbID string, filter domain.HistoryFilter) ([]domain.HistoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var history []domain.HistoryItem
	for _, a := range s.answers {
		q, ok := s.questions[a.QuestionID]
		if !ok || q.KnowledgeBaseID != kbID {
			continue
		}
		if !matchesFilter(a, filter) {
			continue
		}
		history = append(history, domain.HistoryItem{Question: q, Answer: a})
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].Answer.AnsweredAt.After(history[j].Answer.AnsweredAt)
	})
	return paginate(history, filter.Limit, filter.Offset), nil
}

// RandomQuestions returns up to n answered questions in random order.
func (s *QuizStore) RandomQuestions(_ context.Context, kbID string, n int) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	answered := make(map[string]struct{})
	for _, a := range s.answers {
		answered[a.QuestionID] = struct{}{}
	}

	var eligible []domain.Question
	for id := range answered {
		q, ok := s.questions[id]
		if ok && q.KnowledgeBaseID == kbID {
			eligible = append(eligible, q)
		}
	}

	rand.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	if len(eligible) > n {
		eligible = eligible[:n]
	}
	return eligible, nil
}

func paginate(history []domain.HistoryItem, limit, offset int) []domain.HistoryItem {
	if offset > 0 {
		if offset >= len(history) {
			return nil
		}
		history = history[offset:]
	}
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history
}

func matchesFilter(a domain.Answer, filter domain.HistoryFilter) bool {
	if filter.MinScore != nil && (a.Score == nil || *a.Score < *filter.MinScore) {
		return false
	}
	if filter.MaxScore != nil && (a.Score == nil || *a.Score > *filter.MaxScore) {
		return false
	}
	if filter.StartDate != nil && a.AnsweredAt.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && a.AnsweredAt.After(*filter.EndDate) {
		return false
	}
	return true
}
