package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/retainhq/retain/internal/core/domain"
	"github.com/retainhq/retain/internal/core/ports/driven"
)

// Ensure ReviewStore implements the interface.
var _ driven.ReviewStore = (*ReviewStore)(nil)

// ReviewStore is an in-memory implementation of driven.ReviewStore.
type ReviewStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.ReviewSession
}

// NewReviewStore creates a new in-memory review store.
func NewReviewStore() *ReviewStore {
	return &ReviewStore{sessions: make(map[string]domain.ReviewSession)}
}

// SaveSession records a completed review session.
func (s *ReviewStore) SaveSession(_ context.Context, session domain.ReviewSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

// GetSession retrieves a session by ID.
func (s *ReviewStore) GetSession(_ context.Context, id string) (*domain.ReviewSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

// UpdateSessionScore sets the average score of a session.
func (s *ReviewStore) UpdateSessionScore(_ context.Context, id string, averageScore float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	session.AverageScore = &averageScore
	s.sessions[id] = session
	return nil
}

// ListSessions returns the sessions of a knowledge base, most recent first.
func (s *ReviewStore) ListSessions(_ context.Context, kbID string) ([]domain.ReviewSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sessions []domain.ReviewSession
	for _, session := range s.sessions {
		if session.KnowledgeBaseID == kbID {
			sessions = append(sessions, session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].SessionDate.After(sessions[j].SessionDate)
	})
	return sessions, nil
}

// CountSessions returns how many sessions a knowledge base has.
func (s *ReviewStore) CountSessions(_ context.Context, kbID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, session := range s.sessions {
		if session.KnowledgeBaseID == kbID {
			count++
		}
	}
	return count, nil
}

// Ensure AIConfigStore implements the interface.
var _ driven.AIConfigStore = (*AIConfigStore)(nil)

// AIConfigStore is an in-memory implementation of driven.AIConfigStore.
type AIConfigStore struct {
	mu  sync.RWMutex
	cfg *domain.AIConfig
}

// NewAIConfigStore creates a new in-memory AI config store.
func NewAIConfigStore() *AIConfigStore {
	return &AIConfigStore{}
}

// Save stores the configuration, replacing any existing one.
func (s *AIConfigStore) Save(_ context.Context, cfg domain.AIConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = &cfg
	return nil
}

// Get retrieves the configuration.
func (s *AIConfigStore) Get(_ context.Context) (*domain.AIConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cfg == nil {
		return nil, domain.ErrNotFound
	}
	cfg := *s.cfg
	return &cfg, nil
}
