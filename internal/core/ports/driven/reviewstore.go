package driven

import (
	"context"

	"github.com/retainhq/retain/internal/core/domain"
)

// ReviewStore persists review sessions.
type ReviewStore interface {
	// SaveSession records a completed review session.
	SaveSession(ctx context.Context, s domain.ReviewSession) error

	// GetSession retrieves a session by ID.
	// Returns domain.ErrNotFound if it doesn't exist.
	GetSession(ctx context.Context, id string) (*domain.ReviewSession, error)

	// UpdateSessionScore sets the average score of a session.
	// Returns domain.ErrNotFound if it doesn't exist.
	UpdateSessionScore(ctx context.Context, id string, averageScore float64) error

	// ListSessions returns the sessions of a knowledge base, most
	// recent first.
	ListSessions(ctx context.Context, kbID string) ([]domain.ReviewSession, error)

	// CountSessions returns how many sessions a knowledge base has.
	CountSessions(ctx context.Context, kbID string) (int, error)
}
