package driven

import (
	"context"

	"github.com/retainhq/retain/internal/core/domain"
)

// AIConfigStore persists the singleton AI provider configuration.
type AIConfigStore interface {
	// Save stores the configuration, replacing any existing one.
	Save(ctx context.Context, cfg domain.AIConfig) error

	// Get retrieves the configuration.
	// Returns domain.ErrNotFound when none has been saved yet.
	Get(ctx context.Context) (*domain.AIConfig, error)
}
