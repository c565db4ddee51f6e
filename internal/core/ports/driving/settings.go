package driving

import (
	"context"

	"github.com/retainhq/retain/internal/core/domain"
)

// SettingsService manages the AI provider configuration.
type SettingsService interface {
	// SaveAIConfig validates and stores the provider configuration.
	SaveAIConfig(ctx context.Context, cfg domain.AIConfig) error

	// GetAIConfig retrieves the stored provider configuration.
	// Returns domain.ErrNotFound when none has been saved.
	GetAIConfig(ctx context.Context) (*domain.AIConfig, error)

	// TestAIConnection builds a provider from the stored configuration
	// and probes it. Returns domain.ErrAINotConfigured when no
	// configuration has been saved.
	TestAIConnection(ctx context.Context) (bool, error)
}
