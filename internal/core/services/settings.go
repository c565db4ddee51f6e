package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/retainhq/retain/internal/core/domain"
	"github.com/retainhq/retain/internal/core/ports/driven"
	"github.com/retainhq/retain/internal/core/ports/driving"
	"github.com/retainhq/retain/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// connectionTestTimeout bounds the probe request when testing a
// provider configuration.
const connectionTestTimeout = 30 * time.Second

// SettingsService manages the AI provider configuration.
type SettingsService struct {
	configStore driven.AIConfigStore
	factory     driven.AIProviderFactory
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.AIConfigStore, factory driven.AIProviderFactory) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		factory:     factory,
	}
}

// SaveAIConfig validates and stores the provider configuration.
func (s *SettingsService) SaveAIConfig(ctx context.Context, cfg domain.AIConfig) error {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.UpdatedAt = time.Now().UTC()

	if err := s.configStore.Save(ctx, cfg); err != nil {
		return err
	}
	logger.Info("ai provider configured: %s", cfg.Provider)
	return nil
}

// GetAIConfig retrieves the stored provider configuration.
func (s *SettingsService) GetAIConfig(ctx context.Context) (*domain.AIConfig, error) {
	return s.configStore.Get(ctx)
}

// TestAIConnection builds a provider from the stored configuration and
// probes it.
func (s *SettingsService) TestAIConnection(ctx context.Context) (bool, error) {
	cfg, err := s.configStore.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrAINotConfigured
		}
		return false, err
	}

	provider, err := buildProvider(s.factory, *cfg)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, connectionTestTimeout)
	defer cancel()
	return provider.TestConnection(ctx), nil
}

// buildProvider flattens a domain configuration into factory settings.
func buildProvider(factory driven.AIProviderFactory, cfg domain.AIConfig) (driven.AIProvider, error) {
	settings := map[string]string{
		"api_key": cfg.APIKey,
		"api_url": cfg.APIURL,
		"model":   cfg.ModelName,
	}
	if cfg.MaxTokens > 0 {
		settings["max_tokens"] = strconv.Itoa(cfg.MaxTokens)
	}
	if cfg.Temperature > 0 {
		settings["temperature"] = strconv.FormatFloat(cfg.Temperature, 'f', -1, 64)
	}
	return factory.Create(string(cfg.Provider), settings)
}
