// Package ai provides factory functions for creating AI provider adapters.
package ai

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/retainhq/retain/internal/adapters/driven/ai/deepseek"
	"github.com/retainhq/retain/internal/adapters/driven/ai/local"
	"github.com/retainhq/retain/internal/core/domain"
	"github.com/retainhq/retain/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.AIProviderFactory = (*Factory)(nil)

// Settings keys recognised by Create.
const (
	KeyAPIKey      = "api_key"
	KeyAPIURL      = "api_url"
	KeyModel       = "model"
	KeyMaxTokens   = "max_tokens"
	KeyTemperature = "temperature"
)

// ConfigError describes an invalid provider configuration.
type ConfigError struct {
	Provider string
	Key      string
	Reason   string
}

func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("ai config: provider %q: %s: %s", e.Provider, e.Key, e.Reason)
	}
	return fmt.Sprintf("ai config: provider %q: %s", e.Provider, e.Reason)
}

// Factory builds AI providers from persisted settings maps.
type Factory struct{}

// NewFactory creates a factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create builds a provider for the given provider tag.
//
// Required keys depend on the provider: "api_key" for deepseek,
// "api_url" for local. The optional "model", "max_tokens" and
// "temperature" keys override provider defaults; values that fail to
// parse fall back to the defaults rather than erroring, matching how
// hand-edited settings are treated leniently.
func (f *Factory) Create(provider string, settings map[string]string) (driven.AIProvider, error) {
	switch domain.AIProviderType(strings.ToLower(strings.TrimSpace(provider))) {
	case domain.AIProviderDeepSeek:
		apiKey := settings[KeyAPIKey]
		if apiKey == "" {
			return nil, &ConfigError{Provider: provider, Key: KeyAPIKey, Reason: "required"}
		}
		return deepseek.New(deepseek.Config{
			APIKey:      apiKey,
			Model:       settings[KeyModel],
			MaxTokens:   parseMaxTokens(settings[KeyMaxTokens]),
			Temperature: parseTemperature(settings[KeyTemperature]),
		})

	case domain.AIProviderLocal:
		apiURL := settings[KeyAPIURL]
		if apiURL == "" {
			return nil, &ConfigError{Provider: provider, Key: KeyAPIURL, Reason: "required"}
		}
		return local.New(local.Config{
			APIURL:      apiURL,
			Model:       settings[KeyModel],
			MaxTokens:   parseMaxTokens(settings[KeyMaxTokens]),
			Temperature: parseTemperature(settings[KeyTemperature]),
		})

	default:
		return nil, &ConfigError{Provider: provider, Reason: "unknown provider"}
	}
}

// FromConfig builds a provider from a validated domain configuration.
func (f *Factory) FromConfig(cfg domain.AIConfig) (driven.AIProvider, error) {
	settings := map[string]string{
		KeyAPIKey: cfg.APIKey,
		KeyAPIURL: cfg.APIURL,
		KeyModel:  cfg.ModelName,
	}
	if cfg.MaxTokens > 0 {
		settings[KeyMaxTokens] = strconv.Itoa(cfg.MaxTokens)
	}
	if cfg.Temperature > 0 {
		settings[KeyTemperature] = strconv.FormatFloat(cfg.Temperature, 'f', -1, 64)
	}
	return f.Create(string(cfg.Provider), settings)
}

func parseMaxTokens(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0 // provider applies its default
	}
	return n
}

func parseTemperature(raw string) float64 {
	t, err := strconv.ParseFloat(raw, 64)
	if err != nil || t <= 0 {
		return 0 // provider applies its default
	}
	return t
}
