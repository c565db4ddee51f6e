package domain

import "time"

// AIProviderType identifies an AI text-completion backend.
type AIProviderType string

// Available AI providers.
const (
	// AIProviderDeepSeek is the hosted DeepSeek API (bearer token auth).
	AIProviderDeepSeek AIProviderType = "deepseek"

	// AIProviderLocal is a self-hosted OpenAI-compatible endpoint on a
	// trusted network (no auth, caller-supplied base URL).
	AIProviderLocal AIProviderType = "local"
)

// IsValid returns true if the provider type is recognised.
func (p AIProviderType) IsValid() bool {
	switch p {
	case AIProviderDeepSeek, AIProviderLocal:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProviderType) RequiresAPIKey() bool {
	return p == AIProviderDeepSeek
}

// RequiresAPIURL returns true if this provider needs a caller-supplied URL.
func (p AIProviderType) RequiresAPIURL() bool {
	return p == AIProviderLocal
}

// String returns the string representation.
func (p AIProviderType) String() string {
	return string(p)
}

// Defaults applied when an AIConfig leaves generation knobs unset.
const (
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7
)

// AIConfig is the active AI provider configuration. The system keeps a
// single configuration at a time; saving replaces the previous one.
type AIConfig struct {
	Provider    AIProviderType
	APIKey      string
	APIURL      string
	ModelName   string
	MaxTokens   int
	Temperature float64
	UpdatedAt   time.Time
}

// ApplyDefaults fills unset generation knobs.
func (c *AIConfig) ApplyDefaults() {
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
}

// Validate checks provider-specific required fields and knob ranges.
func (c AIConfig) Validate() error {
	if !c.Provider.IsValid() {
		return ErrInvalidInput
	}
	if c.Provider.RequiresAPIKey() && c.APIKey == "" {
		return ErrInvalidInput
	}
	if c.Provider.RequiresAPIURL() && c.APIURL == "" {
		return ErrInvalidInput
	}
	if c.MaxTokens < 1 || c.MaxTokens > 4000 {
		return ErrInvalidInput
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return ErrInvalidInput
	}
	return nil
}
