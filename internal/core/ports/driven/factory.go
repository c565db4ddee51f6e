package driven

// AIProviderFactory constructs AI providers from persisted settings.
//
// The settings map carries provider-specific keys: "api_key" (required
// for hosted providers), "api_url" (required for local providers), and
// the optional "model", "max_tokens" and "temperature" overrides.
type AIProviderFactory interface {
	// Create builds a provider for the given provider tag. It returns
	// an error when the tag is unknown or a required setting is absent.
	Create(provider string, settings map[string]string) (AIProvider, error)
}
