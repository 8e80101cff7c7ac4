package ai

import "time"

// Provider names
const (
	ProviderDeepSeek  = "deepseek"
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	DefaultProvider   = ProviderDeepSeek
)

// Default models and endpoints per provider
const (
	DefaultDeepSeekModel   = "deepseek-chat"
	DefaultDeepSeekBaseURL = "https://api.deepseek.com"
	DefaultGeminiModel     = "gemini-2.0-flash"
	DefaultGeminiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultAnthropicModel  = "claude-3-5-haiku-latest"
)

// Generation defaults
const (
	DefaultMaxTokens   = 2000
	DefaultTemperature = 0.3
	DefaultTimeout     = 60 * time.Second
)

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderDeepSeek:
		return DefaultDeepSeekModel
	case ProviderGemini:
		return DefaultGeminiModel
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderAnthropic:
		return DefaultAnthropicModel
	}
	return ""
}

// DefaultProbeModels lists the candidates tried by ProbeModels when the
// caller names none, most preferred first.
func DefaultProbeModels(provider string) []string {
	switch provider {
	case ProviderDeepSeek:
		return []string{"deepseek-chat", "deepseek-reasoner"}
	case ProviderGemini:
		return []string{
			"gemini-2.0-flash",
			"gemini-2.0-flash-exp",
			"gemini-2.0-pro-exp",
			"gemini-2.5-flash",
			"gemini-2.5-flash-exp",
			"gemini-2.5-pro-exp",
			"gemini-1.5-flash",
			"gemini-1.5-pro",
		}
	case ProviderOpenAI:
		return []string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini"}
	case ProviderAnthropic:
		return []string{"claude-3-5-haiku-latest", "claude-3-5-sonnet-latest"}
	}
	return nil
}
