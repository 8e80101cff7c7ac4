package ai

import (
	"fmt"
	"log/slog"
	"time"
)

// NewProvider selects the concrete CompletionProvider by name.
func NewProvider(name, apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) (CompletionProvider, error) {
	if apiKey == "" {
		return nil, NewValidationError("api_key", fmt.Sprintf("no API key for provider %s", name))
	}

	switch name {
	case ProviderDeepSeek:
		return NewDeepSeekProvider(apiKey, baseURL, timeout, logger), nil
	case ProviderGemini, ProviderOpenAI:
		return NewOpenAIProvider(name, apiKey, baseURL, timeout, logger), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(apiKey, baseURL, timeout, logger), nil
	default:
		return nil, NewValidationError("provider", fmt.Sprintf("unsupported provider %q", name))
	}
}
