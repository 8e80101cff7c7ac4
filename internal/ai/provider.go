package ai

import "context"

// GenerationConfig bounds a single completion.
type GenerationConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
	// TopP and TopK are sent only when positive and only to providers that
	// accept them.
	TopP float64
	TopK int
}

// CompletionRequest is one system prompt plus one user question. No history
// is ever attached.
type CompletionRequest struct {
	SystemPrompt string
	Question     string
	Config       GenerationConfig
}

// CompletionProvider is an LLM backend able to answer a single question.
type CompletionProvider interface {
	// Name returns the provider identifier used in logs and metrics
	Name() string

	// Complete sends the request and returns the completion text
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
